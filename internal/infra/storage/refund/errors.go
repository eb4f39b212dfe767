package refund

import "errors"

var (
	// ErrRequestNotFound возвращается, когда заявка на возврат не найдена
	ErrRequestNotFound = errors.New("refund.repository: refund request not found")

	// ErrPendingRequestExists возвращается при попытке создать вторую
	// PENDING-заявку по тому же платежу
	ErrPendingRequestExists = errors.New("refund.repository: a pending refund request already exists for this payment")

	// ErrRequestNotPending возвращается при обработке заявки не в статусе pending
	ErrRequestNotPending = errors.New("refund.repository: refund request is not pending")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("refund.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("refund.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("refund.repository: failed to scan row")
)
