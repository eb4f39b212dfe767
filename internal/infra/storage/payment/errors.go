package payment

import "errors"

var (
	// ErrPaymentNotFound возвращается, когда платеж не найден
	ErrPaymentNotFound = errors.New("payment.repository: payment not found")

	// ErrRefundExceedsFee возвращается, когда возврат превысил бы итоговую сумму платежа
	ErrRefundExceedsFee = errors.New("payment.repository: refund would exceed final fee")

	// ErrIllegalPaymentStatus возвращается при переводе платежа из недопустимого статуса
	ErrIllegalPaymentStatus = errors.New("payment.repository: payment is not in the expected status")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("payment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("payment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("payment.repository: failed to scan row")
)
