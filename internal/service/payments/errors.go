package payments

import "errors"

var (
	// ErrPaymentNotFound возвращается, когда платеж не найден
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrAlreadyPaid возвращается при повторном подтверждении перевода
	ErrAlreadyPaid = errors.New("payment transfer already confirmed")

	// ErrRefundExceedsFee возвращается, когда сумма возвратов превышает finalFee
	ErrRefundExceedsFee = errors.New("refund exceeds final fee")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
