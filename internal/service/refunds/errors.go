package refunds

import "errors"

var (
	// ErrRequestNotFound возвращается, когда заявка на возврат не найдена
	ErrRequestNotFound = errors.New("refund request not found")

	// ErrPaymentNotFound возвращается, когда платеж не найден
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrPendingRequestExists возвращается, когда по платежу уже есть
	// нерассмотренная заявка
	ErrPendingRequestExists = errors.New("pending refund request already exists for payment")

	// ErrRequestNotPending возвращается при решении по уже рассмотренной заявке
	ErrRequestNotPending = errors.New("refund request is not pending")

	// ErrPaymentNotRefundable возвращается, когда платеж уже возвращен
	// или находится в частичном возврате
	ErrPaymentNotRefundable = errors.New("payment is not refundable")

	// ErrAllSessionsSettled возвращается, когда все бронирования платежа
	// уже дошли до выплаты
	ErrAllSessionsSettled = errors.New("all sessions are settlement-bound")

	// ErrNotRefundable возвращается, когда бронирование нельзя пометить возвращенным
	ErrNotRefundable = errors.New("booking cannot be refunded")

	// ErrRefundExceedsFee возвращается, когда сумма возвратов превышает finalFee
	ErrRefundExceedsFee = errors.New("refund exceeds final fee")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
