package availability

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда профиль терапевта не найден
	ErrTherapistNotFound = errors.New("therapist not found")

	// ErrWindowNotFound возвращается, когда окно доступности не найдено
	ErrWindowNotFound = errors.New("availability window not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrWindowOverlap возвращается, когда новое окно пересекается
	// с существующим окном того же дня недели
	ErrWindowOverlap = errors.New("availability window overlaps an existing window")

	// ErrSlotsBooked возвращается при попытке удалить слоты,
	// на которые есть активные бронирования
	ErrSlotsBooked = errors.New("range contains booked slots")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
