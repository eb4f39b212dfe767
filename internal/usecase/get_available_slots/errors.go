package get_available_slots

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда профиль терапевта не найден
	ErrTherapistNotFound = errors.New("get_available_slots: therapist not found")

	// ErrTherapistNotBookable возвращается, когда профиль терапевта
	// не прошел модерацию
	ErrTherapistNotBookable = errors.New("get_available_slots: therapist is not approved for booking")

	// ErrInvalidRange возвращается при некорректном периоде запроса
	ErrInvalidRange = errors.New("get_available_slots: invalid date range")

	// ErrRangeTooWide возвращается, когда период превышает допустимое окно
	ErrRangeTooWide = errors.New("get_available_slots: date range is too wide")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
