package generate_slots

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда профиль терапевта не найден
	ErrTherapistNotFound = errors.New("generate_slots: therapist not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("generate_slots: access denied")

	// ErrNoWindows возвращается, когда у терапевта нет еженедельных окон
	ErrNoWindows = errors.New("generate_slots: therapist has no availability windows")

	// ErrInvalidRange возвращается при некорректном периоде
	ErrInvalidRange = errors.New("generate_slots: invalid date range")

	// ErrRangeTooWide возвращается, когда период превышает допустимое окно
	ErrRangeTooWide = errors.New("generate_slots: date range is too wide")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("generate_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("generate_slots: internal error")
)
