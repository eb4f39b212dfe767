package create_booking

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда профиль терапевта не найден
	ErrTherapistNotFound = errors.New("create_booking: therapist not found")

	// ErrTherapistNotBookable возвращается, когда профиль терапевта
	// не прошел модерацию
	ErrTherapistNotBookable = errors.New("create_booking: therapist is not approved for booking")

	// ErrConsultationNotOffered возвращается, когда терапевт не предлагает консультации
	ErrConsultationNotOffered = errors.New("create_booking: therapist does not offer consultations")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("create_booking: time slot not found")

	// ErrSlotNotAvailable возвращается, когда слот уже занят или закрыт
	ErrSlotNotAvailable = errors.New("create_booking: time slot is not available")

	// ErrSlotMismatch возвращается, когда слот принадлежит другому терапевту
	ErrSlotMismatch = errors.New("create_booking: time slot belongs to another therapist")

	// ErrSlotInPast возвращается при попытке забронировать прошедший слот
	ErrSlotInPast = errors.New("create_booking: time slot is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
