package timeslot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("timeslot.repository: slot not found")

	// ErrSlotNotAvailable возвращается, когда слот нельзя зарезервировать:
	// занят, заблокирован буфером, выпадает на праздник или скрыт
	ErrSlotNotAvailable = errors.New("timeslot.repository: slot not available for reservation")

	// ErrSlotBooked возвращается при попытке удалить слот с активным бронированием
	ErrSlotBooked = errors.New("timeslot.repository: slot has active bookings")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("timeslot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("timeslot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("timeslot.repository: failed to scan row")
)
