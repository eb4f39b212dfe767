package availability

import (
	"context"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

// TherapistRepository интерфейс репозитория профилей и расписания терапевтов
type TherapistRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TherapistProfile, error)
	CreateWindow(ctx context.Context, w *domain.TherapistAvailability) (*domain.TherapistAvailability, error)
	ListWindows(ctx context.Context, therapistID int64) ([]*domain.TherapistAvailability, error)
	DeleteWindow(ctx context.Context, id int64) error
	CreateHoliday(ctx context.Context, h *domain.HolidayDate) (*domain.HolidayDate, error)
	ListHolidays(ctx context.Context, therapistID int64, includeShared bool, from, to time.Time) ([]*domain.HolidayDate, error)
}

// TimeSlotRepository интерфейс репозитория слотов
type TimeSlotRepository interface {
	SetHoliday(ctx context.Context, therapistID int64, date time.Time, isHoliday bool) error
	HasBookedInRange(ctx context.Context, therapistID int64, from, to time.Time) (bool, error)
	DeleteByTherapistRange(ctx context.Context, therapistID int64, from, to time.Time) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
