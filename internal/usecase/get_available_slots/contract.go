package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

// TimeSlotRepository интерфейс репозитория слотов
type TimeSlotRepository interface {
	ListByTherapistRange(ctx context.Context, therapistID int64, from, to time.Time, onlyOfferable bool) ([]*domain.TimeSlot, error)
}

// TherapistRepository интерфейс репозитория профилей и расписания терапевтов
type TherapistRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TherapistProfile, error)
	ListHolidays(ctx context.Context, therapistID int64, includeShared bool, from, to time.Time) ([]*domain.HolidayDate, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
