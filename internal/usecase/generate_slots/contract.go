package generate_slots

import (
	"context"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

// TimeSlotRepository интерфейс репозитория слотов
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *domain.TimeSlot) (bool, error)
}

// TherapistRepository интерфейс репозитория профилей и расписания терапевтов
type TherapistRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TherapistProfile, error)
	ListWindows(ctx context.Context, therapistID int64) ([]*domain.TherapistAvailability, error)
	ListHolidays(ctx context.Context, therapistID int64, includeShared bool, from, to time.Time) ([]*domain.HolidayDate, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
