package bookings

import (
	"context"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	ListByTherapistID(ctx context.Context, therapistID int64, from, to *time.Time) ([]*domain.Booking, error)
	Confirm(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string) error
	Cancel(ctx context.Context, id int64, cancelledBy int64, reason string, refundAmount int64) error
	Complete(ctx context.Context, id int64, journal string) error
	MarkPendingSettlement(ctx context.Context, id int64) error
	Settle(ctx context.Context, id int64, settlementAmount int64) error
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ApplyRefund(ctx context.Context, id int64, amount int64) (*domain.Payment, error)
	AddSettlement(ctx context.Context, id int64, amount int64) error
}

// TimeSlotRepository интерфейс репозитория слотов
type TimeSlotRepository interface {
	Release(ctx context.Context, id int64) error
}

// TherapistRepository интерфейс репозитория профилей терапевтов
type TherapistRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TherapistProfile, error)
}

// Notifier интерфейс клиента уведомлений
type Notifier interface {
	Notify(ctx context.Context, event notifier.Event)
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
