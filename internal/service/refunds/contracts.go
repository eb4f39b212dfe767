package refunds

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/internal/integrations/notifier"
)

// RefundRepository интерфейс репозитория заявок на возврат
type RefundRepository interface {
	Create(ctx context.Context, req *domain.RefundRequest) (*domain.RefundRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.RefundRequest, error)
	HasPending(ctx context.Context, paymentID int64) (bool, error)
	ListByPaymentID(ctx context.Context, paymentID int64) ([]*domain.RefundRequest, error)
	Approve(ctx context.Context, id int64, bookingID int64, approvedAmount int64, processedBy int64) error
	Reject(ctx context.Context, id int64, rejectionReason string, processedBy int64) error
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ApplyRefund(ctx context.Context, id int64, amount int64) (*domain.Payment, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByPaymentID(ctx context.Context, paymentID int64) ([]*domain.Booking, error)
	ListByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.Booking, error)
	MarkRefunded(ctx context.Context, id int64, refundAmount int64, reason string, processedBy int64, expected []domain.BookingStatus) error
}

// TimeSlotRepository интерфейс репозитория слотов
type TimeSlotRepository interface {
	Release(ctx context.Context, id int64) error
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
