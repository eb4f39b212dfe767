package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	StatusPendingConfirmation BookingStatus = "pending_confirmation"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusCompleted           BookingStatus = "completed"
	StatusPendingSettlement   BookingStatus = "pending_settlement"
	StatusSettlementCompleted BookingStatus = "settlement_completed"
	StatusRejected            BookingStatus = "rejected"
	StatusCancelled           BookingStatus = "cancelled"
	StatusRefunded            BookingStatus = "refunded"
)

// SessionType represents the kind of session a booking pays for
type SessionType string

const (
	SessionConsultation SessionType = "consultation"
	SessionTherapy      SessionType = "therapy"
)

var (
	// ErrIllegalTransition возвращается при недопустимом переходе статуса
	ErrIllegalTransition = errors.New("domain: illegal booking status transition")

	// ErrInvalidStatus возвращается при неизвестном статусе бронирования
	ErrInvalidStatus = errors.New("domain: invalid booking status")
)

// bookingTransitions - граф допустимых переходов жизненного цикла.
// Терминальные статусы (rejected, cancelled, refunded, settlement_completed)
// не имеют исходящих ребер.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPendingConfirmation: {StatusConfirmed, StatusRejected, StatusCancelled, StatusRefunded},
	StatusConfirmed:           {StatusCompleted, StatusRejected, StatusCancelled, StatusRefunded},
	StatusCompleted:           {StatusPendingSettlement, StatusRefunded},
	StatusPendingSettlement:   {StatusSettlementCompleted, StatusRefunded},
	StatusSettlementCompleted: {},
	StatusRejected:            {},
	StatusCancelled:           {},
	StatusRefunded:            {},
}

// ParseBookingStatus validates a raw string against the closed status set
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if _, ok := bookingTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// CanTransitionTo returns true if the lifecycle graph allows moving to next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next if the move is legal, otherwise a typed rejection
func (s BookingStatus) Transition(next BookingStatus) (BookingStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s, next)
	}
	return next, nil
}

// IsTerminal returns true for states with no outgoing transitions
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Booking represents one scheduled session within a purchase.
// A booking holds exactly one time slot and belongs to exactly one payment.
type Booking struct {
	ID             int64
	BookingGroupID uuid.UUID
	PaymentID      int64
	TherapistID    int64
	UserID         int64 // родитель, оформивший покупку
	TimeSlotID     int64
	SessionNumber  int
	SessionType    SessionType
	Status         BookingStatus
	ScheduledAt    time.Time // дата + время начала слота, UTC

	TherapistNote *string // журнал сессии; заполняется один раз при завершении

	ConfirmedAt *time.Time

	RejectedAt      *time.Time
	RejectionReason *string

	CancelledBy        *int64
	CancelledAt        *time.Time
	CancellationReason *string

	RefundAmount     int64
	SettlementAmount *int64
	SettledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsUnstarted returns true while the session has not taken place:
// such bookings release their slot and are cascade-cancelled on payment refund
func (b *Booking) IsUnstarted() bool {
	return b.Status == StatusPendingConfirmation || b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the parent may still cancel the booking
func (b *Booking) CanBeCancelled() bool {
	return b.Status.CanTransitionTo(StatusCancelled)
}

// CanBeRejected returns true if the therapist may still reject the booking
func (b *Booking) CanBeRejected() bool {
	return b.Status.CanTransitionTo(StatusRejected)
}

// HoursUntilStart returns the number of hours between now and the session start
func (b *Booking) HoursUntilStart(now time.Time) float64 {
	return b.ScheduledAt.Sub(now).Hours()
}
