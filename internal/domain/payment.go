package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the money state of a purchase
type PaymentStatus string

const (
	PaymentPendingPayment    PaymentStatus = "pending_payment"
	PaymentPaid              PaymentStatus = "paid"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentRefunded          PaymentStatus = "refunded"
)

// Payment represents the purchase unit of one checkout: a single payment
// owns 1..N bookings (one per session in the package).
//
// FinalFee is immutable after the transfer is confirmed; the refund pathway
// only ever increases RefundAmount, bounded by FinalFee.
// All amounts are integers in the smallest whole currency unit.
type Payment struct {
	ID             int64
	BookingGroupID uuid.UUID
	UserID         int64 // родитель
	TherapistID    int64
	SessionType    SessionType
	SessionCount   int

	OriginalFee  int64
	DiscountRate int // процент скидки, 0..100
	FinalFee     int64
	PlatformFee  int64

	Status       PaymentStatus
	RefundAmount int64

	SettlementAmount int64
	SettledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPaid returns true once the bank transfer has been confirmed.
// Partially refunded payments are still considered paid for the
// purposes of confirmation and settlement of their remaining bookings.
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentPaid || p.Status == PaymentPartiallyRefunded
}

// IsRefundable returns true if the payment can still receive refunds
func (p *Payment) IsRefundable() bool {
	return p.IsPaid() && p.RefundAmount < p.FinalFee
}

// RemainingRefundable returns how much can still be refunded
func (p *Payment) RemainingRefundable() int64 {
	if p.RefundAmount >= p.FinalFee {
		return 0
	}
	return p.FinalFee - p.RefundAmount
}

// PerSessionFee returns the refund base of a single session in the package
func (p *Payment) PerSessionFee() int64 {
	if p.SessionCount <= 0 {
		return p.FinalFee
	}
	return p.FinalFee / int64(p.SessionCount)
}

// PlatformFeePerSession returns the platform fee share of a single session
func (p *Payment) PlatformFeePerSession() int64 {
	if p.SessionCount <= 0 {
		return p.PlatformFee
	}
	return p.PlatformFee / int64(p.SessionCount)
}
