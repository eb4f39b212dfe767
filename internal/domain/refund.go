package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefundRequestStatus represents the review state of a refund request
type RefundRequestStatus string

const (
	RefundRequestPending  RefundRequestStatus = "pending"
	RefundRequestApproved RefundRequestStatus = "approved"
	RefundRequestRejected RefundRequestStatus = "rejected"
)

// RefundRequest is a parent- or admin-initiated refund record.
// At most one PENDING request may exist per payment at a time.
type RefundRequest struct {
	ID       int64
	PublicID uuid.UUID

	PaymentID int64
	BookingID *int64 // заполняется в admin-direct пути и при одобрении

	RequestedBy     int64
	Reason          string
	RequestedAmount int64

	Status          RefundRequestStatus
	ApprovedAmount  *int64
	RejectionReason *string
	ProcessedBy     *int64
	ProcessedAt     *time.Time

	CreatedAt time.Time
}

// IsPending returns true while the request awaits an admin decision
func (r *RefundRequest) IsPending() bool {
	return r.Status == RefundRequestPending
}
