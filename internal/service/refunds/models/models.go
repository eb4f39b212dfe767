package models

import (
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

// Request модели

// CreateRefundRequestRequest заявка родителя на возврат по платежу
type CreateRefundRequestRequest struct {
	PaymentID       int64  `json:"paymentId"`
	Reason          string `json:"reason"`
	RequestedAmount int64  `json:"requestedAmount"`
}

// ApproveRefundRequest одобрение заявки админом.
// BookingID указывает сессию, которая помечается REFUNDED; обязателен,
// если заявка не ссылается на бронирование.
type ApproveRefundRequest struct {
	BookingID      *int64 `json:"bookingId,omitempty"`
	ApprovedAmount int64  `json:"approvedAmount"`
}

// RejectRefundRequest отклонение заявки админом
type RejectRefundRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

// DirectRefundRequest прямой возврат админом по бронированию
// или по всей группе бронирований
type DirectRefundRequest struct {
	BookingID      *int64  `json:"bookingId,omitempty"`
	BookingGroupID *string `json:"bookingGroupId,omitempty"`
	Amount         int64   `json:"amount"`
	Reason         string  `json:"reason"`
}

// Response модели

// RefundRequestResponse ответ с данными заявки на возврат
type RefundRequestResponse struct {
	ID              int64      `json:"id"`
	PublicID        string     `json:"publicId"`
	PaymentID       int64      `json:"paymentId"`
	BookingID       *int64     `json:"bookingId,omitempty"`
	RequestedBy     int64      `json:"requestedBy"`
	Reason          string     `json:"reason"`
	RequestedAmount int64      `json:"requestedAmount"`
	Status          string     `json:"status"`
	ApprovedAmount  *int64     `json:"approvedAmount,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	ProcessedBy     *int64     `json:"processedBy,omitempty"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// FromDomainRefundRequest конвертирует domain модель в DTO
func FromDomainRefundRequest(r *domain.RefundRequest) *RefundRequestResponse {
	if r == nil {
		return nil
	}

	return &RefundRequestResponse{
		ID:              r.ID,
		PublicID:        r.PublicID.String(),
		PaymentID:       r.PaymentID,
		BookingID:       r.BookingID,
		RequestedBy:     r.RequestedBy,
		Reason:          r.Reason,
		RequestedAmount: r.RequestedAmount,
		Status:          string(r.Status),
		ApprovedAmount:  r.ApprovedAmount,
		RejectionReason: r.RejectionReason,
		ProcessedBy:     r.ProcessedBy,
		ProcessedAt:     r.ProcessedAt,
		CreatedAt:       r.CreatedAt,
	}
}
