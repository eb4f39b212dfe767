package models

import (
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

// Request модели

// RefundPaymentRequest запрос на возврат по платежу.
// Частичные возвраты накапливаются: сумма всех возвратов не может
// превысить finalFee.
type RefundPaymentRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// Response модели

// PaymentResponse ответ с данными платежа
type PaymentResponse struct {
	ID             int64  `json:"id"`
	BookingGroupID string `json:"bookingGroupId"`
	UserID         int64  `json:"userId"`
	TherapistID    int64  `json:"therapistId"`
	SessionType    string `json:"sessionType"`
	SessionCount   int    `json:"sessionCount"`

	OriginalFee  int64 `json:"originalFee"`
	DiscountRate int   `json:"discountRate"`
	FinalFee     int64 `json:"finalFee"`
	PlatformFee  int64 `json:"platformFee"`

	Status           string     `json:"status"`
	RefundAmount     int64      `json:"refundAmount"`
	SettlementAmount int64      `json:"settlementAmount"`
	SettledAt        *time.Time `json:"settledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromDomainPayment конвертирует domain модель в DTO
func FromDomainPayment(p *domain.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}

	return &PaymentResponse{
		ID:               p.ID,
		BookingGroupID:   p.BookingGroupID.String(),
		UserID:           p.UserID,
		TherapistID:      p.TherapistID,
		SessionType:      string(p.SessionType),
		SessionCount:     p.SessionCount,
		OriginalFee:      p.OriginalFee,
		DiscountRate:     p.DiscountRate,
		FinalFee:         p.FinalFee,
		PlatformFee:      p.PlatformFee,
		Status:           string(p.Status),
		RefundAmount:     p.RefundAmount,
		SettlementAmount: p.SettlementAmount,
		SettledAt:        p.SettledAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
