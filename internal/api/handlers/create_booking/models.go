package create_booking

import (
	"time"

	createBooking "github.com/m04kA/TCM-BookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	TherapistID int64   `json:"therapistId"`
	SessionType string  `json:"sessionType"` // consultation | therapy
	TimeSlotIDs []int64 `json:"timeSlotIds"`
}

// BookedSessionResponse одна сессия созданного пакета
type BookedSessionResponse struct {
	BookingID     int64  `json:"bookingId"`
	TimeSlotID    int64  `json:"timeSlotId"`
	SessionNumber int    `json:"sessionNumber"`
	ScheduledAt   string `json:"scheduledAt"`
	Status        string `json:"status"`
}

// CheckoutResponse HTTP response model
type CheckoutResponse struct {
	PaymentID      int64  `json:"paymentId"`
	BookingGroupID string `json:"bookingGroupId"`
	SessionType    string `json:"sessionType"`
	SessionCount   int    `json:"sessionCount"`

	OriginalFee  int64 `json:"originalFee"`
	DiscountRate int   `json:"discountRate"`
	FinalFee     int64 `json:"finalFee"`
	PlatformFee  int64 `json:"platformFee"`

	PaymentStatus string `json:"paymentStatus"`

	Sessions []BookedSessionResponse `json:"sessions"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) *createBooking.Request {
	return &createBooking.Request{
		UserID:      userID,
		TherapistID: r.TherapistID,
		SessionType: r.SessionType,
		TimeSlotIDs: r.TimeSlotIDs,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CheckoutResponse {
	sessions := make([]BookedSessionResponse, 0, len(resp.Sessions))
	for _, s := range resp.Sessions {
		sessions = append(sessions, BookedSessionResponse{
			BookingID:     s.BookingID,
			TimeSlotID:    s.TimeSlotID,
			SessionNumber: s.SessionNumber,
			ScheduledAt:   s.ScheduledAt.Format(time.RFC3339),
			Status:        s.Status,
		})
	}

	return &CheckoutResponse{
		PaymentID:      resp.PaymentID,
		BookingGroupID: resp.BookingGroupID,
		SessionType:    resp.SessionType,
		SessionCount:   resp.SessionCount,
		OriginalFee:    resp.OriginalFee,
		DiscountRate:   resp.DiscountRate,
		FinalFee:       resp.FinalFee,
		PlatformFee:    resp.PlatformFee,
		PaymentStatus:  resp.PaymentStatus,
		Sessions:       sessions,
	}
}
