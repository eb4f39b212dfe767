package models

import (
	"errors"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// RejectBookingRequest запрос на отклонение бронирования терапевтом
type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// SubmitJournalRequest запрос на завершение сессии с записью журнала
type SubmitJournalRequest struct {
	Journal string `json:"journal"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetTherapistBookingsRequest запрос на расписание терапевта за период
type GetTherapistBookingsRequest struct {
	TherapistID int64      `json:"therapistId"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64  `json:"id"`
	BookingGroupID string `json:"bookingGroupId"`
	PaymentID      int64  `json:"paymentId"`
	TherapistID    int64  `json:"therapistId"`
	UserID         int64  `json:"userId"`
	TimeSlotID     int64  `json:"timeSlotId"`
	SessionNumber  int    `json:"sessionNumber"`
	SessionType    string `json:"sessionType"`
	Status         string `json:"status"`

	ScheduledAt time.Time `json:"scheduledAt"`

	TherapistNote *string `json:"therapistNote,omitempty"`

	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`

	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`

	CancelledBy        *int64     `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`

	RefundAmount     int64      `json:"refundAmount"`
	SettlementAmount *int64     `json:"settlementAmount,omitempty"`
	SettledAt        *time.Time `json:"settledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// ToDomainBookingStatus валидирует и конвертирует строковый статус
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	parsed, err := domain.ParseBookingStatus(status)
	if err != nil {
		return "", ErrInvalidStatus
	}
	return parsed, nil
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:                 b.ID,
		BookingGroupID:     b.BookingGroupID.String(),
		PaymentID:          b.PaymentID,
		TherapistID:        b.TherapistID,
		UserID:             b.UserID,
		TimeSlotID:         b.TimeSlotID,
		SessionNumber:      b.SessionNumber,
		SessionType:        string(b.SessionType),
		Status:             string(b.Status),
		ScheduledAt:        b.ScheduledAt,
		TherapistNote:      b.TherapistNote,
		ConfirmedAt:        b.ConfirmedAt,
		RejectedAt:         b.RejectedAt,
		RejectionReason:    b.RejectionReason,
		CancelledBy:        b.CancelledBy,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		RefundAmount:       b.RefundAmount,
		SettlementAmount:   b.SettlementAmount,
		SettledAt:          b.SettledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}
