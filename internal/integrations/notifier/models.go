package notifier

// EventType тип события для уведомления
type EventType string

const (
	EventBookingCreated   EventType = "booking_created"
	EventBookingConfirmed EventType = "booking_confirmed"
	EventBookingRejected  EventType = "booking_rejected"
	EventBookingCancelled EventType = "booking_cancelled"
	EventBookingRefunded  EventType = "booking_refunded"
	EventBookingSettled   EventType = "booking_settled"
	EventRefundRequested  EventType = "refund_requested"
	EventRefundDecided    EventType = "refund_decided"
)

// Event уведомление о событии бронирования
type Event struct {
	Type        EventType
	UserID      int64
	TherapistID int64
	BookingID   int64
	Message     string
}
