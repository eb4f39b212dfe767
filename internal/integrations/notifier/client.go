package notifier

import "context"

// Client заглушка клиента уведомлений. Доставка через внешний канал
// (push, SMS) подключается отдельным сервисом; здесь события только
// логируются, чтобы сценарии бронирования не зависели от его доступности.
type Client struct {
	log Logger
}

// NewClient создает новый экземпляр клиента уведомлений
func NewClient(log Logger) *Client {
	return &Client{log: log}
}

// Notify фиксирует событие. Ошибок не возвращает: уведомления
// не должны ломать основной сценарий.
func (c *Client) Notify(ctx context.Context, event Event) {
	select {
	case <-ctx.Done():
		c.log.Error("notifier: context cancelled, event dropped: type=%s, booking_id=%d", event.Type, event.BookingID)
		return
	default:
	}

	c.log.Info(
		"notifier: type=%s, user_id=%d, therapist_id=%d, booking_id=%d, message=%q",
		event.Type, event.UserID, event.TherapistID, event.BookingID, event.Message,
	)
}
