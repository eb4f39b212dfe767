package settle_booking

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

type BookingService interface {
	Settle(ctx context.Context, bookingID int64, actor domain.Actor) (int64, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
