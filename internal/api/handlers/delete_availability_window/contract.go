package delete_availability_window

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

type AvailabilityService interface {
	DeleteWindow(ctx context.Context, therapistID int64, windowID int64, actor domain.Actor) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
