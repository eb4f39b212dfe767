package list_availability_windows

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/service/availability/models"
)

type AvailabilityService interface {
	ListWindows(ctx context.Context, therapistID int64) (*models.WindowListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
