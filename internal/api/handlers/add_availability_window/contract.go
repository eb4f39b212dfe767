package add_availability_window

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/internal/service/availability/models"
)

type AvailabilityService interface {
	AddWindow(ctx context.Context, therapistID int64, actor domain.Actor, req *models.AddWindowRequest) (*models.WindowResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
