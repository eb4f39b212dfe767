package list_holidays

import (
	"context"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/service/availability/models"
)

type AvailabilityService interface {
	ListHolidays(ctx context.Context, therapistID int64, from, to time.Time) (*models.HolidayListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
