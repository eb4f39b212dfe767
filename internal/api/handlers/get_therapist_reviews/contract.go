package get_therapist_reviews

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/service/reviews/models"
)

type ReviewService interface {
	ListByTherapistID(ctx context.Context, therapistID int64) (*models.ReviewListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
