package create_review

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/internal/service/reviews/models"
)

type ReviewService interface {
	Create(ctx context.Context, actor domain.Actor, req *models.CreateReviewRequest) (*models.ReviewResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
