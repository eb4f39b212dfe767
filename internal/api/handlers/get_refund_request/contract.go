package get_refund_request

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds/models"
)

type RefundService interface {
	GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.RefundRequestResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
