package create_refund_request

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds/models"
)

type RefundService interface {
	CreateRequest(ctx context.Context, actor domain.Actor, req *models.CreateRefundRequestRequest) (*models.RefundRequestResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
