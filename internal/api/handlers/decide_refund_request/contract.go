package decide_refund_request

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds/models"
)

type RefundService interface {
	Approve(ctx context.Context, requestID int64, actor domain.Actor, req *models.ApproveRefundRequest) (*models.RefundRequestResponse, error)
	Reject(ctx context.Context, requestID int64, actor domain.Actor, req *models.RejectRefundRequest) (*models.RefundRequestResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
