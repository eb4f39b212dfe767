package confirm_transfer

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

type PaymentService interface {
	ConfirmTransfer(ctx context.Context, id int64, actor domain.Actor) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
