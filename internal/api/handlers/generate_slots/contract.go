package generate_slots

import (
	"context"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	generateSlots "github.com/m04kA/TCM-BookingService/internal/usecase/generate_slots"
)

type GenerateSlotsUseCase interface {
	Execute(ctx context.Context, actor domain.Actor, req *generateSlots.Request) (*generateSlots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
