package confirm_transfer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/service/payments"
)

const (
	msgInvalidPaymentID = "некорректный ID платежа"
	msgUnauthorized     = "пользователь не аутентифицирован"
	msgNotFound         = "платеж не найден"
	msgForbidden        = "доступ запрещен"
	msgAlreadyPaid      = "перевод по платежу уже подтвержден"
)

type Handler struct {
	service PaymentService
	logger  Logger
}

func NewHandler(service PaymentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/payments/{paymentId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	paymentID, err := strconv.ParseInt(vars["paymentId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /payments/{id}/confirm - Invalid payment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPaymentID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	if err := h.service.ConfirmTransfer(r.Context(), paymentID, actor); err != nil {
		switch {
		case errors.Is(err, payments.ErrPaymentNotFound):
			h.logger.Warn("PATCH /payments/{id}/confirm - Payment not found: payment_id=%d", paymentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, payments.ErrAccessDenied):
			h.logger.Warn("PATCH /payments/{id}/confirm - Access denied: payment_id=%d, user_id=%d",
				paymentID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, payments.ErrAlreadyPaid):
			h.logger.Warn("PATCH /payments/{id}/confirm - Already confirmed: payment_id=%d", paymentID)
			handlers.RespondConflict(w, msgAlreadyPaid)

		default:
			h.logger.Error("PATCH /payments/{id}/confirm - Failed to confirm transfer: payment_id=%d, error=%v",
				paymentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /payments/{id}/confirm - Transfer confirmed: payment_id=%d, admin_id=%d",
		paymentID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
