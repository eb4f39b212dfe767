package refund_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/service/payments"
	"github.com/m04kA/TCM-BookingService/internal/service/payments/models"
)

const (
	msgInvalidPaymentID = "некорректный ID платежа"
	msgInvalidBody      = "некорректное тело запроса"
	msgUnauthorized     = "пользователь не аутентифицирован"
	msgNotFound         = "платеж не найден"
	msgForbidden        = "доступ запрещен"
	msgRefundExceedsFee = "возврат превышает сумму платежа"
	msgInvalidRefund    = "некорректные параметры возврата"
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

// Handle POST /api/v1/payments/{paymentId}/refunds
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	paymentID, err := strconv.ParseInt(vars["paymentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /payments/{id}/refunds - Invalid payment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPaymentID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.RefundPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payments/{id}/refunds - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	payment, err := h.service.Refund(r.Context(), paymentID, actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidInput):
			h.logger.Warn("POST /payments/{id}/refunds - Invalid input: payment_id=%d, error=%v", paymentID, err)
			handlers.RespondBadRequest(w, msgInvalidRefund)

		case errors.Is(err, payments.ErrPaymentNotFound):
			h.logger.Warn("POST /payments/{id}/refunds - Payment not found: payment_id=%d", paymentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, payments.ErrAccessDenied):
			h.logger.Warn("POST /payments/{id}/refunds - Access denied: payment_id=%d, user_id=%d",
				paymentID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, payments.ErrRefundExceedsFee):
			h.logger.Warn("POST /payments/{id}/refunds - Refund exceeds fee: payment_id=%d, amount=%d",
				paymentID, req.Amount)
			handlers.RespondConflict(w, msgRefundExceedsFee)

		default:
			h.logger.Error("POST /payments/{id}/refunds - Failed to refund: payment_id=%d, error=%v", paymentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/{id}/refunds - Refund applied: payment_id=%d, amount=%d, admin_id=%d",
		paymentID, req.Amount, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, payment)
}
