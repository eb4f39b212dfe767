package create_refund_request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds/models"
)

const (
	msgInvalidPaymentID     = "некорректный ID платежа"
	msgInvalidBody          = "некорректное тело запроса"
	msgUnauthorized         = "пользователь не аутентифицирован"
	msgPaymentNotFound      = "платеж не найден"
	msgForbidden            = "доступ запрещен"
	msgPendingExists        = "по платежу уже есть заявка на рассмотрении"
	msgPaymentNotRefundable = "платеж нельзя вернуть в текущем статусе"
	msgAllSettled           = "все сессии пакета уже закрыты выплатой"
	msgRefundExceedsFee     = "запрошенная сумма превышает сумму платежа"
	msgInvalidRequest       = "некорректные параметры заявки"
)

type Handler struct {
	service RefundService
	logger  Logger
}

func NewHandler(service RefundService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/{paymentId}/refund-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	paymentID, err := strconv.ParseInt(vars["paymentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /payments/{id}/refund-requests - Invalid payment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPaymentID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payments/{id}/refund-requests - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	serviceReq := &models.CreateRefundRequestRequest{
		PaymentID:       paymentID,
		Reason:          req.Reason,
		RequestedAmount: req.RequestedAmount,
	}

	request, err := h.service.CreateRequest(r.Context(), actor, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, refunds.ErrInvalidInput):
			h.logger.Warn("POST /payments/{id}/refund-requests - Invalid input: payment_id=%d, error=%v",
				paymentID, err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		case errors.Is(err, refunds.ErrPaymentNotFound):
			h.logger.Warn("POST /payments/{id}/refund-requests - Payment not found: payment_id=%d", paymentID)
			handlers.RespondNotFound(w, msgPaymentNotFound)

		case errors.Is(err, refunds.ErrAccessDenied):
			h.logger.Warn("POST /payments/{id}/refund-requests - Access denied: payment_id=%d, user_id=%d",
				paymentID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, refunds.ErrPendingRequestExists):
			h.logger.Warn("POST /payments/{id}/refund-requests - Pending request exists: payment_id=%d", paymentID)
			handlers.RespondConflict(w, msgPendingExists)

		case errors.Is(err, refunds.ErrPaymentNotRefundable):
			h.logger.Warn("POST /payments/{id}/refund-requests - Payment not refundable: payment_id=%d", paymentID)
			handlers.RespondConflict(w, msgPaymentNotRefundable)

		case errors.Is(err, refunds.ErrAllSessionsSettled):
			h.logger.Warn("POST /payments/{id}/refund-requests - All sessions settled: payment_id=%d", paymentID)
			handlers.RespondConflict(w, msgAllSettled)

		case errors.Is(err, refunds.ErrRefundExceedsFee):
			h.logger.Warn("POST /payments/{id}/refund-requests - Amount exceeds fee: payment_id=%d, amount=%d",
				paymentID, req.RequestedAmount)
			handlers.RespondBadRequest(w, msgRefundExceedsFee)

		default:
			h.logger.Error("POST /payments/{id}/refund-requests - Failed to create request: payment_id=%d, error=%v",
				paymentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/{id}/refund-requests - Refund request created: request_id=%d, payment_id=%d, user_id=%d",
		request.ID, paymentID, actor.UserID)
	handlers.RespondJSON(w, http.StatusCreated, request)
}
