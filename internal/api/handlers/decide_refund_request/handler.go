package decide_refund_request

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
	msgInvalidRequestID = "некорректный ID заявки"
	msgInvalidBody      = "некорректное тело запроса"
	msgInvalidAction    = "некорректное решение, ожидается approve или reject"
	msgUnauthorized     = "пользователь не аутентифицирован"
	msgRequestNotFound  = "заявка на возврат не найдена"
	msgBookingNotFound  = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgNotPending       = "заявка уже рассмотрена"
	msgNotRefundable    = "бронирование нельзя вернуть в текущем статусе"
	msgRefundExceedsFee = "сумма возврата превышает сумму платежа"
	msgInvalidDecision  = "некорректные параметры решения"
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

// Handle PATCH /api/v1/refund-requests/{requestId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID, err := strconv.ParseInt(vars["requestId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /refund-requests/{id} - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /refund-requests/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	var (
		request    *models.RefundRequestResponse
		serviceErr error
	)

	switch req.Action {
	case actionApprove:
		request, serviceErr = h.service.Approve(r.Context(), requestID, actor, &models.ApproveRefundRequest{
			BookingID:      req.BookingID,
			ApprovedAmount: req.ApprovedAmount,
		})

	case actionReject:
		request, serviceErr = h.service.Reject(r.Context(), requestID, actor, &models.RejectRefundRequest{
			RejectionReason: req.RejectionReason,
		})

	default:
		h.logger.Warn("PATCH /refund-requests/{id} - Invalid action: request_id=%d, action=%q", requestID, req.Action)
		handlers.RespondBadRequest(w, msgInvalidAction)
		return
	}

	if serviceErr != nil {
		switch {
		case errors.Is(serviceErr, refunds.ErrInvalidInput):
			h.logger.Warn("PATCH /refund-requests/{id} - Invalid input: request_id=%d, error=%v",
				requestID, serviceErr)
			handlers.RespondBadRequest(w, msgInvalidDecision)

		case errors.Is(serviceErr, refunds.ErrRequestNotFound):
			h.logger.Warn("PATCH /refund-requests/{id} - Request not found: request_id=%d", requestID)
			handlers.RespondNotFound(w, msgRequestNotFound)

		case errors.Is(serviceErr, refunds.ErrBookingNotFound):
			h.logger.Warn("PATCH /refund-requests/{id} - Booking not found: request_id=%d", requestID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(serviceErr, refunds.ErrAccessDenied):
			h.logger.Warn("PATCH /refund-requests/{id} - Access denied: request_id=%d, user_id=%d",
				requestID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(serviceErr, refunds.ErrRequestNotPending):
			h.logger.Warn("PATCH /refund-requests/{id} - Request not pending: request_id=%d", requestID)
			handlers.RespondConflict(w, msgNotPending)

		case errors.Is(serviceErr, refunds.ErrNotRefundable):
			h.logger.Warn("PATCH /refund-requests/{id} - Booking not refundable: request_id=%d", requestID)
			handlers.RespondConflict(w, msgNotRefundable)

		case errors.Is(serviceErr, refunds.ErrRefundExceedsFee):
			h.logger.Warn("PATCH /refund-requests/{id} - Refund exceeds fee: request_id=%d", requestID)
			handlers.RespondConflict(w, msgRefundExceedsFee)

		default:
			h.logger.Error("PATCH /refund-requests/{id} - Failed to decide request: request_id=%d, action=%s, error=%v",
				requestID, req.Action, serviceErr)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /refund-requests/{id} - Request decided: request_id=%d, action=%s, admin_id=%d",
		requestID, req.Action, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, request)
}
