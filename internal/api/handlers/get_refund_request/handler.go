package get_refund_request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds"
)

const (
	msgInvalidRequestID = "некорректный ID заявки"
	msgUnauthorized     = "пользователь не аутентифицирован"
	msgNotFound         = "заявка на возврат не найдена"
	msgForbidden        = "доступ запрещен"
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

// Handle GET /api/v1/refund-requests/{requestId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID, err := strconv.ParseInt(vars["requestId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /refund-requests/{id} - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	request, err := h.service.GetByID(r.Context(), requestID, actor)
	if err != nil {
		switch {
		case errors.Is(err, refunds.ErrRequestNotFound):
			h.logger.Warn("GET /refund-requests/{id} - Request not found: request_id=%d", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, refunds.ErrAccessDenied):
			h.logger.Warn("GET /refund-requests/{id} - Access denied: request_id=%d, user_id=%d",
				requestID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /refund-requests/{id} - Failed to get request: request_id=%d, error=%v",
				requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, request)
}
