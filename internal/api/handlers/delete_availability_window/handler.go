package delete_availability_window

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/service/availability"
)

const (
	msgInvalidTherapistID = "некорректный ID терапевта"
	msgInvalidWindowID    = "некорректный ID окна доступности"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgForbidden          = "доступ запрещен"
	msgTherapistNotFound  = "терапевт не найден"
	msgWindowNotFound     = "окно доступности не найдено"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/therapists/{therapistId}/availability/{windowId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	therapistID, err := strconv.ParseInt(vars["therapistId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /therapists/{id}/availability/{windowId} - Invalid therapist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTherapistID)
		return
	}

	windowID, err := strconv.ParseInt(vars["windowId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /therapists/{id}/availability/{windowId} - Invalid window ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWindowID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	if err := h.service.DeleteWindow(r.Context(), therapistID, windowID, actor); err != nil {
		switch {
		case errors.Is(err, availability.ErrTherapistNotFound):
			h.logger.Warn("DELETE /therapists/{id}/availability/{windowId} - Therapist not found: therapist_id=%d",
				therapistID)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, availability.ErrWindowNotFound):
			h.logger.Warn("DELETE /therapists/{id}/availability/{windowId} - Window not found: therapist_id=%d, window_id=%d",
				therapistID, windowID)
			handlers.RespondNotFound(w, msgWindowNotFound)

		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("DELETE /therapists/{id}/availability/{windowId} - Access denied: therapist_id=%d, user_id=%d",
				therapistID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /therapists/{id}/availability/{windowId} - Failed to delete window: therapist_id=%d, window_id=%d, error=%v",
				therapistID, windowID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /therapists/{id}/availability/{windowId} - Window deleted: therapist_id=%d, window_id=%d",
		therapistID, windowID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
