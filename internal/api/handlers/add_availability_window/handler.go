package add_availability_window

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/service/availability"
	"github.com/m04kA/TCM-BookingService/internal/service/availability/models"
)

const (
	msgInvalidTherapistID = "некорректный ID терапевта"
	msgInvalidBody        = "некорректное тело запроса"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgForbidden          = "доступ запрещен"
	msgTherapistNotFound  = "терапевт не найден"
	msgWindowOverlap      = "окно пересекается с существующим окном этого дня недели"
	msgInvalidWindow      = "некорректные параметры окна доступности"
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

// Handle POST /api/v1/therapists/{therapistId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	therapistID, err := strconv.ParseInt(vars["therapistId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /therapists/{id}/availability - Invalid therapist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTherapistID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.AddWindowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /therapists/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	window, err := h.service.AddWindow(r.Context(), therapistID, actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("POST /therapists/{id}/availability - Invalid input: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		case errors.Is(err, availability.ErrTherapistNotFound):
			h.logger.Warn("POST /therapists/{id}/availability - Therapist not found: therapist_id=%d", therapistID)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("POST /therapists/{id}/availability - Access denied: therapist_id=%d, user_id=%d",
				therapistID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrWindowOverlap):
			h.logger.Warn("POST /therapists/{id}/availability - Window overlap: therapist_id=%d, weekday=%d",
				therapistID, req.Weekday)
			handlers.RespondConflict(w, msgWindowOverlap)

		default:
			h.logger.Error("POST /therapists/{id}/availability - Failed to add window: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /therapists/{id}/availability - Window added: window_id=%d, therapist_id=%d, weekday=%d",
		window.ID, therapistID, req.Weekday)
	handlers.RespondJSON(w, http.StatusCreated, window)
}
