package remove_slots

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
	msgSlotsBooked        = "в периоде есть слоты с активными бронированиями"
	msgInvalidRange       = "некорректный период удаления"
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

// Handle DELETE /api/v1/therapists/{therapistId}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	therapistID, err := strconv.ParseInt(vars["therapistId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /therapists/{id}/slots - Invalid therapist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTherapistID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.RemoveSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("DELETE /therapists/{id}/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	result, err := h.service.RemoveSlots(r.Context(), therapistID, actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("DELETE /therapists/{id}/slots - Invalid range: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, availability.ErrTherapistNotFound):
			h.logger.Warn("DELETE /therapists/{id}/slots - Therapist not found: therapist_id=%d", therapistID)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("DELETE /therapists/{id}/slots - Access denied: therapist_id=%d, user_id=%d",
				therapistID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrSlotsBooked):
			h.logger.Warn("DELETE /therapists/{id}/slots - Booked slots in range: therapist_id=%d", therapistID)
			handlers.RespondConflict(w, msgSlotsBooked)

		default:
			h.logger.Error("DELETE /therapists/{id}/slots - Failed to remove slots: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /therapists/{id}/slots - Slots removed: therapist_id=%d, removed=%d",
		therapistID, result.RemovedCount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
