package add_holiday

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
	msgInvalidHoliday     = "некорректные параметры выходного дня"
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

// Handle POST /api/v1/therapists/{therapistId}/holidays
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	therapistID, err := strconv.ParseInt(vars["therapistId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /therapists/{id}/holidays - Invalid therapist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTherapistID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.AddHolidayRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /therapists/{id}/holidays - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	holiday, err := h.service.AddHoliday(r.Context(), therapistID, actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("POST /therapists/{id}/holidays - Invalid input: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondBadRequest(w, msgInvalidHoliday)

		case errors.Is(err, availability.ErrTherapistNotFound):
			h.logger.Warn("POST /therapists/{id}/holidays - Therapist not found: therapist_id=%d", therapistID)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("POST /therapists/{id}/holidays - Access denied: therapist_id=%d, user_id=%d",
				therapistID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /therapists/{id}/holidays - Failed to add holiday: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /therapists/{id}/holidays - Holiday added: holiday_id=%d, therapist_id=%d, date=%s",
		holiday.ID, therapistID, holiday.Date)
	handlers.RespondJSON(w, http.StatusCreated, holiday)
}
