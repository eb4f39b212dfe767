package get_therapist_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/internal/service/bookings"
	"github.com/m04kA/TCM-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidTherapistID = "некорректный ID терапевта"
	msgInvalidDate        = "некорректная дата фильтра"
	msgInvalidRange       = "некорректный период запроса"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgNotFound           = "терапевт не найден"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/therapists/{therapistId}/bookings?startDate=...&endDate=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	therapistID, err := strconv.ParseInt(vars["therapistId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /therapists/{id}/bookings - Invalid therapist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTherapistID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	req := &models.GetTherapistBookingsRequest{TherapistID: therapistID}
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.StartDate = &date
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		// Конец периода включительно
		end := date.Add(24*time.Hour - time.Second)
		req.EndDate = &end
	}

	resp, err := h.service.GetTherapistBookings(r.Context(), req, actor)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrTherapistNotFound):
			h.logger.Warn("GET /therapists/{id}/bookings - Therapist not found: therapist_id=%d", therapistID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /therapists/{id}/bookings - Access denied: therapist_id=%d, user_id=%d",
				therapistID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /therapists/{id}/bookings - Failed to get bookings: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
