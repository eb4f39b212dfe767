package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/TCM-BookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidTherapistID   = "некорректный ID терапевта"
	msgMissingDates         = "параметры startDate и endDate обязательны"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgTherapistNotFound    = "терапевт не найден"
	msgTherapistNotBookable = "терапевт недоступен для бронирования"
	msgInvalidRange         = "некорректный период запроса"
	msgRangeTooWide         = "период запроса слишком широкий"
	msgInvalidIncludePublic = "некорректное значение includePublic"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/therapists/{therapistId}/available-slots
// Query params: startDate (required), endDate (required), YYYY-MM-DD;
// includePublic (optional, default true) учитывает общие праздники
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	therapistID, err := strconv.ParseInt(vars["therapistId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /therapists/{id}/available-slots - Invalid therapist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTherapistID)
		return
	}

	startDateStr := r.URL.Query().Get("startDate")
	endDateStr := r.URL.Query().Get("endDate")
	if startDateStr == "" || endDateStr == "" {
		h.logger.Warn("GET /therapists/{id}/available-slots - Missing date range: therapist_id=%d", therapistID)
		handlers.RespondBadRequest(w, msgMissingDates)
		return
	}

	includePublic := true
	if raw := r.URL.Query().Get("includePublic"); raw != "" {
		includePublic, err = strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /therapists/{id}/available-slots - Invalid includePublic=%q: therapist_id=%d", raw, therapistID)
			handlers.RespondBadRequest(w, msgInvalidIncludePublic)
			return
		}
	}

	useCaseReq, err := ToUseCaseRequest(therapistID, startDateStr, endDateStr, includePublic)
	if err != nil {
		h.logger.Warn("GET /therapists/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrTherapistNotFound):
			h.logger.Warn("GET /therapists/{id}/available-slots - Therapist not found: therapist_id=%d", therapistID)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, getAvailableSlots.ErrTherapistNotBookable):
			h.logger.Warn("GET /therapists/{id}/available-slots - Therapist not bookable: therapist_id=%d", therapistID)
			handlers.RespondConflict(w, msgTherapistNotBookable)

		case errors.Is(err, getAvailableSlots.ErrRangeTooWide):
			h.logger.Warn("GET /therapists/{id}/available-slots - Range too wide: therapist_id=%d", therapistID)
			handlers.RespondBadRequest(w, msgRangeTooWide)

		case errors.Is(err, getAvailableSlots.ErrInvalidRange), errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /therapists/{id}/available-slots - Invalid range: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /therapists/{id}/available-slots - Failed to get slots: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /therapists/{id}/available-slots - Slots retrieved: therapist_id=%d, slots_count=%d",
		therapistID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
