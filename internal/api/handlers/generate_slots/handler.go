package generate_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	generateSlots "github.com/m04kA/TCM-BookingService/internal/usecase/generate_slots"
)

const (
	msgInvalidTherapistID = "некорректный ID терапевта"
	msgInvalidBody        = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgForbidden          = "доступ запрещен"
	msgTherapistNotFound  = "терапевт не найден"
	msgNoWindows          = "у терапевта нет еженедельных окон доступности"
	msgInvalidRange       = "некорректный период генерации"
	msgRangeTooWide       = "период генерации слишком широкий"
)

type Handler struct {
	useCase GenerateSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GenerateSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/therapists/{therapistId}/slots/generate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	therapistID, err := strconv.ParseInt(vars["therapistId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /therapists/{id}/slots/generate - Invalid therapist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTherapistID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /therapists/{id}/slots/generate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(therapistID)
	if err != nil {
		h.logger.Warn("POST /therapists/{id}/slots/generate - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), actor, useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, generateSlots.ErrTherapistNotFound):
			h.logger.Warn("POST /therapists/{id}/slots/generate - Therapist not found: therapist_id=%d", therapistID)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, generateSlots.ErrAccessDenied):
			h.logger.Warn("POST /therapists/{id}/slots/generate - Access denied: therapist_id=%d, user_id=%d",
				therapistID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, generateSlots.ErrNoWindows):
			h.logger.Warn("POST /therapists/{id}/slots/generate - No windows: therapist_id=%d", therapistID)
			handlers.RespondConflict(w, msgNoWindows)

		case errors.Is(err, generateSlots.ErrRangeTooWide):
			h.logger.Warn("POST /therapists/{id}/slots/generate - Range too wide: therapist_id=%d", therapistID)
			handlers.RespondBadRequest(w, msgRangeTooWide)

		case errors.Is(err, generateSlots.ErrInvalidRange), errors.Is(err, generateSlots.ErrInvalidInput):
			h.logger.Warn("POST /therapists/{id}/slots/generate - Invalid range: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("POST /therapists/{id}/slots/generate - Failed to generate slots: therapist_id=%d, error=%v",
				therapistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /therapists/{id}/slots/generate - Slots generated: therapist_id=%d, created=%d, skipped=%d",
		therapistID, result.CreatedCount, result.SkippedCount)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
