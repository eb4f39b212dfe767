package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	createBooking "github.com/m04kA/TCM-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody     = "некорректное тело запроса"
	msgUnauthorized           = "пользователь не аутентифицирован"
	msgInvalidInput           = "некорректные данные бронирования"
	msgTherapistNotFound      = "терапевт не найден"
	msgTherapistNotBookable   = "терапевт недоступен для бронирования"
	msgConsultationNotOffered = "терапевт не проводит консультации"
	msgSlotNotFound           = "временной слот не найден"
	msgSlotNotAvailable       = "выбранный временной слот недоступен"
	msgSlotMismatch           = "временной слот принадлежит другому терапевту"
	msgSlotInPast             = "временной слот уже прошел"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq := req.ToUseCaseRequest(actor.UserID)

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, therapist_id=%d, error=%v",
				actor.UserID, req.TherapistID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrTherapistNotFound):
			h.logger.Warn("POST /bookings - Therapist not found: therapist_id=%d", req.TherapistID)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, createBooking.ErrTherapistNotBookable):
			h.logger.Warn("POST /bookings - Therapist not bookable: therapist_id=%d", req.TherapistID)
			handlers.RespondConflict(w, msgTherapistNotBookable)

		case errors.Is(err, createBooking.ErrConsultationNotOffered):
			h.logger.Warn("POST /bookings - Consultation not offered: therapist_id=%d", req.TherapistID)
			handlers.RespondConflict(w, msgConsultationNotOffered)

		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("POST /bookings - Slot not found: user_id=%d, therapist_id=%d", actor.UserID, req.TherapistID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%d, therapist_id=%d",
				actor.UserID, req.TherapistID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrSlotMismatch):
			h.logger.Warn("POST /bookings - Slot mismatch: user_id=%d, therapist_id=%d", actor.UserID, req.TherapistID)
			handlers.RespondBadRequest(w, msgSlotMismatch)

		case errors.Is(err, createBooking.ErrSlotInPast):
			h.logger.Warn("POST /bookings - Slot in past: user_id=%d, therapist_id=%d", actor.UserID, req.TherapistID)
			handlers.RespondBadRequest(w, msgSlotInPast)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, therapist_id=%d, error=%v",
				actor.UserID, req.TherapistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking package created: payment_id=%d, group_id=%s, user_id=%d, therapist_id=%d",
		result.PaymentID, result.BookingGroupID, actor.UserID, req.TherapistID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
