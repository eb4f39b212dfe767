package create_review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/service/reviews"
	"github.com/m04kA/TCM-BookingService/internal/service/reviews/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgInvalidBody      = "некорректное тело запроса"
	msgUnauthorized     = "пользователь не аутентифицирован"
	msgBookingNotFound  = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgAlreadyReviewed  = "отзыв по этому бронированию уже оставлен"
	msgNotAllowed       = "отзыв можно оставить только о завершенной сессии в течение 7 дней"
	msgInvalidReview    = "некорректные параметры отзыва"
)

type Handler struct {
	service ReviewService
	logger  Logger
}

func NewHandler(service ReviewService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reviews
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reviews - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reviews - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	serviceReq := &models.CreateReviewRequest{
		BookingID: bookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	review, err := h.service.Create(r.Context(), actor, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/reviews - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidReview)

		case errors.Is(err, reviews.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/reviews - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, reviews.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/reviews - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reviews.ErrAlreadyReviewed):
			h.logger.Warn("POST /bookings/{id}/reviews - Already reviewed: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgAlreadyReviewed)

		case errors.Is(err, reviews.ErrReviewNotAllowed):
			h.logger.Warn("POST /bookings/{id}/reviews - Review not allowed: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotAllowed)

		default:
			h.logger.Error("POST /bookings/{id}/reviews - Failed to create review: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reviews - Review created: review_id=%d, booking_id=%d, user_id=%d",
		review.ID, bookingID, actor.UserID)
	handlers.RespondJSON(w, http.StatusCreated, review)
}
