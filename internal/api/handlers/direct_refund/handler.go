package direct_refund

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TCM-BookingService/internal/api/handlers"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgInvalidBody      = "некорректное тело запроса"
	msgUnauthorized     = "пользователь не аутентифицирован"
	msgBookingNotFound  = "бронирование не найдено"
	msgPaymentNotFound  = "платеж не найден"
	msgForbidden        = "доступ запрещен"
	msgNotRefundable    = "бронирование нельзя вернуть в текущем статусе"
	msgPaymentUnpaid    = "платеж не подтвержден, возврат невозможен"
	msgRefundExceedsFee = "сумма возврата превышает сумму платежа"
	msgInvalidRefund    = "некорректные параметры возврата"
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

// Handle POST /api/v1/bookings/{bookingId}/refund
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/refund - Invalid booking ID: %v", err)
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
		h.logger.Warn("POST /bookings/{id}/refund - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	serviceReq := &models.DirectRefundRequest{
		Amount: req.Amount,
		Reason: req.Reason,
	}
	if req.BookingGroupID != nil {
		serviceReq.BookingGroupID = req.BookingGroupID
	} else {
		serviceReq.BookingID = &bookingID
	}

	request, err := h.service.DirectRefund(r.Context(), actor, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, refunds.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/refund - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidRefund)

		case errors.Is(err, refunds.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/refund - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, refunds.ErrPaymentNotFound):
			h.logger.Warn("POST /bookings/{id}/refund - Payment not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgPaymentNotFound)

		case errors.Is(err, refunds.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/refund - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, refunds.ErrPaymentNotRefundable):
			h.logger.Warn("POST /bookings/{id}/refund - Payment not refundable: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgPaymentUnpaid)

		case errors.Is(err, refunds.ErrNotRefundable):
			h.logger.Warn("POST /bookings/{id}/refund - Booking not refundable: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotRefundable)

		case errors.Is(err, refunds.ErrRefundExceedsFee):
			h.logger.Warn("POST /bookings/{id}/refund - Refund exceeds fee: booking_id=%d, amount=%d",
				bookingID, req.Amount)
			handlers.RespondConflict(w, msgRefundExceedsFee)

		default:
			h.logger.Error("POST /bookings/{id}/refund - Failed to refund: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/refund - Direct refund applied: request_id=%d, booking_id=%d, admin_id=%d",
		request.ID, bookingID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, request)
}
