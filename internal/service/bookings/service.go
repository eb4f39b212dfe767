package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/payment"
	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
	"github.com/m04kA/TCM-BookingService/internal/integrations/notifier"
	"github.com/m04kA/TCM-BookingService/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований
type Service struct {
	bookingRepo    BookingRepository
	paymentRepo    PaymentRepository
	slotRepo       TimeSlotRepository
	therapistRepo  TherapistRepository
	txManager      TransactionManager
	notifier       Notifier
	settlementRate int
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	slotRepo TimeSlotRepository,
	therapistRepo TherapistRepository,
	txManager TransactionManager,
	notifierClient Notifier,
	settlementRate int,
	logger Logger,
) *Service {
	if settlementRate <= 0 {
		settlementRate = domain.DefaultSettlementRate
	}
	return &Service{
		bookingRepo:    bookingRepo,
		paymentRepo:    paymentRepo,
		slotRepo:       slotRepo,
		therapistRepo:  therapistRepo,
		txManager:      txManager,
		notifier:       notifierClient,
		settlementRate: settlementRate,
		logger:         logger,
	}
}

// GetByID получает бронирование по ID.
// Родитель видит только свои бронирования, терапевт - только свои, админ - любые.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d role=%s", id, actor.UserID, actor.Role)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkReadAccess(ctx, booking, actor); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований родителя.
// Опционально фильтрует по статусу.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest, actor domain.Actor) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	if actor.Role != domain.RoleAdmin && actor.UserID != req.UserID {
		s.logger.Warn("GetUserBookings: access denied for user=%d to bookings of user=%d", actor.UserID, req.UserID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.ListByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetTherapistBookings получает расписание терапевта за период
func (s *Service) GetTherapistBookings(ctx context.Context, req *models.GetTherapistBookingsRequest, actor domain.Actor) (*models.BookingListResponse, error) {
	s.logger.Info("GetTherapistBookings: fetching bookings for therapist=%d", req.TherapistID)

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}

	ownerID, err := s.therapistOwner(ctx, "GetTherapistBookings", req.TherapistID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && actor.UserID != ownerID {
		s.logger.Warn("GetTherapistBookings: access denied for user=%d to therapist=%d", actor.UserID, req.TherapistID)
		return nil, ErrAccessDenied
	}

	bookings, err := s.bookingRepo.ListByTherapistID(ctx, req.TherapistID, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Error("GetTherapistBookings: repository error for therapist=%d: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: GetTherapistBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetTherapistBookings: successfully fetched %d bookings for therapist=%d", len(bookings), req.TherapistID)
	return models.FromDomainBookingList(bookings), nil
}

// Confirm подтверждает бронирование терапевтом.
// Допустим только из PENDING_CONFIRMATION и только после оплаты.
func (s *Service) Confirm(ctx context.Context, bookingID int64, actor domain.Actor) error {
	s.logger.Info("Confirm: confirming booking id=%d by user=%d", bookingID, actor.UserID)

	var confirmed *domain.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, "Confirm", bookingID)
		if err != nil {
			return err
		}

		if err := s.authorizeTherapistAction(ctx, "Confirm", actor, domain.ActionConfirmBooking, booking.TherapistID); err != nil {
			return err
		}

		if booking.Status != domain.StatusPendingConfirmation {
			s.logger.Warn("Confirm: booking id=%d has status=%s", bookingID, booking.Status)
			return ErrStatusConflict
		}

		payment, err := s.getPayment(ctx, "Confirm", booking.PaymentID)
		if err != nil {
			return err
		}
		if !payment.IsPaid() {
			s.logger.Warn("Confirm: payment id=%d for booking id=%d is not paid, status=%s",
				payment.ID, bookingID, payment.Status)
			return fmt.Errorf("%w: payment is not confirmed yet", ErrStatusConflict)
		}

		if err := s.bookingRepo.Confirm(ctx, bookingID); err != nil {
			return s.mapTransitionErr("Confirm", bookingID, err)
		}

		confirmed = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:        notifier.EventBookingConfirmed,
		UserID:      confirmed.UserID,
		TherapistID: confirmed.TherapistID,
		BookingID:   bookingID,
		Message:     "booking confirmed by therapist",
	})

	s.logger.Info("Confirm: successfully confirmed booking id=%d", bookingID)
	return nil
}

// Reject отклоняет бронирование терапевтом.
// Освобождает слот; оплаченная сессия возвращается родителю полностью.
func (s *Service) Reject(ctx context.Context, bookingID int64, actor domain.Actor, req *models.RejectBookingRequest) error {
	s.logger.Info("Reject: rejecting booking id=%d by user=%d", bookingID, actor.UserID)

	if req.Reason == "" {
		return fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxRejectionReasonLength {
		return fmt.Errorf("%w: rejection reason is too long", ErrInvalidInput)
	}

	var rejected *domain.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, "Reject", bookingID)
		if err != nil {
			return err
		}

		if err := s.authorizeTherapistAction(ctx, "Reject", actor, domain.ActionRejectBooking, booking.TherapistID); err != nil {
			return err
		}

		if !booking.CanBeRejected() {
			s.logger.Warn("Reject: booking id=%d has status=%s", bookingID, booking.Status)
			return ErrStatusConflict
		}

		payment, err := s.getPayment(ctx, "Reject", booking.PaymentID)
		if err != nil {
			return err
		}

		if err := s.bookingRepo.Reject(ctx, bookingID, req.Reason); err != nil {
			return s.mapTransitionErr("Reject", bookingID, err)
		}

		if payment.IsPaid() {
			refund := payment.PerSessionFee()
			if refund > payment.RemainingRefundable() {
				refund = payment.RemainingRefundable()
			}
			if refund > 0 {
				if _, err := s.paymentRepo.ApplyRefund(ctx, payment.ID, refund); err != nil {
					s.logger.Error("Reject: failed to apply refund for payment id=%d: %v", payment.ID, err)
					return fmt.Errorf("%w: Reject - apply refund: %v", ErrInternal, err)
				}
			}
		}

		if err := s.slotRepo.Release(ctx, booking.TimeSlotID); err != nil {
			s.logger.Error("Reject: failed to release slot id=%d: %v", booking.TimeSlotID, err)
			return fmt.Errorf("%w: Reject - release slot: %v", ErrInternal, err)
		}

		rejected = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:        notifier.EventBookingRejected,
		UserID:      rejected.UserID,
		TherapistID: rejected.TherapistID,
		BookingID:   bookingID,
		Message:     req.Reason,
	})

	s.logger.Info("Reject: successfully rejected booking id=%d", bookingID)
	return nil
}

// Cancel отменяет бронирование родителем.
// Размер возврата зависит от времени до сессии: >=24ч - 100%, 12-24ч - 50%, <12ч - 0.
func (s *Service) Cancel(ctx context.Context, bookingID int64, actor domain.Actor, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, actor.UserID)

	if req.Reason == "" {
		return fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
	}

	var (
		cancelled    *domain.Booking
		refundAmount int64
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, "Cancel", bookingID)
		if err != nil {
			return err
		}

		if err := domain.Authorize(actor, domain.ActionCancelBooking, booking.UserID); err != nil {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", actor.UserID, bookingID)
			return ErrAccessDenied
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return ErrCannotCancel
		}

		payment, err := s.getPayment(ctx, "Cancel", booking.PaymentID)
		if err != nil {
			return err
		}

		hoursUntil := booking.HoursUntilStart(time.Now().UTC())
		refundAmount = domain.CancellationRefund(payment.PerSessionFee(), hoursUntil, payment.IsPaid())
		if refundAmount > payment.RemainingRefundable() {
			refundAmount = payment.RemainingRefundable()
		}

		if err := s.bookingRepo.Cancel(ctx, bookingID, actor.UserID, req.Reason, refundAmount); err != nil {
			return s.mapTransitionErr("Cancel", bookingID, err)
		}

		if refundAmount > 0 {
			if _, err := s.paymentRepo.ApplyRefund(ctx, payment.ID, refundAmount); err != nil {
				s.logger.Error("Cancel: failed to apply refund for payment id=%d: %v", payment.ID, err)
				return fmt.Errorf("%w: Cancel - apply refund: %v", ErrInternal, err)
			}
		}

		if err := s.slotRepo.Release(ctx, booking.TimeSlotID); err != nil {
			s.logger.Error("Cancel: failed to release slot id=%d: %v", booking.TimeSlotID, err)
			return fmt.Errorf("%w: Cancel - release slot: %v", ErrInternal, err)
		}

		cancelled = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:        notifier.EventBookingCancelled,
		UserID:      cancelled.UserID,
		TherapistID: cancelled.TherapistID,
		BookingID:   bookingID,
		Message:     fmt.Sprintf("booking cancelled, refund=%d", refundAmount),
	})

	s.logger.Info("Cancel: successfully cancelled booking id=%d, refund=%d", bookingID, refundAmount)
	return nil
}

// SubmitJournal записывает журнал сессии и переводит бронирование в COMPLETED.
// Отдельного действия "завершить сессию" нет: завершение - side effect записи журнала.
func (s *Service) SubmitJournal(ctx context.Context, bookingID int64, actor domain.Actor, req *models.SubmitJournalRequest) error {
	s.logger.Info("SubmitJournal: submitting journal for booking id=%d by user=%d", bookingID, actor.UserID)

	if req.Journal == "" {
		return fmt.Errorf("%w: journal text is required", ErrInvalidInput)
	}
	if len(req.Journal) > domain.MaxJournalLength {
		return fmt.Errorf("%w: journal text is too long", ErrInvalidInput)
	}

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, "SubmitJournal", bookingID)
		if err != nil {
			return err
		}

		if err := s.authorizeTherapistAction(ctx, "SubmitJournal", actor, domain.ActionSubmitJournal, booking.TherapistID); err != nil {
			return err
		}

		if err := s.bookingRepo.Complete(ctx, bookingID, req.Journal); err != nil {
			return s.mapTransitionErr("SubmitJournal", bookingID, err)
		}

		s.logger.Info("SubmitJournal: booking id=%d completed", bookingID)
		return nil
	})
}

// RequestSettlement переводит завершенную сессию в очередь на выплату
func (s *Service) RequestSettlement(ctx context.Context, bookingID int64, actor domain.Actor) error {
	s.logger.Info("RequestSettlement: requesting settlement for booking id=%d by user=%d", bookingID, actor.UserID)

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, "RequestSettlement", bookingID)
		if err != nil {
			return err
		}

		if err := s.authorizeTherapistAction(ctx, "RequestSettlement", actor, domain.ActionRequestSettlement, booking.TherapistID); err != nil {
			return err
		}

		if err := s.bookingRepo.MarkPendingSettlement(ctx, bookingID); err != nil {
			return s.mapTransitionErr("RequestSettlement", bookingID, err)
		}

		s.logger.Info("RequestSettlement: booking id=%d is pending settlement", bookingID)
		return nil
	})
}

// Settle выплачивает терапевту за сессию и закрывает бронирование.
// Повторный вызов по уже выплаченному бронированию отклоняется.
func (s *Service) Settle(ctx context.Context, bookingID int64, actor domain.Actor) (int64, error) {
	s.logger.Info("Settle: settling booking id=%d by user=%d", bookingID, actor.UserID)

	if err := domain.Authorize(actor, domain.ActionSettleBooking, 0); err != nil {
		s.logger.Warn("Settle: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return 0, ErrAccessDenied
	}

	var (
		settled *domain.Booking
		amount  int64
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, "Settle", bookingID)
		if err != nil {
			return err
		}

		payment, err := s.getPayment(ctx, "Settle", booking.PaymentID)
		if err != nil {
			return err
		}

		therapist, err := s.therapistRepo.GetByID(ctx, booking.TherapistID)
		if err != nil {
			if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
				return ErrTherapistNotFound
			}
			return fmt.Errorf("%w: Settle - therapist repository error: %v", ErrInternal, err)
		}

		amount, err = domain.SettlementAmount(
			booking.SessionType,
			therapist.ConsultationSettlementAmount,
			payment.PerSessionFee(),
			payment.PlatformFeePerSession(),
			s.settlementRate,
		)
		if err != nil {
			if errors.Is(err, domain.ErrConsultationSettlementNotSet) {
				s.logger.Warn("Settle: therapist id=%d has no consultation settlement amount", booking.TherapistID)
				return ErrSettlementNotConfigured
			}
			return fmt.Errorf("%w: Settle - settlement calculation: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.Settle(ctx, bookingID, amount); err != nil {
			return s.mapTransitionErr("Settle", bookingID, err)
		}

		if err := s.paymentRepo.AddSettlement(ctx, payment.ID, amount); err != nil {
			s.logger.Error("Settle: failed to record settlement on payment id=%d: %v", payment.ID, err)
			return fmt.Errorf("%w: Settle - record settlement: %v", ErrInternal, err)
		}

		settled = booking
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:        notifier.EventBookingSettled,
		UserID:      settled.UserID,
		TherapistID: settled.TherapistID,
		BookingID:   bookingID,
		Message:     fmt.Sprintf("settlement completed, amount=%d", amount),
	})

	s.logger.Info("Settle: successfully settled booking id=%d, amount=%d", bookingID, amount)
	return amount, nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, method string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", method, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return booking, nil
}

func (s *Service) getPayment(ctx context.Context, method string, id int64) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Warn("%s: payment id=%d not found", method, id)
			return nil, fmt.Errorf("%w: %s - payment missing", ErrInternal, method)
		}
		s.logger.Error("%s: repository error for payment id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - payment repository error: %v", ErrInternal, method, err)
	}
	return payment, nil
}

func (s *Service) therapistOwner(ctx context.Context, method string, therapistID int64) (int64, error) {
	therapist, err := s.therapistRepo.GetByID(ctx, therapistID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			s.logger.Warn("%s: therapist id=%d not found", method, therapistID)
			return 0, ErrTherapistNotFound
		}
		s.logger.Error("%s: therapist repository error for id=%d: %v", method, therapistID, err)
		return 0, fmt.Errorf("%w: %s - therapist repository error: %v", ErrInternal, method, err)
	}
	return therapist.UserID, nil
}

// authorizeTherapistAction проверяет, что actor - владеющий терапевт или админ
func (s *Service) authorizeTherapistAction(ctx context.Context, method string, actor domain.Actor, action domain.Action, therapistID int64) error {
	ownerID, err := s.therapistOwner(ctx, method, therapistID)
	if err != nil {
		return err
	}
	if err := domain.Authorize(actor, action, ownerID); err != nil {
		s.logger.Warn("%s: access denied for user=%d role=%s to therapist=%d", method, actor.UserID, actor.Role, therapistID)
		return ErrAccessDenied
	}
	return nil
}

// checkReadAccess проверяет доступ на чтение бронирования
func (s *Service) checkReadAccess(ctx context.Context, booking *domain.Booking, actor domain.Actor) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleParent:
		if booking.UserID == actor.UserID {
			return nil
		}
	case domain.RoleTherapist:
		ownerID, err := s.therapistOwner(ctx, "checkReadAccess", booking.TherapistID)
		if err != nil {
			return err
		}
		if ownerID == actor.UserID {
			return nil
		}
	}
	return ErrAccessDenied
}

func (s *Service) mapTransitionErr(method string, bookingID int64, err error) error {
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		s.logger.Warn("%s: booking id=%d not found during update", method, bookingID)
		return ErrBookingNotFound
	}
	if errors.Is(err, bookingRepo.ErrStatusConflict) {
		s.logger.Warn("%s: status conflict for booking id=%d", method, bookingID)
		return ErrStatusConflict
	}
	s.logger.Error("%s: repository error for booking id=%d: %v", method, bookingID, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
}
