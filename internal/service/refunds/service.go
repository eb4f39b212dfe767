package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/payment"
	refundRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/refund"
	"github.com/m04kA/TCM-BookingService/internal/integrations/notifier"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds/models"
	"github.com/m04kA/TCM-BookingService/pkg/ptr"
)

// refundableStatuses - статусы, из которых бронирование может быть
// помечено REFUNDED
var refundableStatuses = []domain.BookingStatus{
	domain.StatusPendingConfirmation,
	domain.StatusConfirmed,
	domain.StatusCompleted,
	domain.StatusPendingSettlement,
}

// Service сервис заявок на возврат и прямых возвратов
type Service struct {
	refundRepo  RefundRepository
	paymentRepo PaymentRepository
	bookingRepo BookingRepository
	slotRepo    TimeSlotRepository
	txManager   TransactionManager
	notifier    Notifier
	logger      Logger
}

// NewService создает новый экземпляр сервиса возвратов
func NewService(
	refundRepo RefundRepository,
	paymentRepo PaymentRepository,
	bookingRepo BookingRepository,
	slotRepo TimeSlotRepository,
	txManager TransactionManager,
	notifierClient Notifier,
	logger Logger,
) *Service {
	return &Service{
		refundRepo:  refundRepo,
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		txManager:   txManager,
		notifier:    notifierClient,
		logger:      logger,
	}
}

// CreateRequest создает заявку родителя на возврат по платежу.
// Заявка отклоняется, если платеж уже в возврате, если все сессии
// дошли до выплаты или если по платежу уже есть PENDING-заявка.
func (s *Service) CreateRequest(ctx context.Context, actor domain.Actor, req *models.CreateRefundRequestRequest) (*models.RefundRequestResponse, error) {
	s.logger.Info("CreateRequest: creating refund request for payment id=%d by user=%d", req.PaymentID, actor.UserID)

	if len(req.Reason) < domain.MinRefundReasonLength {
		return nil, fmt.Errorf("%w: reason must be at least %d characters", ErrInvalidInput, domain.MinRefundReasonLength)
	}
	if req.RequestedAmount <= 0 {
		return nil, fmt.Errorf("%w: requested amount must be positive", ErrInvalidInput)
	}

	var created *domain.RefundRequest
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		payment, err := s.getPayment(ctx, "CreateRequest", req.PaymentID)
		if err != nil {
			return err
		}

		if err := domain.Authorize(actor, domain.ActionRequestRefund, payment.UserID); err != nil {
			s.logger.Warn("CreateRequest: access denied for user=%d to payment id=%d", actor.UserID, req.PaymentID)
			return ErrAccessDenied
		}

		if payment.Status == domain.PaymentRefunded || payment.Status == domain.PaymentPartiallyRefunded {
			s.logger.Warn("CreateRequest: payment id=%d already in refund, status=%s", payment.ID, payment.Status)
			return ErrPaymentNotRefundable
		}
		if req.RequestedAmount > payment.FinalFee {
			return fmt.Errorf("%w: requested amount exceeds final fee", ErrInvalidInput)
		}

		bookings, err := s.bookingRepo.ListByPaymentID(ctx, payment.ID)
		if err != nil {
			s.logger.Error("CreateRequest: failed to list bookings for payment id=%d: %v", payment.ID, err)
			return fmt.Errorf("%w: CreateRequest - list bookings: %v", ErrInternal, err)
		}
		if allSettlementBound(bookings) {
			s.logger.Warn("CreateRequest: all bookings of payment id=%d are settlement-bound", payment.ID)
			return ErrAllSessionsSettled
		}

		hasPending, err := s.refundRepo.HasPending(ctx, payment.ID)
		if err != nil {
			s.logger.Error("CreateRequest: failed to check pending requests for payment id=%d: %v", payment.ID, err)
			return fmt.Errorf("%w: CreateRequest - check pending: %v", ErrInternal, err)
		}
		if hasPending {
			s.logger.Warn("CreateRequest: pending request already exists for payment id=%d", payment.ID)
			return ErrPendingRequestExists
		}

		created, err = s.refundRepo.Create(ctx, &domain.RefundRequest{
			PublicID:        uuid.New(),
			PaymentID:       payment.ID,
			RequestedBy:     actor.UserID,
			Reason:          req.Reason,
			RequestedAmount: req.RequestedAmount,
			Status:          domain.RefundRequestPending,
		})
		if err != nil {
			if errors.Is(err, refundRepo.ErrPendingRequestExists) {
				return ErrPendingRequestExists
			}
			s.logger.Error("CreateRequest: failed to create request for payment id=%d: %v", payment.ID, err)
			return fmt.Errorf("%w: CreateRequest - create request: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:    notifier.EventRefundRequested,
		UserID:  actor.UserID,
		Message: fmt.Sprintf("refund request %s created", created.PublicID),
	})

	s.logger.Info("CreateRequest: created refund request id=%d for payment id=%d", created.ID, req.PaymentID)
	return models.FromDomainRefundRequest(created), nil
}

// GetByID получает заявку на возврат.
// Родитель видит только свои заявки, админ - любые.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.RefundRequestResponse, error) {
	s.logger.Info("GetByID: fetching refund request id=%d for user=%d", id, actor.UserID)

	request, err := s.getRequest(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin && request.RequestedBy != actor.UserID {
		s.logger.Warn("GetByID: access denied for user=%d to refund request id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainRefundRequest(request), nil
}

// Approve одобряет заявку на возврат.
// Указанное бронирование помечается REFUNDED с одобренной суммой (не
// запрошенной), возврат ложится на платеж, незапущенный слот освобождается.
func (s *Service) Approve(ctx context.Context, requestID int64, actor domain.Actor, req *models.ApproveRefundRequest) (*models.RefundRequestResponse, error) {
	s.logger.Info("Approve: approving refund request id=%d by user=%d", requestID, actor.UserID)

	if err := domain.Authorize(actor, domain.ActionReviewRefund, 0); err != nil {
		s.logger.Warn("Approve: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return nil, ErrAccessDenied
	}
	if req.ApprovedAmount <= 0 {
		return nil, fmt.Errorf("%w: approved amount must be positive", ErrInvalidInput)
	}

	var updated *domain.RefundRequest
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		request, err := s.getRequest(ctx, "Approve", requestID)
		if err != nil {
			return err
		}
		if !request.IsPending() {
			s.logger.Warn("Approve: refund request id=%d is not pending, status=%s", requestID, request.Status)
			return ErrRequestNotPending
		}

		bookingID := request.BookingID
		if bookingID == nil {
			bookingID = req.BookingID
		}
		if bookingID == nil {
			return fmt.Errorf("%w: booking id is required to approve", ErrInvalidInput)
		}

		booking, err := s.getBooking(ctx, "Approve", *bookingID)
		if err != nil {
			return err
		}
		if booking.PaymentID != request.PaymentID {
			return fmt.Errorf("%w: booking does not belong to the request's payment", ErrInvalidInput)
		}

		if err := s.bookingRepo.MarkRefunded(ctx, booking.ID, req.ApprovedAmount, request.Reason, actor.UserID, refundableStatuses); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusConflict) {
				s.logger.Warn("Approve: booking id=%d cannot be refunded", booking.ID)
				return ErrNotRefundable
			}
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Approve: failed to mark booking id=%d refunded: %v", booking.ID, err)
			return fmt.Errorf("%w: Approve - mark refunded: %v", ErrInternal, err)
		}

		if _, err := s.paymentRepo.ApplyRefund(ctx, request.PaymentID, req.ApprovedAmount); err != nil {
			if errors.Is(err, paymentRepo.ErrRefundExceedsFee) {
				s.logger.Warn("Approve: approved amount=%d exceeds remaining refundable for payment id=%d",
					req.ApprovedAmount, request.PaymentID)
				return ErrRefundExceedsFee
			}
			s.logger.Error("Approve: failed to apply refund for payment id=%d: %v", request.PaymentID, err)
			return fmt.Errorf("%w: Approve - apply refund: %v", ErrInternal, err)
		}

		if booking.IsUnstarted() {
			if err := s.slotRepo.Release(ctx, booking.TimeSlotID); err != nil {
				s.logger.Error("Approve: failed to release slot id=%d: %v", booking.TimeSlotID, err)
				return fmt.Errorf("%w: Approve - release slot: %v", ErrInternal, err)
			}
		}

		if err := s.refundRepo.Approve(ctx, requestID, booking.ID, req.ApprovedAmount, actor.UserID); err != nil {
			if errors.Is(err, refundRepo.ErrRequestNotPending) {
				return ErrRequestNotPending
			}
			s.logger.Error("Approve: failed to approve request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: Approve - approve request: %v", ErrInternal, err)
		}

		updated, err = s.refundRepo.GetByID(ctx, requestID)
		if err != nil {
			s.logger.Error("Approve: failed to reload request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: Approve - reload request: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:    notifier.EventRefundDecided,
		UserID:  updated.RequestedBy,
		Message: fmt.Sprintf("refund request %s approved", updated.PublicID),
	})

	s.logger.Info("Approve: refund request id=%d approved, amount=%d", requestID, req.ApprovedAmount)
	return models.FromDomainRefundRequest(updated), nil
}

// Reject отклоняет заявку на возврат; бронирование не меняется
func (s *Service) Reject(ctx context.Context, requestID int64, actor domain.Actor, req *models.RejectRefundRequest) (*models.RefundRequestResponse, error) {
	s.logger.Info("Reject: rejecting refund request id=%d by user=%d", requestID, actor.UserID)

	if err := domain.Authorize(actor, domain.ActionReviewRefund, 0); err != nil {
		s.logger.Warn("Reject: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return nil, ErrAccessDenied
	}
	if req.RejectionReason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}

	var updated *domain.RefundRequest
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.refundRepo.Reject(ctx, requestID, req.RejectionReason, actor.UserID); err != nil {
			if errors.Is(err, refundRepo.ErrRequestNotFound) {
				s.logger.Warn("Reject: refund request id=%d not found", requestID)
				return ErrRequestNotFound
			}
			if errors.Is(err, refundRepo.ErrRequestNotPending) {
				s.logger.Warn("Reject: refund request id=%d is not pending", requestID)
				return ErrRequestNotPending
			}
			s.logger.Error("Reject: failed to reject request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: Reject - reject request: %v", ErrInternal, err)
		}

		var err error
		updated, err = s.refundRepo.GetByID(ctx, requestID)
		if err != nil {
			s.logger.Error("Reject: failed to reload request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: Reject - reload request: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:    notifier.EventRefundDecided,
		UserID:  updated.RequestedBy,
		Message: fmt.Sprintf("refund request %s rejected", updated.PublicID),
	})

	s.logger.Info("Reject: refund request id=%d rejected", requestID)
	return models.FromDomainRefundRequest(updated), nil
}

// DirectRefund прямой возврат админом по бронированию или по всей группе.
// Все целевые бронирования помечаются REFUNDED атомарно с одинаковой
// суммой; след решения фиксируется одной заявкой со статусом APPROVED.
func (s *Service) DirectRefund(ctx context.Context, actor domain.Actor, req *models.DirectRefundRequest) (*models.RefundRequestResponse, error) {
	s.logger.Info("DirectRefund: direct refund by user=%d, amount=%d", actor.UserID, req.Amount)

	if err := domain.Authorize(actor, domain.ActionDirectRefund, 0); err != nil {
		s.logger.Warn("DirectRefund: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return nil, ErrAccessDenied
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: refund amount must be positive", ErrInvalidInput)
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: refund reason is required", ErrInvalidInput)
	}
	if req.BookingID == nil && req.BookingGroupID == nil {
		return nil, fmt.Errorf("%w: booking id or booking group id is required", ErrInvalidInput)
	}

	var created *domain.RefundRequest
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		targets, err := s.resolveTargets(ctx, req)
		if err != nil {
			return err
		}

		payment, err := s.getPayment(ctx, "DirectRefund", targets[0].PaymentID)
		if err != nil {
			return err
		}
		if !payment.IsPaid() {
			s.logger.Warn("DirectRefund: payment id=%d is not paid, status=%s", payment.ID, payment.Status)
			return ErrPaymentNotRefundable
		}

		// Все или ничего: одно неподходящее бронирование откатывает
		// весь групповой возврат
		for _, b := range targets {
			if b.Status == domain.StatusRefunded {
				s.logger.Warn("DirectRefund: booking id=%d is already refunded", b.ID)
				return ErrNotRefundable
			}
			if err := s.bookingRepo.MarkRefunded(ctx, b.ID, req.Amount, req.Reason, actor.UserID, refundableStatuses); err != nil {
				if errors.Is(err, bookingRepo.ErrStatusConflict) {
					s.logger.Warn("DirectRefund: booking id=%d cannot be refunded, status=%s", b.ID, b.Status)
					return ErrNotRefundable
				}
				s.logger.Error("DirectRefund: failed to mark booking id=%d refunded: %v", b.ID, err)
				return fmt.Errorf("%w: DirectRefund - mark refunded: %v", ErrInternal, err)
			}
			if b.IsUnstarted() {
				if err := s.slotRepo.Release(ctx, b.TimeSlotID); err != nil {
					s.logger.Error("DirectRefund: failed to release slot id=%d: %v", b.TimeSlotID, err)
					return fmt.Errorf("%w: DirectRefund - release slot: %v", ErrInternal, err)
				}
			}
		}

		total := req.Amount * int64(len(targets))
		if _, err := s.paymentRepo.ApplyRefund(ctx, payment.ID, total); err != nil {
			if errors.Is(err, paymentRepo.ErrRefundExceedsFee) {
				s.logger.Warn("DirectRefund: total=%d exceeds remaining refundable for payment id=%d", total, payment.ID)
				return ErrRefundExceedsFee
			}
			s.logger.Error("DirectRefund: failed to apply refund for payment id=%d: %v", payment.ID, err)
			return fmt.Errorf("%w: DirectRefund - apply refund: %v", ErrInternal, err)
		}

		// Самоодобренный след решения: заявка сразу в APPROVED
		created, err = s.refundRepo.Create(ctx, &domain.RefundRequest{
			PublicID:        uuid.New(),
			PaymentID:       payment.ID,
			BookingID:       &targets[0].ID,
			RequestedBy:     actor.UserID,
			Reason:          req.Reason,
			RequestedAmount: total,
			Status:          domain.RefundRequestApproved,
			ApprovedAmount:  &total,
			ProcessedBy:     &actor.UserID,
			ProcessedAt:     ptr.Ptr(time.Now().UTC()),
		})
		if err != nil {
			s.logger.Error("DirectRefund: failed to record refund request: %v", err)
			return fmt.Errorf("%w: DirectRefund - record request: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:    notifier.EventBookingRefunded,
		UserID:  created.RequestedBy,
		Message: fmt.Sprintf("direct refund %s applied", created.PublicID),
	})

	s.logger.Info("DirectRefund: refund recorded, request id=%d", created.ID)
	return models.FromDomainRefundRequest(created), nil
}

// Вспомогательные методы

func (s *Service) resolveTargets(ctx context.Context, req *models.DirectRefundRequest) ([]*domain.Booking, error) {
	if req.BookingID != nil {
		booking, err := s.getBooking(ctx, "DirectRefund", *req.BookingID)
		if err != nil {
			return nil, err
		}
		return []*domain.Booking{booking}, nil
	}

	groupID, err := uuid.Parse(*req.BookingGroupID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking group id", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		s.logger.Error("DirectRefund: failed to list bookings for group=%s: %v", groupID, err)
		return nil, fmt.Errorf("%w: DirectRefund - list group bookings: %v", ErrInternal, err)
	}
	if len(bookings) == 0 {
		s.logger.Warn("DirectRefund: no bookings found for group=%s", groupID)
		return nil, ErrBookingNotFound
	}

	return bookings, nil
}

func (s *Service) getPayment(ctx context.Context, method string, id int64) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Warn("%s: payment id=%d not found", method, id)
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("%s: payment repository error for id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - payment repository error: %v", ErrInternal, method, err)
	}
	return payment, nil
}

func (s *Service) getBooking(ctx context.Context, method string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", method, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: booking repository error for id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - booking repository error: %v", ErrInternal, method, err)
	}
	return booking, nil
}

func (s *Service) getRequest(ctx context.Context, method string, id int64) (*domain.RefundRequest, error) {
	request, err := s.refundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, refundRepo.ErrRequestNotFound) {
			s.logger.Warn("%s: refund request id=%d not found", method, id)
			return nil, ErrRequestNotFound
		}
		s.logger.Error("%s: refund repository error for id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - refund repository error: %v", ErrInternal, method, err)
	}
	return request, nil
}

func allSettlementBound(bookings []*domain.Booking) bool {
	if len(bookings) == 0 {
		return false
	}
	for _, b := range bookings {
		if !isSettlementBound(b.Status) {
			return false
		}
	}
	return true
}

func isSettlementBound(status domain.BookingStatus) bool {
	for _, s := range domain.SettlementBoundStatuses {
		if status == s {
			return true
		}
	}
	return false
}
