package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	paymentRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/payment"
	"github.com/m04kA/TCM-BookingService/internal/integrations/notifier"
	"github.com/m04kA/TCM-BookingService/internal/service/payments/models"
)

// Service сервис для работы с платежами
type Service struct {
	paymentRepo PaymentRepository
	bookingRepo BookingRepository
	slotRepo    TimeSlotRepository
	txManager   TransactionManager
	notifier    Notifier
	logger      Logger
}

// NewService создает новый экземпляр сервиса платежей
func NewService(
	paymentRepo PaymentRepository,
	bookingRepo BookingRepository,
	slotRepo TimeSlotRepository,
	txManager TransactionManager,
	notifierClient Notifier,
	logger Logger,
) *Service {
	return &Service{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		txManager:   txManager,
		notifier:    notifierClient,
		logger:      logger,
	}
}

// GetByID получает платеж по ID.
// Родитель видит только свои платежи, админ - любые.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.PaymentResponse, error) {
	s.logger.Info("GetByID: fetching payment id=%d for user=%d", id, actor.UserID)

	payment, err := s.getPayment(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin && payment.UserID != actor.UserID {
		s.logger.Warn("GetByID: access denied for user=%d to payment id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainPayment(payment), nil
}

// ConfirmTransfer подтверждает поступление банковского перевода.
// Перевод платежа из PENDING_PAYMENT в PAID открывает терапевту
// возможность подтверждать бронирования группы.
func (s *Service) ConfirmTransfer(ctx context.Context, id int64, actor domain.Actor) error {
	s.logger.Info("ConfirmTransfer: confirming transfer for payment id=%d by user=%d", id, actor.UserID)

	if err := domain.Authorize(actor, domain.ActionConfirmTransfer, 0); err != nil {
		s.logger.Warn("ConfirmTransfer: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return ErrAccessDenied
	}

	if err := s.paymentRepo.ConfirmTransfer(ctx, id); err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Warn("ConfirmTransfer: payment id=%d not found", id)
			return ErrPaymentNotFound
		}
		if errors.Is(err, paymentRepo.ErrIllegalPaymentStatus) {
			s.logger.Warn("ConfirmTransfer: payment id=%d is not awaiting transfer", id)
			return ErrAlreadyPaid
		}
		s.logger.Error("ConfirmTransfer: repository error for payment id=%d: %v", id, err)
		return fmt.Errorf("%w: ConfirmTransfer - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ConfirmTransfer: payment id=%d is paid", id)
	return nil
}

// Refund применяет возврат по платежу.
// Поддерживает частичные возвраты несколькими вызовами; сумма возвратов
// ограничена finalFee. Все незапущенные бронирования платежа каскадно
// отменяются с освобождением слотов.
func (s *Service) Refund(ctx context.Context, id int64, actor domain.Actor, req *models.RefundPaymentRequest) (*models.PaymentResponse, error) {
	s.logger.Info("Refund: refunding payment id=%d, amount=%d by user=%d", id, req.Amount, actor.UserID)

	if err := domain.Authorize(actor, domain.ActionRefundPayment, 0); err != nil {
		s.logger.Warn("Refund: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return nil, ErrAccessDenied
	}

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: refund amount must be positive", ErrInvalidInput)
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: refund reason is required", ErrInvalidInput)
	}

	var updated *domain.Payment
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		payment, err := s.getPayment(ctx, "Refund", id)
		if err != nil {
			return err
		}

		updated, err = s.paymentRepo.ApplyRefund(ctx, payment.ID, req.Amount)
		if err != nil {
			if errors.Is(err, paymentRepo.ErrRefundExceedsFee) {
				s.logger.Warn("Refund: amount=%d exceeds remaining refundable for payment id=%d", req.Amount, id)
				return ErrRefundExceedsFee
			}
			s.logger.Error("Refund: failed to apply refund for payment id=%d: %v", id, err)
			return fmt.Errorf("%w: Refund - apply refund: %v", ErrInternal, err)
		}

		bookings, err := s.bookingRepo.ListByPaymentID(ctx, payment.ID)
		if err != nil {
			s.logger.Error("Refund: failed to list bookings for payment id=%d: %v", id, err)
			return fmt.Errorf("%w: Refund - list bookings: %v", ErrInternal, err)
		}

		// Незапущенные сессии отменяются каскадно; возврат уже учтен
		// на платеже, поэтому refundAmount бронирования остается нулевым
		for _, b := range bookings {
			if !b.IsUnstarted() {
				continue
			}
			if err := s.bookingRepo.Cancel(ctx, b.ID, actor.UserID, req.Reason, 0); err != nil {
				s.logger.Error("Refund: failed to cancel booking id=%d: %v", b.ID, err)
				return fmt.Errorf("%w: Refund - cascade cancel booking: %v", ErrInternal, err)
			}
			if err := s.slotRepo.Release(ctx, b.TimeSlotID); err != nil {
				s.logger.Error("Refund: failed to release slot id=%d: %v", b.TimeSlotID, err)
				return fmt.Errorf("%w: Refund - release slot: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifier.Event{
		Type:        notifier.EventBookingRefunded,
		UserID:      updated.UserID,
		TherapistID: updated.TherapistID,
		Message:     fmt.Sprintf("payment refunded, amount=%d", req.Amount),
	})

	s.logger.Info("Refund: payment id=%d refunded, amount=%d, status=%s", id, req.Amount, updated.Status)
	return models.FromDomainPayment(updated), nil
}

// Вспомогательные методы

func (s *Service) getPayment(ctx context.Context, method string, id int64) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Warn("%s: payment id=%d not found", method, id)
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("%s: repository error for payment id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return payment, nil
}
