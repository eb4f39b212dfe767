package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	slotRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/timeslot"
	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
)

// UseCase use case оформления пакета сессий: резервирование слотов,
// расчет стоимости и создание платежа с группой бронирований
type UseCase struct {
	bookingRepo         BookingRepository
	paymentRepo         PaymentRepository
	slotRepo            TimeSlotRepository
	therapistRepo       TherapistRepository
	txManager           TransactionManager
	timeProvider        TimeProvider
	packageDiscountRate int
	platformFeeRate     int
	logger              Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	slotRepo TimeSlotRepository,
	therapistRepo TherapistRepository,
	txManager TransactionManager,
	packageDiscountRate int,
	platformFeeRate int,
	logger Logger,
) *UseCase {
	if platformFeeRate <= 0 {
		platformFeeRate = domain.DefaultSettlementRate
	}
	return &UseCase{
		bookingRepo:         bookingRepo,
		paymentRepo:         paymentRepo,
		slotRepo:            slotRepo,
		therapistRepo:       therapistRepo,
		txManager:           txManager,
		timeProvider:        &RealTimeProvider{},
		packageDiscountRate: packageDiscountRate,
		platformFeeRate:     platformFeeRate,
		logger:              logger,
	}
}

// Execute выполняет оформление пакета.
// Резервирование слотов и создание платежа с бронированиями выполняются
// в одной сериализуемой транзакции: гонка двух родителей за один слот
// разрешается на уровне БД, проигравший получает ErrSlotNotAvailable.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, therapist=%d, type=%s, slots=%d",
		req.UserID, req.TherapistID, req.SessionType, len(req.TimeSlotIDs))

	// 1. Валидация входных данных
	sessionType, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Терапевт должен существовать и быть одобренным
	therapist, err := uc.therapistRepo.GetByID(ctx, req.TherapistID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			uc.logger.Warn("CreateBooking: therapist id=%d not found", req.TherapistID)
			return nil, ErrTherapistNotFound
		}
		uc.logger.Error("CreateBooking: failed to get therapist id=%d: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: failed to get therapist: %v", ErrInternal, err)
	}
	if !therapist.IsBookable() {
		uc.logger.Warn("CreateBooking: therapist id=%d is not bookable, status=%s", req.TherapistID, therapist.Status)
		return nil, ErrTherapistNotBookable
	}

	// 3. Тариф за сессию
	perSessionFee, ok := therapist.FeeFor(sessionType)
	if !ok {
		uc.logger.Warn("CreateBooking: therapist id=%d does not offer %s", req.TherapistID, sessionType)
		return nil, ErrConsultationNotOffered
	}

	// 4. Расчет стоимости пакета
	sessionCount := len(req.TimeSlotIDs)
	originalFee := perSessionFee * int64(sessionCount)
	discountRate := 0
	if sessionType == domain.SessionTherapy && sessionCount > 1 {
		discountRate = uc.packageDiscountRate
	}
	finalFee := domain.ApplyDiscount(originalFee, discountRate)
	platformFee := domain.PlatformFee(finalFee, uc.platformFeeRate)

	var (
		payment  *domain.Payment
		sessions []BookedSession
	)

	// 5. Резервирование и создание в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		groupID := uuid.New()

		reserved := make([]*domain.TimeSlot, 0, sessionCount)
		for _, slotID := range req.TimeSlotIDs {
			slot, err := uc.slotRepo.Reserve(txCtx, slotID)
			if err != nil {
				if errors.Is(err, slotRepo.ErrSlotNotFound) {
					uc.logger.Warn("CreateBooking: slot id=%d not found", slotID)
					return ErrSlotNotFound
				}
				if errors.Is(err, slotRepo.ErrSlotNotAvailable) {
					uc.logger.Warn("CreateBooking: slot id=%d is not available", slotID)
					return ErrSlotNotAvailable
				}
				uc.logger.Error("CreateBooking: failed to reserve slot id=%d: %v", slotID, err)
				return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
			}

			if slot.TherapistID != req.TherapistID {
				uc.logger.Warn("CreateBooking: slot id=%d belongs to therapist=%d, not %d",
					slotID, slot.TherapistID, req.TherapistID)
				return ErrSlotMismatch
			}

			startsAt, err := slot.StartsAt()
			if err != nil {
				uc.logger.Error("CreateBooking: failed to resolve start of slot id=%d: %v", slotID, err)
				return fmt.Errorf("%w: failed to resolve slot start: %v", ErrInternal, err)
			}
			if !startsAt.After(now) {
				uc.logger.Warn("CreateBooking: slot id=%d starts in the past", slotID)
				return ErrSlotInPast
			}

			reserved = append(reserved, slot)
		}

		payment, err = uc.paymentRepo.Create(txCtx, &domain.Payment{
			BookingGroupID: groupID,
			UserID:         req.UserID,
			TherapistID:    req.TherapistID,
			SessionType:    sessionType,
			SessionCount:   sessionCount,
			OriginalFee:    originalFee,
			DiscountRate:   discountRate,
			FinalFee:       finalFee,
			PlatformFee:    platformFee,
			Status:         domain.PaymentPendingPayment,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create payment: %v", err)
			return fmt.Errorf("%w: failed to create payment: %v", ErrInternal, err)
		}

		sessions = make([]BookedSession, 0, sessionCount)
		for i, slot := range reserved {
			startsAt, err := slot.StartsAt()
			if err != nil {
				return fmt.Errorf("%w: failed to resolve slot start: %v", ErrInternal, err)
			}

			booking, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
				BookingGroupID: groupID,
				PaymentID:      payment.ID,
				TherapistID:    req.TherapistID,
				UserID:         req.UserID,
				TimeSlotID:     slot.ID,
				SessionNumber:  i + 1,
				SessionType:    sessionType,
				Status:         domain.StatusPendingConfirmation,
				ScheduledAt:    startsAt,
			})
			if err != nil {
				uc.logger.Error("CreateBooking: failed to create booking for slot id=%d: %v", slot.ID, err)
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}

			sessions = append(sessions, BookedSession{
				BookingID:     booking.ID,
				TimeSlotID:    slot.ID,
				SessionNumber: booking.SessionNumber,
				ScheduledAt:   booking.ScheduledAt,
				Status:        string(booking.Status),
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: created payment id=%d with %d bookings, finalFee=%d",
		payment.ID, sessionCount, finalFee)

	return &Response{
		PaymentID:      payment.ID,
		BookingGroupID: payment.BookingGroupID.String(),
		SessionType:    string(sessionType),
		SessionCount:   sessionCount,
		OriginalFee:    originalFee,
		DiscountRate:   discountRate,
		FinalFee:       finalFee,
		PlatformFee:    platformFee,
		PaymentStatus:  string(payment.Status),
		Sessions:       sessions,
	}, nil
}
