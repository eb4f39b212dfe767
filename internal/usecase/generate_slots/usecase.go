package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
)

// UseCase use case материализации слотов: еженедельные окна терапевта
// разворачиваются в календарные слоты за период, минуя выходные.
// Повторный запуск за тот же период идемпотентен: существующие слоты
// не пересоздаются.
type UseCase struct {
	slotRepo        TimeSlotRepository
	therapistRepo   TherapistRepository
	txManager       TransactionManager
	timeProvider    TimeProvider
	sessionDuration int
	bufferMinutes   int
	maxRangeDays    int
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo TimeSlotRepository,
	therapistRepo TherapistRepository,
	txManager TransactionManager,
	sessionDuration int,
	bufferMinutes int,
	maxRangeDays int,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:        slotRepo,
		therapistRepo:   therapistRepo,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		sessionDuration: sessionDuration,
		bufferMinutes:   bufferMinutes,
		maxRangeDays:    maxRangeDays,
		logger:          logger,
	}
}

// Execute генерирует слоты терапевта за период
func (uc *UseCase) Execute(ctx context.Context, actor domain.Actor, req *Request) (*Response, error) {
	uc.logger.Info("GenerateSlots: therapist=%d, range=%s..%s by user=%d",
		req.TherapistID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), actor.UserID)

	// 1. Валидация периода
	if err := uc.validateRequest(req); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Терапевт и права на изменение расписания
	therapist, err := uc.therapistRepo.GetByID(ctx, req.TherapistID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			uc.logger.Warn("GenerateSlots: therapist id=%d not found", req.TherapistID)
			return nil, ErrTherapistNotFound
		}
		uc.logger.Error("GenerateSlots: failed to get therapist id=%d: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: failed to get therapist: %v", ErrInternal, err)
	}
	if err := domain.AuthorizeScheduleChange(actor, therapist.UserID); err != nil {
		uc.logger.Warn("GenerateSlots: access denied for user=%d to therapist=%d", actor.UserID, req.TherapistID)
		return nil, ErrAccessDenied
	}

	// 3. Еженедельные окна
	windows, err := uc.therapistRepo.ListWindows(ctx, req.TherapistID)
	if err != nil {
		uc.logger.Error("GenerateSlots: failed to list windows for therapist=%d: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: failed to list windows: %v", ErrInternal, err)
	}
	if len(windows) == 0 {
		uc.logger.Warn("GenerateSlots: therapist id=%d has no availability windows", req.TherapistID)
		return nil, ErrNoWindows
	}

	// 4. Выходные терапевта вместе с общими праздниками
	holidays, err := uc.therapistRepo.ListHolidays(ctx, req.TherapistID, true, req.StartDate, req.EndDate)
	if err != nil {
		uc.logger.Error("GenerateSlots: failed to list holidays for therapist=%d: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: failed to list holidays: %v", ErrInternal, err)
	}

	resp := &Response{TherapistID: req.TherapistID}

	// 5. Материализация в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		for date := req.StartDate; !date.After(req.EndDate); date = date.AddDate(0, 0, 1) {
			if dateIsHoliday(date, holidays) {
				continue
			}

			for _, w := range windows {
				if w.Weekday != date.Weekday() {
					continue
				}

				created, skipped, err := uc.materializeWindow(txCtx, req.TherapistID, date, w)
				if err != nil {
					return err
				}
				resp.CreatedCount += created
				resp.SkippedCount += skipped
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("GenerateSlots: created=%d, skipped=%d for therapist=%d",
		resp.CreatedCount, resp.SkippedCount, req.TherapistID)
	return resp, nil
}

// materializeWindow нарезает окно на слоты длиной sessionDuration
// с буфером bufferMinutes между соседними слотами
func (uc *UseCase) materializeWindow(ctx context.Context, therapistID int64, date time.Time, w *domain.TherapistAvailability) (created, skipped int, err error) {
	step := uc.sessionDuration + uc.bufferMinutes
	start := w.StartTime

	for {
		end, err := start.AddMinutes(uc.sessionDuration)
		if err != nil || end.IsAfter(w.EndTime) {
			// Остаток окна короче одной сессии
			break
		}

		inserted, err := uc.slotRepo.Create(ctx, &domain.TimeSlot{
			TherapistID: therapistID,
			Date:        date,
			StartTime:   start,
			EndTime:     end,
			IsAvailable: true,
			MaxCapacity: 1,
		})
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to create slot %s %s for therapist=%d: %v",
				date.Format(domain.DateFormat), start, therapistID, err)
			return created, skipped, fmt.Errorf("%w: failed to create slot: %v", ErrInternal, err)
		}
		if inserted {
			created++
		} else {
			skipped++
		}

		next, err := start.AddMinutes(step)
		if err != nil {
			break
		}
		start = next
	}

	return created, skipped, nil
}

func (uc *UseCase) validateRequest(req *Request) error {
	if req.TherapistID <= 0 {
		return fmt.Errorf("%w: therapistID must be positive", ErrInvalidInput)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if req.EndDate.Before(req.StartDate) {
		return ErrInvalidRange
	}

	now := uc.timeProvider.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.StartDate.Before(today) {
		return fmt.Errorf("%w: cannot generate slots in the past", ErrInvalidRange)
	}

	if uc.maxRangeDays > 0 {
		maxEnd := req.StartDate.AddDate(0, 0, uc.maxRangeDays)
		if req.EndDate.After(maxEnd) {
			return fmt.Errorf("%w: at most %d days per request", ErrRangeTooWide, uc.maxRangeDays)
		}
	}

	return nil
}

func dateIsHoliday(date time.Time, holidays []*domain.HolidayDate) bool {
	for _, h := range holidays {
		if h.AppliesTo(date) {
			return true
		}
	}
	return false
}
