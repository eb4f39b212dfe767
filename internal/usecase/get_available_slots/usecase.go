package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
)

// UseCase use case выдачи свободных слотов терапевта:
// открытые слоты минус выходные минус буферы вокруг занятых слотов
type UseCase struct {
	slotRepo      TimeSlotRepository
	therapistRepo TherapistRepository
	timeProvider  TimeProvider
	maxRangeDays  int
	bufferMinutes int
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo TimeSlotRepository,
	therapistRepo TherapistRepository,
	maxRangeDays int,
	bufferMinutes int,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:      slotRepo,
		therapistRepo: therapistRepo,
		timeProvider:  &RealTimeProvider{},
		maxRangeDays:  maxRangeDays,
		bufferMinutes: bufferMinutes,
		logger:        logger,
	}
}

// Execute возвращает предлагаемые слоты терапевта за период
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: therapist=%d, range=%s..%s",
		req.TherapistID, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"))

	// 1. Валидация периода
	if err := validateRequest(req, uc.maxRangeDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	from := clampStart(req.StartDate, now)
	if req.EndDate.Before(from) {
		// Весь запрошенный период в прошлом
		return &Response{TherapistID: req.TherapistID, Slots: []Slot{}}, nil
	}

	// 2. Терапевт должен существовать и быть одобренным
	therapist, err := uc.therapistRepo.GetByID(ctx, req.TherapistID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			uc.logger.Warn("GetAvailableSlots: therapist id=%d not found", req.TherapistID)
			return nil, ErrTherapistNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get therapist id=%d: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: failed to get therapist: %v", ErrInternal, err)
	}
	if !therapist.IsBookable() {
		uc.logger.Warn("GetAvailableSlots: therapist id=%d is not bookable, status=%s", req.TherapistID, therapist.Status)
		return nil, ErrTherapistNotBookable
	}

	// 3. Все слоты периода: занятые нужны для вычисления буферов
	slots, err := uc.slotRepo.ListByTherapistRange(ctx, req.TherapistID, from, req.EndDate, false)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list slots for therapist=%d: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
	}

	// 4. Выходные терапевта, при IncludePublic вместе с общими праздниками
	holidays, err := uc.therapistRepo.ListHolidays(ctx, req.TherapistID, req.IncludePublic, from, req.EndDate)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list holidays for therapist=%d: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: failed to list holidays: %v", ErrInternal, err)
	}

	// 5. Фильтрация
	offerable := filterOfferable(slots, holidays, uc.bufferMinutes)

	resp := &Response{
		TherapistID: req.TherapistID,
		Slots:       make([]Slot, 0, len(offerable)),
	}
	for _, s := range offerable {
		resp.Slots = append(resp.Slots, fromDomainSlot(s))
	}

	uc.logger.Info("GetAvailableSlots: %d offerable slots for therapist=%d", len(resp.Slots), req.TherapistID)
	return resp, nil
}
