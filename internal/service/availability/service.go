package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
	"github.com/m04kA/TCM-BookingService/internal/service/availability/models"
	"github.com/m04kA/TCM-BookingService/pkg/types"
)

// Service сервис расписания терапевтов: еженедельные окна,
// выходные дни и массовые операции со слотами
type Service struct {
	therapistRepo TherapistRepository
	slotRepo      TimeSlotRepository
	txManager     TransactionManager
	logger        Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	therapistRepo TherapistRepository,
	slotRepo TimeSlotRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		therapistRepo: therapistRepo,
		slotRepo:      slotRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

// AddWindow добавляет еженедельное окно доступности.
// Окно отклоняется при пересечении с существующим окном того же дня
// недели; проверка выполняется внутри транзакции под блокировкой.
func (s *Service) AddWindow(ctx context.Context, therapistID int64, actor domain.Actor, req *models.AddWindowRequest) (*models.WindowResponse, error) {
	s.logger.Info("AddWindow: adding window for therapist=%d by user=%d", therapistID, actor.UserID)

	if req.Weekday < 0 || req.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be between 0 and 6", ErrInvalidInput)
	}
	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time", ErrInvalidInput)
	}
	end, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end time", ErrInvalidInput)
	}
	if !start.IsBefore(end) {
		return nil, fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
	}

	if err := s.authorizeSchedule(ctx, "AddWindow", actor, therapistID); err != nil {
		return nil, err
	}

	var created *domain.TherapistAvailability
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		windows, err := s.therapistRepo.ListWindows(ctx, therapistID)
		if err != nil {
			s.logger.Error("AddWindow: failed to list windows for therapist=%d: %v", therapistID, err)
			return fmt.Errorf("%w: AddWindow - list windows: %v", ErrInternal, err)
		}

		for _, w := range windows {
			if int(w.Weekday) != req.Weekday {
				continue
			}
			if w.Overlaps(start, end) {
				s.logger.Warn("AddWindow: window [%s,%s) overlaps window id=%d for therapist=%d",
					start, end, w.ID, therapistID)
				return ErrWindowOverlap
			}
		}

		created, err = s.therapistRepo.CreateWindow(ctx, &domain.TherapistAvailability{
			TherapistID: therapistID,
			Weekday:     time.Weekday(req.Weekday),
			StartTime:   start,
			EndTime:     end,
		})
		if err != nil {
			s.logger.Error("AddWindow: failed to create window for therapist=%d: %v", therapistID, err)
			return fmt.Errorf("%w: AddWindow - create window: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("AddWindow: created window id=%d for therapist=%d", created.ID, therapistID)
	return models.FromDomainWindow(created), nil
}

// ListWindows получает еженедельные окна терапевта
func (s *Service) ListWindows(ctx context.Context, therapistID int64) (*models.WindowListResponse, error) {
	s.logger.Info("ListWindows: fetching windows for therapist=%d", therapistID)

	if _, err := s.getTherapist(ctx, "ListWindows", therapistID); err != nil {
		return nil, err
	}

	windows, err := s.therapistRepo.ListWindows(ctx, therapistID)
	if err != nil {
		s.logger.Error("ListWindows: repository error for therapist=%d: %v", therapistID, err)
		return nil, fmt.Errorf("%w: ListWindows - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWindowList(windows), nil
}

// DeleteWindow удаляет окно доступности терапевта
func (s *Service) DeleteWindow(ctx context.Context, therapistID int64, windowID int64, actor domain.Actor) error {
	s.logger.Info("DeleteWindow: deleting window id=%d for therapist=%d by user=%d", windowID, therapistID, actor.UserID)

	if err := s.authorizeSchedule(ctx, "DeleteWindow", actor, therapistID); err != nil {
		return err
	}

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		windows, err := s.therapistRepo.ListWindows(ctx, therapistID)
		if err != nil {
			s.logger.Error("DeleteWindow: failed to list windows for therapist=%d: %v", therapistID, err)
			return fmt.Errorf("%w: DeleteWindow - list windows: %v", ErrInternal, err)
		}

		// Окно должно принадлежать именно этому терапевту
		owned := false
		for _, w := range windows {
			if w.ID == windowID {
				owned = true
				break
			}
		}
		if !owned {
			s.logger.Warn("DeleteWindow: window id=%d does not belong to therapist=%d", windowID, therapistID)
			return ErrWindowNotFound
		}

		if err := s.therapistRepo.DeleteWindow(ctx, windowID); err != nil {
			if errors.Is(err, therapistRepo.ErrWindowNotFound) {
				return ErrWindowNotFound
			}
			s.logger.Error("DeleteWindow: failed to delete window id=%d: %v", windowID, err)
			return fmt.Errorf("%w: DeleteWindow - delete window: %v", ErrInternal, err)
		}

		s.logger.Info("DeleteWindow: deleted window id=%d for therapist=%d", windowID, therapistID)
		return nil
	})
}

// AddHoliday добавляет выходной день.
// Личный выходной добавляет владеющий терапевт или админ; общий
// праздник (shared) - только админ. Уже созданные слоты на эту дату
// помечаются недоступными.
func (s *Service) AddHoliday(ctx context.Context, therapistID int64, actor domain.Actor, req *models.AddHolidayRequest) (*models.HolidayResponse, error) {
	s.logger.Info("AddHoliday: adding holiday for therapist=%d by user=%d, shared=%t", therapistID, actor.UserID, req.Shared)

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", ErrInvalidInput)
	}

	holiday := &domain.HolidayDate{
		Date:        date,
		IsRecurring: req.IsRecurring,
		Reason:      req.Reason,
	}

	if req.Shared {
		if actor.Role != domain.RoleAdmin {
			s.logger.Warn("AddHoliday: shared holiday requires admin, user=%d role=%s", actor.UserID, actor.Role)
			return nil, ErrAccessDenied
		}
	} else {
		if err := s.authorizeSchedule(ctx, "AddHoliday", actor, therapistID); err != nil {
			return nil, err
		}
		holiday.TherapistID = &therapistID
	}

	var created *domain.HolidayDate
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		created, err = s.therapistRepo.CreateHoliday(ctx, holiday)
		if err != nil {
			s.logger.Error("AddHoliday: failed to create holiday: %v", err)
			return fmt.Errorf("%w: AddHoliday - create holiday: %v", ErrInternal, err)
		}

		// Существующие слоты на эту дату закрываются сразу;
		// общий праздник материализуется по слотам при генерации
		if !created.IsShared() {
			if err := s.slotRepo.SetHoliday(ctx, therapistID, date, true); err != nil {
				s.logger.Error("AddHoliday: failed to mark slots for therapist=%d on %s: %v",
					therapistID, req.Date, err)
				return fmt.Errorf("%w: AddHoliday - mark slots: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("AddHoliday: created holiday id=%d", created.ID)
	return models.FromDomainHoliday(created), nil
}

// ListHolidays получает выходные терапевта за период, включая общие праздники
func (s *Service) ListHolidays(ctx context.Context, therapistID int64, from, to time.Time) (*models.HolidayListResponse, error) {
	s.logger.Info("ListHolidays: fetching holidays for therapist=%d", therapistID)

	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}

	holidays, err := s.therapistRepo.ListHolidays(ctx, therapistID, true, from, to)
	if err != nil {
		s.logger.Error("ListHolidays: repository error for therapist=%d: %v", therapistID, err)
		return nil, fmt.Errorf("%w: ListHolidays - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHolidayList(holidays), nil
}

// RemoveSlots массово удаляет слоты терапевта за период.
// Все или ничего: если в периоде есть хотя бы один слот с бронированием,
// операция отклоняется целиком.
func (s *Service) RemoveSlots(ctx context.Context, therapistID int64, actor domain.Actor, req *models.RemoveSlotsRequest) (*models.RemoveSlotsResponse, error) {
	s.logger.Info("RemoveSlots: removing slots for therapist=%d by user=%d", therapistID, actor.UserID)

	from, err := models.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date", ErrInvalidInput)
	}
	to, err := models.ParseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date", ErrInvalidInput)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}

	if err := s.authorizeSchedule(ctx, "RemoveSlots", actor, therapistID); err != nil {
		return nil, err
	}

	var removed int64
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		booked, err := s.slotRepo.HasBookedInRange(ctx, therapistID, from, to)
		if err != nil {
			s.logger.Error("RemoveSlots: failed to check bookings for therapist=%d: %v", therapistID, err)
			return fmt.Errorf("%w: RemoveSlots - check bookings: %v", ErrInternal, err)
		}
		if booked {
			s.logger.Warn("RemoveSlots: range %s..%s for therapist=%d contains booked slots",
				req.StartDate, req.EndDate, therapistID)
			return ErrSlotsBooked
		}

		removed, err = s.slotRepo.DeleteByTherapistRange(ctx, therapistID, from, to)
		if err != nil {
			s.logger.Error("RemoveSlots: failed to delete slots for therapist=%d: %v", therapistID, err)
			return fmt.Errorf("%w: RemoveSlots - delete slots: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("RemoveSlots: removed %d slots for therapist=%d", removed, therapistID)
	return &models.RemoveSlotsResponse{RemovedCount: removed}, nil
}

// Вспомогательные методы

func (s *Service) getTherapist(ctx context.Context, method string, therapistID int64) (*domain.TherapistProfile, error) {
	therapist, err := s.therapistRepo.GetByID(ctx, therapistID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			s.logger.Warn("%s: therapist id=%d not found", method, therapistID)
			return nil, ErrTherapistNotFound
		}
		s.logger.Error("%s: therapist repository error for id=%d: %v", method, therapistID, err)
		return nil, fmt.Errorf("%w: %s - therapist repository error: %v", ErrInternal, method, err)
	}
	return therapist, nil
}

func (s *Service) authorizeSchedule(ctx context.Context, method string, actor domain.Actor, therapistID int64) error {
	therapist, err := s.getTherapist(ctx, method, therapistID)
	if err != nil {
		return err
	}
	if err := domain.AuthorizeScheduleChange(actor, therapist.UserID); err != nil {
		s.logger.Warn("%s: access denied for user=%d role=%s to therapist=%d", method, actor.UserID, actor.Role, therapistID)
		return ErrAccessDenied
	}
	return nil
}
