package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
	"github.com/m04kA/TCM-BookingService/pkg/types"
)

type fakeSlotRepo struct {
	slots []*domain.TimeSlot

	requestedFrom time.Time
}

func (f *fakeSlotRepo) ListByTherapistRange(_ context.Context, _ int64, from, to time.Time, _ bool) ([]*domain.TimeSlot, error) {
	f.requestedFrom = from
	result := make([]*domain.TimeSlot, 0)
	for _, s := range f.slots {
		if s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

type fakeTherapistRepo struct {
	therapist *domain.TherapistProfile
	holidays  []*domain.HolidayDate
}

func (f *fakeTherapistRepo) GetByID(_ context.Context, id int64) (*domain.TherapistProfile, error) {
	if f.therapist == nil || f.therapist.ID != id {
		return nil, therapistRepo.ErrTherapistNotFound
	}
	return f.therapist, nil
}

func (f *fakeTherapistRepo) ListHolidays(_ context.Context, _ int64, includeShared bool, _, _ time.Time) ([]*domain.HolidayDate, error) {
	result := make([]*domain.HolidayDate, 0, len(f.holidays))
	for _, h := range f.holidays {
		if h.IsShared() && !includeShared {
			continue
		}
		result = append(result, h)
	}
	return result, nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (p fixedTimeProvider) Now() time.Time {
	return p.now
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func day(daysAhead int) time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysAhead)
}

func slot(id int64, date time.Time, start, end string, booked int) *domain.TimeSlot {
	return &domain.TimeSlot{
		ID:              id,
		TherapistID:     7,
		Date:            date,
		StartTime:       types.TimeString(start),
		EndTime:         types.TimeString(end),
		IsAvailable:     true,
		CurrentBookings: booked,
		MaxCapacity:     1,
	}
}

func newUsecase(slots *fakeSlotRepo, therapists *fakeTherapistRepo) *UseCase {
	uc := NewUseCase(slots, therapists, 31, 15, noopLogger{})
	uc.timeProvider = fixedTimeProvider{now: testNow}
	return uc
}

func approvedTherapist() *domain.TherapistProfile {
	return &domain.TherapistProfile{ID: 7, UserID: 10, Status: domain.ApprovalApproved, SessionFee: 100000}
}

func TestUseCase_Execute_ReturnsOpenSlots(t *testing.T) {
	slots := &fakeSlotRepo{slots: []*domain.TimeSlot{
		slot(1, day(1), "10:00", "11:00", 0),
		slot(2, day(1), "14:00", "15:00", 0),
		slot(3, day(2), "10:00", "11:00", 0),
	}}
	uc := newUsecase(slots, &fakeTherapistRepo{therapist: approvedTherapist()})

	resp, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(1), EndDate: day(7)})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "2026-09-02", resp.Slots[0].Date)
	assert.Equal(t, "10:00", resp.Slots[0].StartTime)
}

func TestUseCase_Execute_ExcludesClosedSlots(t *testing.T) {
	full := slot(2, day(1), "14:00", "15:00", 1)
	closed := slot(3, day(1), "16:00", "17:00", 0)
	closed.IsAvailable = false
	holidayFlagged := slot(4, day(1), "18:00", "19:00", 0)
	holidayFlagged.IsHoliday = true

	slots := &fakeSlotRepo{slots: []*domain.TimeSlot{
		slot(1, day(1), "10:00", "11:00", 0),
		full,
		closed,
		holidayFlagged,
	}}
	uc := newUsecase(slots, &fakeTherapistRepo{therapist: approvedTherapist()})

	resp, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(1), EndDate: day(7)})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(1), resp.Slots[0].ID)
}

func TestUseCase_Execute_BufferAroundBookedSlot(t *testing.T) {
	// Занят 12:00-13:00; буфер 15 минут закрывает прилегающие слоты
	slots := &fakeSlotRepo{slots: []*domain.TimeSlot{
		slot(1, day(1), "11:00", "12:00", 0), // прилегает вплотную
		slot(2, day(1), "12:00", "13:00", 1), // занят
		slot(3, day(1), "13:00", "14:00", 0), // прилегает вплотную
		slot(4, day(1), "14:00", "15:00", 0), // за пределами буфера
		slot(5, day(2), "12:00", "13:00", 0), // другой день
	}}
	uc := newUsecase(slots, &fakeTherapistRepo{therapist: approvedTherapist()})

	resp, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(1), EndDate: day(7)})
	require.NoError(t, err)

	ids := make([]int64, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int64{4, 5}, ids)
}

func TestUseCase_Execute_HolidayFiltering(t *testing.T) {
	therapistID := int64(7)
	holidays := []*domain.HolidayDate{
		{ID: 1, TherapistID: &therapistID, Date: day(1)},                // личный выходной
		{ID: 2, TherapistID: nil, Date: day(2)},                        // общий праздник
		{ID: 3, TherapistID: nil, Date: day(3).AddDate(-1, 0, 0), IsRecurring: true}, // ежегодный
	}
	slots := &fakeSlotRepo{slots: []*domain.TimeSlot{
		slot(1, day(1), "10:00", "11:00", 0),
		slot(2, day(2), "10:00", "11:00", 0),
		slot(3, day(3), "10:00", "11:00", 0),
		slot(4, day(4), "10:00", "11:00", 0),
	}}
	uc := newUsecase(slots, &fakeTherapistRepo{therapist: approvedTherapist(), holidays: holidays})

	resp, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(1), EndDate: day(7), IncludePublic: true})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(4), resp.Slots[0].ID)
}

func TestUseCase_Execute_SharedHolidaysOptOut(t *testing.T) {
	therapistID := int64(7)
	holidays := []*domain.HolidayDate{
		{ID: 1, TherapistID: &therapistID, Date: day(1)}, // личный выходной
		{ID: 2, TherapistID: nil, Date: day(2)},          // общий праздник
	}
	slots := &fakeSlotRepo{slots: []*domain.TimeSlot{
		slot(1, day(1), "10:00", "11:00", 0),
		slot(2, day(2), "10:00", "11:00", 0),
	}}
	uc := newUsecase(slots, &fakeTherapistRepo{therapist: approvedTherapist(), holidays: holidays})

	// Без общих праздников: слот на общий праздник остается в выдаче,
	// личный выходной по-прежнему исключен
	resp, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(1), EndDate: day(7), IncludePublic: false})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(2), resp.Slots[0].ID)
}

func TestUseCase_Execute_ClampsPastStart(t *testing.T) {
	slots := &fakeSlotRepo{slots: []*domain.TimeSlot{
		slot(1, day(1), "10:00", "11:00", 0),
	}}
	uc := newUsecase(slots, &fakeTherapistRepo{therapist: approvedTherapist()})

	resp, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(-5), EndDate: day(7)})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 1)
	// Начало периода поднято до сегодняшнего дня
	assert.Equal(t, day(0), slots.requestedFrom)
}

func TestUseCase_Execute_WholeRangeInPast(t *testing.T) {
	slots := &fakeSlotRepo{}
	uc := newUsecase(slots, &fakeTherapistRepo{therapist: approvedTherapist()})

	resp, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(-10), EndDate: day(-3)})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestUseCase_Execute_Validation(t *testing.T) {
	uc := newUsecase(&fakeSlotRepo{}, &fakeTherapistRepo{therapist: approvedTherapist()})

	t.Run("end before start", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(5), EndDate: day(1)})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("range too wide", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(1), EndDate: day(40)})
		assert.ErrorIs(t, err, ErrRangeTooWide)
	})

	t.Run("missing dates", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{TherapistID: 7})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUseCase_Execute_TherapistChecks(t *testing.T) {
	t.Run("missing therapist", func(t *testing.T) {
		uc := newUsecase(&fakeSlotRepo{}, &fakeTherapistRepo{})

		_, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(1), EndDate: day(7)})
		assert.ErrorIs(t, err, ErrTherapistNotFound)
	})

	t.Run("unapproved therapist", func(t *testing.T) {
		therapist := approvedTherapist()
		therapist.Status = domain.ApprovalWaiting
		uc := newUsecase(&fakeSlotRepo{}, &fakeTherapistRepo{therapist: therapist})

		_, err := uc.Execute(context.Background(), &Request{TherapistID: 7, StartDate: day(1), EndDate: day(7)})
		assert.ErrorIs(t, err, ErrTherapistNotBookable)
	})
}
