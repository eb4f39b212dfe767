package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	slotRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/timeslot"
	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
	"github.com/m04kA/TCM-BookingService/pkg/ptr"
	"github.com/m04kA/TCM-BookingService/pkg/types"
)

// Фейки репозиториев

type fakeBookingRepo struct {
	nextID  int64
	created []*domain.Booking
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	booking.ID = f.nextID
	f.created = append(f.created, booking)
	return booking, nil
}

type fakePaymentRepo struct {
	created *domain.Payment
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
	payment.ID = 17
	f.created = payment
	return payment, nil
}

type fakeSlotRepo struct {
	slots       map[int64]*domain.TimeSlot
	unavailable map[int64]bool

	reserved []int64
}

func (f *fakeSlotRepo) GetByID(_ context.Context, id int64) (*domain.TimeSlot, error) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	return slot, nil
}

func (f *fakeSlotRepo) Reserve(_ context.Context, id int64) (*domain.TimeSlot, error) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	if f.unavailable[id] {
		return nil, slotRepo.ErrSlotNotAvailable
	}
	f.reserved = append(f.reserved, id)
	copied := *slot
	copied.CurrentBookings++
	return &copied, nil
}

type fakeTherapistRepo struct {
	therapist *domain.TherapistProfile
}

func (f *fakeTherapistRepo) GetByID(_ context.Context, id int64) (*domain.TherapistProfile, error) {
	if f.therapist == nil || f.therapist.ID != id {
		return nil, therapistRepo.ErrTherapistNotFound
	}
	return f.therapist, nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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

// Окружение теста

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	usecase  *UseCase
	bookings *fakeBookingRepo
	payments *fakePaymentRepo
	slots    *fakeSlotRepo
}

func newTestEnv(therapist *domain.TherapistProfile, slots ...*domain.TimeSlot) *testEnv {
	byID := make(map[int64]*domain.TimeSlot, len(slots))
	for _, s := range slots {
		byID[s.ID] = s
	}

	env := &testEnv{
		bookings: &fakeBookingRepo{},
		payments: &fakePaymentRepo{},
		slots:    &fakeSlotRepo{slots: byID, unavailable: map[int64]bool{}},
	}
	env.usecase = NewUseCase(
		env.bookings,
		env.payments,
		env.slots,
		&fakeTherapistRepo{therapist: therapist},
		fakeTxManager{},
		10,
		domain.DefaultSettlementRate,
		noopLogger{},
	)
	env.usecase.timeProvider = fixedTimeProvider{now: testNow}
	return env
}

func testTherapist() *domain.TherapistProfile {
	return &domain.TherapistProfile{
		ID:              7,
		UserID:          10,
		Status:          domain.ApprovalApproved,
		SessionFee:      100000,
		ConsultationFee: ptr.Ptr(int64(50000)),
	}
}

func futureSlot(id int64, daysAhead int) *domain.TimeSlot {
	return &domain.TimeSlot{
		ID:          id,
		TherapistID: 7,
		Date:        testNow.AddDate(0, 0, daysAhead),
		StartTime:   types.TimeString("10:00"),
		EndTime:     types.TimeString("11:00"),
		IsAvailable: true,
		MaxCapacity: 1,
	}
}

func TestUseCase_Execute_TherapyPackage(t *testing.T) {
	env := newTestEnv(testTherapist(), futureSlot(1, 1), futureSlot(2, 2), futureSlot(3, 3))

	resp, err := env.usecase.Execute(context.Background(), &Request{
		UserID:      5,
		TherapistID: 7,
		SessionType: "therapy",
		TimeSlotIDs: []int64{1, 2, 3},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(17), resp.PaymentID)
	assert.Equal(t, 3, resp.SessionCount)
	assert.Equal(t, int64(300000), resp.OriginalFee)
	assert.Equal(t, 10, resp.DiscountRate)
	assert.Equal(t, int64(270000), resp.FinalFee)
	assert.Equal(t, int64(13500), resp.PlatformFee)
	assert.Equal(t, string(domain.PaymentPendingPayment), resp.PaymentStatus)

	require.Len(t, resp.Sessions, 3)
	for i, session := range resp.Sessions {
		assert.Equal(t, i+1, session.SessionNumber)
		assert.Equal(t, string(domain.StatusPendingConfirmation), session.Status)
	}

	assert.Equal(t, []int64{1, 2, 3}, env.slots.reserved)
	require.NotNil(t, env.payments.created)
	assert.Equal(t, env.payments.created.BookingGroupID, env.bookings.created[0].BookingGroupID)
}

func TestUseCase_Execute_SingleTherapySessionWithoutDiscount(t *testing.T) {
	env := newTestEnv(testTherapist(), futureSlot(1, 1))

	resp, err := env.usecase.Execute(context.Background(), &Request{
		UserID:      5,
		TherapistID: 7,
		SessionType: "therapy",
		TimeSlotIDs: []int64{1},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.DiscountRate)
	assert.Equal(t, int64(100000), resp.FinalFee)
}

func TestUseCase_Execute_Consultation(t *testing.T) {
	t.Run("books one slot at consultation fee", func(t *testing.T) {
		env := newTestEnv(testTherapist(), futureSlot(1, 1))

		resp, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 7,
			SessionType: "consultation",
			TimeSlotIDs: []int64{1},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(50000), resp.FinalFee)
		assert.Equal(t, 0, resp.DiscountRate)
	})

	t.Run("multiple slots rejected", func(t *testing.T) {
		env := newTestEnv(testTherapist(), futureSlot(1, 1), futureSlot(2, 2))

		_, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 7,
			SessionType: "consultation",
			TimeSlotIDs: []int64{1, 2},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("not offered without consultation fee", func(t *testing.T) {
		therapist := testTherapist()
		therapist.ConsultationFee = nil
		env := newTestEnv(therapist, futureSlot(1, 1))

		_, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 7,
			SessionType: "consultation",
			TimeSlotIDs: []int64{1},
		})
		assert.ErrorIs(t, err, ErrConsultationNotOffered)
	})
}

func TestUseCase_Execute_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{
			name: "unknown session type",
			req:  &Request{UserID: 5, TherapistID: 7, SessionType: "group", TimeSlotIDs: []int64{1}},
		},
		{
			name: "no slots",
			req:  &Request{UserID: 5, TherapistID: 7, SessionType: "therapy", TimeSlotIDs: nil},
		},
		{
			name: "duplicate slots",
			req:  &Request{UserID: 5, TherapistID: 7, SessionType: "therapy", TimeSlotIDs: []int64{1, 1}},
		},
		{
			name: "missing user",
			req:  &Request{TherapistID: 7, SessionType: "therapy", TimeSlotIDs: []int64{1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(testTherapist(), futureSlot(1, 1))

			_, err := env.usecase.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUseCase_Execute_TherapistChecks(t *testing.T) {
	t.Run("missing therapist", func(t *testing.T) {
		env := newTestEnv(testTherapist(), futureSlot(1, 1))

		_, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 99,
			SessionType: "therapy",
			TimeSlotIDs: []int64{1},
		})
		assert.ErrorIs(t, err, ErrTherapistNotFound)
	})

	t.Run("unapproved therapist", func(t *testing.T) {
		therapist := testTherapist()
		therapist.Status = domain.ApprovalPending
		env := newTestEnv(therapist, futureSlot(1, 1))

		_, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 7,
			SessionType: "therapy",
			TimeSlotIDs: []int64{1},
		})
		assert.ErrorIs(t, err, ErrTherapistNotBookable)
	})
}

func TestUseCase_Execute_SlotChecks(t *testing.T) {
	t.Run("missing slot", func(t *testing.T) {
		env := newTestEnv(testTherapist(), futureSlot(1, 1))

		_, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 7,
			SessionType: "therapy",
			TimeSlotIDs: []int64{99},
		})
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("occupied slot", func(t *testing.T) {
		env := newTestEnv(testTherapist(), futureSlot(1, 1))
		env.slots.unavailable[1] = true

		_, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 7,
			SessionType: "therapy",
			TimeSlotIDs: []int64{1},
		})
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("slot of another therapist", func(t *testing.T) {
		foreign := futureSlot(1, 1)
		foreign.TherapistID = 8
		env := newTestEnv(testTherapist(), foreign)

		_, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 7,
			SessionType: "therapy",
			TimeSlotIDs: []int64{1},
		})
		assert.ErrorIs(t, err, ErrSlotMismatch)
	})

	t.Run("slot in the past", func(t *testing.T) {
		past := futureSlot(1, -1)
		env := newTestEnv(testTherapist(), past)

		_, err := env.usecase.Execute(context.Background(), &Request{
			UserID:      5,
			TherapistID: 7,
			SessionType: "therapy",
			TimeSlotIDs: []int64{1},
		})
		assert.ErrorIs(t, err, ErrSlotInPast)
	})
}
