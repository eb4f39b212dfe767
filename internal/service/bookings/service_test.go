package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/payment"
	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
	"github.com/m04kA/TCM-BookingService/internal/integrations/notifier"
	"github.com/m04kA/TCM-BookingService/internal/service/bookings/models"
	"github.com/m04kA/TCM-BookingService/pkg/ptr"
)

// Фейки репозиториев

type fakeBookingRepo struct {
	booking *domain.Booking

	confirmCalled bool
	rejectReason  string
	cancelRefund  int64
	cancelCalled  bool
	settleAmount  int64
	completeText  string
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) ListByUserID(_ context.Context, _ int64, _ *domain.BookingStatus) ([]*domain.Booking, error) {
	return []*domain.Booking{f.booking}, nil
}

func (f *fakeBookingRepo) ListByTherapistID(_ context.Context, _ int64, _, _ *time.Time) ([]*domain.Booking, error) {
	return []*domain.Booking{f.booking}, nil
}

func (f *fakeBookingRepo) Confirm(_ context.Context, _ int64) error {
	f.confirmCalled = true
	return nil
}

func (f *fakeBookingRepo) Reject(_ context.Context, _ int64, reason string) error {
	f.rejectReason = reason
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, _ int64, _ int64, _ string, refundAmount int64) error {
	f.cancelCalled = true
	f.cancelRefund = refundAmount
	return nil
}

func (f *fakeBookingRepo) Complete(_ context.Context, _ int64, journal string) error {
	f.completeText = journal
	return nil
}

func (f *fakeBookingRepo) MarkPendingSettlement(_ context.Context, _ int64) error {
	return nil
}

func (f *fakeBookingRepo) Settle(_ context.Context, _ int64, settlementAmount int64) error {
	if f.booking.Status == domain.StatusSettlementCompleted {
		return bookingRepo.ErrStatusConflict
	}
	f.settleAmount = settlementAmount
	return nil
}

type fakePaymentRepo struct {
	payment *domain.Payment

	refundApplied     int64
	settlementApplied int64
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	if f.payment == nil || f.payment.ID != id {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	copied := *f.payment
	return &copied, nil
}

func (f *fakePaymentRepo) ApplyRefund(_ context.Context, _ int64, amount int64) (*domain.Payment, error) {
	f.refundApplied += amount
	return f.payment, nil
}

func (f *fakePaymentRepo) AddSettlement(_ context.Context, _ int64, amount int64) error {
	f.settlementApplied += amount
	return nil
}

type fakeSlotRepo struct {
	released []int64
}

func (f *fakeSlotRepo) Release(_ context.Context, id int64) error {
	f.released = append(f.released, id)
	return nil
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

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	events []notifier.Event
}

func (f *fakeNotifier) Notify(_ context.Context, event notifier.Event) {
	f.events = append(f.events, event)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// Окружение теста

type testEnv struct {
	service    *Service
	bookings   *fakeBookingRepo
	payments   *fakePaymentRepo
	slots      *fakeSlotRepo
	therapists *fakeTherapistRepo
	notifier   *fakeNotifier
}

func newTestEnv(booking *domain.Booking, payment *domain.Payment, therapist *domain.TherapistProfile) *testEnv {
	env := &testEnv{
		bookings:   &fakeBookingRepo{booking: booking},
		payments:   &fakePaymentRepo{payment: payment},
		slots:      &fakeSlotRepo{},
		therapists: &fakeTherapistRepo{therapist: therapist},
		notifier:   &fakeNotifier{},
	}
	env.service = NewService(
		env.bookings,
		env.payments,
		env.slots,
		env.therapists,
		fakeTxManager{},
		env.notifier,
		domain.DefaultSettlementRate,
		noopLogger{},
	)
	return env
}

func testBooking(status domain.BookingStatus, scheduledAt time.Time) *domain.Booking {
	return &domain.Booking{
		ID:          42,
		PaymentID:   17,
		TherapistID: 7,
		UserID:      5,
		TimeSlotID:  100,
		SessionType: domain.SessionTherapy,
		Status:      status,
		ScheduledAt: scheduledAt,
	}
}

func testPayment(status domain.PaymentStatus) *domain.Payment {
	return &domain.Payment{
		ID:           17,
		UserID:       5,
		TherapistID:  7,
		SessionType:  domain.SessionTherapy,
		SessionCount: 5,
		OriginalFee:  500000,
		FinalFee:     450000,
		PlatformFee:  22500,
		Status:       status,
	}
}

func testTherapist() *domain.TherapistProfile {
	return &domain.TherapistProfile{
		ID:         7,
		UserID:     10,
		Status:     domain.ApprovalApproved,
		SessionFee: 100000,
	}
}

var (
	therapistActor = domain.Actor{UserID: 10, Role: domain.RoleTherapist}
	parentActor    = domain.Actor{UserID: 5, Role: domain.RoleParent}
	adminActor     = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
)

func TestService_Confirm(t *testing.T) {
	future := time.Now().UTC().Add(48 * time.Hour)

	t.Run("confirms paid booking", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusPendingConfirmation, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Confirm(context.Background(), 42, therapistActor)
		require.NoError(t, err)
		assert.True(t, env.bookings.confirmCalled)
		require.Len(t, env.notifier.events, 1)
		assert.Equal(t, notifier.EventBookingConfirmed, env.notifier.events[0].Type)
	})

	t.Run("unpaid payment blocks confirmation", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusPendingConfirmation, future), testPayment(domain.PaymentPendingPayment), testTherapist())

		err := env.service.Confirm(context.Background(), 42, therapistActor)
		assert.ErrorIs(t, err, ErrStatusConflict)
		assert.False(t, env.bookings.confirmCalled)
	})

	t.Run("already confirmed returns conflict", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusConfirmed, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Confirm(context.Background(), 42, therapistActor)
		assert.ErrorIs(t, err, ErrStatusConflict)
	})

	t.Run("foreign therapist denied", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusPendingConfirmation, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Confirm(context.Background(), 42, domain.Actor{UserID: 11, Role: domain.RoleTherapist})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("missing booking", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusPendingConfirmation, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Confirm(context.Background(), 99, therapistActor)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_Reject(t *testing.T) {
	future := time.Now().UTC().Add(48 * time.Hour)
	req := &models.RejectBookingRequest{Reason: "расписание изменилось"}

	t.Run("rejects paid booking with full per-session refund", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusPendingConfirmation, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Reject(context.Background(), 42, therapistActor, req)
		require.NoError(t, err)
		assert.Equal(t, "расписание изменилось", env.bookings.rejectReason)
		// 450000 / 5 сессий
		assert.Equal(t, int64(90000), env.payments.refundApplied)
		assert.Equal(t, []int64{100}, env.slots.released)
	})

	t.Run("unpaid booking rejected without refund", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusPendingConfirmation, future), testPayment(domain.PaymentPendingPayment), testTherapist())

		err := env.service.Reject(context.Background(), 42, therapistActor, req)
		require.NoError(t, err)
		assert.Zero(t, env.payments.refundApplied)
		assert.Equal(t, []int64{100}, env.slots.released)
	})

	t.Run("refund capped by remaining refundable", func(t *testing.T) {
		payment := testPayment(domain.PaymentPartiallyRefunded)
		payment.RefundAmount = 400000 // остается 50000
		env := newTestEnv(testBooking(domain.StatusPendingConfirmation, future), payment, testTherapist())

		err := env.service.Reject(context.Background(), 42, therapistActor, req)
		require.NoError(t, err)
		assert.Equal(t, int64(50000), env.payments.refundApplied)
	})

	t.Run("empty reason is invalid", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusPendingConfirmation, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Reject(context.Background(), 42, therapistActor, &models.RejectBookingRequest{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("completed booking cannot be rejected", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusCompleted, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Reject(context.Background(), 42, therapistActor, req)
		assert.ErrorIs(t, err, ErrStatusConflict)
	})
}

func TestService_Cancel(t *testing.T) {
	req := &models.CancelBookingRequest{Reason: "ребенок заболел"}

	tests := []struct {
		name       string
		hoursAhead time.Duration
		status     domain.PaymentStatus
		wantRefund int64
	}{
		{name: "more than 24h full refund", hoursAhead: 25 * time.Hour, status: domain.PaymentPaid, wantRefund: 90000},
		{name: "between 12h and 24h half refund", hoursAhead: 18 * time.Hour, status: domain.PaymentPaid, wantRefund: 45000},
		{name: "less than 12h no refund", hoursAhead: 5 * time.Hour, status: domain.PaymentPaid, wantRefund: 0},
		{name: "unpaid no refund", hoursAhead: 48 * time.Hour, status: domain.PaymentPendingPayment, wantRefund: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduledAt := time.Now().UTC().Add(tt.hoursAhead)
			env := newTestEnv(testBooking(domain.StatusConfirmed, scheduledAt), testPayment(tt.status), testTherapist())

			err := env.service.Cancel(context.Background(), 42, parentActor, req)
			require.NoError(t, err)
			assert.True(t, env.bookings.cancelCalled)
			assert.Equal(t, tt.wantRefund, env.bookings.cancelRefund)
			assert.Equal(t, tt.wantRefund, env.payments.refundApplied)
			assert.Equal(t, []int64{100}, env.slots.released)
		})
	}

	t.Run("foreign parent denied", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusConfirmed, time.Now().UTC().Add(48*time.Hour)), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Cancel(context.Background(), 42, domain.Actor{UserID: 6, Role: domain.RoleParent}, req)
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.False(t, env.bookings.cancelCalled)
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusCompleted, time.Now().UTC().Add(48*time.Hour)), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.Cancel(context.Background(), 42, parentActor, req)
		assert.ErrorIs(t, err, ErrCannotCancel)
	})
}

func TestService_SubmitJournal(t *testing.T) {
	future := time.Now().UTC().Add(-time.Hour)

	t.Run("completes session with journal", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusConfirmed, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.SubmitJournal(context.Background(), 42, therapistActor, &models.SubmitJournalRequest{Journal: "работали над артикуляцией"})
		require.NoError(t, err)
		assert.Equal(t, "работали над артикуляцией", env.bookings.completeText)
	})

	t.Run("empty journal is invalid", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusConfirmed, future), testPayment(domain.PaymentPaid), testTherapist())

		err := env.service.SubmitJournal(context.Background(), 42, therapistActor, &models.SubmitJournalRequest{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_Settle(t *testing.T) {
	past := time.Now().UTC().Add(-48 * time.Hour)

	t.Run("therapy settlement is fee minus platform share", func(t *testing.T) {
		booking := testBooking(domain.StatusPendingSettlement, past)
		env := newTestEnv(booking, testPayment(domain.PaymentPaid), testTherapist())

		amount, err := env.service.Settle(context.Background(), 42, adminActor)
		require.NoError(t, err)
		// 90000 за сессию минус 4500 комиссии платформы
		assert.Equal(t, int64(85500), amount)
		assert.Equal(t, int64(85500), env.bookings.settleAmount)
		assert.Equal(t, int64(85500), env.payments.settlementApplied)
		require.Len(t, env.notifier.events, 1)
		assert.Equal(t, notifier.EventBookingSettled, env.notifier.events[0].Type)
	})

	t.Run("therapy settlement with zero session count", func(t *testing.T) {
		booking := testBooking(domain.StatusPendingSettlement, past)
		payment := testPayment(domain.PaymentPaid)
		payment.SessionCount = 0
		env := newTestEnv(booking, payment, testTherapist())

		amount, err := env.service.Settle(context.Background(), 42, adminActor)
		require.NoError(t, err)
		// при нулевом количестве сессий база равна полной сумме
		assert.Equal(t, int64(450000-22500), amount)
	})

	t.Run("consultation uses flat settlement amount", func(t *testing.T) {
		booking := testBooking(domain.StatusPendingSettlement, past)
		booking.SessionType = domain.SessionConsultation
		therapist := testTherapist()
		therapist.ConsultationSettlementAmount = ptr.Ptr(int64(30000))
		env := newTestEnv(booking, testPayment(domain.PaymentPaid), therapist)

		amount, err := env.service.Settle(context.Background(), 42, adminActor)
		require.NoError(t, err)
		assert.Equal(t, int64(30000), amount)
	})

	t.Run("consultation without configured settlement", func(t *testing.T) {
		booking := testBooking(domain.StatusPendingSettlement, past)
		booking.SessionType = domain.SessionConsultation
		env := newTestEnv(booking, testPayment(domain.PaymentPaid), testTherapist())

		_, err := env.service.Settle(context.Background(), 42, adminActor)
		assert.ErrorIs(t, err, ErrSettlementNotConfigured)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusPendingSettlement, past), testPayment(domain.PaymentPaid), testTherapist())

		_, err := env.service.Settle(context.Background(), 42, therapistActor)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("already settled booking rejected", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusSettlementCompleted, past), testPayment(domain.PaymentPaid), testTherapist())

		_, err := env.service.Settle(context.Background(), 42, adminActor)
		assert.ErrorIs(t, err, ErrStatusConflict)
	})
}

func TestService_GetByID(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed, time.Now().UTC().Add(24*time.Hour))

	tests := []struct {
		name    string
		actor   domain.Actor
		wantErr error
	}{
		{name: "owner parent", actor: parentActor},
		{name: "owner therapist", actor: therapistActor},
		{name: "admin", actor: adminActor},
		{name: "foreign parent", actor: domain.Actor{UserID: 6, Role: domain.RoleParent}, wantErr: ErrAccessDenied},
		{name: "foreign therapist", actor: domain.Actor{UserID: 11, Role: domain.RoleTherapist}, wantErr: ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(booking, testPayment(domain.PaymentPaid), testTherapist())

			resp, err := env.service.GetByID(context.Background(), 42, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(42), resp.ID)
		})
	}
}

func TestService_GetUserBookings(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed, time.Now().UTC().Add(24*time.Hour))

	t.Run("parent sees own history", func(t *testing.T) {
		env := newTestEnv(booking, testPayment(domain.PaymentPaid), testTherapist())

		resp, err := env.service.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 5}, parentActor)
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 1)
	})

	t.Run("foreign parent denied", func(t *testing.T) {
		env := newTestEnv(booking, testPayment(domain.PaymentPaid), testTherapist())

		_, err := env.service.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 5}, domain.Actor{UserID: 6, Role: domain.RoleParent})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		env := newTestEnv(booking, testPayment(domain.PaymentPaid), testTherapist())

		status := "sleeping"
		_, err := env.service.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 5, Status: &status}, parentActor)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
