package refunds

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/payment"
	refundRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/refund"
	"github.com/m04kA/TCM-BookingService/internal/integrations/notifier"
	"github.com/m04kA/TCM-BookingService/internal/service/refunds/models"
	"github.com/m04kA/TCM-BookingService/pkg/ptr"
)

// Фейки репозиториев

type fakeRefundRepo struct {
	request    *domain.RefundRequest
	hasPending bool

	created        *domain.RefundRequest
	approvedAmount int64
	rejectedReason string
}

func (f *fakeRefundRepo) Create(_ context.Context, req *domain.RefundRequest) (*domain.RefundRequest, error) {
	if f.hasPending && req.Status == domain.RefundRequestPending {
		return nil, refundRepo.ErrPendingRequestExists
	}
	req.ID = 3
	req.CreatedAt = time.Now().UTC()
	f.created = req
	return req, nil
}

func (f *fakeRefundRepo) GetByID(_ context.Context, id int64) (*domain.RefundRequest, error) {
	if f.request == nil || f.request.ID != id {
		return nil, refundRepo.ErrRequestNotFound
	}
	copied := *f.request
	return &copied, nil
}

func (f *fakeRefundRepo) HasPending(_ context.Context, _ int64) (bool, error) {
	return f.hasPending, nil
}

func (f *fakeRefundRepo) ListByPaymentID(_ context.Context, _ int64) ([]*domain.RefundRequest, error) {
	return []*domain.RefundRequest{f.request}, nil
}

func (f *fakeRefundRepo) Approve(_ context.Context, id int64, _ int64, approvedAmount int64, _ int64) error {
	if f.request == nil || f.request.ID != id {
		return refundRepo.ErrRequestNotFound
	}
	if !f.request.IsPending() {
		return refundRepo.ErrRequestNotPending
	}
	f.approvedAmount = approvedAmount
	f.request.Status = domain.RefundRequestApproved
	f.request.ApprovedAmount = &approvedAmount
	return nil
}

func (f *fakeRefundRepo) Reject(_ context.Context, id int64, rejectionReason string, _ int64) error {
	if f.request == nil || f.request.ID != id {
		return refundRepo.ErrRequestNotFound
	}
	if !f.request.IsPending() {
		return refundRepo.ErrRequestNotPending
	}
	f.rejectedReason = rejectionReason
	f.request.Status = domain.RefundRequestRejected
	f.request.RejectionReason = &rejectionReason
	return nil
}

type fakePaymentRepo struct {
	payment *domain.Payment

	refundApplied int64
	refundErr     error
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	if f.payment == nil || f.payment.ID != id {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	copied := *f.payment
	return &copied, nil
}

func (f *fakePaymentRepo) ApplyRefund(_ context.Context, _ int64, amount int64) (*domain.Payment, error) {
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	f.refundApplied += amount
	return f.payment, nil
}

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking

	refunded []int64
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ListByPaymentID(_ context.Context, paymentID int64) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if b.PaymentID == paymentID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) ListByGroupID(_ context.Context, groupID uuid.UUID) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if b.BookingGroupID == groupID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) MarkRefunded(_ context.Context, id int64, _ int64, _ string, _ int64, expected []domain.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	allowed := false
	for _, status := range expected {
		if b.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return bookingRepo.ErrStatusConflict
	}
	b.Status = domain.StatusRefunded
	f.refunded = append(f.refunded, id)
	return nil
}

type fakeSlotRepo struct {
	released []int64
}

func (f *fakeSlotRepo) Release(_ context.Context, id int64) error {
	f.released = append(f.released, id)
	return nil
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
	service  *Service
	refunds  *fakeRefundRepo
	payments *fakePaymentRepo
	bookings *fakeBookingRepo
	slots    *fakeSlotRepo
	notifier *fakeNotifier
}

func newTestEnv(payment *domain.Payment, bookings ...*domain.Booking) *testEnv {
	byID := make(map[int64]*domain.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	env := &testEnv{
		refunds:  &fakeRefundRepo{},
		payments: &fakePaymentRepo{payment: payment},
		bookings: &fakeBookingRepo{bookings: byID},
		slots:    &fakeSlotRepo{},
		notifier: &fakeNotifier{},
	}
	env.service = NewService(
		env.refunds,
		env.payments,
		env.bookings,
		env.slots,
		fakeTxManager{},
		env.notifier,
		noopLogger{},
	)
	return env
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

func testBooking(id int64, status domain.BookingStatus, groupID uuid.UUID) *domain.Booking {
	return &domain.Booking{
		ID:             id,
		BookingGroupID: groupID,
		PaymentID:      17,
		TherapistID:    7,
		UserID:         5,
		TimeSlotID:     100 + id,
		SessionType:    domain.SessionTherapy,
		Status:         status,
		ScheduledAt:    time.Now().UTC().Add(48 * time.Hour),
	}
}

func pendingRequest() *domain.RefundRequest {
	return &domain.RefundRequest{
		ID:              3,
		PublicID:        uuid.New(),
		PaymentID:       17,
		RequestedBy:     5,
		Reason:          "ребенок заболел, сессии не нужны",
		RequestedAmount: 90000,
		Status:          domain.RefundRequestPending,
	}
}

var (
	parentActor = domain.Actor{UserID: 5, Role: domain.RoleParent}
	adminActor  = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
)

func TestService_CreateRequest(t *testing.T) {
	groupID := uuid.New()
	validReq := &models.CreateRefundRequestRequest{
		PaymentID:       17,
		Reason:          "ребенок заболел, сессии не нужны",
		RequestedAmount: 90000,
	}

	t.Run("creates pending request", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))

		resp, err := env.service.CreateRequest(context.Background(), parentActor, validReq)
		require.NoError(t, err)
		assert.Equal(t, string(domain.RefundRequestPending), resp.Status)
		require.Len(t, env.notifier.events, 1)
		assert.Equal(t, notifier.EventRefundRequested, env.notifier.events[0].Type)
	})

	t.Run("short reason rejected", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))

		_, err := env.service.CreateRequest(context.Background(), parentActor, &models.CreateRefundRequestRequest{
			PaymentID:       17,
			Reason:          "болеем",
			RequestedAmount: 90000,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("foreign parent denied", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))

		_, err := env.service.CreateRequest(context.Background(), domain.Actor{UserID: 6, Role: domain.RoleParent}, validReq)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("payment already refunded", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentRefunded), testBooking(42, domain.StatusConfirmed, groupID))

		_, err := env.service.CreateRequest(context.Background(), parentActor, validReq)
		assert.ErrorIs(t, err, ErrPaymentNotRefundable)
	})

	t.Run("amount above final fee", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))

		_, err := env.service.CreateRequest(context.Background(), parentActor, &models.CreateRefundRequestRequest{
			PaymentID:       17,
			Reason:          "ребенок заболел, сессии не нужны",
			RequestedAmount: 500001,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("all sessions settlement-bound", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid),
			testBooking(42, domain.StatusPendingSettlement, groupID),
			testBooking(43, domain.StatusSettlementCompleted, groupID),
		)

		_, err := env.service.CreateRequest(context.Background(), parentActor, validReq)
		assert.ErrorIs(t, err, ErrAllSessionsSettled)
	})

	t.Run("second pending request rejected", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))
		env.refunds.hasPending = true

		_, err := env.service.CreateRequest(context.Background(), parentActor, validReq)
		assert.ErrorIs(t, err, ErrPendingRequestExists)
	})
}

func TestService_Approve(t *testing.T) {
	groupID := uuid.New()

	t.Run("approves with admin amount and releases slot", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))
		env.refunds.request = pendingRequest()

		resp, err := env.service.Approve(context.Background(), 3, adminActor, &models.ApproveRefundRequest{
			BookingID:      ptr.Ptr(int64(42)),
			ApprovedAmount: 80000,
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.RefundRequestApproved), resp.Status)
		// Применяется одобренная сумма, не запрошенная
		assert.Equal(t, int64(80000), env.payments.refundApplied)
		assert.Equal(t, []int64{42}, env.bookings.refunded)
		assert.Equal(t, []int64{142}, env.slots.released)
		require.Len(t, env.notifier.events, 1)
		assert.Equal(t, notifier.EventRefundDecided, env.notifier.events[0].Type)
	})

	t.Run("completed session keeps its slot", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusCompleted, groupID))
		env.refunds.request = pendingRequest()

		_, err := env.service.Approve(context.Background(), 3, adminActor, &models.ApproveRefundRequest{
			BookingID:      ptr.Ptr(int64(42)),
			ApprovedAmount: 80000,
		})
		require.NoError(t, err)
		assert.Empty(t, env.slots.released)
	})

	t.Run("booking from another payment rejected", func(t *testing.T) {
		foreign := testBooking(42, domain.StatusConfirmed, groupID)
		foreign.PaymentID = 99
		env := newTestEnv(testPayment(domain.PaymentPaid), foreign)
		env.refunds.request = pendingRequest()

		_, err := env.service.Approve(context.Background(), 3, adminActor, &models.ApproveRefundRequest{
			BookingID:      ptr.Ptr(int64(42)),
			ApprovedAmount: 80000,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("already decided request", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))
		request := pendingRequest()
		request.Status = domain.RefundRequestRejected
		env.refunds.request = request

		_, err := env.service.Approve(context.Background(), 3, adminActor, &models.ApproveRefundRequest{
			BookingID:      ptr.Ptr(int64(42)),
			ApprovedAmount: 80000,
		})
		assert.ErrorIs(t, err, ErrRequestNotPending)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))
		env.refunds.request = pendingRequest()

		_, err := env.service.Approve(context.Background(), 3, parentActor, &models.ApproveRefundRequest{
			BookingID:      ptr.Ptr(int64(42)),
			ApprovedAmount: 80000,
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_Reject(t *testing.T) {
	groupID := uuid.New()

	t.Run("rejects pending request", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))
		env.refunds.request = pendingRequest()

		resp, err := env.service.Reject(context.Background(), 3, adminActor, &models.RejectRefundRequest{
			RejectionReason: "сессия уже проведена",
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.RefundRequestRejected), resp.Status)
		assert.Equal(t, "сессия уже проведена", env.refunds.rejectedReason)
		// Бронирование и платеж не тронуты
		assert.Empty(t, env.bookings.refunded)
		assert.Zero(t, env.payments.refundApplied)
	})

	t.Run("empty rejection reason", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))
		env.refunds.request = pendingRequest()

		_, err := env.service.Reject(context.Background(), 3, adminActor, &models.RejectRefundRequest{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing request", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))

		_, err := env.service.Reject(context.Background(), 99, adminActor, &models.RejectRefundRequest{
			RejectionReason: "сессия уже проведена",
		})
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})
}

func TestService_DirectRefund(t *testing.T) {
	groupID := uuid.New()

	t.Run("refunds single booking", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))

		resp, err := env.service.DirectRefund(context.Background(), adminActor, &models.DirectRefundRequest{
			BookingID: ptr.Ptr(int64(42)),
			Amount:    90000,
			Reason:    "терапевт недоступен",
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.RefundRequestApproved), resp.Status)
		assert.Equal(t, int64(90000), env.payments.refundApplied)
		assert.Equal(t, []int64{42}, env.bookings.refunded)
		assert.Equal(t, []int64{142}, env.slots.released)
	})

	t.Run("refunds whole group atomically", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid),
			testBooking(42, domain.StatusConfirmed, groupID),
			testBooking(43, domain.StatusPendingConfirmation, groupID),
			testBooking(44, domain.StatusConfirmed, groupID),
		)

		group := groupID.String()
		_, err := env.service.DirectRefund(context.Background(), adminActor, &models.DirectRefundRequest{
			BookingGroupID: &group,
			Amount:         90000,
			Reason:         "терапевт недоступен",
		})
		require.NoError(t, err)
		// Сумма на платеж - за каждое бронирование группы
		assert.Equal(t, int64(270000), env.payments.refundApplied)
		assert.Len(t, env.bookings.refunded, 3)
		assert.Len(t, env.slots.released, 3)
	})

	t.Run("already refunded booking in group aborts", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid),
			testBooking(42, domain.StatusConfirmed, groupID),
			testBooking(43, domain.StatusRefunded, groupID),
		)

		group := groupID.String()
		_, err := env.service.DirectRefund(context.Background(), adminActor, &models.DirectRefundRequest{
			BookingGroupID: &group,
			Amount:         90000,
			Reason:         "терапевт недоступен",
		})
		assert.ErrorIs(t, err, ErrNotRefundable)
	})

	t.Run("unpaid payment rejected", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPendingPayment), testBooking(42, domain.StatusConfirmed, groupID))

		_, err := env.service.DirectRefund(context.Background(), adminActor, &models.DirectRefundRequest{
			BookingID: ptr.Ptr(int64(42)),
			Amount:    90000,
			Reason:    "терапевт недоступен",
		})
		assert.ErrorIs(t, err, ErrPaymentNotRefundable)
	})

	t.Run("target is required", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))

		_, err := env.service.DirectRefund(context.Background(), adminActor, &models.DirectRefundRequest{
			Amount: 90000,
			Reason: "терапевт недоступен",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		env := newTestEnv(testPayment(domain.PaymentPaid), testBooking(42, domain.StatusConfirmed, groupID))

		_, err := env.service.DirectRefund(context.Background(), parentActor, &models.DirectRefundRequest{
			BookingID: ptr.Ptr(int64(42)),
			Amount:    90000,
			Reason:    "терапевт недоступен",
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}
