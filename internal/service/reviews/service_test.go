package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/booking"
	reviewRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/review"
	"github.com/m04kA/TCM-BookingService/internal/service/reviews/models"
	"github.com/m04kA/TCM-BookingService/pkg/ptr"
)

type fakeReviewRepo struct {
	review  *domain.Review
	reviews []*domain.Review
}

func (f *fakeReviewRepo) Create(_ context.Context, rev *domain.Review) (*domain.Review, error) {
	if f.review != nil && f.review.BookingID == rev.BookingID {
		return nil, reviewRepo.ErrAlreadyReviewed
	}
	rev.ID = 1
	rev.CreatedAt = time.Now().UTC()
	f.review = rev
	return rev, nil
}

func (f *fakeReviewRepo) GetByBookingID(_ context.Context, bookingID int64) (*domain.Review, error) {
	if f.review == nil || f.review.BookingID != bookingID {
		return nil, reviewRepo.ErrReviewNotFound
	}
	return f.review, nil
}

func (f *fakeReviewRepo) ListByTherapistID(_ context.Context, _ int64) ([]*domain.Review, error) {
	return f.reviews, nil
}

type fakeBookingRepo struct {
	booking *domain.Booking
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return f.booking, nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func completedBooking(completedAgo time.Duration) *domain.Booking {
	scheduledAt := time.Now().UTC().Add(-completedAgo)
	return &domain.Booking{
		ID:          42,
		PaymentID:   17,
		TherapistID: 7,
		UserID:      5,
		TimeSlotID:  100,
		SessionType: domain.SessionTherapy,
		Status:      domain.StatusCompleted,
		ScheduledAt: scheduledAt,
		TherapistNote: ptr.Ptr("работали над артикуляцией"),
	}
}

var parentActor = domain.Actor{UserID: 5, Role: domain.RoleParent}

func TestService_Create(t *testing.T) {
	validReq := &models.CreateReviewRequest{
		BookingID: 42,
		Rating:    5,
		Comment:   "отличный специалист",
	}

	t.Run("creates review for completed session", func(t *testing.T) {
		service := NewService(&fakeReviewRepo{}, &fakeBookingRepo{booking: completedBooking(24 * time.Hour)}, noopLogger{})

		resp, err := service.Create(context.Background(), parentActor, validReq)
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.BookingID)
		assert.Equal(t, 5, resp.Rating)
	})

	t.Run("rating outside bounds", func(t *testing.T) {
		service := NewService(&fakeReviewRepo{}, &fakeBookingRepo{booking: completedBooking(24 * time.Hour)}, noopLogger{})

		for _, rating := range []int{0, 6, -1} {
			_, err := service.Create(context.Background(), parentActor, &models.CreateReviewRequest{
				BookingID: 42,
				Rating:    rating,
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
		}
	})

	t.Run("foreign parent denied", func(t *testing.T) {
		service := NewService(&fakeReviewRepo{}, &fakeBookingRepo{booking: completedBooking(24 * time.Hour)}, noopLogger{})

		_, err := service.Create(context.Background(), domain.Actor{UserID: 6, Role: domain.RoleParent}, validReq)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("review window expired", func(t *testing.T) {
		service := NewService(&fakeReviewRepo{}, &fakeBookingRepo{booking: completedBooking(8 * 24 * time.Hour)}, noopLogger{})

		_, err := service.Create(context.Background(), parentActor, validReq)
		assert.ErrorIs(t, err, ErrReviewNotAllowed)
	})

	t.Run("unfinished session not reviewable", func(t *testing.T) {
		booking := completedBooking(24 * time.Hour)
		booking.Status = domain.StatusConfirmed
		service := NewService(&fakeReviewRepo{}, &fakeBookingRepo{booking: booking}, noopLogger{})

		_, err := service.Create(context.Background(), parentActor, validReq)
		assert.ErrorIs(t, err, ErrReviewNotAllowed)
	})

	t.Run("duplicate review rejected", func(t *testing.T) {
		repo := &fakeReviewRepo{review: &domain.Review{ID: 1, BookingID: 42, UserID: 5, Rating: 4}}
		service := NewService(repo, &fakeBookingRepo{booking: completedBooking(24 * time.Hour)}, noopLogger{})

		_, err := service.Create(context.Background(), parentActor, validReq)
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})

	t.Run("missing booking", func(t *testing.T) {
		service := NewService(&fakeReviewRepo{}, &fakeBookingRepo{}, noopLogger{})

		_, err := service.Create(context.Background(), parentActor, validReq)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_GetByBookingID(t *testing.T) {
	t.Run("returns review", func(t *testing.T) {
		repo := &fakeReviewRepo{review: &domain.Review{ID: 1, BookingID: 42, UserID: 5, Rating: 4, Comment: "хорошо"}}
		service := NewService(repo, &fakeBookingRepo{}, noopLogger{})

		resp, err := service.GetByBookingID(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Rating)
	})

	t.Run("missing review", func(t *testing.T) {
		service := NewService(&fakeReviewRepo{}, &fakeBookingRepo{}, noopLogger{})

		_, err := service.GetByBookingID(context.Background(), 42)
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
}

func TestService_ListByTherapistID(t *testing.T) {
	repo := &fakeReviewRepo{reviews: []*domain.Review{
		{ID: 1, BookingID: 42, UserID: 5, Rating: 5},
		{ID: 2, BookingID: 43, UserID: 6, Rating: 3},
	}}
	service := NewService(repo, &fakeBookingRepo{}, noopLogger{})

	resp, err := service.ListByTherapistID(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, resp.Reviews, 2)
}
