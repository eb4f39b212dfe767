package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/booking"
	reviewRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/review"
	"github.com/m04kA/TCM-BookingService/internal/service/reviews/models"
)

// Service сервис отзывов о завершенных сессиях
type Service struct {
	reviewRepo  ReviewRepository
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса отзывов
func NewService(reviewRepo ReviewRepository, bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Create создает отзыв о завершенной сессии.
// Отзыв доступен только владеющему родителю, только по завершенной
// сессии и только в течение 7 дней после нее. Статус бронирования
// при этом не меняется.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req *models.CreateReviewRequest) (*models.ReviewResponse, error) {
	s.logger.Info("Create: creating review for booking id=%d by user=%d", req.BookingID, actor.UserID)

	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, domain.MinRating, domain.MaxRating)
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Create: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Create: booking repository error for id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: Create - booking repository error: %v", ErrInternal, err)
	}

	if err := domain.Authorize(actor, domain.ActionCreateReview, booking.UserID); err != nil {
		s.logger.Warn("Create: access denied for user=%d to booking id=%d", actor.UserID, req.BookingID)
		return nil, ErrAccessDenied
	}

	if !domain.ReviewAllowed(booking, time.Now().UTC()) {
		s.logger.Warn("Create: review not allowed for booking id=%d, status=%s", req.BookingID, booking.Status)
		return nil, ErrReviewNotAllowed
	}

	created, err := s.reviewRepo.Create(ctx, &domain.Review{
		BookingID: req.BookingID,
		UserID:    actor.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		if errors.Is(err, reviewRepo.ErrAlreadyReviewed) {
			s.logger.Warn("Create: booking id=%d is already reviewed", req.BookingID)
			return nil, ErrAlreadyReviewed
		}
		s.logger.Error("Create: failed to create review for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: Create - create review: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created review id=%d for booking id=%d", created.ID, req.BookingID)
	return models.FromDomainReview(created), nil
}

// GetByBookingID получает отзыв по бронированию
func (s *Service) GetByBookingID(ctx context.Context, bookingID int64) (*models.ReviewResponse, error) {
	s.logger.Info("GetByBookingID: fetching review for booking id=%d", bookingID)

	review, err := s.reviewRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, reviewRepo.ErrReviewNotFound) {
			s.logger.Warn("GetByBookingID: review for booking id=%d not found", bookingID)
			return nil, ErrReviewNotFound
		}
		s.logger.Error("GetByBookingID: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetByBookingID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainReview(review), nil
}

// ListByTherapistID получает отзывы по сессиям терапевта
func (s *Service) ListByTherapistID(ctx context.Context, therapistID int64) (*models.ReviewListResponse, error) {
	s.logger.Info("ListByTherapistID: fetching reviews for therapist=%d", therapistID)

	reviews, err := s.reviewRepo.ListByTherapistID(ctx, therapistID)
	if err != nil {
		s.logger.Error("ListByTherapistID: repository error for therapist=%d: %v", therapistID, err)
		return nil, fmt.Errorf("%w: ListByTherapistID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainReviewList(reviews), nil
}
