package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TCM-BookingService/pkg/psqlbuilder"
)

// uniqueViolation - SQLSTATE 23505
const uniqueViolation = "23505"

const reviewColumns = "id, booking_id, user_id, rating, comment, created_at"

// Repository репозиторий отзывов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория отзывов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает отзыв. Повторный отзыв по тому же бронированию
// упирается в уникальный индекс и возвращает ErrAlreadyReviewed.
func (r *Repository) Create(ctx context.Context, rev *domain.Review) (*domain.Review, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reviews").
		Columns("booking_id", "user_id", "rating", "comment").
		Values(rev.BookingID, rev.UserID, rev.Rating, rev.Comment).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&rev.ID, &rev.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return rev, nil
}

// GetByBookingID получает отзыв по ID бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reviewColumns).
		From("reviews").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var rev domain.Review
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rev.ID,
		&rev.BookingID,
		&rev.UserID,
		&rev.Rating,
		&rev.Comment,
		&rev.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan review: %v", ErrScanRow, err)
	}

	return &rev, nil
}

// ListByTherapistID получает отзывы по бронированиям терапевта, новые первыми
func (r *Repository) ListByTherapistID(ctx context.Context, therapistID int64) ([]*domain.Review, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"r.id, r.booking_id, r.user_id, r.rating, r.comment, r.created_at",
	).
		From("reviews r").
		Join("bookings b ON b.id = r.booking_id").
		Where(squirrel.Eq{"b.therapist_id": therapistID}).
		OrderBy("r.created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByTherapistID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTherapistID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.BookingID,
			&rev.UserID,
			&rev.Rating,
			&rev.Comment,
			&rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListByTherapistID - scan row: %v", ErrScanRow, err)
		}
		reviews = append(reviews, &rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByTherapistID - rows error: %v", ErrScanRow, err)
	}

	return reviews, nil
}
