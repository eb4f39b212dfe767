package refund

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

const requestColumns = "id, public_id, payment_id, booking_id, requested_by, reason, " +
	"requested_amount, status, approved_amount, rejection_reason, processed_by, processed_at, created_at"

// Repository репозиторий заявок на возврат.
// Инвариант "не более одной PENDING-заявки на платеж" обеспечивается
// частичным уникальным индексом в БД, а не проверкой в приложении.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок на возврат
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заявку. Конкурентная вторая PENDING-заявка по тому же
// платежу упирается в частичный уникальный индекс и возвращает
// ErrPendingRequestExists.
func (r *Repository) Create(ctx context.Context, req *domain.RefundRequest) (*domain.RefundRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("refund_requests").
		Columns(
			"public_id",
			"payment_id",
			"booking_id",
			"requested_by",
			"reason",
			"requested_amount",
			"status",
			"approved_amount",
			"processed_by",
			"processed_at",
		).
		Values(
			req.PublicID,
			req.PaymentID,
			req.BookingID,
			req.RequestedBy,
			req.Reason,
			req.RequestedAmount,
			req.Status,
			req.ApprovedAmount,
			req.ProcessedBy,
			req.ProcessedAt,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&req.ID, &createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrPendingRequestExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	req.CreatedAt = createdAt.Time
	return req, nil
}

// GetByID получает заявку по ID.
// Внутри транзакции читает с блокировкой FOR UPDATE.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.RefundRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(requestColumns).
		From("refund_requests").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	req, err := scanRequest(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan request: %v", ErrScanRow, err)
	}

	return req, nil
}

// HasPending возвращает true, если по платежу уже есть PENDING-заявка
func (r *Repository) HasPending(ctx context.Context, paymentID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(1)").
		From("refund_requests").
		Where(squirrel.Eq{"payment_id": paymentID, "status": domain.RefundRequestPending}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasPending - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: HasPending - scan count: %v", ErrScanRow, err)
	}

	return count > 0, nil
}

// ListByPaymentID получает все заявки платежа, новые первыми
func (r *Repository) ListByPaymentID(ctx context.Context, paymentID int64) ([]*domain.RefundRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(requestColumns).
		From("refund_requests").
		Where(squirrel.Eq{"payment_id": paymentID}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByPaymentID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPaymentID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	requests := make([]*domain.RefundRequest, 0)
	for rows.Next() {
		req, err := scanRequestRows(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByPaymentID - scan row: %v", ErrScanRow, err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByPaymentID - rows error: %v", ErrScanRow, err)
	}

	return requests, nil
}

// Approve переводит заявку pending -> approved с одобренной суммой
// и ссылкой на бронирование, к которому применен возврат
func (r *Repository) Approve(ctx context.Context, id int64, bookingID int64, approvedAmount int64, processedBy int64) error {
	builder := psqlbuilder.Update("refund_requests").
		Set("status", domain.RefundRequestApproved).
		Set("booking_id", bookingID).
		Set("approved_amount", approvedAmount).
		Set("processed_by", processedBy).
		Set("processed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.RefundRequestPending})

	return r.execDecision(ctx, "Approve", id, builder)
}

// Reject переводит заявку pending -> rejected с причиной отказа
func (r *Repository) Reject(ctx context.Context, id int64, rejectionReason string, processedBy int64) error {
	builder := psqlbuilder.Update("refund_requests").
		Set("status", domain.RefundRequestRejected).
		Set("rejection_reason", rejectionReason).
		Set("processed_by", processedBy).
		Set("processed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.RefundRequestPending})

	return r.execDecision(ctx, "Reject", id, builder)
}

func (r *Repository) execDecision(ctx context.Context, method string, id int64, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return ErrRequestNotPending
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequestFields(scanner rowScanner) (*domain.RefundRequest, error) {
	var (
		req             domain.RefundRequest
		bookingID       sql.NullInt64
		approvedAmount  sql.NullInt64
		rejectionReason sql.NullString
		processedBy     sql.NullInt64
		processedAt     sql.NullTime
		createdAt       sql.NullTime
	)

	err := scanner.Scan(
		&req.ID,
		&req.PublicID,
		&req.PaymentID,
		&bookingID,
		&req.RequestedBy,
		&req.Reason,
		&req.RequestedAmount,
		&req.Status,
		&approvedAmount,
		&rejectionReason,
		&processedBy,
		&processedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if bookingID.Valid {
		req.BookingID = &bookingID.Int64
	}
	if approvedAmount.Valid {
		req.ApprovedAmount = &approvedAmount.Int64
	}
	if rejectionReason.Valid {
		req.RejectionReason = &rejectionReason.String
	}
	if processedBy.Valid {
		req.ProcessedBy = &processedBy.Int64
	}
	if processedAt.Valid {
		req.ProcessedAt = &processedAt.Time
	}
	req.CreatedAt = createdAt.Time

	return &req, nil
}

func scanRequest(row *sql.Row) (*domain.RefundRequest, error) {
	return scanRequestFields(row)
}

func scanRequestRows(rows *sql.Rows) (*domain.RefundRequest, error) {
	return scanRequestFields(rows)
}
