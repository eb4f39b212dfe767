package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TCM-BookingService/pkg/psqlbuilder"
)

const bookingColumns = "id, booking_group_id, payment_id, therapist_id, user_id, time_slot_id, " +
	"session_number, session_type, status, scheduled_at, therapist_note, " +
	"confirmed_at, rejected_at, rejection_reason, " +
	"cancelled_by, cancelled_at, cancellation_reason, " +
	"refund_amount, settlement_amount, settled_at, created_at, updated_at"

// Repository репозиторий бронирований.
//
// Переходы статусов выполняются условными UPDATE с ожидаемым исходным
// статусом в WHERE: сервисный слой уже проверил допустимость перехода,
// а условие защищает от конкурентного изменения между чтением и записью.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование в статусе pending_confirmation
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"booking_group_id",
			"payment_id",
			"therapist_id",
			"user_id",
			"time_slot_id",
			"session_number",
			"session_type",
			"status",
			"scheduled_at",
		).
		Values(
			b.BookingGroupID,
			b.PaymentID,
			b.TherapistID,
			b.UserID,
			b.TimeSlotID,
			b.SessionNumber,
			b.SessionType,
			b.Status,
			b.ScheduledAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции читает с блокировкой FOR UPDATE.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.Booking
	if err := scanBookingFields(executor.QueryRowContext(ctx, query, args...), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return &b, nil
}

// ListByPaymentID получает все бронирования платежа в порядке сессий.
// Внутри транзакции строки блокируются FOR UPDATE (каскадные операции
// уровня платежа).
func (r *Repository) ListByPaymentID(ctx context.Context, paymentID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"payment_id": paymentID}).
		OrderBy("session_number ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPaymentID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPaymentID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListByGroupID получает все бронирования группы (одного чекаута)
func (r *Repository) ListByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"booking_group_id": groupID}).
		OrderBy("session_number ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByGroupID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByGroupID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListByUserID получает историю бронирований родителя.
// Опционально фильтрует по статусу.
func (r *Repository) ListByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("scheduled_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListByTherapistID получает расписание терапевта, опционально за период
func (r *Repository) ListByTherapistID(ctx context.Context, therapistID int64, from, to *time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"therapist_id": therapistID}).
		OrderBy("scheduled_at ASC")

	if from != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"scheduled_at": *from})
	}
	if to != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"scheduled_at": *to})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTherapistID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTherapistID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Confirm переводит бронирование pending_confirmation -> confirmed
func (r *Repository) Confirm(ctx context.Context, id int64) error {
	builder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusConfirmed).
		Set("confirmed_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusPendingConfirmation})

	return r.execTransition(ctx, "Confirm", id, builder)
}

// Reject переводит бронирование в rejected с причиной отказа терапевта
func (r *Repository) Reject(ctx context.Context, id int64, reason string) error {
	builder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusRejected).
		Set("rejected_at", squirrel.Expr("NOW()")).
		Set("rejection_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []domain.BookingStatus{
			domain.StatusPendingConfirmation,
			domain.StatusConfirmed,
		}})

	return r.execTransition(ctx, "Reject", id, builder)
}

// Cancel переводит бронирование в cancelled с данными отмены и суммой возврата
func (r *Repository) Cancel(ctx context.Context, id int64, cancelledBy int64, reason string, refundAmount int64) error {
	builder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancelled_by", cancelledBy).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("cancellation_reason", reason).
		Set("refund_amount", refundAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []domain.BookingStatus{
			domain.StatusPendingConfirmation,
			domain.StatusConfirmed,
		}})

	return r.execTransition(ctx, "Cancel", id, builder)
}

// Complete записывает журнал сессии и переводит confirmed -> completed.
// Отдельного действия "завершить" нет: завершение - побочный эффект
// сохранения журнала.
func (r *Repository) Complete(ctx context.Context, id int64, journal string) error {
	builder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("therapist_note", journal).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusConfirmed})

	return r.execTransition(ctx, "Complete", id, builder)
}

// MarkPendingSettlement переводит completed -> pending_settlement
func (r *Repository) MarkPendingSettlement(ctx context.Context, id int64) error {
	builder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusPendingSettlement).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusCompleted})

	return r.execTransition(ctx, "MarkPendingSettlement", id, builder)
}

// Settle переводит pending_settlement -> settlement_completed с суммой выплаты
func (r *Repository) Settle(ctx context.Context, id int64, settlementAmount int64) error {
	builder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusSettlementCompleted).
		Set("settlement_amount", settlementAmount).
		Set("settled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusPendingSettlement})

	return r.execTransition(ctx, "Settle", id, builder)
}

// MarkRefunded переводит бронирование в refunded из любого из ожидаемых
// статусов, записывая сумму возврата и причину в поля отмены
func (r *Repository) MarkRefunded(ctx context.Context, id int64, refundAmount int64, reason string, processedBy int64, expected []domain.BookingStatus) error {
	builder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusRefunded).
		Set("refund_amount", refundAmount).
		Set("cancelled_by", processedBy).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("cancellation_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": expected})

	return r.execTransition(ctx, "MarkRefunded", id, builder)
}

// execTransition выполняет условный переход статуса.
// 0 затронутых строк означает конкурентное изменение или отсутствие строки.
func (r *Repository) execTransition(ctx context.Context, method string, id int64, builder squirrel.UpdateBuilder) error {
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
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		return ErrStatusConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookingFields(scanner rowScanner, b *domain.Booking) error {
	var (
		therapistNote      sql.NullString
		confirmedAt        sql.NullTime
		rejectedAt         sql.NullTime
		rejectionReason    sql.NullString
		cancelledBy        sql.NullInt64
		cancelledAt        sql.NullTime
		cancellationReason sql.NullString
		settlementAmount   sql.NullInt64
		settledAt          sql.NullTime
		createdAt          sql.NullTime
		updatedAt          sql.NullTime
	)

	err := scanner.Scan(
		&b.ID,
		&b.BookingGroupID,
		&b.PaymentID,
		&b.TherapistID,
		&b.UserID,
		&b.TimeSlotID,
		&b.SessionNumber,
		&b.SessionType,
		&b.Status,
		&b.ScheduledAt,
		&therapistNote,
		&confirmedAt,
		&rejectedAt,
		&rejectionReason,
		&cancelledBy,
		&cancelledAt,
		&cancellationReason,
		&b.RefundAmount,
		&settlementAmount,
		&settledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return err
	}

	if therapistNote.Valid {
		b.TherapistNote = &therapistNote.String
	}
	if confirmedAt.Valid {
		b.ConfirmedAt = &confirmedAt.Time
	}
	if rejectedAt.Valid {
		b.RejectedAt = &rejectedAt.Time
	}
	if rejectionReason.Valid {
		b.RejectionReason = &rejectionReason.String
	}
	if cancelledBy.Valid {
		b.CancelledBy = &cancelledBy.Int64
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if cancellationReason.Valid {
		b.CancellationReason = &cancellationReason.String
	}
	if settlementAmount.Valid {
		b.SettlementAmount = &settlementAmount.Int64
	}
	if settledAt.Valid {
		b.SettledAt = &settledAt.Time
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		if err := scanBookingFields(rows, &b); err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
