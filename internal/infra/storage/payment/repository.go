package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TCM-BookingService/pkg/psqlbuilder"
)

const paymentColumns = "id, booking_group_id, user_id, therapist_id, session_type, session_count, " +
	"original_fee, discount_rate, final_fee, platform_fee, status, refund_amount, " +
	"settlement_amount, settled_at, created_at, updated_at"

// Repository репозиторий платежей. Все денежные мутации (возвраты,
// выплаты) выполняются условными UPDATE на стороне СУБД - никаких
// read-then-write расчетов в приложении.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает платеж в статусе pending_payment
func (r *Repository) Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns(
			"booking_group_id",
			"user_id",
			"therapist_id",
			"session_type",
			"session_count",
			"original_fee",
			"discount_rate",
			"final_fee",
			"platform_fee",
			"status",
		).
		Values(
			p.BookingGroupID,
			p.UserID,
			p.TherapistID,
			p.SessionType,
			p.SessionCount,
			p.OriginalFee,
			p.DiscountRate,
			p.FinalFee,
			p.PlatformFee,
			p.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// GetByID получает платеж по ID.
// Внутри транзакции читает с блокировкой FOR UPDATE, чтобы конкурентные
// финансовые операции над одним платежом сериализовались.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(paymentColumns).
		From("payments").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan payment: %v", ErrScanRow, err)
	}

	return p, nil
}

// ConfirmTransfer подтверждает ручной банковский перевод:
// pending_payment -> paid. Перевод из любого другого статуса отклоняется.
func (r *Repository) ConfirmTransfer(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("status", domain.PaymentPaid).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.PaymentPendingPayment}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ConfirmTransfer - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ConfirmTransfer - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ConfirmTransfer - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrPaymentNotFound) {
			return ErrPaymentNotFound
		}
		return ErrIllegalPaymentStatus
	}

	return nil
}

// ApplyRefund атомарно добавляет amount к накопленному возврату платежа.
//
// Условный UPDATE: строка изменяется только если итоговый возврат не
// превышает final_fee; статус пересчитывается той же командой
// (refunded при полном возврате, иначе partially_refunded). Превышение
// лимита возвращает ErrRefundExceedsFee, не меняя строку.
func (r *Repository) ApplyRefund(ctx context.Context, id int64, amount int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("refund_amount", squirrel.Expr("refund_amount + ?", amount)).
		Set("status", squirrel.Expr(
			"CASE WHEN refund_amount + ? >= final_fee THEN ? ELSE ? END",
			amount, string(domain.PaymentRefunded), string(domain.PaymentPartiallyRefunded),
		)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("refund_amount + ? <= final_fee", amount)).
		Suffix("RETURNING " + paymentColumns).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ApplyRefund - build update query: %v", ErrBuildQuery, err)
	}

	p, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, ErrRefundExceedsFee
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ApplyRefund - scan payment: %v", ErrScanRow, err)
	}

	return p, nil
}

// AddSettlement добавляет выплату терапевту к платежу и ставит отметку
// времени выплаты. Вызывается при расчете каждого бронирования пакета.
func (r *Repository) AddSettlement(ctx context.Context, id int64, amount int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("settlement_amount", squirrel.Expr("settlement_amount + ?", amount)).
		Set("settled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddSettlement - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AddSettlement - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AddSettlement - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	var p domain.Payment
	var settledAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.BookingGroupID,
		&p.UserID,
		&p.TherapistID,
		&p.SessionType,
		&p.SessionCount,
		&p.OriginalFee,
		&p.DiscountRate,
		&p.FinalFee,
		&p.PlatformFee,
		&p.Status,
		&p.RefundAmount,
		&p.SettlementAmount,
		&settledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if settledAt.Valid {
		p.SettledAt = &settledAt.Time
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
