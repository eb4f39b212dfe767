package therapist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TCM-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий профилей терапевтов, окон доступности
// и праздничных дат
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория терапевтов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает профиль терапевта по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TherapistProfile, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByUserID получает профиль терапевта по user id владельца
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*domain.TherapistProfile, error) {
	return r.getBy(ctx, squirrel.Eq{"user_id": userID})
}

func (r *Repository) getBy(ctx context.Context, pred squirrel.Eq) (*domain.TherapistProfile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"user_id",
		"status",
		"session_fee",
		"consultation_fee",
		"consultation_settlement_amount",
		"bank_name",
		"bank_account",
		"account_holder_name",
		"created_at",
		"updated_at",
	).
		From("therapist_profiles").
		Where(pred).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getBy - build select query: %v", ErrBuildQuery, err)
	}

	var (
		t                      domain.TherapistProfile
		consultationFee        sql.NullInt64
		consultationSettlement sql.NullInt64
		bankName               sql.NullString
		bankAccount            sql.NullString
		accountHolder          sql.NullString
		createdAt, updatedAt   sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&t.ID,
		&t.UserID,
		&t.Status,
		&t.SessionFee,
		&consultationFee,
		&consultationSettlement,
		&bankName,
		&bankAccount,
		&accountHolder,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTherapistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getBy - scan profile: %v", ErrScanRow, err)
	}

	if consultationFee.Valid {
		t.ConsultationFee = &consultationFee.Int64
	}
	if consultationSettlement.Valid {
		t.ConsultationSettlementAmount = &consultationSettlement.Int64
	}
	if bankName.Valid {
		t.BankName = &bankName.String
	}
	if bankAccount.Valid {
		t.BankAccount = &bankAccount.String
	}
	if accountHolder.Valid {
		t.AccountHolderName = &accountHolder.String
	}
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return &t, nil
}

// CreateWindow создает еженедельное окно доступности.
// Проверка пересечений выполняется сервисным слоем до вставки.
func (r *Repository) CreateWindow(ctx context.Context, w *domain.TherapistAvailability) (*domain.TherapistAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("therapist_availability").
		Columns("therapist_id", "weekday", "start_time", "end_time").
		Values(w.TherapistID, int(w.Weekday), w.StartTime, w.EndTime).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateWindow - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&w.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: CreateWindow - execute insert: %v", ErrExecQuery, err)
	}

	w.CreatedAt = createdAt.Time
	return w, nil
}

// ListWindows получает все окна доступности терапевта.
// Внутри транзакции строки блокируются FOR UPDATE - проверка пересечений
// при вставке нового окна не должна гоняться с конкурентной вставкой.
func (r *Repository) ListWindows(ctx context.Context, therapistID int64) ([]*domain.TherapistAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "therapist_id", "weekday", "start_time", "end_time", "created_at").
		From("therapist_availability").
		Where(squirrel.Eq{"therapist_id": therapistID}).
		OrderBy("weekday ASC, start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWindows - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWindows - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]*domain.TherapistAvailability, 0)
	for rows.Next() {
		var (
			w         domain.TherapistAvailability
			weekday   int
			createdAt sql.NullTime
		)
		if err := rows.Scan(&w.ID, &w.TherapistID, &weekday, &w.StartTime, &w.EndTime, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: ListWindows - scan row: %v", ErrScanRow, err)
		}
		w.Weekday = time.Weekday(weekday)
		w.CreatedAt = createdAt.Time
		windows = append(windows, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWindows - rows error: %v", ErrScanRow, err)
	}

	return windows, nil
}

// DeleteWindow удаляет окно доступности
func (r *Repository) DeleteWindow(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("therapist_availability").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteWindow - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteWindow - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteWindow - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrWindowNotFound
	}

	return nil
}

// CreateHoliday создает праздничную дату.
// therapist_id = NULL - общий праздник для всех терапевтов.
func (r *Repository) CreateHoliday(ctx context.Context, h *domain.HolidayDate) (*domain.HolidayDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("holiday_dates").
		Columns("therapist_id", "holiday_date", "is_recurring", "reason").
		Values(h.TherapistID, h.Date, h.IsRecurring, h.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateHoliday - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&h.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: CreateHoliday - execute insert: %v", ErrExecQuery, err)
	}

	h.CreatedAt = createdAt.Time
	return h, nil
}

// ListHolidays получает праздники, применимые к терапевту:
// его персональные и, при includeShared, общие (therapist_id IS NULL).
// Повторяющиеся праздники возвращаются независимо от диапазона дат,
// сопоставление месяц/день выполняет доменная модель.
func (r *Repository) ListHolidays(ctx context.Context, therapistID int64, includeShared bool, from, to time.Time) ([]*domain.HolidayDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	ownership := squirrel.Or{squirrel.Eq{"therapist_id": therapistID}}
	if includeShared {
		ownership = append(ownership, squirrel.Eq{"therapist_id": nil})
	}

	query, args, err := psqlbuilder.Select("id", "therapist_id", "holiday_date", "is_recurring", "reason", "created_at").
		From("holiday_dates").
		Where(ownership).
		Where(squirrel.Or{
			squirrel.Eq{"is_recurring": true},
			squirrel.And{
				squirrel.GtOrEq{"holiday_date": from},
				squirrel.LtOrEq{"holiday_date": to},
			},
		}).
		OrderBy("holiday_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListHolidays - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListHolidays - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	holidays := make([]*domain.HolidayDate, 0)
	for rows.Next() {
		var (
			h           domain.HolidayDate
			therapistID sql.NullInt64
			reason      sql.NullString
			createdAt   sql.NullTime
		)
		if err := rows.Scan(&h.ID, &therapistID, &h.Date, &h.IsRecurring, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: ListHolidays - scan row: %v", ErrScanRow, err)
		}
		if therapistID.Valid {
			h.TherapistID = &therapistID.Int64
		}
		if reason.Valid {
			h.Reason = &reason.String
		}
		h.CreatedAt = createdAt.Time
		holidays = append(holidays, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListHolidays - rows error: %v", ErrScanRow, err)
	}

	return holidays, nil
}
