package timeslot

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

const slotColumns = "id, therapist_id, slot_date, start_time, end_time, " +
	"is_available, is_holiday, is_buffer_blocked, current_bookings, max_capacity, " +
	"created_at, updated_at"

// Repository репозиторий слотов. Единственная точка изменения
// current_bookings - методы Reserve и Release.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает слот. Повторная вставка с тем же (therapist_id, slot_date,
// start_time) молча пропускается (ON CONFLICT DO NOTHING) - материализация
// слотов идемпотентна. Возвращает true, если слот был создан.
// Новый слот всегда создается с current_bookings = 0.
func (r *Repository) Create(ctx context.Context, slot *domain.TimeSlot) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	maxCapacity := slot.MaxCapacity
	if maxCapacity <= 0 {
		maxCapacity = 1
	}

	query, args, err := psqlbuilder.Insert("time_slots").
		Columns(
			"therapist_id",
			"slot_date",
			"start_time",
			"end_time",
			"is_available",
			"is_holiday",
			"is_buffer_blocked",
			"current_bookings",
			"max_capacity",
		).
		Values(
			slot.TherapistID,
			slot.Date,
			slot.StartTime,
			slot.EndTime,
			slot.IsAvailable,
			slot.IsHoliday,
			slot.IsBufferBlocked,
			0,
			maxCapacity,
		).
		Suffix("ON CONFLICT (therapist_id, slot_date, start_time) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		// Конфликт уникального ключа: слот уже существует
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	slot.CurrentBookings = 0
	slot.MaxCapacity = maxCapacity
	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return true, nil
}

// GetByID получает слот по ID.
// Внутри транзакции читает с блокировкой FOR UPDATE.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns).
		From("time_slots").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// ListByTherapistRange получает слоты терапевта в диапазоне дат (включительно).
// При onlyOfferable = true возвращаются только слоты, доступные новым клиентам.
func (r *Repository) ListByTherapistRange(
	ctx context.Context,
	therapistID int64,
	from, to time.Time,
	onlyOfferable bool,
) ([]*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns).
		From("time_slots").
		Where(squirrel.Eq{"therapist_id": therapistID}).
		Where(squirrel.GtOrEq{"slot_date": from}).
		Where(squirrel.LtOrEq{"slot_date": to}).
		OrderBy("slot_date ASC, start_time ASC")

	if onlyOfferable {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{
				"is_available":      true,
				"is_holiday":        false,
				"is_buffer_blocked": false,
			}).
			Where(squirrel.Expr("current_bookings < max_capacity"))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTherapistRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTherapistRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// Reserve атомарно резервирует слот под бронирование.
//
// Одиночный условный UPDATE: успех только если слот доступен, не праздник,
// не заблокирован буфером и current_bookings < max_capacity. Два конкурентных
// Reserve на последний свободный слот разрешаются СУБД: ровно один получает
// строку, второй - ErrSlotNotAvailable. Никогда не реализуется как
// read-then-write на стороне приложения.
func (r *Repository) Reserve(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("time_slots").
		Set("current_bookings", squirrel.Expr("current_bookings + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":                id,
			"is_available":      true,
			"is_holiday":        false,
			"is_buffer_blocked": false,
		}).
		Where(squirrel.Expr("current_bookings < max_capacity")).
		Suffix("RETURNING " + slotColumns).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - build update query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		// Разделяем "слот не существует" и "слот занят"
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, ErrSlotNotAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// Release освобождает одно место в слоте. Декремент выполняется СУБД
// с нижней границей 0, поэтому повторный Release безопасен.
func (r *Repository) Release(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("time_slots").
		Set("current_bookings", squirrel.Expr("GREATEST(current_bookings - 1, 0)")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// SetHoliday помечает слоты терапевта на дату как праздничные (или снимает пометку)
func (r *Repository) SetHoliday(ctx context.Context, therapistID int64, date time.Time, isHoliday bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("time_slots").
		Set("is_holiday", isHoliday).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"therapist_id": therapistID, "slot_date": date}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetHoliday - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetHoliday - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// Delete удаляет слот. Слот с current_bookings > 0 не удаляется.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("time_slots").
		Where(squirrel.Eq{"id": id, "current_bookings": 0}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Либо слот не существует, либо на нем есть активное бронирование
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return ErrSlotBooked
		}
		return ErrSlotNotFound
	}

	return nil
}

// HasBookedInRange возвращает true, если в диапазоне дат есть слоты
// с активными бронированиями. Используется для all-or-nothing удаления.
func (r *Repository) HasBookedInRange(ctx context.Context, therapistID int64, from, to time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(1)").
		From("time_slots").
		Where(squirrel.Eq{"therapist_id": therapistID}).
		Where(squirrel.GtOrEq{"slot_date": from}).
		Where(squirrel.LtOrEq{"slot_date": to}).
		Where(squirrel.Gt{"current_bookings": 0}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasBookedInRange - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: HasBookedInRange - scan count: %v", ErrScanRow, err)
	}

	return count > 0, nil
}

// DeleteByTherapistRange удаляет свободные слоты терапевта в диапазоне дат.
// Вызывается внутри транзакции после проверки HasBookedInRange.
func (r *Repository) DeleteByTherapistRange(ctx context.Context, therapistID int64, from, to time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("time_slots").
		Where(squirrel.Eq{"therapist_id": therapistID, "current_bookings": 0}).
		Where(squirrel.GtOrEq{"slot_date": from}).
		Where(squirrel.LtOrEq{"slot_date": to}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByTherapistRange - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByTherapistRange - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByTherapistRange - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlotFields(scanner rowScanner, slot *domain.TimeSlot) error {
	var createdAt, updatedAt sql.NullTime

	err := scanner.Scan(
		&slot.ID,
		&slot.TherapistID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAvailable,
		&slot.IsHoliday,
		&slot.IsBufferBlocked,
		&slot.CurrentBookings,
		&slot.MaxCapacity,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return err
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time
	return nil
}

func scanSlot(row *sql.Row) (*domain.TimeSlot, error) {
	var slot domain.TimeSlot
	if err := scanSlotFields(row, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func scanSlots(rows *sql.Rows) ([]*domain.TimeSlot, error) {
	slots := make([]*domain.TimeSlot, 0)

	for rows.Next() {
		var slot domain.TimeSlot
		if err := scanSlotFields(rows, &slot); err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
