package timeslot

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

var slotColumnList = []string{
	"id", "therapist_id", "slot_date", "start_time", "end_time",
	"is_available", "is_holiday", "is_buffer_blocked", "current_bookings", "max_capacity",
	"created_at", "updated_at",
}

func slotRow(id, therapistID int64, current, max int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(slotColumnList).AddRow(
		id, therapistID, now.Truncate(24*time.Hour), "10:00", "11:00",
		true, false, false, current, max,
		now, now,
	)
}

func TestRepository_Reserve(t *testing.T) {
	t.Run("reserves free slot", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectQuery("UPDATE time_slots SET current_bookings").
			WillReturnRows(slotRow(42, 7, 1, 1))

		slot, err := repo.Reserve(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), slot.ID)
		assert.Equal(t, 1, slot.CurrentBookings)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("full slot returns ErrSlotNotAvailable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		// Условный UPDATE не находит строку, но слот существует
		mock.ExpectQuery("UPDATE time_slots SET current_bookings").
			WillReturnRows(sqlmock.NewRows(slotColumnList))
		mock.ExpectQuery("SELECT (.+) FROM time_slots").
			WithArgs(int64(42)).
			WillReturnRows(slotRow(42, 7, 1, 1))

		_, err = repo.Reserve(context.Background(), 42)
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing slot returns ErrSlotNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectQuery("UPDATE time_slots SET current_bookings").
			WillReturnRows(sqlmock.NewRows(slotColumnList))
		mock.ExpectQuery("SELECT (.+) FROM time_slots").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(slotColumnList))

		_, err = repo.Reserve(context.Background(), 99)
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Release(t *testing.T) {
	t.Run("releases slot", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE time_slots SET current_bookings").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Release(context.Background(), 42)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing slot returns ErrSlotNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE time_slots SET current_bookings").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Release(context.Background(), 99)
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Create(t *testing.T) {
	slot := func() *domain.TimeSlot {
		return &domain.TimeSlot{
			TherapistID: 7,
			Date:        time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			StartTime:   "10:00",
			EndTime:     "11:00",
			IsAvailable: true,
			MaxCapacity: 1,
		}
	}

	t.Run("creates new slot", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		now := time.Now().UTC()
		mock.ExpectQuery("INSERT INTO time_slots").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(42), now, now))

		s := slot()
		created, err := repo.Create(context.Background(), s)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(42), s.ID)
		assert.Equal(t, 0, s.CurrentBookings)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate slot is skipped", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		// ON CONFLICT DO NOTHING: RETURNING не возвращает строк
		mock.ExpectQuery("INSERT INTO time_slots").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}))

		created, err := repo.Create(context.Background(), slot())
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Delete(t *testing.T) {
	t.Run("deletes free slot", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("DELETE FROM time_slots").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Delete(context.Background(), 42)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("booked slot returns ErrSlotBooked", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("DELETE FROM time_slots").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM time_slots").
			WithArgs(int64(42)).
			WillReturnRows(slotRow(42, 7, 1, 1))

		err = repo.Delete(context.Background(), 42)
		assert.ErrorIs(t, err, ErrSlotBooked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing slot returns ErrSlotNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("DELETE FROM time_slots").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM time_slots").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(slotColumnList))

		err = repo.Delete(context.Background(), 99)
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
