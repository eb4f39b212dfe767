package refund

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

var requestColumnList = []string{
	"id", "public_id", "payment_id", "booking_id", "requested_by", "reason",
	"requested_amount", "status", "approved_amount", "rejection_reason",
	"processed_by", "processed_at", "created_at",
}

func requestRow(id int64, status domain.RefundRequestStatus) *sqlmock.Rows {
	return sqlmock.NewRows(requestColumnList).AddRow(
		id, uuid.New().String(), int64(17), nil, int64(5), "ребенок заболел",
		int64(90000), string(status), nil, nil,
		nil, nil, time.Now().UTC(),
	)
}

func TestRepository_Create(t *testing.T) {
	request := func() *domain.RefundRequest {
		return &domain.RefundRequest{
			PublicID:        uuid.New(),
			PaymentID:       17,
			RequestedBy:     5,
			Reason:          "ребенок заболел",
			RequestedAmount: 90000,
			Status:          domain.RefundRequestPending,
		}
	}

	t.Run("creates pending request", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectQuery("INSERT INTO refund_requests").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
				AddRow(int64(3), time.Now().UTC()))

		req := request()
		created, err := repo.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(3), created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second pending request returns ErrPendingRequestExists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		// Частичный уникальный индекс по (payment_id) WHERE status = 'pending'
		mock.ExpectQuery("INSERT INTO refund_requests").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_refund_requests_pending"})

		_, err = repo.Create(context.Background(), request())
		assert.ErrorIs(t, err, ErrPendingRequestExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Approve(t *testing.T) {
	t.Run("approves pending request", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE refund_requests SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Approve(context.Background(), 3, 42, 90000, 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already decided returns ErrRequestNotPending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE refund_requests SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM refund_requests").
			WithArgs(int64(3)).
			WillReturnRows(requestRow(3, domain.RefundRequestRejected))

		err = repo.Approve(context.Background(), 3, 42, 90000, 1)
		assert.ErrorIs(t, err, ErrRequestNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing request returns ErrRequestNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE refund_requests SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM refund_requests").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(requestColumnList))

		err = repo.Approve(context.Background(), 99, 42, 90000, 1)
		assert.ErrorIs(t, err, ErrRequestNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Reject(t *testing.T) {
	t.Run("rejects pending request", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE refund_requests SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Reject(context.Background(), 3, "сессия уже проведена", 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_HasPending(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{name: "pending exists", count: 1, want: true},
		{name: "no pending", count: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewRepository(db)

			mock.ExpectQuery("SELECT COUNT").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))

			got, err := repo.HasPending(context.Background(), 17)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
