package payment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

var paymentColumnList = []string{
	"id", "booking_group_id", "user_id", "therapist_id", "session_type", "session_count",
	"original_fee", "discount_rate", "final_fee", "platform_fee", "status", "refund_amount",
	"settlement_amount", "settled_at", "created_at", "updated_at",
}

func paymentRow(id int64, status domain.PaymentStatus, finalFee, refundAmount int64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(paymentColumnList).AddRow(
		id, uuid.New().String(), int64(5), int64(7), string(domain.SessionTherapy), 5,
		int64(500000), 10, finalFee, int64(22500), string(status), refundAmount,
		int64(0), nil, now, now,
	)
}

func TestRepository_ApplyRefund(t *testing.T) {
	t.Run("applies partial refund", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectQuery("UPDATE payments SET refund_amount").
			WillReturnRows(paymentRow(42, domain.PaymentPartiallyRefunded, 450000, 90000))

		p, err := repo.ApplyRefund(context.Background(), 42, 90000)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPartiallyRefunded, p.Status)
		assert.Equal(t, int64(90000), p.RefundAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refund above final fee returns ErrRefundExceedsFee", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		// Условный UPDATE не прошел, но платеж существует
		mock.ExpectQuery("UPDATE payments SET refund_amount").
			WillReturnRows(sqlmock.NewRows(paymentColumnList))
		mock.ExpectQuery("SELECT (.+) FROM payments").
			WithArgs(int64(42)).
			WillReturnRows(paymentRow(42, domain.PaymentPaid, 450000, 400000))

		_, err = repo.ApplyRefund(context.Background(), 42, 100000)
		assert.ErrorIs(t, err, ErrRefundExceedsFee)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing payment returns ErrPaymentNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectQuery("UPDATE payments SET refund_amount").
			WillReturnRows(sqlmock.NewRows(paymentColumnList))
		mock.ExpectQuery("SELECT (.+) FROM payments").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(paymentColumnList))

		_, err = repo.ApplyRefund(context.Background(), 99, 100000)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ConfirmTransfer(t *testing.T) {
	t.Run("confirms pending payment", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE payments SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.ConfirmTransfer(context.Background(), 42)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already paid returns ErrIllegalPaymentStatus", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE payments SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM payments").
			WithArgs(int64(42)).
			WillReturnRows(paymentRow(42, domain.PaymentPaid, 450000, 0))

		err = repo.ConfirmTransfer(context.Background(), 42)
		assert.ErrorIs(t, err, ErrIllegalPaymentStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing payment returns ErrPaymentNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE payments SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM payments").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(paymentColumnList))

		err = repo.ConfirmTransfer(context.Background(), 99)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_AddSettlement(t *testing.T) {
	t.Run("adds settlement", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE payments SET settlement_amount").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.AddSettlement(context.Background(), 42, 85500)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing payment returns ErrPaymentNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec("UPDATE payments SET settlement_amount").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.AddSettlement(context.Background(), 99, 85500)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
