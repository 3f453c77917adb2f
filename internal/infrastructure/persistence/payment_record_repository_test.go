package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/domain/shared"
	"github.com/erp/payments/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockPaymentRecordRepository(t *testing.T) (*GormPaymentRecordRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRecordRepository(gormDB), mock, mockDB
}

func recordRows(recordID, tenantID, invoiceID uuid.UUID, ref string, amount string, status payment.RecordStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "version", "tenant_id", "invoice_id", "batch_reference", "amount", "kind", "method", "status", "payment_date"}).
		AddRow(recordID, 1, tenantID, invoiceID, ref, amount, payment.RecordKindRegular, payment.PaymentMethodCash, status, time.Now())
}

func TestGormPaymentRecordRepository_FindByBatchReference(t *testing.T) {
	t.Run("finds all records sharing a reference", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRecordRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		recordID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payment_records" WHERE tenant_id = \$1 AND batch_reference = \$2 ORDER BY created_at ASC`).
			WithArgs(tenantID, "RCPT-1001").
			WillReturnRows(recordRows(recordID, tenantID, invoiceID, "RCPT-1001", "150", payment.RecordStatusActive))

		records, err := repo.FindByBatchReference(context.Background(), tenantID, "RCPT-1001")

		assert.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, recordID, records[0].ID)
		assert.Equal(t, "150", records[0].Amount.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown reference returns empty slice", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRecordRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payment_records" WHERE tenant_id = \$1 AND batch_reference = \$2 ORDER BY created_at ASC`).
			WithArgs(tenantID, "RCPT-MISSING").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		records, err := repo.FindByBatchReference(context.Background(), tenantID, "RCPT-MISSING")

		assert.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRecordRepository_FindByIDForTenant(t *testing.T) {
	t.Run("returns ErrNotFound for missing record", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRecordRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		recordID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payment_records" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, recordID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		record, err := repo.FindByIDForTenant(context.Background(), tenantID, recordID)

		assert.Error(t, err)
		assert.Nil(t, record)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRecordRepository_SaveWithLock(t *testing.T) {
	t.Run("stale version returns concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRecordRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		record, err := payment.NewPaymentRecord(
			tenantID,
			invoiceID,
			nil,
			valueobject.NewMoneyMYR(decimal.NewFromInt(100)),
			payment.RecordKindRegular,
			time.Now(),
			payment.PaymentMethodCash,
			"",
		)
		require.NoError(t, err)
		require.NoError(t, record.Cancel())

		mock.ExpectExec(`UPDATE "payment_records" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), record)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
