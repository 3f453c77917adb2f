package persistence

import (
	"context"

	"github.com/erp/payments/internal/domain/payment"
	"gorm.io/gorm"
)

// GormUnitOfWork implements payment.UnitOfWork on a GORM transaction. Every
// repository handed to fn is bound to the same transaction, so the row locks
// taken through them hold until commit or rollback.
type GormUnitOfWork struct {
	db       *gorm.DB
	invoices *GormInvoiceRepository
	records  *GormPaymentRecordRepository
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:       db,
		invoices: NewGormInvoiceRepository(db),
		records:  NewGormPaymentRecordRepository(db),
	}
}

// Execute runs fn inside one database transaction. A non-nil error from fn
// rolls everything back; otherwise the transaction commits.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos payment.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := payment.Repositories{
			Invoices: u.invoices.WithTx(tx),
			Records:  u.records.WithTx(tx),
		}
		return fn(ctx, repos)
	})
}
