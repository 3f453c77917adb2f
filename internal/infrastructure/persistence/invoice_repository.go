package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/domain/shared"
	"github.com/erp/payments/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgLockNotAvailable is the PostgreSQL error code raised by NOWAIT when a
// row lock is held elsewhere
const pgLockNotAvailable = "55P03"

// GormInvoiceRepository implements payment.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormInvoiceRepository) WithTx(tx *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: tx}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an invoice by ID for a specific tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds invoices by IDs for a tenant, keyed by invoice ID.
// Missing invoices are simply absent from the result.
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*payment.Invoice, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*payment.Invoice{}, nil
	}

	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make(map[uuid.UUID]*payment.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		inv := invoiceModels[i].ToDomain()
		invoices[inv.ID] = inv
	}
	return invoices, nil
}

// LockByIDs acquires FOR UPDATE NOWAIT row locks on the given invoices in
// ascending ID order. Ordering here and in every caller keeps concurrent
// batches over overlapping invoice sets from deadlocking; NOWAIT turns a
// contended lock into an immediate shared.ErrLockNotAcquired instead of a
// queued wait.
func (r *GormInvoiceRepository) LockByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*payment.Invoice, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*payment.Invoice{}, nil
	}

	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("id ASC").
		Find(&invoiceModels).Error; err != nil {
		if isLockNotAvailable(err) {
			return nil, shared.ErrLockNotAcquired
		}
		return nil, err
	}

	invoices := make(map[uuid.UUID]*payment.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		inv := invoiceModels[i].ToDomain()
		invoices[inv.ID] = inv
	}
	return invoices, nil
}

// FindAllForTenant finds invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	query = applyInvoiceFilter(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]payment.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *payment.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *payment.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SumSettledRegular sums the non-cancelled regular record amounts for an
// invoice. Pending cheques are included because the balance moves at
// allocation, not at clearance.
func (r *GormInvoiceRepository) SumSettledRegular(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentRecordModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("invoice_id = ? AND kind = ? AND status <> ?",
			invoiceID, payment.RecordKindRegular, payment.RecordStatusCancelled).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyInvoiceFilter applies common filter options to an invoice query
func applyInvoiceFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	orderBy := "created_at"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	orderDir := "desc"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Limit(filter.PageSize).Offset(offset)
	}
	return query
}

// isLockNotAvailable reports whether err is the NOWAIT lock failure
func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable
}
