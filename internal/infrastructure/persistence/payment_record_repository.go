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
	"gorm.io/gorm"
)

// GormPaymentRecordRepository implements payment.PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormPaymentRecordRepository) WithTx(tx *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: tx}
}

// FindByID finds a payment record by its ID
func (r *GormPaymentRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentRecord, error) {
	var model models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a payment record by ID for a specific tenant
func (r *GormPaymentRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.PaymentRecord, error) {
	var model models.PaymentRecordModel
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

// FindByBatchReference finds all records sharing a batch reference
func (r *GormPaymentRecordRepository) FindByBatchReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]payment.PaymentRecord, error) {
	var recordModels []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND batch_reference = ?", tenantID, reference).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toDomainRecords(recordModels), nil
}

// FindByInvoice finds all records for an invoice, cancelled ones included
func (r *GormPaymentRecordRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]payment.PaymentRecord, error) {
	var recordModels []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("payment_date DESC, created_at DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toDomainRecords(recordModels), nil
}

// FindAllForTenant finds records for a tenant with filtering
func (r *GormPaymentRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter payment.RecordFilter) ([]payment.PaymentRecord, error) {
	var recordModels []models.PaymentRecordModel
	query := r.db.WithContext(ctx).Model(&models.PaymentRecordModel{}).
		Where("tenant_id = ?", tenantID)
	query = applyRecordFilter(query, filter, true)

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toDomainRecords(recordModels), nil
}

// CountForTenant counts records for a tenant with filtering
func (r *GormPaymentRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter payment.RecordFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PaymentRecordModel{}).
		Where("tenant_id = ?", tenantID)
	query = applyRecordFilter(query, filter, false)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a new payment record
func (r *GormPaymentRecordRepository) Create(ctx context.Context, record *payment.PaymentRecord) error {
	model := models.PaymentRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPaymentRecordRepository) SaveWithLock(ctx context.Context, record *payment.PaymentRecord) error {
	model := models.PaymentRecordModelFromDomain(record)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyRecordFilter applies record filter options to a query. Pagination and
// ordering are skipped for count queries.
func applyRecordFilter(query *gorm.DB, filter payment.RecordFilter, paginate bool) *gorm.DB {
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.BatchReference != nil {
		query = query.Where("batch_reference = ?", *filter.BatchReference)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(batch_reference) LIKE ? OR LOWER(notes) LIKE ?", pattern, pattern)
	}

	if !paginate {
		return query
	}

	orderBy := "payment_date"
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

func toDomainRecords(recordModels []models.PaymentRecordModel) []payment.PaymentRecord {
	records := make([]payment.PaymentRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records
}
