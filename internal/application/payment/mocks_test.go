package payment

import (
	"context"
	"time"

	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/domain/shared"
	"github.com/erp/payments/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockInvoiceRepository is a mock implementation of payment.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*payment.Invoice, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*payment.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) LockByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*payment.Invoice, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*payment.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *payment.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *payment.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SumSettledRegular(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPaymentRecordRepository is a mock implementation of payment.PaymentRecordRepository
type MockPaymentRecordRepository struct {
	mock.Mock
}

func (m *MockPaymentRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) FindByBatchReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]payment.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]payment.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter payment.RecordFilter) ([]payment.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter payment.RecordFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRecordRepository) Create(ctx context.Context, record *payment.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentRecordRepository) SaveWithLock(ctx context.Context, record *payment.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockJournalService is a mock implementation of payment.JournalService
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) CreateJournalEntry(ctx context.Context, req payment.JournalEntryRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(string), args.Error(1)
}

func (m *MockJournalService) VoidJournalEntry(ctx context.Context, journalEntryID string) error {
	args := m.Called(ctx, journalEntryID)
	return args.Error(0)
}

func (m *MockJournalService) BankAccounts() []payment.BankAccount {
	args := m.Called()
	return args.Get(0).([]payment.BankAccount)
}

// =============================================================================
// Unit of Work Stub
// =============================================================================

// stubUnitOfWork runs the function against the supplied mock repositories
// without a real transaction, so tests can observe rollback as a returned
// error instead of a database effect
type stubUnitOfWork struct {
	repos payment.Repositories
}

func newStubUnitOfWork(invoices payment.InvoiceRepository, records payment.PaymentRecordRepository) *stubUnitOfWork {
	return &stubUnitOfWork{repos: payment.Repositories{Invoices: invoices, Records: records}}
}

func (u *stubUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos payment.Repositories) error) error {
	return fn(ctx, u.repos)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newMoney(amount decimal.Decimal) valueobject.Money {
	return valueobject.NewMoneyMYR(amount)
}

func createTestInvoice(tenantID uuid.UUID, number string, total, balance decimal.Decimal) *payment.Invoice {
	invoice, _ := payment.NewInvoice(tenantID, number, "Test Customer", newMoney(total))
	invoice.BalanceDue = balance
	if balance.LessThan(total) && balance.IsPositive() {
		invoice.Status = payment.InvoiceStatusPartial
	}
	if balance.IsZero() {
		invoice.Status = payment.InvoiceStatusPaid
	}
	return invoice
}

func createTestRecord(tenantID, invoiceID uuid.UUID, ref *string, amount decimal.Decimal, kind payment.RecordKind, method payment.PaymentMethod, date time.Time) *payment.PaymentRecord {
	record, _ := payment.NewPaymentRecord(tenantID, invoiceID, ref,
		newMoney(amount), kind, date, method, "")
	return record
}
