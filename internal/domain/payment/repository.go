package payment

import (
	"context"
	"time"

	"github.com/erp/payments/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordFilter defines filtering options for payment record queries.
// Filtering itself is delegated to the store's query layer; the grouped
// projector only ever sees the filtered window.
type RecordFilter struct {
	shared.Filter
	InvoiceID      *uuid.UUID     // Filter by owning invoice
	BatchReference *string        // Filter by batch reference
	Status         *RecordStatus  // Filter by lifecycle status
	Kind           *RecordKind    // Filter by regular/overpaid kind
	Method         *PaymentMethod // Filter by payment method
	FromDate       *time.Time     // Filter by payment date range start
	ToDate         *time.Time     // Filter by payment date range end
}

// InvoiceRepository defines the interface for invoice ledger persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByIDs finds invoices by IDs for a tenant, keyed by invoice ID
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Invoice, error)

	// LockByIDs acquires row locks (FOR UPDATE NOWAIT) on the given invoices
	// in ascending ID order and returns them keyed by ID. An unavailable
	// lock surfaces as shared.ErrLockNotAcquired. Only meaningful inside a
	// unit of work.
	LockByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Invoice, error)

	// FindAllForTenant finds invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// SumSettledRegular sums the non-cancelled regular record amounts for an
	// invoice. Pending records count: the balance moves at allocation, before
	// a cheque clears. Used by invariant checks against the stored balance.
	SumSettledRegular(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
}

// PaymentRecordRepository defines the interface for payment record persistence.
// Records are append-and-update only; there is deliberately no Delete.
type PaymentRecordRepository interface {
	// FindByID finds a payment record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRecord, error)

	// FindByIDForTenant finds a payment record by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentRecord, error)

	// FindByBatchReference finds all records sharing a batch reference
	FindByBatchReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]PaymentRecord, error)

	// FindByInvoice finds all records for an invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentRecord, error)

	// FindAllForTenant finds records for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter RecordFilter) ([]PaymentRecord, error)

	// CountForTenant counts records for a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter RecordFilter) (int64, error)

	// Create persists a new payment record
	Create(ctx context.Context, record *PaymentRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, record *PaymentRecord) error
}

// Repositories bundles the repositories participating in one unit of work
type Repositories struct {
	Invoices InvoiceRepository
	Records  PaymentRecordRepository
}

// UnitOfWork runs a function atomically against the invoice ledger and the
// payment record store. Either everything inside fn commits or nothing does;
// there is no user-visible partial state.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// JournalEntryRequest describes the journal entry a confirmation asks the
// accounting service to create
type JournalEntryRequest struct {
	InvoiceID   uuid.UUID
	RecordID    uuid.UUID
	Amount      decimal.Decimal
	BankAccount BankAccount
}

// JournalService is the external accounting-ledger collaborator. It only
// needs to accept and void journal entries; its own double-entry rules are
// out of scope.
type JournalService interface {
	// CreateJournalEntry records a confirmed payment in the external ledger
	// and returns the journal entry ID
	CreateJournalEntry(ctx context.Context, req JournalEntryRequest) (string, error)

	// VoidJournalEntry voids a previously created journal entry
	VoidJournalEntry(ctx context.Context, journalEntryID string) error

	// BankAccounts returns the closed enumeration of deposit accounts
	BankAccounts() []BankAccount
}
