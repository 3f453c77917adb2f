package payment

import (
	"fmt"
	"time"

	"github.com/erp/payments/internal/domain/shared"
	"github.com/erp/payments/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordStatus represents the lifecycle state of a payment record
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "PENDING"   // Awaiting confirmation (e.g., cheque not yet cleared)
	RecordStatusActive    RecordStatus = "ACTIVE"    // Confirmed and counted against the invoice balance
	RecordStatusCancelled RecordStatus = "CANCELLED" // Terminal; never deleted, never resurrected
)

// IsValid checks if the status is a valid RecordStatus
func (s RecordStatus) IsValid() bool {
	switch s {
	case RecordStatusPending, RecordStatusActive, RecordStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RecordStatus
func (s RecordStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the record is in a terminal state
func (s RecordStatus) IsTerminal() bool {
	return s == RecordStatusCancelled
}

// RecordKind distinguishes the portion of a payment that closes outstanding
// balance from the portion recording an excess beyond it
type RecordKind string

const (
	RecordKindRegular  RecordKind = "REGULAR"  // Applied against balance_due
	RecordKindOverpaid RecordKind = "OVERPAID" // Excess; never affects balance_due
)

// IsValid checks if the kind is a valid RecordKind
func (k RecordKind) IsValid() bool {
	return k == RecordKindRegular || k == RecordKindOverpaid
}

// String returns the string representation of RecordKind
func (k RecordKind) String() string {
	return string(k)
}

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodBankTransfer, PaymentMethodOnline:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// InitialStatus returns the record status a freshly allocated payment takes
// for this method. Cheques stay pending until the deposit is confirmed;
// everything else is effective immediately.
func (m PaymentMethod) InitialStatus() RecordStatus {
	if m == PaymentMethodCheque {
		return RecordStatusPending
	}
	return RecordStatusActive
}

// BankAccount is an enumerated deposit-target identifier supplied by the
// accounting collaborator and attached to a record at confirmation time
type BankAccount string

// String returns the string representation of BankAccount
func (b BankAccount) String() string {
	return string(b)
}

// PaymentRecord represents one portion of an allocated payment aggregate root.
// Records are created only inside a committed batch, mutated only by
// confirmation or cancellation, and never deleted.
type PaymentRecord struct {
	shared.TenantAggregateRoot
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	BatchReference *string         `json:"batch_reference,omitempty"` // Shared by records created in the same batch
	Amount         decimal.Decimal `json:"amount"`
	Kind           RecordKind      `json:"kind"`
	PaymentDate    time.Time       `json:"payment_date"`
	Method         PaymentMethod   `json:"method"`
	Status         RecordStatus    `json:"status"`
	BankAccount    *BankAccount    `json:"bank_account,omitempty"`     // Set only at confirmation
	JournalEntryID *string         `json:"journal_entry_id,omitempty"` // Set only at confirmation
	Notes          string          `json:"notes,omitempty"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
}

// NewPaymentRecord creates a new payment record in the initial status
// dictated by the payment method
func NewPaymentRecord(
	tenantID uuid.UUID,
	invoiceID uuid.UUID,
	batchReference *string,
	amount valueobject.Money,
	kind RecordKind,
	paymentDate time.Time,
	method PaymentMethod,
	notes string,
) (*PaymentRecord, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Record kind is not valid")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}
	if batchReference != nil && *batchReference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Batch reference cannot be empty when present")
	}

	record := &PaymentRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceID:           invoiceID,
		BatchReference:      batchReference,
		Amount:              amount.Amount(),
		Kind:                kind,
		PaymentDate:         paymentDate,
		Method:              method,
		Status:              method.InitialStatus(),
		Notes:               notes,
	}

	record.AddDomainEvent(NewPaymentRecordCreatedEvent(record))

	return record, nil
}

// CanConfirm returns true if the record is awaiting confirmation
func (r *PaymentRecord) CanConfirm() bool {
	return r.Status == RecordStatusPending
}

// Confirm moves a pending record to active, attaching the deposit account
// and the journal entry issued by the accounting service
func (r *PaymentRecord) Confirm(bankAccount BankAccount, journalEntryID string) error {
	if r.Status == RecordStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot confirm a cancelled payment record")
	}
	if r.Status == RecordStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Payment record is already active")
	}
	if bankAccount == "" {
		return shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account cannot be empty")
	}
	if journalEntryID == "" {
		return shared.NewDomainError("INVALID_JOURNAL_ENTRY", "Journal entry ID cannot be empty")
	}

	now := time.Now()
	r.Status = RecordStatusActive
	r.BankAccount = &bankAccount
	r.JournalEntryID = &journalEntryID
	r.ConfirmedAt = &now
	r.touch()

	r.AddDomainEvent(NewPaymentRecordConfirmedEvent(r))

	return nil
}

// Cancel moves the record to the terminal cancelled state. Ledger reversal is
// the caller's concern; the record itself only tracks its own lifecycle.
func (r *PaymentRecord) Cancel() error {
	if r.Status == RecordStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Payment record is already cancelled")
	}

	now := time.Now()
	r.Status = RecordStatusCancelled
	r.CancelledAt = &now
	r.touch()

	r.AddDomainEvent(NewPaymentRecordCancelledEvent(r))

	return nil
}

// AffectsBalance returns true if cancelling this record must restore the
// owning invoice's balance. Overpaid records never reduced it.
func (r *PaymentRecord) AffectsBalance() bool {
	return r.Kind == RecordKindRegular
}

// GetAmountMoney returns the amount as Money value object
func (r *PaymentRecord) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMYR(r.Amount)
}

// IsPending returns true if the record awaits confirmation
func (r *PaymentRecord) IsPending() bool {
	return r.Status == RecordStatusPending
}

// IsActive returns true if the record is confirmed and effective
func (r *PaymentRecord) IsActive() bool {
	return r.Status == RecordStatusActive
}

// IsCancelled returns true if the record has been cancelled
func (r *PaymentRecord) IsCancelled() bool {
	return r.Status == RecordStatusCancelled
}

func (r *PaymentRecord) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
