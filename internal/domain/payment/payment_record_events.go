package payment

import (
	"time"

	"github.com/erp/payments/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment record event type names
const (
	EventTypePaymentRecordCreated   = "PaymentRecordCreated"
	EventTypePaymentRecordConfirmed = "PaymentRecordConfirmed"
	EventTypePaymentRecordCancelled = "PaymentRecordCancelled"
)

// PaymentRecordCreatedEvent is raised when a batch commit persists a record
type PaymentRecordCreatedEvent struct {
	shared.BaseDomainEvent
	RecordID       uuid.UUID       `json:"record_id"`
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	BatchReference *string         `json:"batch_reference,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Kind           RecordKind      `json:"kind"`
	Method         PaymentMethod   `json:"method"`
	Status         RecordStatus    `json:"status"`
	PaymentDate    time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *PaymentRecordCreatedEvent) EventType() string {
	return EventTypePaymentRecordCreated
}

// NewPaymentRecordCreatedEvent creates a new PaymentRecordCreatedEvent
func NewPaymentRecordCreatedEvent(r *PaymentRecord) *PaymentRecordCreatedEvent {
	return &PaymentRecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecordCreated, "PaymentRecord", r.ID, r.TenantID),
		RecordID:        r.ID,
		InvoiceID:       r.InvoiceID,
		BatchReference:  r.BatchReference,
		Amount:          r.Amount,
		Kind:            r.Kind,
		Method:          r.Method,
		Status:          r.Status,
		PaymentDate:     r.PaymentDate,
	}
}

// PaymentRecordConfirmedEvent is raised when a pending record becomes active
type PaymentRecordConfirmedEvent struct {
	shared.BaseDomainEvent
	RecordID       uuid.UUID       `json:"record_id"`
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	Amount         decimal.Decimal `json:"amount"`
	BankAccount    BankAccount     `json:"bank_account"`
	JournalEntryID string          `json:"journal_entry_id"`
}

// EventType returns the event type name
func (e *PaymentRecordConfirmedEvent) EventType() string {
	return EventTypePaymentRecordConfirmed
}

// NewPaymentRecordConfirmedEvent creates a new PaymentRecordConfirmedEvent
func NewPaymentRecordConfirmedEvent(r *PaymentRecord) *PaymentRecordConfirmedEvent {
	var account BankAccount
	if r.BankAccount != nil {
		account = *r.BankAccount
	}
	var journalID string
	if r.JournalEntryID != nil {
		journalID = *r.JournalEntryID
	}
	return &PaymentRecordConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecordConfirmed, "PaymentRecord", r.ID, r.TenantID),
		RecordID:        r.ID,
		InvoiceID:       r.InvoiceID,
		Amount:          r.Amount,
		BankAccount:     account,
		JournalEntryID:  journalID,
	}
}

// PaymentRecordCancelledEvent is raised when a record reaches the terminal state
type PaymentRecordCancelledEvent struct {
	shared.BaseDomainEvent
	RecordID  uuid.UUID       `json:"record_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      RecordKind      `json:"kind"`
}

// EventType returns the event type name
func (e *PaymentRecordCancelledEvent) EventType() string {
	return EventTypePaymentRecordCancelled
}

// NewPaymentRecordCancelledEvent creates a new PaymentRecordCancelledEvent
func NewPaymentRecordCancelledEvent(r *PaymentRecord) *PaymentRecordCancelledEvent {
	return &PaymentRecordCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecordCancelled, "PaymentRecord", r.ID, r.TenantID),
		RecordID:        r.ID,
		InvoiceID:       r.InvoiceID,
		Amount:          r.Amount,
		Kind:            r.Kind,
	}
}
