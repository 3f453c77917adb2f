package payment

import (
	"github.com/erp/payments/internal/domain/shared"
	"github.com/erp/payments/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice event type names
const (
	EventTypeInvoiceCreated         = "InvoiceCreated"
	EventTypeInvoiceSettled         = "InvoiceSettled"
	EventTypeInvoicePaid            = "InvoicePaid"
	EventTypeInvoiceBalanceRestored = "InvoiceBalanceRestored"
)

// InvoiceCreatedEvent is raised when a new invoice ledger entry is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID          uuid.UUID       `json:"invoice_id"`
	InvoiceNumber      string          `json:"invoice_number"`
	CustomerName       string          `json:"customer_name"`
	TotalAmountPayable decimal.Decimal `json:"total_amount_payable"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return EventTypeInvoiceCreated
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:          inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		CustomerName:       inv.CustomerName,
		TotalAmountPayable: inv.TotalAmountPayable,
	}
}

// InvoiceSettledEvent is raised when a regular payment portion reduces the
// balance without fully closing it
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
}

// EventType returns the event type name
func (e *InvoiceSettledEvent) EventType() string {
	return EventTypeInvoiceSettled
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(inv *Invoice, applied valueobject.Money) *InvoiceSettledEvent {
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSettled, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		AmountApplied:   applied.Amount(),
		BalanceDue:      inv.BalanceDue,
	}
}

// InvoicePaidEvent is raised when the balance reaches zero
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID          uuid.UUID       `json:"invoice_id"`
	InvoiceNumber      string          `json:"invoice_number"`
	TotalAmountPayable decimal.Decimal `json:"total_amount_payable"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return EventTypeInvoicePaid
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:          inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		TotalAmountPayable: inv.TotalAmountPayable,
	}
}

// InvoiceBalanceRestoredEvent is raised when a cancelled regular record puts
// its amount back onto the invoice
type InvoiceBalanceRestoredEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	AmountRestored decimal.Decimal `json:"amount_restored"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
}

// EventType returns the event type name
func (e *InvoiceBalanceRestoredEvent) EventType() string {
	return EventTypeInvoiceBalanceRestored
}

// NewInvoiceBalanceRestoredEvent creates a new InvoiceBalanceRestoredEvent
func NewInvoiceBalanceRestoredEvent(inv *Invoice, restored valueobject.Money) *InvoiceBalanceRestoredEvent {
	return &InvoiceBalanceRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceBalanceRestored, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		AmountRestored:  restored.Amount(),
		BalanceDue:      inv.BalanceDue,
	}
}
