package payment

import (
	"fmt"
	"time"

	"github.com/erp/payments/internal/domain/shared"
	"github.com/erp/payments/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the derived payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "UNPAID"  // No balance has been settled yet
	InvoiceStatusPartial InvoiceStatus = "PARTIAL" // 0 < balance_due < total_amount_payable
	InvoiceStatusPaid    InvoiceStatus = "PAID"    // balance_due = 0
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE" // Caller-set flag, never derived here
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// Invoice represents an invoice ledger entry aggregate root.
// Its balance is mutated only through batch allocation and record cancellation.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber      string          `json:"invoice_number"`
	CustomerName       string          `json:"customer_name"`
	TotalAmountPayable decimal.Decimal `json:"total_amount_payable"`
	BalanceDue         decimal.Decimal `json:"balance_due"`
	Status             InvoiceStatus   `json:"status"`
}

// NewInvoice creates a new invoice with the full amount outstanding
func NewInvoice(
	tenantID uuid.UUID,
	invoiceNumber string,
	customerName string,
	totalAmountPayable valueobject.Money,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if totalAmountPayable.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount payable must be positive")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerName:        customerName,
		TotalAmountPayable:  totalAmountPayable.Amount(),
		BalanceDue:          totalAmountPayable.Amount(),
		Status:              InvoiceStatusUnpaid,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// SplitAmount computes the regular/overpaid split for an incoming amount
// against the current balance: regular = min(amount, balance_due),
// overpaid = max(0, amount - balance_due).
func (inv *Invoice) SplitAmount(amount decimal.Decimal) (regular, overpaid decimal.Decimal) {
	regular = decimal.Min(amount, inv.BalanceDue)
	overpaid = decimal.Max(decimal.Zero, amount.Sub(inv.BalanceDue))
	return regular, overpaid
}

// ApplySettlement reduces the balance by the regular portion of a payment
// and recomputes the derived status
func (inv *Invoice) ApplySettlement(regular valueobject.Money) error {
	amount := regular.Amount()
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}
	if amount.GreaterThan(inv.BalanceDue) {
		return shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("Settlement amount %s exceeds balance due %s", amount.StringFixed(2), inv.BalanceDue.StringFixed(2)))
	}

	inv.BalanceDue = inv.BalanceDue.Sub(amount)
	inv.recomputeStatus()
	inv.touch()

	if inv.BalanceDue.IsZero() {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.AddDomainEvent(NewInvoiceSettledEvent(inv, regular))
	}

	return nil
}

// RestoreBalance puts a previously settled amount back onto the invoice,
// as part of cancelling a regular payment record. A restore that would push
// the balance above the total amount payable is rejected rather than clamped.
func (inv *Invoice) RestoreBalance(amount valueobject.Money) error {
	restore := amount.Amount()
	if restore.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Restore amount must be positive")
	}
	if inv.BalanceDue.Add(restore).GreaterThan(inv.TotalAmountPayable) {
		return shared.NewDomainError("RESTORE_OVERFLOW",
			fmt.Sprintf("Restoring %s would push balance due above total amount payable %s",
				restore.StringFixed(2), inv.TotalAmountPayable.StringFixed(2)))
	}

	inv.BalanceDue = inv.BalanceDue.Add(restore)
	inv.recomputeStatus()
	inv.touch()

	inv.AddDomainEvent(NewInvoiceBalanceRestoredEvent(inv, amount))

	return nil
}

// MarkOverdue flags the invoice as overdue. The flag is caller-owned; balance
// mutations never set it, and a settlement recompute clears it only when the
// balance bucket actually changes.
func (inv *Invoice) MarkOverdue() error {
	if inv.BalanceDue.IsZero() {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a fully paid invoice as overdue")
	}
	inv.Status = InvoiceStatusOverdue
	inv.touch()
	return nil
}

// recomputeStatus derives the status bucket from the current balance.
// The OVERDUE flag survives a recompute as long as the invoice still
// carries a balance.
func (inv *Invoice) recomputeStatus() {
	switch {
	case inv.BalanceDue.IsZero():
		inv.Status = InvoiceStatusPaid
	case inv.BalanceDue.LessThan(inv.TotalAmountPayable):
		if inv.Status != InvoiceStatusOverdue {
			inv.Status = InvoiceStatusPartial
		}
	default:
		if inv.Status != InvoiceStatusOverdue {
			inv.Status = InvoiceStatusUnpaid
		}
	}
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// GetTotalAmountPayableMoney returns the total amount payable as Money
func (inv *Invoice) GetTotalAmountPayableMoney() valueobject.Money {
	return valueobject.NewMoneyMYR(inv.TotalAmountPayable)
}

// GetBalanceDueMoney returns the balance due as Money
func (inv *Invoice) GetBalanceDueMoney() valueobject.Money {
	return valueobject.NewMoneyMYR(inv.BalanceDue)
}

// IsPaid returns true if the invoice is fully settled
func (inv *Invoice) IsPaid() bool {
	return inv.BalanceDue.IsZero()
}

// SettledAmount returns the portion of the total that has been settled
func (inv *Invoice) SettledAmount() decimal.Decimal {
	return inv.TotalAmountPayable.Sub(inv.BalanceDue)
}
