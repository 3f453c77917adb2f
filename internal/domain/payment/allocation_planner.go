package payment

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchItem is one (invoice, amount) pair of an allocation batch
type BatchItem struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// Batch is an ephemeral allocation request. It is never persisted as an
// entity; only the payment records it produces are.
type Batch struct {
	Reference   *string // Required when the batch targets more than one invoice
	PaymentDate time.Time
	Method      PaymentMethod
	Notes       string
	Items       []BatchItem
}

// InvoiceIDs returns the distinct invoice IDs of the batch in ascending
// order. Lock acquisition follows this order to avoid deadlock between
// concurrent batches touching overlapping invoice sets.
func (b Batch) InvoiceIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(b.Items))
	ids := make([]uuid.UUID, 0, len(b.Items))
	for _, item := range b.Items {
		if _, ok := seen[item.InvoiceID]; ok {
			continue
		}
		seen[item.InvoiceID] = struct{}{}
		ids = append(ids, item.InvoiceID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// PlannedItem is the provisional split for one batch item
type PlannedItem struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	Regular   decimal.Decimal // min(amount, balance_due snapshot)
	Overpaid  decimal.Decimal // max(0, amount - balance_due snapshot)
}

// AllocationPlan is the validated, provisional view of a batch. The splits
// are advisory: the engine recomputes them under lock because balances may
// change between planning and commit.
type AllocationPlan struct {
	Batch Batch
	Items []PlannedItem
}

// TotalRegular returns the planned sum of regular portions
func (p *AllocationPlan) TotalRegular() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.Regular)
	}
	return total
}

// TotalOverpaid returns the planned sum of overpaid portions
func (p *AllocationPlan) TotalOverpaid() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.Overpaid)
	}
	return total
}

// AllocationPlanner validates batch shape and computes provisional splits.
// It is a pure domain service: the caller supplies the balance snapshots.
type AllocationPlanner struct{}

// NewAllocationPlanner creates a new allocation planner
func NewAllocationPlanner() *AllocationPlanner {
	return &AllocationPlanner{}
}

// ValidateShape checks everything about a batch that does not require
// balance snapshots. It fails fast on the first violation and has no side
// effects.
func (p *AllocationPlanner) ValidateShape(batch Batch) error {
	if len(batch.Items) == 0 {
		return NewValidationError("EMPTY_BATCH", "Batch must contain at least one item")
	}
	if !batch.Method.IsValid() {
		return NewValidationError("INVALID_METHOD", fmt.Sprintf("Payment method %q is not valid", batch.Method))
	}
	if len(batch.Items) > 1 && (batch.Reference == nil || *batch.Reference == "") {
		return NewValidationError("MISSING_REFERENCE", "A batch targeting more than one invoice must carry a batch reference")
	}

	seen := make(map[uuid.UUID]struct{}, len(batch.Items))
	for _, item := range batch.Items {
		if item.InvoiceID == uuid.Nil {
			return NewValidationError("INVALID_INVOICE", "Batch item invoice ID cannot be empty")
		}
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			return NewValidationError("INVALID_AMOUNT",
				fmt.Sprintf("Batch item amount must be positive, got %s", item.Amount)).
				WithInvoice(item.InvoiceID)
		}
		if _, dup := seen[item.InvoiceID]; dup {
			return NewValidationError("DUPLICATE_INVOICE", "Batch contains the same invoice more than once").
				WithInvoice(item.InvoiceID)
		}
		seen[item.InvoiceID] = struct{}{}
	}

	return nil
}

// Plan validates the batch against the supplied balance snapshots and
// computes the provisional regular/overpaid split for each item
func (p *AllocationPlanner) Plan(batch Batch, invoices map[uuid.UUID]*Invoice) (*AllocationPlan, error) {
	if err := p.ValidateShape(batch); err != nil {
		return nil, err
	}

	items := make([]PlannedItem, 0, len(batch.Items))
	for _, item := range batch.Items {
		inv, ok := invoices[item.InvoiceID]
		if !ok || inv == nil {
			return nil, NewValidationError("UNKNOWN_INVOICE", "Batch item references an unknown invoice").
				WithInvoice(item.InvoiceID)
		}
		regular, overpaid := inv.SplitAmount(item.Amount)
		items = append(items, PlannedItem{
			InvoiceID: item.InvoiceID,
			Amount:    item.Amount,
			Regular:   regular,
			Overpaid:  overpaid,
		})
	}

	return &AllocationPlan{Batch: batch, Items: items}, nil
}
