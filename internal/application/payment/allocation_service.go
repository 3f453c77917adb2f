package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/domain/shared"
	"github.com/erp/payments/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllocationService is the reconciliation engine: it splits a user-entered
// batch across invoices and commits it as one atomic unit of work
type AllocationService struct {
	uow     payment.UnitOfWork
	planner *payment.AllocationPlanner
	logger  *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(uow payment.UnitOfWork, logger *zap.Logger) *AllocationService {
	return &AllocationService{
		uow:     uow,
		planner: payment.NewAllocationPlanner(),
		logger:  logger,
	}
}

// Preview computes the provisional regular/overpaid splits for a batch
// without committing anything. The snapshot is advisory only; Allocate
// recomputes under lock.
func (s *AllocationService) Preview(ctx context.Context, tenantID uuid.UUID, batch payment.Batch) (*payment.AllocationPlan, error) {
	if err := s.planner.ValidateShape(batch); err != nil {
		return nil, err
	}

	var plan *payment.AllocationPlan
	err := s.uow.Execute(ctx, func(ctx context.Context, repos payment.Repositories) error {
		invoices, err := repos.Invoices.FindByIDs(ctx, tenantID, batch.InvoiceIDs())
		if err != nil {
			return fmt.Errorf("failed to load invoices for preview: %w", err)
		}
		plan, err = s.planner.Plan(batch, invoices)
		return err
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Allocate executes a batch atomically: lock every targeted invoice in
// ascending ID order, recompute each split against the balance read under
// lock, mutate balances, and persist the resulting payment records. Any
// failure rolls the whole batch back; no invoice is left half-applied.
func (s *AllocationService) Allocate(ctx context.Context, tenantID uuid.UUID, batch payment.Batch) ([]payment.PaymentRecord, error) {
	if err := s.planner.ValidateShape(batch); err != nil {
		return nil, err
	}

	var created []payment.PaymentRecord
	err := s.uow.Execute(ctx, func(ctx context.Context, repos payment.Repositories) error {
		invoiceIDs := batch.InvoiceIDs()
		invoices, err := repos.Invoices.LockByIDs(ctx, tenantID, invoiceIDs)
		if err != nil {
			if errors.Is(err, shared.ErrLockNotAcquired) {
				return payment.NewConflictError("LOCK_TIMEOUT",
					"Could not lock all invoices in the batch; another allocation is in flight").WithCause(err)
			}
			return fmt.Errorf("failed to lock invoices: %w", err)
		}
		for _, id := range invoiceIDs {
			if invoices[id] == nil {
				return payment.NewValidationError("UNKNOWN_INVOICE",
					"Batch item references an unknown invoice").WithInvoice(id)
			}
		}

		created = make([]payment.PaymentRecord, 0, len(batch.Items)*2)
		for _, item := range batch.Items {
			inv := invoices[item.InvoiceID]

			// The plan is not trusted verbatim: balances may have moved
			// between planning and commit, so the split is recomputed
			// against the row read under lock.
			regular, overpaid := inv.SplitAmount(item.Amount)

			if regular.IsPositive() {
				if err := inv.ApplySettlement(valueobject.NewMoneyMYR(regular)); err != nil {
					return fmt.Errorf("failed to settle invoice %s: %w", inv.InvoiceNumber, err)
				}
				if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
					if errors.Is(err, shared.ErrConcurrencyConflict) {
						return payment.NewConflictError("CONCURRENT_MUTATION",
							"Invoice was modified by another transaction").WithInvoice(inv.ID).WithCause(err)
					}
					return fmt.Errorf("failed to save invoice %s: %w", inv.InvoiceNumber, err)
				}

				record, err := payment.NewPaymentRecord(tenantID, inv.ID, batch.Reference,
					valueobject.NewMoneyMYR(regular), payment.RecordKindRegular,
					batch.PaymentDate, batch.Method, batch.Notes)
				if err != nil {
					return err
				}
				if err := repos.Records.Create(ctx, record); err != nil {
					return fmt.Errorf("failed to persist regular record for invoice %s: %w", inv.InvoiceNumber, err)
				}
				created = append(created, *record)
			}

			if overpaid.IsPositive() {
				record, err := payment.NewPaymentRecord(tenantID, inv.ID, batch.Reference,
					valueobject.NewMoneyMYR(overpaid), payment.RecordKindOverpaid,
					batch.PaymentDate, batch.Method, batch.Notes)
				if err != nil {
					return err
				}
				if err := repos.Records.Create(ctx, record); err != nil {
					return fmt.Errorf("failed to persist overpaid record for invoice %s: %w", inv.InvoiceNumber, err)
				}
				created = append(created, *record)
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Warn("batch allocation rolled back",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("items", len(batch.Items)),
			zap.Error(err),
		)
		return nil, err
	}

	reference := ""
	if batch.Reference != nil {
		reference = *batch.Reference
	}
	s.logger.Info("batch allocation committed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("batch_reference", reference),
		zap.Int("items", len(batch.Items)),
		zap.Int("records_created", len(created)),
	)

	return created, nil
}
