package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceDetail pairs an invoice with every payment record ever allocated to
// it, cancelled ones included. SettledTotal is the sum of non-cancelled
// regular record amounts (pending cheques count, since the balance moves at
// allocation); LedgerConsistent reports whether it reconciles with the stored
// balance.
type InvoiceDetail struct {
	Invoice          payment.Invoice         `json:"invoice"`
	Records          []payment.PaymentRecord `json:"records"`
	SettledTotal     decimal.Decimal         `json:"settled_total"`
	LedgerConsistent bool                    `json:"ledger_consistent"`
}

// ListingService serves the read side: grouped payment views and invoice
// lookups. Reads run outside the unit of work; they never mutate state.
type ListingService struct {
	repos  payment.Repositories
	logger *zap.Logger
}

// NewListingService creates a new ListingService
func NewListingService(repos payment.Repositories, logger *zap.Logger) *ListingService {
	return &ListingService{
		repos:  repos,
		logger: logger,
	}
}

// ListGrouped returns payment records folded into display groups by batch
// reference, pending groups first, newest first within each band
func (s *ListingService) ListGrouped(ctx context.Context, tenantID uuid.UUID, filter payment.RecordFilter) ([]payment.DisplayGroup, error) {
	records, err := s.repos.Records.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment records: %w", err)
	}
	return payment.ProjectGroups(records), nil
}

// CountRecords returns the number of records matching the filter
func (s *ListingService) CountRecords(ctx context.Context, tenantID uuid.UUID, filter payment.RecordFilter) (int64, error) {
	return s.repos.Records.CountForTenant(ctx, tenantID, filter)
}

// GetInvoice returns one invoice together with its full payment history
func (s *ListingService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDetail, error) {
	invoice, err := s.repos.Invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, payment.NewNotFoundError("INVOICE_NOT_FOUND", "Invoice not found").WithInvoice(invoiceID)
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	records, err := s.repos.Records.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment records: %w", err)
	}

	settled, err := s.repos.Invoices.SumSettledRegular(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum settled amounts: %w", err)
	}

	consistent := invoice.TotalAmountPayable.Sub(settled).Equal(invoice.BalanceDue)
	if !consistent {
		s.logger.Warn("invoice balance does not reconcile with settled records",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("balance_due", invoice.BalanceDue.String()),
			zap.String("settled_total", settled.String()),
		)
	}

	return &InvoiceDetail{
		Invoice:          *invoice,
		Records:          records,
		SettledTotal:     settled,
		LedgerConsistent: consistent,
	}, nil
}

// ListInvoices returns the tenant's invoices with basic filtering
func (s *ListingService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.Invoice, error) {
	invoices, err := s.repos.Invoices.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}
