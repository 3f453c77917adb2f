package payment

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfirmTarget identifies what a confirm call applies to: one record, or
// every record sharing a batch reference. Exactly one field must be set.
type ConfirmTarget struct {
	RecordID       *uuid.UUID
	BatchReference *string
}

// Validate checks that exactly one target field is set
func (t ConfirmTarget) Validate() error {
	hasRecord := t.RecordID != nil && *t.RecordID != uuid.Nil
	hasReference := t.BatchReference != nil && *t.BatchReference != ""
	if hasRecord == hasReference {
		return payment.NewValidationError("INVALID_TARGET",
			"Confirm target must be exactly one of record ID or batch reference")
	}
	return nil
}

// TransitionService drives the payment record status lifecycle: confirmation
// (pending to active, with a journal entry) and cancellation (any non-terminal
// state to cancelled, with ledger reversal for regular records)
type TransitionService struct {
	uow     payment.UnitOfWork
	journal payment.JournalService
	logger  *zap.Logger
}

// NewTransitionService creates a new TransitionService
func NewTransitionService(uow payment.UnitOfWork, journal payment.JournalService, logger *zap.Logger) *TransitionService {
	return &TransitionService{
		uow:     uow,
		journal: journal,
		logger:  logger,
	}
}

// Confirm moves the pending records matching the target to active, attaching
// the bank account and a journal entry per record. Active records are
// idempotent no-ops; a cancelled record rejects the whole call. The call is
// one transaction: a journal failure rolls every confirmation back.
func (s *TransitionService) Confirm(ctx context.Context, tenantID uuid.UUID, target ConfirmTarget, bankAccount payment.BankAccount) ([]payment.PaymentRecord, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if !slices.Contains(s.journal.BankAccounts(), bankAccount) {
		return nil, payment.NewValidationError("INVALID_BANK_ACCOUNT",
			fmt.Sprintf("Bank account %q is not a known deposit account", bankAccount))
	}

	var confirmed []payment.PaymentRecord
	err := s.uow.Execute(ctx, func(ctx context.Context, repos payment.Repositories) error {
		records, err := s.resolveTarget(ctx, repos, tenantID, target)
		if err != nil {
			return err
		}

		confirmed = make([]payment.PaymentRecord, 0, len(records))
		for i := range records {
			record := &records[i]
			switch {
			case record.IsCancelled():
				return payment.NewStateError("ALREADY_CANCELLED",
					"Cannot confirm a cancelled payment record").WithRecord(record.ID)
			case record.IsActive():
				// Already confirmed; nothing to redo and no new journal entry.
				continue
			}

			journalID, err := s.journal.CreateJournalEntry(ctx, payment.JournalEntryRequest{
				InvoiceID:   record.InvoiceID,
				RecordID:    record.ID,
				Amount:      record.Amount,
				BankAccount: bankAccount,
			})
			if err != nil {
				return payment.NewExternalError("JOURNAL_CREATE_FAILED",
					"Accounting service rejected the journal entry").WithRecord(record.ID).WithCause(err)
			}

			if err := record.Confirm(bankAccount, journalID); err != nil {
				return err
			}
			if err := repos.Records.SaveWithLock(ctx, record); err != nil {
				if errors.Is(err, shared.ErrConcurrencyConflict) {
					return payment.NewConflictError("CONCURRENT_MUTATION",
						"Payment record was modified by another transaction").WithRecord(record.ID).WithCause(err)
				}
				return fmt.Errorf("failed to save confirmed record: %w", err)
			}
			confirmed = append(confirmed, *record)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment records confirmed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bank_account", bankAccount.String()),
		zap.Int("confirmed", len(confirmed)),
	)

	return confirmed, nil
}

// Cancel moves one record to the terminal cancelled state. Regular records
// restore the owning invoice's balance; overpaid records never reduced it,
// so they carry no ledger effect. A journal entry present on the record is
// voided. Cancellation acts on exactly one record; cancelling a group is
// one call per member.
func (s *TransitionService) Cancel(ctx context.Context, tenantID, recordID uuid.UUID) (*payment.PaymentRecord, error) {
	var cancelled *payment.PaymentRecord
	err := s.uow.Execute(ctx, func(ctx context.Context, repos payment.Repositories) error {
		record, err := repos.Records.FindByIDForTenant(ctx, tenantID, recordID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return payment.NewNotFoundError("RECORD_NOT_FOUND", "Payment record not found").WithRecord(recordID)
			}
			return fmt.Errorf("failed to load payment record: %w", err)
		}
		if record.IsCancelled() {
			return payment.NewStateError("ALREADY_CANCELLED",
				"Payment record is already cancelled").WithRecord(recordID)
		}

		if record.AffectsBalance() {
			invoices, err := repos.Invoices.LockByIDs(ctx, tenantID, []uuid.UUID{record.InvoiceID})
			if err != nil {
				if errors.Is(err, shared.ErrLockNotAcquired) {
					return payment.NewConflictError("LOCK_TIMEOUT",
						"Could not lock the owning invoice").WithInvoice(record.InvoiceID).WithCause(err)
				}
				return fmt.Errorf("failed to lock invoice: %w", err)
			}
			inv := invoices[record.InvoiceID]
			if inv == nil {
				return payment.NewNotFoundError("INVOICE_NOT_FOUND",
					"Owning invoice not found").WithInvoice(record.InvoiceID)
			}

			if err := inv.RestoreBalance(record.GetAmountMoney()); err != nil {
				var domainErr *shared.DomainError
				if errors.As(err, &domainErr) && domainErr.Code == "RESTORE_OVERFLOW" {
					// Overlapping historical cancellations could push the
					// balance past the total; refuse rather than clamp.
					return payment.NewConflictError("RESTORE_OVERFLOW", domainErr.Message).
						WithInvoice(inv.ID).WithCause(err)
				}
				return err
			}
			if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
				if errors.Is(err, shared.ErrConcurrencyConflict) {
					return payment.NewConflictError("CONCURRENT_MUTATION",
						"Invoice was modified by another transaction").WithInvoice(inv.ID).WithCause(err)
				}
				return fmt.Errorf("failed to save invoice: %w", err)
			}
		}

		if record.JournalEntryID != nil {
			if err := s.journal.VoidJournalEntry(ctx, *record.JournalEntryID); err != nil {
				return payment.NewExternalError("JOURNAL_VOID_FAILED",
					"Accounting service failed to void the journal entry").WithRecord(recordID).WithCause(err)
			}
		}

		if err := record.Cancel(); err != nil {
			return err
		}
		if err := repos.Records.SaveWithLock(ctx, record); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				return payment.NewConflictError("CONCURRENT_MUTATION",
					"Payment record was modified by another transaction").WithRecord(recordID).WithCause(err)
			}
			return fmt.Errorf("failed to save cancelled record: %w", err)
		}

		cancelled = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment record cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("record_id", recordID.String()),
		zap.String("kind", cancelled.Kind.String()),
	)

	return cancelled, nil
}

// resolveTarget loads the records a confirm call applies to
func (s *TransitionService) resolveTarget(ctx context.Context, repos payment.Repositories, tenantID uuid.UUID, target ConfirmTarget) ([]payment.PaymentRecord, error) {
	if target.RecordID != nil && *target.RecordID != uuid.Nil {
		record, err := repos.Records.FindByIDForTenant(ctx, tenantID, *target.RecordID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, payment.NewNotFoundError("RECORD_NOT_FOUND",
					"Payment record not found").WithRecord(*target.RecordID)
			}
			return nil, fmt.Errorf("failed to load payment record: %w", err)
		}
		return []payment.PaymentRecord{*record}, nil
	}

	records, err := repos.Records.FindByBatchReference(ctx, tenantID, *target.BatchReference)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch records: %w", err)
	}
	if len(records) == 0 {
		return nil, payment.NewNotFoundError("BATCH_NOT_FOUND",
			fmt.Sprintf("No payment records carry batch reference %q", *target.BatchReference))
	}
	return records, nil
}
