// Package reconcile orchestrates a reconciliation run: it reads the
// invoice and bank sheets fresh, pairs unpaid invoices with available
// payments, relocates matched invoice files, and flushes the accumulated
// changes back to both sheets in one batched update each.
//
// The two sheet flushes are independent calls with no cross-store
// transaction. If the second flush fails after the first succeeded, the
// stores disagree until the next run; the run aborts and reports the
// failure rather than attempting a rollback.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/ledger"
	"github.com/purelyibiza/invoice-reconciler/internal/domain/normalize"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/storage"
)

// paidOnLayout is the day-first format written back to the Paid On column.
const paidOnLayout = "02-01-2006"

// Run executes one reconciliation pass. Only one run may execute at a
// time; a second concurrent call returns ErrRunInProgress immediately.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Summary, error) {
	if !o.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.runMu.Unlock()

	summary := &Summary{
		RunID:  uuid.NewString(),
		DryRun: opts.DryRun,
	}
	startedAt := time.Now()

	o.logger.Info("Starting reconciliation run", "run_id", summary.RunID, "dry_run", opts.DryRun)

	err := o.run(ctx, opts, summary)
	o.recordRun(summary, startedAt, err)
	if err != nil {
		o.logger.Error("Reconciliation run failed", "run_id", summary.RunID, "error", err)
		return nil, err
	}

	o.logger.Info("Reconciliation run complete",
		"run_id", summary.RunID,
		"invoices", summary.InvoicesConsidered,
		"payments", summary.PaymentsConsidered,
		"matches", summary.Matches,
		"dropped_invoices", summary.InvoicesDropped,
		"dropped_payments", summary.PaymentsDropped,
	)
	return summary, nil
}

func (o *Orchestrator) run(ctx context.Context, opts Options, summary *Summary) error {
	// Read both sheets fresh; all matching happens against this in-memory
	// working copy.
	invoiceTable, err := o.invoiceSheet.ReadTable(ctx)
	if err != nil {
		return fmt.Errorf("read invoice sheet: %w", err)
	}
	bankTable, err := o.bankSheet.ReadTable(ctx)
	if err != nil {
		return fmt.Errorf("read bank sheet: %w", err)
	}

	invoices, invoiceDrops := normalize.Invoices(invoiceTable.Rows)
	payments, paymentDrops := normalize.Payments(bankTable.Rows)

	summary.InvoicesConsidered = len(invoices)
	summary.PaymentsConsidered = len(payments)
	summary.InvoicesDropped = invoiceDrops.Total()
	summary.PaymentsDropped = paymentDrops.Total()

	if invoiceDrops.Total() > 0 || paymentDrops.Total() > 0 {
		o.logger.Warn("Dropped unparsable rows",
			"invoices_bad_date", invoiceDrops.BadDate,
			"invoices_bad_amount", invoiceDrops.BadAmount,
			"payments_bad_date", paymentDrops.BadDate,
			"payments_bad_amount", paymentDrops.BadAmount,
		)
	}

	changes := newChangeSet(invoiceTable, bankTable)
	consumed := make(map[int]bool)

	for i := range invoices {
		invoice := &invoices[i]
		if invoice.Paid() {
			// Already reconciled on an earlier run.
			o.logger.Debug("Skipping paid invoice", "invoice", invoice.InvoiceNumber, "paid_on", invoice.PaidOn)
			continue
		}

		o.logger.Debug("Checking invoice",
			"invoice", invoice.InvoiceNumber,
			"supplier", invoice.SupplierName,
			"date", invoice.InvoiceDate.Format(paidOnLayout),
			"amount", invoice.TotalAmount.String(),
		)

		result := o.matcher.FindMatch(invoice, payments, consumed)
		if result == nil {
			o.logger.Debug("No matching payment", "invoice", invoice.InvoiceNumber)
			continue
		}

		// Consume the payment for the remainder of this run.
		consumed[result.Payment.RowRef] = true
		summary.Matches++

		o.logger.Info("Matched invoice to payment",
			"invoice", invoice.InvoiceNumber,
			"payment_row", result.Payment.RowRef,
			"payment_date", result.Payment.PaymentDate.Format(paidOnLayout),
			"score", result.Score,
			"similarity", result.SimilarityScore,
		)

		if err := changes.stage(result); err != nil {
			return err
		}

		if !opts.DryRun {
			o.moveFile(invoice, summary)
		}
	}

	if opts.DryRun {
		o.logger.Info("Dry run: skipping sheet updates and file moves",
			"staged_invoice_updates", len(changes.invoiceUpdates),
			"staged_bank_updates", len(changes.bankUpdates),
		)
		return nil
	}

	// Two independent flushes, invoice sheet first. A failure here aborts
	// the run; whatever was already flushed stays applied.
	if len(changes.invoiceUpdates) > 0 {
		if err := o.invoiceSheet.BatchUpdate(ctx, changes.invoiceUpdates); err != nil {
			return fmt.Errorf("update invoice sheet: %w", err)
		}
	}
	if len(changes.bankUpdates) > 0 {
		if err := o.bankSheet.BatchUpdate(ctx, changes.bankUpdates); err != nil {
			return fmt.Errorf("update bank sheet: %w", err)
		}
	}

	return nil
}

// moveFile relocates a matched invoice file. Failure is logged and
// counted, never fatal: the match stays recorded even when the file system
// and the stores end up disagreeing.
func (o *Orchestrator) moveFile(invoice *ledger.InvoiceRecord, summary *Summary) {
	if o.mover == nil || invoice.Filename == "" {
		return
	}

	switch err := o.mover.Move(invoice.Filename); {
	case err == nil:
		summary.FilesMoved++
		o.logger.Debug("Moved reconciled file", "filename", invoice.Filename)
	case isSourceMissing(err):
		summary.FilesMissing++
		o.logger.Warn("Archived file not found, match recorded anyway",
			"invoice", invoice.InvoiceNumber, "filename", invoice.Filename)
	default:
		summary.FilesMissing++
		o.logger.Warn("Failed to move reconciled file, match recorded anyway",
			"invoice", invoice.InvoiceNumber, "filename", invoice.Filename, "error", err)
	}
}

// recordRun persists the run outcome; storage failures are logged only.
func (o *Orchestrator) recordRun(summary *Summary, startedAt time.Time, runErr error) {
	if o.repo == nil {
		return
	}

	record := &storage.ReconcileRun{
		ID:                 summary.RunID,
		StartedAt:          startedAt,
		FinishedAt:         time.Now(),
		Status:             storage.StatusSuccess,
		DryRun:             summary.DryRun,
		InvoicesConsidered: summary.InvoicesConsidered,
		PaymentsConsidered: summary.PaymentsConsidered,
		Matches:            summary.Matches,
		InvoicesDropped:    summary.InvoicesDropped,
		PaymentsDropped:    summary.PaymentsDropped,
		FilesMoved:         summary.FilesMoved,
		FilesMissing:       summary.FilesMissing,
	}
	if summary.DryRun {
		record.Status = storage.StatusDryRun
	}
	if runErr != nil {
		record.Status = storage.StatusFailed
		record.ErrorMessage = runErr.Error()
	}

	if err := o.repo.SaveRun(record); err != nil {
		o.logger.Error("Failed to save run record", "run_id", summary.RunID, "error", err)
	}
}
