package reconcile

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/ledger"
	"github.com/purelyibiza/invoice-reconciler/internal/domain/normalize"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/archive"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/sheets"
)

// changeSet accumulates the per-match cell writes for both sheets. All
// mutation happens here, in memory, until the single flush at the end of
// the run.
type changeSet struct {
	invoiceTable *sheets.Table
	bankTable    *sheets.Table

	invoiceUpdates []sheets.CellUpdate
	bankUpdates    []sheets.CellUpdate
}

func newChangeSet(invoiceTable, bankTable *sheets.Table) *changeSet {
	return &changeSet{invoiceTable: invoiceTable, bankTable: bankTable}
}

// stage records the write-backs for one match: the invoice's Paid On date
// and match score, and the payment's matched invoice number and filename,
// set together as one logical action.
func (c *changeSet) stage(result *ledger.MatchResult) error {
	invoice := result.Invoice
	payment := result.Payment

	paidOn, err := c.invoiceTable.NewCellUpdate(
		normalize.ColPaidOn, invoice.RowRef, payment.PaymentDate.Format(paidOnLayout))
	if err != nil {
		return fmt.Errorf("stage invoice update: %w", err)
	}
	score, err := c.invoiceTable.NewCellUpdate(
		normalize.ColMatchPercent, invoice.RowRef, strconv.Itoa(result.Score))
	if err != nil {
		return fmt.Errorf("stage invoice update: %w", err)
	}

	matchedID, err := c.bankTable.NewCellUpdate(
		normalize.ColMatchedInvoiceID, payment.RowRef, invoice.InvoiceNumber)
	if err != nil {
		return fmt.Errorf("stage bank update: %w", err)
	}
	matchedFile, err := c.bankTable.NewCellUpdate(
		normalize.ColMatchedFilename, payment.RowRef, invoice.Filename)
	if err != nil {
		return fmt.Errorf("stage bank update: %w", err)
	}

	c.invoiceUpdates = append(c.invoiceUpdates, paidOn, score)
	c.bankUpdates = append(c.bankUpdates, matchedID, matchedFile)
	return nil
}

func isSourceMissing(err error) bool {
	return errors.Is(err, archive.ErrSourceMissing)
}
