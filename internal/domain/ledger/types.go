// Package ledger defines the record types shared by the reconciliation
// engine: invoices read from the invoice sheet and payments read from the
// bank sheet.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRecord is one row of the invoice sheet after normalization.
// RowRef is the 1-based sheet row (data starts at row 2, below the header)
// and is used only for write-back, never for matching.
type InvoiceRecord struct {
	RowRef        int
	InvoiceNumber string
	SupplierName  string
	InvoiceDate   time.Time
	TotalAmount   decimal.Decimal
	Tax           decimal.Decimal
	Filename      string

	// PaidOn is empty while the invoice is unpaid. Once set the invoice is
	// skipped by subsequent reconciliation runs.
	PaidOn     string
	MatchScore int
}

// Paid reports whether the invoice has already been reconciled.
func (r *InvoiceRecord) Paid() bool {
	return r.PaidOn != ""
}

// PaymentRecord is one row of the bank payments sheet after normalization.
type PaymentRecord struct {
	RowRef      int
	PaymentDate time.Time
	Amount      decimal.Decimal
	Description string
	Detail1     string
	Detail2     string

	// MatchedInvoiceNumber and MatchedFilename are set together when a
	// payment is consumed; empty MatchedInvoiceNumber means "available".
	MatchedInvoiceNumber string
	MatchedFilename      string
}

// Available reports whether the payment can still be consumed by a match.
func (p *PaymentRecord) Available() bool {
	return p.MatchedInvoiceNumber == ""
}

// Match score values recorded on a successful pairing. A primary match
// (supplier name against the payment description alone) is worth more than
// a secondary match against the noisier combined bank details.
const (
	PrimaryMatchScore   = 100
	SecondaryMatchScore = 85
)

// MatchResult pairs one invoice with one payment within a single run.
type MatchResult struct {
	Invoice *InvoiceRecord
	Payment *PaymentRecord

	// Score is PrimaryMatchScore or SecondaryMatchScore.
	Score int

	// Basis is the payment text the supplier name was compared against.
	Basis string

	// SimilarityScore is the raw token-set similarity that cleared the
	// threshold, kept for logging.
	SimilarityScore int
}
