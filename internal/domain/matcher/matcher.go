// Package matcher pairs unpaid invoices with unmatched bank payments.
//
// The criteria, in order:
//   - Amount must equal the invoice total exactly (two decimal places)
//   - Payment date must be no earlier than the invoice date minus the
//     configured tolerance
//   - Supplier name must clear a token-set similarity threshold against
//     the payment description (primary pass) or the description combined
//     with both bank detail fields (secondary pass)
//
// Assignment is greedy, single-pass, and order-dependent: invoices are
// processed in sheet order and each takes the first qualifying payment in
// pool order. Two invoices contending for the same payment are resolved by
// whichever is processed first; the loser falls back to its next candidate
// or stays unmatched. This keeps runs deterministic and reproducible and
// is deliberately not a globally optimal assignment.
//
// Example usage:
//
//	m := matcher.New(matcher.DefaultConfig())
//	consumed := make(map[int]bool)
//	if result := m.FindMatch(invoice, payments, consumed); result != nil {
//		consumed[result.Payment.RowRef] = true
//	}
package matcher

import (
	"strings"
	"time"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/ledger"
	"github.com/purelyibiza/invoice-reconciler/internal/domain/similarity"
)

// Matcher matches invoices against a pool of bank payments.
type Matcher struct {
	config Config
}

// New creates a matcher with the given config.
func New(config Config) *Matcher {
	return &Matcher{config: config}
}

// Candidates returns the payments whose amount equals the invoice total
// exactly. Consumed and already-matched payments are excluded. Pool order
// is preserved; an empty result short-circuits the per-invoice search.
func (m *Matcher) Candidates(invoice *ledger.InvoiceRecord, pool []ledger.PaymentRecord, consumed map[int]bool) []*ledger.PaymentRecord {
	var candidates []*ledger.PaymentRecord
	for i := range pool {
		payment := &pool[i]
		if consumed[payment.RowRef] || !payment.Available() {
			continue
		}
		if payment.Amount.Equal(invoice.TotalAmount) {
			candidates = append(candidates, payment)
		}
	}
	return candidates
}

// DateValid reports whether a payment date falls on or after the invoice
// date minus the tolerance. Payments arbitrarily far in the future still
// qualify; late payments are the normal case.
func (m *Matcher) DateValid(invoiceDate, paymentDate time.Time) bool {
	cutoff := invoiceDate.AddDate(0, 0, -m.config.DateToleranceDays)
	return !paymentDate.Before(cutoff)
}

// FindMatch returns the first payment in pool order that qualifies for the
// invoice, or nil when none does. Payments whose RowRef is in consumed are
// skipped; the caller marks the returned payment as consumed.
func (m *Matcher) FindMatch(invoice *ledger.InvoiceRecord, pool []ledger.PaymentRecord, consumed map[int]bool) *ledger.MatchResult {
	candidates := m.Candidates(invoice, pool, consumed)
	if len(candidates) == 0 {
		return nil
	}

	supplier := strings.ToLower(invoice.SupplierName)

	for _, payment := range candidates {
		if !m.DateValid(invoice.InvoiceDate, payment.PaymentDate) {
			continue
		}

		description := strings.ToLower(payment.Description)
		if score := similarity.TokenSetRatio(supplier, description); score >= m.config.PrimaryThreshold {
			return &ledger.MatchResult{
				Invoice:         invoice,
				Payment:         payment,
				Score:           ledger.PrimaryMatchScore,
				Basis:           description,
				SimilarityScore: score,
			}
		}

		combined := description + " " + strings.ToLower(payment.Detail1) + " " + strings.ToLower(payment.Detail2)
		if score := similarity.TokenSetRatio(supplier, combined); score >= m.config.SecondaryThreshold {
			return &ledger.MatchResult{
				Invoice:         invoice,
				Payment:         payment,
				Score:           ledger.SecondaryMatchScore,
				Basis:           combined,
				SimilarityScore: score,
			}
		}
	}

	return nil
}
