package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/ledger"
	"github.com/purelyibiza/invoice-reconciler/internal/domain/similarity"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func invoice(number, supplier string, invoiceDate time.Time, total string) *ledger.InvoiceRecord {
	return &ledger.InvoiceRecord{
		RowRef:        2,
		InvoiceNumber: number,
		SupplierName:  supplier,
		InvoiceDate:   invoiceDate,
		TotalAmount:   amount(total),
		Filename:      number + ".pdf",
	}
}

func payment(ref int, description string, paymentDate time.Time, amt string) ledger.PaymentRecord {
	return ledger.PaymentRecord{
		RowRef:      ref,
		PaymentDate: paymentDate,
		Amount:      amount(amt),
		Description: description,
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"primary out of range", Config{PrimaryThreshold: 101, SecondaryThreshold: 101}},
		{"negative primary", Config{PrimaryThreshold: -1, SecondaryThreshold: 90}},
		{"secondary below primary", Config{PrimaryThreshold: 80, SecondaryThreshold: 70}},
		{"negative tolerance", Config{PrimaryThreshold: 80, SecondaryThreshold: 90, DateToleranceDays: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestMatcher_PrimaryMatch(t *testing.T) {
	// Invoice A-100 for Exluib S.A., payment two days later with an exact
	// amount and a recognizable description.
	m := New(DefaultConfig())
	inv := invoice("A-100", "Exluib S.A.", date(2025, 8, 10), "100.00")
	pool := []ledger.PaymentRecord{
		payment(2, "PAGO EXLUIB SA", date(2025, 8, 12), "100.00"),
	}
	consumed := make(map[int]bool)

	result := m.FindMatch(inv, pool, consumed)

	require.NotNil(t, result)
	assert.Equal(t, ledger.PrimaryMatchScore, result.Score)
	assert.Equal(t, 2, result.Payment.RowRef)
	assert.True(t, result.Payment.Amount.Equal(inv.TotalAmount))
}

func TestMatcher_PaymentBeforeCutoff(t *testing.T) {
	// Tolerance 5 days puts the cutoff at 2025-08-05; a payment on
	// 2025-08-01 is too early and the payment stays available.
	m := New(DefaultConfig())
	inv := invoice("A-100", "Exluib S.A.", date(2025, 8, 10), "100.00")
	pool := []ledger.PaymentRecord{
		payment(2, "PAGO EXLUIB SA", date(2025, 8, 1), "100.00"),
	}
	consumed := make(map[int]bool)

	result := m.FindMatch(inv, pool, consumed)

	assert.Nil(t, result)
	assert.Empty(t, consumed)
}

func TestMatcher_SkipsLowSimilarityCandidate(t *testing.T) {
	// Two payments with the right amount and valid dates. The first has an
	// unrelated description and is rejected by both passes; the engine
	// moves on and matches the second instead of abandoning the invoice.
	m := New(DefaultConfig())
	inv := invoice("B-200", "Exluib", date(2025, 8, 10), "250.00")
	pool := []ledger.PaymentRecord{
		payment(2, "CLEANING SERVICES", date(2025, 8, 11), "250.00"),
		payment(3, "EXLUIB FACTURA", date(2025, 8, 12), "250.00"),
	}

	result := m.FindMatch(inv, pool, make(map[int]bool))

	require.NotNil(t, result)
	assert.Equal(t, 3, result.Payment.RowRef)
	assert.Equal(t, ledger.PrimaryMatchScore, result.Score)
}

func TestMatcher_ConsumedPaymentNotReused(t *testing.T) {
	// Two invoices contend for the same payment; the one processed first
	// wins and the second goes unmatched.
	m := New(DefaultConfig())
	first := invoice("C-1", "Exluib", date(2025, 8, 10), "90.00")
	second := invoice("C-2", "Exluib", date(2025, 8, 11), "90.00")
	pool := []ledger.PaymentRecord{
		payment(2, "EXLUIB", date(2025, 8, 12), "90.00"),
	}
	consumed := make(map[int]bool)

	result := m.FindMatch(first, pool, consumed)
	require.NotNil(t, result)
	consumed[result.Payment.RowRef] = true

	assert.Nil(t, m.FindMatch(second, pool, consumed))
}

func TestMatcher_ExactAmountOnly(t *testing.T) {
	// A cent of difference disqualifies a payment; amounts are compared
	// exactly, never within an epsilon.
	m := New(DefaultConfig())
	inv := invoice("A-100", "Exluib", date(2025, 8, 10), "100.00")
	pool := []ledger.PaymentRecord{
		payment(2, "EXLUIB", date(2025, 8, 12), "100.01"),
		payment(3, "EXLUIB", date(2025, 8, 12), "99.99"),
	}

	assert.Empty(t, m.Candidates(inv, pool, make(map[int]bool)))
	assert.Nil(t, m.FindMatch(inv, pool, make(map[int]bool)))
}

func TestMatcher_DateBoundary(t *testing.T) {
	m := New(DefaultConfig())
	invoiceDate := date(2025, 8, 10)

	// Exactly at the cutoff is accepted, one day earlier is rejected.
	assert.True(t, m.DateValid(invoiceDate, date(2025, 8, 5)))
	assert.False(t, m.DateValid(invoiceDate, date(2025, 8, 4)))

	// No upper bound: a payment far in the future still qualifies.
	assert.True(t, m.DateValid(invoiceDate, date(2026, 8, 10)))
}

func TestMatcher_ZeroTolerance(t *testing.T) {
	m := New(Config{PrimaryThreshold: 80, SecondaryThreshold: 90, DateToleranceDays: 0})
	invoiceDate := date(2025, 8, 10)

	assert.True(t, m.DateValid(invoiceDate, invoiceDate))
	assert.False(t, m.DateValid(invoiceDate, date(2025, 8, 9)))
}

func TestMatcher_ThresholdBoundary(t *testing.T) {
	// A score exactly at the primary threshold is accepted; one point
	// above the score falls through to the secondary pass.
	supplier := "Exluib S.A."
	description := "PAGO EXLUIB SA"
	score := similarity.TokenSetRatio(supplier, description)
	require.Greater(t, score, 0)

	inv := invoice("A-100", supplier, date(2025, 8, 10), "100.00")
	pool := []ledger.PaymentRecord{
		payment(2, description, date(2025, 8, 12), "100.00"),
	}

	atThreshold := New(Config{PrimaryThreshold: score, SecondaryThreshold: 100, DateToleranceDays: 5})
	result := atThreshold.FindMatch(inv, pool, make(map[int]bool))
	require.NotNil(t, result)
	assert.Equal(t, ledger.PrimaryMatchScore, result.Score)

	aboveScore := New(Config{PrimaryThreshold: score + 1, SecondaryThreshold: 100, DateToleranceDays: 5})
	assert.Nil(t, aboveScore.FindMatch(inv, pool, make(map[int]bool)))
}

func TestMatcher_SecondaryMatchUsesBankDetails(t *testing.T) {
	// The description alone says nothing useful; the supplier name only
	// appears in the bank detail fields, so the match comes from the
	// secondary pass at the lower recorded score.
	m := New(DefaultConfig())
	inv := invoice("A-100", "Exluib", date(2025, 8, 10), "100.00")
	pool := []ledger.PaymentRecord{
		{
			RowRef:      2,
			PaymentDate: date(2025, 8, 12),
			Amount:      amount("100.00"),
			Description: "TRANSFER",
			Detail1:     "EXLUIB",
			Detail2:     "REF 2025-081",
		},
	}

	result := m.FindMatch(inv, pool, make(map[int]bool))

	require.NotNil(t, result)
	assert.Equal(t, ledger.SecondaryMatchScore, result.Score)
}

func TestMatcher_AlreadyMatchedPaymentExcluded(t *testing.T) {
	m := New(DefaultConfig())
	inv := invoice("A-100", "Exluib", date(2025, 8, 10), "100.00")
	pool := []ledger.PaymentRecord{
		{
			RowRef:               2,
			PaymentDate:          date(2025, 8, 12),
			Amount:               amount("100.00"),
			Description:          "EXLUIB",
			MatchedInvoiceNumber: "A-099",
			MatchedFilename:      "A-099.pdf",
		},
	}

	assert.Nil(t, m.FindMatch(inv, pool, make(map[int]bool)))
}

func TestMatcher_PoolOrderBreaksTies(t *testing.T) {
	// Both payments qualify; the first in pool order wins.
	m := New(DefaultConfig())
	inv := invoice("A-100", "Exluib", date(2025, 8, 10), "100.00")
	pool := []ledger.PaymentRecord{
		payment(5, "EXLUIB PAGO", date(2025, 8, 20), "100.00"),
		payment(3, "EXLUIB PAGO", date(2025, 8, 11), "100.00"),
	}

	result := m.FindMatch(inv, pool, make(map[int]bool))

	require.NotNil(t, result)
	assert.Equal(t, 5, result.Payment.RowRef)
}
