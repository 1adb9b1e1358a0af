// Package normalize converts raw sheet rows into typed ledger records.
//
// The sheets hold localized values: amounts like "1234,56 €" and day-first
// dates like "14-03-2025". Rows whose amount or date cannot be parsed are
// dropped from the working set for the run; only aggregate counts are
// reported (each drop is logged at debug level by the caller).
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/ledger"
)

// Row is one sheet row addressed by column header.
type Row struct {
	// Ref is the 1-based sheet row this data came from.
	Ref    int
	Values map[string]string
}

// Get returns the named column's value, empty when the column is absent.
func (r Row) Get(column string) string {
	return r.Values[column]
}

// Invoice sheet column headers.
const (
	ColSupplierName  = "Supplier Name"
	ColInvoiceDate   = "Invoice Date"
	ColInvoiceNumber = "Invoice Number"
	ColTax           = "Tax"
	ColTotalAmount   = "Total Amount"
	ColPaidOn        = "Paid On"
	ColFilename      = "Filename"
	ColMatchPercent  = "Match Percentage"
)

// Bank sheet column headers.
const (
	ColPaymentDate      = "Date"
	ColAmount           = "Amount"
	ColDescription      = "Description"
	ColBankDetails1     = "Bank Details 1"
	ColBankDetails2     = "Bank Details 2"
	ColMatchedInvoiceID = "Matched Invoice ID"
	ColMatchedFilename  = "Matched Filename"
)

// DropStats counts rows excluded from the working set.
type DropStats struct {
	BadAmount int
	BadDate   int
}

// Total returns the number of dropped rows.
func (d DropStats) Total() int {
	return d.BadAmount + d.BadDate
}

// currencyReplacer strips the euro symbol and converts the decimal comma.
// Thousands separators are not expected in the sheets; amounts arrive as
// plain "1234,56" style values.
var currencyReplacer = strings.NewReplacer("€", "", ",", ".")

// ParseAmount parses a localized currency string into a two-decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(currencyReplacer.Replace(s))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Round(2), nil
}

// dateLayouts are tried in order. Day-first per the source data; the ISO
// layout is a fallback for rows edited by hand in the sheet UI.
var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2006-01-02",
}

// ParseDate parses a day-first calendar date. The result is midnight UTC;
// the engine only ever compares whole days.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, trimmed, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Invoices converts invoice sheet rows into records, preserving row order.
// Rows with an unparsable date or total amount are dropped and counted.
func Invoices(rows []Row) ([]ledger.InvoiceRecord, DropStats) {
	var stats DropStats
	records := make([]ledger.InvoiceRecord, 0, len(rows))

	for _, row := range rows {
		date, err := ParseDate(row.Get(ColInvoiceDate))
		if err != nil {
			stats.BadDate++
			continue
		}
		total, err := ParseAmount(row.Get(ColTotalAmount))
		if err != nil {
			stats.BadAmount++
			continue
		}
		// Tax is carried for reporting only; a bad value does not drop
		// the row.
		tax, _ := ParseAmount(row.Get(ColTax))

		records = append(records, ledger.InvoiceRecord{
			RowRef:        row.Ref,
			InvoiceNumber: strings.TrimSpace(row.Get(ColInvoiceNumber)),
			SupplierName:  strings.TrimSpace(row.Get(ColSupplierName)),
			InvoiceDate:   date,
			TotalAmount:   total,
			Tax:           tax,
			Filename:      strings.TrimSpace(row.Get(ColFilename)),
			PaidOn:        strings.TrimSpace(row.Get(ColPaidOn)),
		})
	}

	return records, stats
}

// Payments converts bank sheet rows into records, preserving row order.
func Payments(rows []Row) ([]ledger.PaymentRecord, DropStats) {
	var stats DropStats
	records := make([]ledger.PaymentRecord, 0, len(rows))

	for _, row := range rows {
		date, err := ParseDate(row.Get(ColPaymentDate))
		if err != nil {
			stats.BadDate++
			continue
		}
		amount, err := ParseAmount(row.Get(ColAmount))
		if err != nil {
			stats.BadAmount++
			continue
		}

		records = append(records, ledger.PaymentRecord{
			RowRef:               row.Ref,
			PaymentDate:          date,
			Amount:               amount,
			Description:          strings.TrimSpace(row.Get(ColDescription)),
			Detail1:              strings.TrimSpace(row.Get(ColBankDetails1)),
			Detail2:              strings.TrimSpace(row.Get(ColBankDetails2)),
			MatchedInvoiceNumber: strings.TrimSpace(row.Get(ColMatchedInvoiceID)),
			MatchedFilename:      strings.TrimSpace(row.Get(ColMatchedFilename)),
		})
	}

	return records, stats
}
