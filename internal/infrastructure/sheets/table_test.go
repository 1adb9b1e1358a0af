package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/normalize"
)

func invoiceTable() *Table {
	return NewTable([][]string{
		{"Supplier Name", "Invoice Date", "Invoice Number", "Tax", "Total Amount", "Paid On", "Filename", "Match Percentage"},
		{"Exluib S.A.", "10-08-2025", "A-100", "21,00", "100,00", "", "A-100.pdf", ""},
		{"Cleanco", "11-08-2025", "A-101", "10,50", "50,00"},
	})
}

func TestNewTable_RowRefsStartBelowHeader(t *testing.T) {
	table := invoiceTable()

	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Ref)
	assert.Equal(t, 3, table.Rows[1].Ref)
	assert.Equal(t, "A-100", table.Rows[0].Get(normalize.ColInvoiceNumber))
}

func TestNewTable_ShortRowsPadded(t *testing.T) {
	table := invoiceTable()

	// The second data row has no Paid On or Filename cells; lookups return
	// empty rather than misaligned values.
	assert.Equal(t, "", table.Rows[1].Get(normalize.ColPaidOn))
	assert.Equal(t, "", table.Rows[1].Get(normalize.ColFilename))
	assert.Equal(t, "50,00", table.Rows[1].Get(normalize.ColTotalAmount))
}

func TestTable_CellRef(t *testing.T) {
	table := invoiceTable()

	ref, err := table.CellRef(normalize.ColPaidOn, 5)
	require.NoError(t, err)
	assert.Equal(t, "F5", ref)

	ref, err = table.CellRef(normalize.ColMatchPercent, 2)
	require.NoError(t, err)
	assert.Equal(t, "H2", ref)

	_, err = table.CellRef("No Such Column", 2)
	assert.Error(t, err)
}

func TestTable_NewCellUpdate(t *testing.T) {
	table := invoiceTable()

	update, err := table.NewCellUpdate(normalize.ColPaidOn, 2, "12-08-2025")
	require.NoError(t, err)
	assert.Equal(t, CellUpdate{Ref: "F2", Value: "12-08-2025"}, update)
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{7, "H"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columnLetter(tt.index), "index %d", tt.index)
	}
}

func TestNewTable_Empty(t *testing.T) {
	table := NewTable(nil)
	assert.Empty(t, table.Rows)
	_, err := table.ColumnIndex(normalize.ColPaidOn)
	assert.Error(t, err)
}
