// Package sheets reads and writes the two Google Sheets that act as the
// systems of record: the extracted-invoice sheet and the bank-payments
// sheet.
package sheets

import (
	"fmt"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/normalize"
)

// Table is a full read of one worksheet: the header row plus all data
// rows. Data rows keep their 1-based sheet position (first data row is 2)
// so write-backs can address them directly.
type Table struct {
	Header []string
	Rows   []normalize.Row

	columns map[string]int
}

// NewTable builds a Table from raw cell values as returned by the API.
// Column positions are resolved from the header row rather than hard-coded
// letters, so inserting a column in the sheet does not corrupt write-backs.
func NewTable(values [][]string) *Table {
	if len(values) == 0 {
		return &Table{columns: map[string]int{}}
	}

	header := values[0]
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	rows := make([]normalize.Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		rowValues := make(map[string]string, len(header))
		for col, name := range header {
			if col < len(raw) {
				rowValues[name] = raw[col]
			}
		}
		rows = append(rows, normalize.Row{Ref: i + 2, Values: rowValues})
	}

	return &Table{Header: header, Rows: rows, columns: columns}
}

// ColumnIndex returns the 0-based index of the named header column.
func (t *Table) ColumnIndex(name string) (int, error) {
	idx, ok := t.columns[name]
	if !ok {
		return 0, fmt.Errorf("sheet has no %q column", name)
	}
	return idx, nil
}

// CellRef returns the A1-style reference for the named column in the given
// 1-based sheet row.
func (t *Table) CellRef(column string, rowRef int) (string, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", columnLetter(idx), rowRef), nil
}

// CellUpdate is one cell write, addressed by A1 reference.
type CellUpdate struct {
	Ref   string
	Value string
}

// NewCellUpdate builds a CellUpdate for the named column of a data row.
func (t *Table) NewCellUpdate(column string, rowRef int, value string) (CellUpdate, error) {
	ref, err := t.CellRef(column, rowRef)
	if err != nil {
		return CellUpdate{}, err
	}
	return CellUpdate{Ref: ref, Value: value}, nil
}

// columnLetter converts a 0-based column index to its A1 letter form
// (0 → A, 25 → Z, 26 → AA).
func columnLetter(index int) string {
	letters := ""
	index++
	for index > 0 {
		index--
		letters = string(rune('A'+index%26)) + letters
		index /= 26
	}
	return letters
}
