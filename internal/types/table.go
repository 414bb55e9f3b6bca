package types

import (
	"strings"
)

// =============================================================================
// RAW TABLE
// =============================================================================

// RawTable is one loaded source file: named columns and ordered rows.
// Columns are positional, so the same header text may appear twice.
// Every row holds exactly len(Columns) cells.
type RawTable struct {
	// Source identifies the table in log events (usually the file name).
	Source string

	// Columns are the header cells in source order, untouched.
	Columns []string

	// Rows are the data rows in source order.
	Rows [][]Value
}

// NewRawTable creates an empty table with the given header.
func NewRawTable(source string, columns []string) *RawTable {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &RawTable{Source: source, Columns: cols}
}

// AppendRow adds a row, padding short rows with nulls and cutting long ones
// so the column invariant holds.
func (t *RawTable) AppendRow(cells []Value) {
	row := make([]Value, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// Column returns a copy of every cell in column i.
func (t *RawTable) Column(i int) []Value {
	out := make([]Value, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// NormalizeHeader trims surrounding whitespace and lowercases a header cell.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// =============================================================================
// CONCATENATION
// =============================================================================

// columnKey identifies the n-th occurrence of a normalised header.
type columnKey struct {
	name       string
	occurrence int
}

// Concat stacks tables vertically in the order given.
//
// Columns are aligned on their normalised header and occurrence index, so
// "Name" in one file and " name" in another land in the same column while a
// header repeated inside one file stays a separate column. The merged header
// keeps the spelling of the first table that introduced each column. Cells a
// table does not provide are null.
//
// PARAMETERS:
//   - source: identity of the merged table
//   - tables: loaded tables, in ingestion order
//
// RETURNS:
//   - A new table; the inputs are not modified.
func Concat(source string, tables []*RawTable) *RawTable {
	var (
		merged  []string
		indexOf = make(map[columnKey]int)
	)

	// Each table's column positions in the merged header.
	layouts := make([][]int, len(tables))

	for ti, t := range tables {
		seen := make(map[string]int)
		layout := make([]int, len(t.Columns))
		for ci, c := range t.Columns {
			norm := NormalizeHeader(c)
			key := columnKey{name: norm, occurrence: seen[norm]}
			seen[norm]++

			idx, ok := indexOf[key]
			if !ok {
				idx = len(merged)
				indexOf[key] = idx
				merged = append(merged, c)
			}
			layout[ci] = idx
		}
		layouts[ti] = layout
	}

	out := NewRawTable(source, merged)
	for ti, t := range tables {
		for _, row := range t.Rows {
			cells := make([]Value, len(merged))
			for ci, v := range row {
				cells[layouts[ti][ci]] = v
			}
			out.Rows = append(out.Rows, cells)
		}
	}

	return out
}
