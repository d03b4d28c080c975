// Package table holds the in-memory row/column dataset that every pipeline
// stage works on.
package table

import (
	"fmt"
	"strings"

	"goeda/domain/core"
)

// Table is an ordered collection of rows aligned with Columns.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Value
}

// New creates an empty table with the given columns
func New(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// Len returns the row count
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the column count
func (t *Table) Width() int {
	return len(t.Columns)
}

// AppendRow adds a row, enforcing the column count
func (t *Table) AppendRow(row []Value) error {
	if len(row) != len(t.Columns) {
		return core.NewRowWidthError(len(t.Rows), len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// ColumnIndex returns the position of a column or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the named column's cells
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, core.NewColumnNotFoundError(t.Name, name)
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// SetColumn replaces the named column or appends it when absent
func (t *Table) SetColumn(name string, values []Value) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	idx := t.ColumnIndex(name)
	if idx >= 0 {
		for i := range t.Rows {
			t.Rows[i][idx] = values[i]
		}
		return nil
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// Filter returns a new table holding the rows for which keep returns true
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	out := New(t.Name, t.Columns)
	for _, row := range t.Rows {
		if keep(row) {
			r := make([]Value, len(row))
			copy(r, row)
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// RenameColumns applies fn to every column name
func (t *Table) RenameColumns(fn func(string) string) {
	for i, c := range t.Columns {
		t.Columns[i] = fn(c)
	}
}

// RowKey renders a row into a string that is equal for exactly equal rows.
// Cell keys are length-prefixed so no cell text can forge a boundary.
func RowKey(row []Value) string {
	var b strings.Builder
	for _, v := range row {
		k := v.key()
		fmt.Fprintf(&b, "%d:%s", len(k), k)
	}
	return b.String()
}

// CellKey renders one cell for join matching; missing cells return ok=false
func CellKey(v Value) (string, bool) {
	if v.IsMissing() {
		return "", false
	}
	return v.key(), true
}

// NumericColumns lists the columns whose non-missing cells are all numeric,
// in column order. Columns with no values at all are excluded.
func (t *Table) NumericColumns() []string {
	var out []string
	for idx, name := range t.Columns {
		seen := false
		numeric := true
		for _, row := range t.Rows {
			v := row[idx]
			if v.IsMissing() {
				continue
			}
			seen = true
			if !v.IsNumeric() {
				numeric = false
				break
			}
		}
		if seen && numeric {
			out = append(out, name)
		}
	}
	return out
}

// ColumnType returns the type shared by every non-missing cell of a column,
// string when cells disagree and missing when there are none
func (t *Table) ColumnType(name string) ValueType {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return ValueTypeMissing
	}
	kind := ValueTypeMissing
	for _, row := range t.Rows {
		v := row[idx]
		if v.IsMissing() {
			continue
		}
		if kind == ValueTypeMissing {
			kind = v.Type
		} else if kind != v.Type {
			return ValueTypeString
		}
	}
	return kind
}

// Floats returns the non-missing numeric cells of a column
func (t *Table) Floats(name string) ([]float64, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, core.NewColumnNotFoundError(t.Name, name)
	}
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if f, ok := row[idx].Float(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// MissingCount returns how many cells of a column are missing
func (t *Table) MissingCount(name string) int {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return 0
	}
	n := 0
	for _, row := range t.Rows {
		if row[idx].IsMissing() {
			n++
		}
	}
	return n
}

// Records renders the header and rows as strings for persistence
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	header := make([]string, len(t.Columns))
	copy(header, t.Columns)
	out = append(out, header)
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = v.String()
		}
		out = append(out, rec)
	}
	return out
}

// Fingerprint hashes the rendered records
func (t *Table) Fingerprint() core.Hash {
	return core.HashRecords(t.Records())
}
