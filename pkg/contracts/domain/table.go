package domain

import (
	"fmt"
	"strings"
)

// Table is an in-memory, column-named grid of cells. Tables are treated as
// immutable snapshots: every transforming method returns a new Table and
// never touches the receiver's cells.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable builds a table. Column names must be unique and every row must
// have exactly one cell per column.
func NewTable(columns []string, rows [][]Value) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		index[name] = i
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(columns))
		}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index, rows: rows}, nil
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns
func (t *Table) Width() int { return len(t.columns) }

// IsEmpty reports a table without rows or without columns
func (t *Table) IsEmpty() bool { return len(t.rows) == 0 || len(t.columns) == 0 }

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Row returns a copy of row i
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// At returns the cell at row i, column j
func (t *Table) At(i, j int) Value { return t.rows[i][j] }

// Get returns the named cell of row i, or Missing when the column is absent
func (t *Table) Get(i int, column string) Value {
	j, ok := t.index[column]
	if !ok {
		return Missing()
	}
	return t.rows[i][j]
}

// Column returns a copy of the named column's cells
func (t *Table) Column(name string) ([]Value, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, true
}

// Select returns a table holding the given rows in the given order
func (t *Table) Select(rows []int) *Table {
	out := make([][]Value, len(rows))
	for i, r := range rows {
		out[i] = t.rows[r]
	}
	return &Table{columns: t.columns, index: t.index, rows: out}
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	rows := make([][]Value, len(t.rows))
	for i := range t.rows {
		rows[i] = t.Row(i)
	}
	return &Table{columns: t.Columns(), index: t.index, rows: rows}
}

// MapColumns returns a new table where each named column present in fns is
// rewritten cell by cell. Columns not in the table are ignored.
func (t *Table) MapColumns(fns map[string]func(Value) Value) *Table {
	type colFn struct {
		j  int
		fn func(Value) Value
	}
	var apply []colFn
	for _, name := range t.columns {
		if fn, ok := fns[name]; ok {
			apply = append(apply, colFn{j: t.index[name], fn: fn})
		}
	}

	rows := make([][]Value, len(t.rows))
	for i := range t.rows {
		row := t.Row(i)
		for _, c := range apply {
			row[c.j] = c.fn(row[c.j])
		}
		rows[i] = row
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// Distinct drops rows identical across all columns to an earlier row,
// keeping first occurrences in order. It returns the number removed.
func (t *Table) Distinct() (*Table, int) {
	seen := make(map[string]struct{}, len(t.rows))
	keep := make([]int, 0, len(t.rows))
	var b strings.Builder
	for i, row := range t.rows {
		b.Reset()
		for _, v := range row {
			b.WriteString(v.key())
			b.WriteByte(0)
		}
		k := b.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	return t.Select(keep), len(t.rows) - len(keep)
}

// Equal reports whether both tables have the same columns and cells
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.columns) != len(o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.columns {
		if t.columns[i] != o.columns[i] {
			return false
		}
	}
	for i := range t.rows {
		for j := range t.rows[i] {
			if !t.rows[i][j].Equal(o.rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// Records renders the table as string rows, header first, for writers
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.rows)+1)
	out = append(out, t.Columns())
	for _, row := range t.rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.String()
		}
		out = append(out, rec)
	}
	return out
}
