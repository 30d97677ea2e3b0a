// Package table provides the immutable in-memory tabular value the ETL stages
// pass to each other.
//
// Cells are strings. The empty string is the null cell. Integer columns hold
// their cells in canonical base-10 form so that equal numbers compare equal as
// strings. Every operation returns a fresh Table and accessors hand out copies,
// so a Table can be shared freely between stages.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the storage kind of a column.
type Kind int

const (
	// KindText is free text.
	KindText Kind = iota
	// KindInteger is a 64-bit signed integer.
	KindInteger
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	default:
		return "text"
	}
}

// Column describes one column of a Table.
type Column struct {
	Name string
	Kind Kind
}

// Table is an ordered set of columns and rows.
type Table struct {
	cols  []Column
	rows  [][]string
	index map[string]int
}

// New builds a Table from columns and rows. Rows must have exactly one cell per
// column and integer cells must parse as integers. Column names must be unique.
func New(cols []Column, rows [][]string) (*Table, error) {
	t := &Table{
		cols:  append([]Column(nil), cols...),
		rows:  make([][]string, 0, len(rows)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		t.index[c.Name] = i
	}

	for r, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("row %d: expected %d cells, got %d", r, len(cols), len(row))
		}
		out := make([]string, len(row))
		for i, cell := range row {
			if cols[i].Kind == KindInteger {
				canon, err := canonicalInt(cell)
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", r, cols[i].Name, err)
				}
				cell = canon
			}
			out[i] = cell
		}
		t.rows = append(t.rows, out)
	}
	return t, nil
}

// Infer builds a Table from a header and raw rows, choosing each column's kind
// from its cells: integer when every non-empty cell is an integer and at least
// one cell is non-empty, text otherwise.
func Infer(header []string, rows [][]string) (*Table, error) {
	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = Column{Name: name, Kind: inferKind(rows, i)}
	}
	return New(cols, rows)
}

func inferKind(rows [][]string, idx int) Kind {
	seen := false
	for _, row := range rows {
		if idx >= len(row) || row[idx] == "" {
			continue
		}
		if _, err := strconv.ParseInt(strings.TrimSpace(row[idx]), 10, 64); err != nil {
			return KindText
		}
		seen = true
	}
	if !seen {
		return KindText
	}
	return KindInteger
}

func canonicalInt(cell string) (string, error) {
	if cell == "" {
		return "", nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
	if err != nil {
		return "", fmt.Errorf("not an integer: %q", cell)
	}
	return strconv.FormatInt(n, 10), nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Columns returns a copy of the column list.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.cols...)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return Column{}, false
	}
	return t.cols[i], true
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	return append([]string(nil), t.rows[i]...)
}

// Rows returns a deep copy of all rows.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Value returns the cell of row i in the named column.
func (t *Table) Value(i int, name string) (string, bool) {
	idx := t.Index(name)
	if idx < 0 || i < 0 || i >= len(t.rows) {
		return "", false
	}
	return t.rows[i][idx], true
}

// ColumnValues returns a copy of every cell of the named column.
func (t *Table) ColumnValues(name string) ([]string, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, true
}
