package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Drop returns a copy of t without the named column.
func (t *Table) Drop(name string) (*Table, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("no column %q", name)
	}

	cols := make([]Column, 0, len(t.cols)-1)
	cols = append(cols, t.cols[:idx]...)
	cols = append(cols, t.cols[idx+1:]...)

	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out := make([]string, 0, len(row)-1)
		out = append(out, row[:idx]...)
		out = append(out, row[idx+1:]...)
		rows[i] = out
	}
	return New(cols, rows)
}

// Concat places the columns of other to the right of t, aligning rows by
// position. Rows beyond the shorter table are dropped.
func (t *Table) Concat(other *Table) (*Table, error) {
	cols := make([]Column, 0, len(t.cols)+len(other.cols))
	cols = append(cols, t.cols...)
	cols = append(cols, other.cols...)

	n := min(len(t.rows), len(other.rows))
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(cols))
		row = append(row, t.rows[i]...)
		row = append(row, other.rows[i]...)
		rows[i] = row
	}
	return New(cols, rows)
}

// DropDuplicates returns a copy of t keeping only the first occurrence of rows
// that are equal in every column, and the number of rows removed.
func (t *Table) DropDuplicates() (*Table, int) {
	seen := make(map[string]struct{}, len(t.rows))
	keep := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, row)
	}

	out := &Table{
		cols:  append([]Column(nil), t.cols...),
		rows:  make([][]string, len(keep)),
		index: make(map[string]int, len(t.index)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for i, row := range keep {
		out.rows[i] = append([]string(nil), row...)
	}
	return out, len(t.rows) - len(keep)
}

// rowKey length-prefixes every cell so no cell content can forge a separator.
func rowKey(row []string) string {
	var b strings.Builder
	for _, cell := range row {
		b.WriteString(strconv.Itoa(len(cell)))
		b.WriteByte(':')
		b.WriteString(cell)
	}
	return b.String()
}

// Equal reports whether t and other have the same columns, kinds and rows.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.cols) != len(other.cols) || len(t.rows) != len(other.rows) {
		return false
	}
	for i := range t.cols {
		if t.cols[i] != other.cols[i] {
			return false
		}
	}
	for i := range t.rows {
		for j := range t.rows[i] {
			if t.rows[i][j] != other.rows[i][j] {
				return false
			}
		}
	}
	return true
}
