package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"disasterresponse/pkg/etl"
)

const utf8BOM = "\ufeff"

// ReadCSV parses delimited text with a header row into a Table whose column
// kinds are inferred. Short rows are padded with null cells; long rows are a
// parse error. Blank lines are skipped.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classifyReadErr(err)
		}
		if len(row) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d", etl.ErrParse, line, len(header), len(row))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	t, err := Infer(header, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", etl.ErrParse, err)
	}
	return t, nil
}

func readHeader(cr *csv.Reader) ([]string, error) {
	row, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", etl.ErrParse)
	}
	if err != nil {
		return nil, classifyReadErr(err)
	}

	header := make([]string, len(row))
	seen := make(map[string]struct{}, len(row))
	for i, name := range row {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q in header", etl.ErrSchema, name)
		}
		seen[name] = struct{}{}
		header[i] = name
	}
	return header, nil
}

func classifyReadErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", etl.ErrParse, err)
	}
	return fmt.Errorf("%w: %w", etl.ErrIO, err)
}

// WriteCSV writes t with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
