// Package cleaner expands the combined category field into one 0/1 column per
// category and removes duplicate records.
//
// Clean never modifies its input: it returns a new table.
package cleaner

import (
	"fmt"
	"strconv"

	"disasterresponse/internal/table"
	"disasterresponse/pkg/etl"
)

// Options controls Clean.
type Options struct {
	// Column holds the combined category field. Defaults to "categories".
	Column string
	// Mode selects strict or lenient schema checking. Defaults to ModeStrict.
	Mode Mode
}

// Report describes one Clean.
type Report struct {
	Schema            Schema
	InputRows         int
	OutputRows        int
	Duplicates        int
	LenientMismatches int   // rows whose names differed from the schema
	MismatchedRows    []int // their positions, lenient mode only
}

// Clean derives the category schema from the first row, replaces the category
// field with one integer column per category (0, or 1 for any nonzero value)
// and drops rows equal in every column to an earlier row.
func Clean(in *table.Table, opts Options) (*table.Table, Report, error) {
	if opts.Column == "" {
		opts.Column = etl.DefaultCategoryColumn
	}
	if opts.Mode == "" {
		opts.Mode = ModeStrict
	}

	fields, ok := in.ColumnValues(opts.Column)
	if !ok {
		return nil, Report{}, fmt.Errorf("%w: no %q column", etl.ErrSchema, opts.Column)
	}
	if len(fields) == 0 {
		return nil, Report{}, fmt.Errorf("%w: no rows to derive categories from", etl.ErrEmptyDataset)
	}

	schema, err := DeriveSchema(fields[0])
	if err != nil {
		return nil, Report{}, fmt.Errorf("row 0: %w", err)
	}

	rest, err := in.Drop(opts.Column)
	if err != nil {
		return nil, Report{}, err
	}
	for _, name := range schema.Names {
		if rest.Index(name) >= 0 {
			return nil, Report{}, fmt.Errorf("%w: category %q collides with an existing column", etl.ErrSchema, name)
		}
	}

	report := Report{Schema: schema, InputRows: in.Len()}
	rows := make([][]string, len(fields))
	for i, field := range fields {
		values, mismatched, err := schema.Binarize(field, opts.Mode)
		if err != nil {
			return nil, Report{}, fmt.Errorf("row %d: %w", i, err)
		}
		if mismatched {
			report.LenientMismatches++
			report.MismatchedRows = append(report.MismatchedRows, i)
		}
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = strconv.Itoa(v)
		}
		rows[i] = row
	}

	cols := make([]table.Column, len(schema.Names))
	for i, name := range schema.Names {
		cols[i] = table.Column{Name: name, Kind: table.KindInteger}
	}
	categories, err := table.New(cols, rows)
	if err != nil {
		return nil, Report{}, fmt.Errorf("%w: %w", etl.ErrSchema, err)
	}

	joined, err := rest.Concat(categories)
	if err != nil {
		return nil, Report{}, fmt.Errorf("%w: %w", etl.ErrSchema, err)
	}

	out, dups := Deduplicate(joined)
	report.Duplicates = dups
	report.OutputRows = out.Len()
	return out, report, nil
}

// Deduplicate drops rows equal in every column to an earlier row and returns
// the number removed. Applying it to its own output removes nothing.
func Deduplicate(t *table.Table) (*table.Table, int) {
	return t.DropDuplicates()
}
