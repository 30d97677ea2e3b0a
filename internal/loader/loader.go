// Package loader reads the messages and categories files and inner-joins them
// on their shared key.
package loader

import (
	"bufio"
	"fmt"
	"os"

	"disasterresponse/internal/table"
	"disasterresponse/pkg/etl"
)

// Options controls how input files are read and joined.
type Options struct {
	// Delimiter separates fields. Defaults to ','.
	Delimiter rune
	// Key is the join column. Defaults to "id".
	Key string
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Key == "" {
		o.Key = etl.KeyColumn
	}
	return o
}

// Stats describes what a Load kept and dropped.
type Stats struct {
	MessageRows      int
	CategoryRows     int
	MergedRows       int
	OrphanMessages   int // message rows with no category row
	OrphanCategories int // category rows with no message row
}

// Load reads both files and returns their inner join on the key column.
func Load(messagesPath, categoriesPath string, opts Options) (*table.Table, Stats, error) {
	opts = opts.withDefaults()

	messages, err := ReadFile(messagesPath, opts.Delimiter)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("load messages: %w", err)
	}
	categories, err := ReadFile(categoriesPath, opts.Delimiter)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("load categories: %w", err)
	}

	merged, js, err := innerJoin(messages, categories, opts.Key)
	if err != nil {
		return nil, Stats{}, err
	}

	return merged, Stats{
		MessageRows:      messages.Len(),
		CategoryRows:     categories.Len(),
		MergedRows:       merged.Len(),
		OrphanMessages:   js.unmatchedLeft,
		OrphanCategories: js.unmatchedRight,
	}, nil
}

// ReadFile parses one delimited file with a header row.
func ReadFile(path string, delimiter rune) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", etl.ErrIO, err)
	}
	defer f.Close()

	t, err := table.ReadCSV(bufio.NewReader(f), delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
