package etl

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", fmt.Errorf("%w: need 3 args", ErrUsage), ExitUsageError},
		{"config", fmt.Errorf("load: %w", ErrInvalidConfig), ExitConfigError},
		{"io", fmt.Errorf("%w: open x.csv: %w", ErrIO, errors.New("no such file")), ExitIOError},
		{"parse", fmt.Errorf("row 3: %w", ErrParse), ExitParseError},
		{"schema", fmt.Errorf("%w: missing id", ErrSchema), ExitSchemaError},
		{"empty", ErrEmptyDataset, ExitSchemaError},
		{"unclassified", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}
