package etl

import (
	"errors"
)

// Sentinel errors for the failure classes of a run.
// Failure sites wrap one of these with %w so callers can classify with errors.Is:
//
//	if errors.Is(err, etl.ErrParse) {
//	    // malformed CSV or category token
//	}
var (
	// ErrUsage indicates the command was invoked with the wrong arguments.
	ErrUsage = errors.New("usage error")

	// ErrInvalidConfig indicates the configuration file or flags are invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIO indicates an input could not be read or the destination could not be written.
	ErrIO = errors.New("i/o error")

	// ErrParse indicates malformed delimited text or a malformed category token.
	ErrParse = errors.New("parse error")

	// ErrSchema indicates a missing or inconsistent column.
	ErrSchema = errors.New("schema error")

	// ErrEmptyDataset indicates the merged dataset has no rows to derive categories from.
	ErrEmptyDataset = errors.New("empty dataset")
)

// ExitCodeForError returns the process exit code for err.
// Returns ExitSuccess for nil and ExitGeneralError for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrIO):
		return ExitIOError
	case errors.Is(err, ErrParse):
		return ExitParseError
	case errors.Is(err, ErrSchema), errors.Is(err, ErrEmptyDataset):
		return ExitSchemaError
	}
	return ExitGeneralError
}
