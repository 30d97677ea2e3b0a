// Package etl holds the values shared by every stage of the disaster response
// ETL: sentinel errors, exit codes and the fixed names of the dataset.
package etl

// Exit codes follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error
//   - 3+: Application-specific errors
const (
	ExitSuccess      = 0  // Run completed and the table was saved
	ExitGeneralError = 1  // Unknown or unclassified error
	ExitUsageError   = 2  // Wrong argument count or bad flag
	ExitPanic        = 3  // Internal panic
	ExitConfigError  = 10 // Invalid configuration
	ExitIOError      = 11 // Input unreadable or destination unwritable
	ExitParseError   = 12 // Malformed CSV or category token
	ExitSchemaError  = 13 // Missing column, inconsistent categories or empty dataset
)

const (
	// DefaultTableName is the table the cleaned dataset is saved to.
	DefaultTableName = "DisasterResponse"

	// KeyColumn is the column both inputs are joined on.
	KeyColumn = "id"

	// DefaultCategoryColumn holds the `name-digit;name-digit` category string.
	DefaultCategoryColumn = "categories"

	// CategorySeparator separates category tokens.
	CategorySeparator = ";"

	// DefaultDatabasePath is used by the readers when no destination is configured.
	DefaultDatabasePath = "data/DisasterResponse.db"
)

// MessageColumns are the non-category columns of the cleaned table.
var MessageColumns = []string{"id", "message", "original", "genre"}
