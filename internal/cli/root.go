// Package cli wires the process-data command: argument checks, flags,
// configuration, logging and the pipeline run.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"disasterresponse/pkg/etl"
)

type processFlags struct {
	configPath     string
	table          string
	categoryMode   string
	categoryColumn string
	delimiter      string
	metricsFile    string
	logLevel       string
	logFormat      string
	verbose        bool
}

// NewRootCmd builds the process-data command.
func NewRootCmd() *cobra.Command {
	flags := &processFlags{}

	cmd := &cobra.Command{
		Use:   "process-data <messages.csv> <categories.csv> <database_path>",
		Short: "Merge, clean and save disaster response messages",
		Long: `process-data joins the messages and categories datasets on id, expands the
semicolon-delimited category string into one 0/1 column per category, drops
duplicate rows and saves the result as the DisasterResponse table.

The database is a SQLite file path, or a postgres:// URL. An existing table of
the same name is replaced.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (wrong argument count or invalid flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Input unreadable or database unwritable
  12 - Malformed CSV or category token
  13 - Missing column, inconsistent categories or empty dataset`,
		Args:          RequireInputPaths,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args, flags)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", etl.ErrUsage, err)
	})

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	f.StringVar(&flags.table, "table", "", "destination table name (default DisasterResponse)")
	f.StringVar(&flags.categoryMode, "category-mode", "",
		"category schema check: strict rejects rows that disagree with the first row, lenient applies it by position")
	f.StringVar(&flags.categoryColumn, "category-column", "", "column holding the category string (default categories)")
	f.StringVar(&flags.delimiter, "delimiter", "", `input field delimiter (default ","; "\t" or "tab" for tab)`)
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write run metrics to this Prometheus textfile")
	f.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&flags.logFormat, "log-format", "", "log format: console or json")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "shorthand for --log-level debug")

	return cmd
}

// Execute runs the command with os.Args and reports any error on stderr.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
