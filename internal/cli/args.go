package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"disasterresponse/pkg/etl"
)

// RequireInputPaths validates that exactly the messages path, the categories
// path and the database path are provided. It runs before any file is touched.
func RequireInputPaths(cmd *cobra.Command, args []string) error {
	if len(args) == 3 {
		return nil
	}
	return fmt.Errorf(`%w: expected 3 arguments, received %d

Provide the messages and categories CSV files as the first and second
arguments, and the database to save the cleaned data to as the third.

Usage: %s

Example:
  %s disaster_messages.csv disaster_categories.csv DisasterResponse.db`,
		etl.ErrUsage, len(args), cmd.UseLine(), cmd.CommandPath())
}
