package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/testrig/pkg/dbclient"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against a configured database",
		Long: `Execute SQL statements against one of the configured databases.

SELECT-style statements render their result set; other statements
report the number of affected rows. Supports multiple output formats
for scripting and integration.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  testrig query "SELECT * FROM users"

  # Pick a database and output format
  testrig query --db warehouse --format json "SELECT count(*) AS n FROM orders"

  # Read SQL from a file
  testrig query --input ./reports/daily.sql

  # Interactive mode
  testrig query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext(cmd)

	// Determine SQL source
	var sqlText string

	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx)
	}

	client, cleanup, err := openClient(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	return runStatement(cmd.Context(), cmd.OutOrStdout(), client, sqlText, cmdCtx.Cfg.Format)
}

// runStatement executes a single SQL statement and renders the outcome.
func runStatement(ctx context.Context, w io.Writer, client dbclient.Client, sqlText, format string) error {
	if isQueryStatement(sqlText) {
		result, err := client.Query(ctx, sqlText)
		if err != nil {
			return err
		}
		return renderResult(w, result, format)
	}

	affected, err := client.Execute(ctx, sqlText)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "(%d rows affected)\n", affected)
	return nil
}

// isQueryStatement reports whether the statement produces a result set.
func isQueryStatement(sqlText string) bool {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "SHOW", "PRAGMA", "EXPLAIN", "DESCRIBE", "VALUES":
		return true
	}
	return false
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
