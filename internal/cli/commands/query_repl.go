package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/testrig/pkg/dbclient"
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext) error {
	ctx := cmd.Context()

	client, cleanup, err := openClient(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	completer := newTableCompleter(ctx, client)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "testrig> ",
		HistoryFile:     historyFilePath(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "testrig query REPL (database: %s)\n", client.Provider())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("testrig> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(ctx, cmd, client, line, cmdCtx.Cfg.Format); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}
		rl.SetPrompt("testrig> ")

		sqlText := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := runStatement(ctx, cmd.OutOrStdout(), client, sqlText, cmdCtx.Cfg.Format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// historyFilePath keeps REPL history in the user's home directory.
func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".testrig_history")
	}
	return filepath.Join(home, ".testrig_history")
}

// handleDotCommand runs one REPL dot-command and reports whether the
// REPL should exit.
func handleDotCommand(ctx context.Context, cmd *cobra.Command, client dbclient.Client, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".tables":
		if err := listTables(ctx, cmd.OutOrStdout(), client, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables in the current database
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// catalogQuery returns the provider-specific statement that lists user
// tables with the table name in the first column.
func catalogQuery(provider string) (string, error) {
	switch provider {
	case "postgres":
		return `SELECT tablename AS name FROM pg_catalog.pg_tables WHERE schemaname NOT IN ('pg_catalog', 'information_schema') ORDER BY tablename`, nil
	case "mysql":
		return `SHOW TABLES`, nil
	case "sqlserver":
		return `SELECT name FROM sys.tables ORDER BY name`, nil
	case "sqlite":
		return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`, nil
	case "duckdb":
		return `SELECT table_name AS name FROM information_schema.tables WHERE table_schema = 'main' ORDER BY table_name`, nil
	}
	return "", fmt.Errorf("table listing is not supported for provider %q", provider)
}

func listTables(ctx context.Context, w io.Writer, client dbclient.Client, format string) error {
	query, err := catalogQuery(client.Provider())
	if err != nil {
		return err
	}

	result, err := client.Query(ctx, query)
	if err != nil {
		return err
	}
	return renderResult(w, result, format)
}

// newTableCompleter creates a readline completer for table names.
func newTableCompleter(ctx context.Context, client dbclient.Client) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	// Table names are best-effort; completion still works without them.
	if query, err := catalogQuery(client.Provider()); err == nil {
		if result, err := client.Query(ctx, query); err == nil && len(result.Columns) > 0 {
			nameCol := result.Columns[0]
			for _, row := range result.Rows {
				if name, ok := row[nameCol].(string); ok {
					items = append(items, readline.PcItem(name))
				}
			}
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
