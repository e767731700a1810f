package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/testrig/internal/cli/config"
	"github.com/leapstack-labs/testrig/internal/cli/styles"
	"github.com/leapstack-labs/testrig/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load seed data from YAML files",
		Long: `Load seed data from YAML files in the seeds directory into the database.

Each file holds one or more documents naming a table and its rows.
Files are applied in lexical order and every file runs in its own
transaction, so a bad row rolls back only that file.`,
		Example: `  # Load all seeds into the default database
  testrig seed

  # Load seeds into a specific database
  testrig seed --db warehouse

  # Load seeds from a specific directory
  testrig seed --seeds-dir ./fixtures`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd)
		},
	}
}

func runSeed(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)

	if err := config.ValidateSeedsDir(cmdCtx.Cfg); err != nil {
		return err
	}

	client, cleanup, err := openClient(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	rows, err := seed.Apply(cmd.Context(), client, os.DirFS(cmdCtx.Cfg.SeedsDir), ".")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rows == 0 {
		_, _ = fmt.Fprintln(out, styles.Muted.Render("No seed files found in "+cmdCtx.Cfg.SeedsDir))
		return nil
	}

	_, _ = fmt.Fprintln(out, styles.Success.Render(fmt.Sprintf("Seeded %d rows", rows)))
	_, _ = fmt.Fprintln(out, styles.Muted.Render("Source: "+cmdCtx.Cfg.SeedsDir))
	return nil
}
