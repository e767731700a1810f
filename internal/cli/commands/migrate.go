package commands

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/testrig/internal/cli/config"
	"github.com/leapstack-labs/testrig/internal/cli/styles"
	"github.com/leapstack-labs/testrig/internal/migrate"
	"github.com/leapstack-labs/testrig/pkg/dbclient"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage schema migrations",
		Long: `Apply, roll back, and inspect goose SQL migrations.

Migrations live in the configured migrations directory as numbered
.sql files with goose Up/Down annotations. The migration dialect is
derived from the selected database's provider.`,
		Example: `  # Apply all pending migrations
  testrig migrate up

  # Roll back the most recent migration
  testrig migrate down

  # Show migration status
  testrig migrate status

  # Run against a specific database
  testrig migrate up --db warehouse`,
	}

	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateDownCommand())
	cmd.AddCommand(newMigrateStatusCommand())
	cmd.AddCommand(newMigrateVersionCommand())
	cmd.AddCommand(newMigrateCreateCommand())

	return cmd
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(client dbclient.Client, fsys fs.FS) error {
				if err := migrate.Up(client, fsys, "."); err != nil {
					return err
				}
				version, err := migrate.Version(client, fsys, ".")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(),
					styles.Success.Render(fmt.Sprintf("Migrations applied (version %d)", version)))
				return nil
			})
		},
	}
}

func newMigrateDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(client dbclient.Client, fsys fs.FS) error {
				if err := migrate.Down(client, fsys, "."); err != nil {
					return err
				}
				version, err := migrate.Version(client, fsys, ".")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(),
					styles.Success.Render(fmt.Sprintf("Rolled back one migration (version %d)", version)))
				return nil
			})
		},
	}
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of each migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(client dbclient.Client, fsys fs.FS) error {
				return migrate.Status(client, fsys, ".")
			})
		},
	}
}

func newMigrateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(client dbclient.Client, fsys fs.FS) error {
				version, err := migrate.Version(client, fsys, ".")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
				return nil
			})
		},
	}
}

func newMigrateCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new migration file skeleton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			if err := os.MkdirAll(cmdCtx.Cfg.MigrationsDir, 0750); err != nil {
				return fmt.Errorf("failed to create migrations directory: %w", err)
			}
			path, err := migrate.Create(cmdCtx.Cfg.MigrationsDir, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("Created "+path))
			return nil
		},
	}
}

// withMigrations validates the migrations directory, opens the
// selected database, and hands both to fn.
func withMigrations(cmd *cobra.Command, fn func(dbclient.Client, fs.FS) error) error {
	cmdCtx := NewCommandContext(cmd)

	if err := config.ValidateMigrationsDir(cmdCtx.Cfg); err != nil {
		return err
	}

	client, cleanup, err := openClient(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(client, os.DirFS(cmdCtx.Cfg.MigrationsDir))
}
