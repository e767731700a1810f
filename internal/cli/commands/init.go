package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/testrig/internal/cli/styles"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new testrig project",
		Long: `Initialize a new testrig project with default directory structure and configuration.

This creates:
  - testrig.yaml configuration file
  - migrations/ directory for goose SQL migrations
  - seeds/ directory for YAML seed data

Use --example to scaffold a working SQLite demo with a sample
migration and seed file.`,
		Example: `  # Initialize in current directory
  testrig init

  # Initialize with a working example
  testrig init --example

  # Initialize in a new directory
  testrig init my-project --example

  # Force overwrite existing config
  testrig init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			if example {
				return runInitExample(cmd, dir, force)
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create a working example project with a migration and seed data")

	return cmd
}

// prepareProjectDir creates the target directory and refuses to
// clobber an existing config unless forced.
func prepareProjectDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "testrig.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("testrig.yaml already exists. Use --force to overwrite")
	}
	return nil
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	if err := prepareProjectDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// The minimal template ships only the config; the directories are
	// created empty.
	for _, sub := range []string{"migrations", "seeds"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0750); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", sub, err)
		}
	}

	out := cmd.OutOrStdout()
	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		_, _ = fmt.Fprintf(out, "  %s %s\n", styles.StatusIcon(true), f)
	}
	_, _ = fmt.Fprintf(out, "  %s migrations/\n", styles.StatusIcon(true))
	_, _ = fmt.Fprintf(out, "  %s seeds/\n", styles.StatusIcon(true))

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, styles.Success.Render("testrig project initialized!"))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintln(out, "  1. Point testrig.yaml at your databases")
	_, _ = fmt.Fprintln(out, "  2. Add goose migrations to migrations/")
	_, _ = fmt.Fprintln(out, "  3. Add YAML seed files to seeds/")
	_, _ = fmt.Fprintln(out, "  4. Run 'testrig doctor' to verify connectivity")

	return nil
}

func runInitExample(cmd *cobra.Command, dir string, force bool) error {
	if err := prepareProjectDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	out := cmd.OutOrStdout()
	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	_, _ = fmt.Fprintln(out, styles.Header.Render("Configuration"))
	for _, f := range groups["config"] {
		_, _ = fmt.Fprintf(out, "  %s %s\n", styles.StatusIcon(true), f)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, styles.Header.Render("Migrations"))
	for _, f := range groups["migrations"] {
		_, _ = fmt.Fprintf(out, "  %s %s\n", styles.StatusIcon(true), f)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, styles.Header.Render("Seeds"))
	for _, f := range groups["seeds"] {
		_, _ = fmt.Fprintf(out, "  %s %s\n", styles.StatusIcon(true), f)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, styles.Success.Render("testrig project initialized with example data!"))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintln(out, "  testrig migrate up   Apply the example migration")
	_, _ = fmt.Fprintln(out, "  testrig seed         Load the example seed data")
	_, _ = fmt.Fprintln(out, "  testrig query        Explore the data interactively")
	_, _ = fmt.Fprintln(out, "  testrig doctor       Verify connectivity")

	return nil
}
