// Package cli provides the command-line interface for testrig.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/testrig/internal/cli/commands"
	"github.com/leapstack-labs/testrig/internal/cli/config"

	// Register database providers.
	_ "github.com/leapstack-labs/testrig/pkg/dbclients/duckdb"
	_ "github.com/leapstack-labs/testrig/pkg/dbclients/mysql"
	_ "github.com/leapstack-labs/testrig/pkg/dbclients/postgres"
	_ "github.com/leapstack-labs/testrig/pkg/dbclients/sqlite"
	_ "github.com/leapstack-labs/testrig/pkg/dbclients/sqlserver"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "testrig",
		Short: "testrig - test automation toolkit",
		Long: `testrig wires integration tests to real infrastructure.

It manages connections to SQL databases (PostgreSQL, MySQL, SQL Server,
SQLite, DuckDB) and HTTP APIs, applies goose migrations and YAML seed
data, and checks that every configured target is reachable.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help, completion, and version.
			// init is skipped too: it scaffolds a fresh project and
			// must not trip over a broken config in a parent directory.
			switch cmd.Name() {
			case "help", "completion", "__complete", "init":
				return nil
			case "version":
				if cmd.Parent() == cmd.Root() {
					return nil
				}
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Build the logger and store it in context for commands
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(context.WithValue(cmd.Context(), config.LoggerKey(), logger))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Test automation toolkit for SQL databases and HTTP APIs
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./testrig.yaml)")
	rootCmd.PersistentFlags().StringP("db", "d", "", "Database to use (name from the databases map)")
	rootCmd.PersistentFlags().String("migrations-dir", "", "Path to migrations directory")
	rootCmd.PersistentFlags().String("seeds-dir", "", "Path to seeds directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("format", "f", "", "Output format (table|json|csv|md)")

	// Register completion for format flag
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for db flag from the configured databases
	_ = rootCmd.RegisterFlagCompletionFunc("db", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		cfg, err := config.LoadConfig(cfgFile, nil)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return cfg.DatabaseNames(), cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for testrig.

To load completions:

Bash:
  $ source <(testrig completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ testrig completion bash > /etc/bash_completion.d/testrig
  # macOS:
  $ testrig completion bash > $(brew --prefix)/etc/bash_completion.d/testrig

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ testrig completion zsh > "${fpath[1]}/_testrig"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ testrig completion fish | source

  # To load completions for each session, execute once:
  $ testrig completion fish > ~/.config/fish/completions/testrig.fish

PowerShell:
  PS> testrig completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> testrig completion powershell > testrig.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
