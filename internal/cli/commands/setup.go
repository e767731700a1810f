package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/testrig/internal/cli/config"
	sharedcfg "github.com/leapstack-labs/testrig/internal/config"
	"github.com/leapstack-labs/testrig/pkg/dbclient"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext creates a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		MigrationsDir: getEnvOrDefault("TESTRIG_MIGRATIONS_DIR", sharedcfg.DefaultMigrationsDir),
		SeedsDir:      getEnvOrDefault("TESTRIG_SEEDS_DIR", sharedcfg.DefaultSeedsDir),
		Format:        getEnvOrDefault("TESTRIG_FORMAT", sharedcfg.DefaultFormat),
		Verbose:       os.Getenv("TESTRIG_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// selectedDatabase returns the value of the persistent --db flag.
func selectedDatabase(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("db")
	return name
}

// openClient resolves the selected database, builds a client, and
// connects it. When no databases are configured it falls back to the
// TESTRIG_DB_* environment variables. The returned cleanup closes the
// connection and must be called (typically via defer).
func openClient(cmd *cobra.Command, cmdCtx *CommandContext) (dbclient.Client, func(), error) {
	var (
		client dbclient.Client
		err    error
	)

	if len(cmdCtx.Cfg.Databases) > 0 {
		dbCfg, terr := cmdCtx.Cfg.Target(selectedDatabase(cmd))
		if terr != nil {
			return nil, nil, terr
		}
		client, err = dbclient.New(dbCfg, cmdCtx.Logger)
	} else {
		client, err = dbclient.NewFromEnv(cmdCtx.Logger)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := client.Connect(cmd.Context()); err != nil {
		return nil, nil, fmt.Errorf("connect failed: %w", err)
	}

	cleanup := func() { _ = client.Close() }
	return client, cleanup, nil
}
