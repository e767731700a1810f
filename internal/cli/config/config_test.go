package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a testrig.yaml into a fresh temp dir and returns
// both paths.
func writeConfig(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "testrig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return dir, path
}

// TestExpandEnvVars tests the expandEnvVars function.
func TestExpandEnvVars(t *testing.T) {
	// Set test environment variables
	require.NoError(t, os.Setenv("TEST_VAR_ONE", "value_one"))
	require.NoError(t, os.Setenv("TEST_VAR_TWO", "value_two"))
	defer func() {
		_ = os.Unsetenv("TEST_VAR_ONE")
		_ = os.Unsetenv("TEST_VAR_TWO")
	}()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single variable",
			input:    "${TEST_VAR_ONE}",
			expected: "value_one",
		},
		{
			name:     "multiple variables",
			input:    "${TEST_VAR_ONE}/${TEST_VAR_TWO}",
			expected: "value_one/value_two",
		},
		{
			name:     "variable in path",
			input:    "/path/to/${TEST_VAR_ONE}/file",
			expected: "/path/to/value_one/file",
		},
		{
			name:     "unset variable stays as-is",
			input:    "${UNSET_VARIABLE}",
			expected: "${UNSET_VARIABLE}",
		},
		{
			name:     "no variables",
			input:    "plain string",
			expected: "plain string",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "mixed set and unset",
			input:    "${TEST_VAR_ONE}:${UNSET_VAR}",
			expected: "value_one:${UNSET_VAR}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandEnvVars(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestLoadConfig_Defaults verifies that defaults are applied when the
// config file leaves them out, and that directories are anchored to
// the config file's directory.
func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	dir, path := writeConfig(t, "verbose: false\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "migrations"), cfg.MigrationsDir)
	assert.Equal(t, filepath.Join(dir, "seeds"), cfg.SeedsDir)
	assert.Equal(t, "table", cfg.Format)
	assert.False(t, cfg.Verbose)
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	dir, path := writeConfig(t, "migrations_dir: from_file\n")

	// Set env var with different value
	require.NoError(t, os.Setenv("TESTRIG_MIGRATIONS_DIR", "from_env"))
	defer func() { _ = os.Unsetenv("TESTRIG_MIGRATIONS_DIR") }()

	// Create flag set with yet another value
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("migrations-dir", "", "migrations directory")
	require.NoError(t, flags.Set("migrations-dir", "from_flag"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	// Flag should win
	assert.Equal(t, filepath.Join(dir, "from_flag"), cfg.MigrationsDir,
		"flag value should override config file and env var")
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override the config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	dir, path := writeConfig(t, "migrations_dir: from_file\n")

	require.NoError(t, os.Setenv("TESTRIG_MIGRATIONS_DIR", "from_env"))
	defer func() { _ = os.Unsetenv("TESTRIG_MIGRATIONS_DIR") }()

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	// Env should win over file
	assert.Equal(t, filepath.Join(dir, "from_env"), cfg.MigrationsDir,
		"env var should override config file")
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	dir, path := writeConfig(t, "migrations_dir: from_file\n")

	require.NoError(t, os.Setenv("TESTRIG_MIGRATIONS_DIR", "from_env"))
	defer func() { _ = os.Unsetenv("TESTRIG_MIGRATIONS_DIR") }()

	// Create flag set but don't set the flag (Changed will be false)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("migrations-dir", "", "migrations directory")

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	// Env should win since flag wasn't explicitly set
	assert.Equal(t, filepath.Join(dir, "from_env"), cfg.MigrationsDir,
		"env var should be used when flag is not set")
}

// TestLoadConfig_Databases covers the databases map: ${VAR} expansion
// in connection fields and anchoring of file-backed paths.
func TestLoadConfig_Databases(t *testing.T) {
	ResetConfig()

	require.NoError(t, os.Setenv("TEST_PG_HOST", "db.internal"))
	require.NoError(t, os.Setenv("TEST_PG_PASSWORD", "secret123"))
	require.NoError(t, os.Setenv("TEST_API_TOKEN", "tok-abc"))
	defer func() {
		_ = os.Unsetenv("TEST_PG_HOST")
		_ = os.Unsetenv("TEST_PG_PASSWORD")
		_ = os.Unsetenv("TEST_API_TOKEN")
	}()

	dir, path := writeConfig(t, `default: main
databases:
  main:
    provider: sqlite
    path: data/test.db
  scratch:
    provider: sqlite
    path: ":memory:"
  warehouse:
    provider: postgres
    host: ${TEST_PG_HOST}
    port: 5432
    database: analytics
    username: svc
    password: ${TEST_PG_PASSWORD}
http:
  base_url: http://127.0.0.1:8080
  bearer_token: ${TEST_API_TOKEN}
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "test.db"), cfg.Databases["main"].Path,
		"relative path should be anchored to the project root")
	assert.Equal(t, ":memory:", cfg.Databases["scratch"].Path,
		":memory: is not a file path and must stay untouched")

	wh := cfg.Databases["warehouse"]
	assert.Equal(t, "db.internal", wh.Host)
	assert.Equal(t, "secret123", wh.Password)
	assert.Equal(t, 5432, wh.Port)

	assert.Equal(t, "tok-abc", cfg.HTTP.BearerToken)

	// Default selection resolves through Target
	target, err := cfg.Target("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", target.Provider)
}

// TestLoadConfig_InvalidDatabase verifies that validation failures
// surface from LoadConfig.
func TestLoadConfig_InvalidDatabase(t *testing.T) {
	ResetConfig()

	_, path := writeConfig(t, `databases:
  broken:
    host: localhost
`)

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider is required")
}

// TestLoadConfig_Tracking tests GetConfigFileUsed and GetCurrentConfig.
func TestLoadConfig_Tracking(t *testing.T) {
	ResetConfig()
	assert.Empty(t, GetConfigFileUsed())
	assert.Nil(t, GetCurrentConfig())

	_, path := writeConfig(t, "format: json\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
	assert.Equal(t, "json", cfg.Format)

	ResetConfig()
	assert.Empty(t, GetConfigFileUsed())
	assert.Nil(t, GetCurrentConfig())
}

// TestGetLogger tests logger retrieval from context.
func TestGetLogger(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx := context.WithValue(context.Background(), LoggerKey(), logger)
		assert.Same(t, logger, GetLogger(ctx))
	})

	t.Run("falls back to discard logger", func(t *testing.T) {
		logger := GetLogger(context.Background())
		require.NotNil(t, logger)
		// Must be safe to use
		logger.Debug("no-op")
	})
}

// TestValidateDirectories tests the directory existence checks.
func TestValidateDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "migrations"), 0755))

	cfg := &Config{
		MigrationsDir: filepath.Join(dir, "migrations"),
		SeedsDir:      filepath.Join(dir, "seeds"),
	}

	assert.NoError(t, ValidateMigrationsDir(cfg))

	err := ValidateSeedsDir(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seeds directory does not exist")
	assert.Contains(t, err.Error(), "--seeds-dir")
}
