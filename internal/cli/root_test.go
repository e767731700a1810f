package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/testrig/internal/cli/commands"
	"github.com/leapstack-labs/testrig/internal/cli/config"
	"github.com/leapstack-labs/testrig/internal/cli/testutil"
)

// runCommand executes a fresh command tree with args and returns the
// combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "testrig", cmd.Use)
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, want := range []string{"version", "init", "doctor", "migrate", "seed", "query", "completion"} {
		assert.True(t, subs[want], "subcommand %q should exist", want)
	}

	for _, flag := range []string{"config", "db", "migrations-dir", "seeds-dir", "verbose", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "testrig 0.1.0")
}

// TestWorkflow drives the full project lifecycle against a scaffolded
// SQLite project: migrate, seed, query, doctor, roll back.
func TestWorkflow(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	cfgPath := testutil.ConfigPath(projectDir)

	out, err := runCommand(t, "--config", cfgPath, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied (version 1)")

	out, err = runCommand(t, "--config", cfgPath, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 1")

	_, err = runCommand(t, "--config", cfgPath, "migrate", "status")
	require.NoError(t, err)

	out, err = runCommand(t, "--config", cfgPath, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 rows")

	out, err = runCommand(t, "--config", cfgPath, "--format", "json", "query", "SELECT name FROM users ORDER BY id")
	require.NoError(t, err)
	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Grace Hopper")

	out, err = runCommand(t, "--config", cfgPath, "--format", "json", "doctor")
	require.NoError(t, err)
	var doctorOut commands.DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doctorOut))
	assert.Equal(t, 1, doctorOut.Total)
	assert.Equal(t, doctorOut.Total, doctorOut.Healthy)

	out, err = runCommand(t, "--config", cfgPath, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Rolled back one migration")
}

func TestQueryExecuteStatement(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	cfgPath := testutil.ConfigPath(projectDir)

	_, err := runCommand(t, "--config", cfgPath, "migrate", "up")
	require.NoError(t, err)

	out, err := runCommand(t, "--config", cfgPath, "query",
		"INSERT INTO users (id, name, email) VALUES (1, 'Ada', 'ada@example.com')")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 rows affected)")
}

func TestMigrateCreate(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	cfgPath := testutil.ConfigPath(projectDir)

	out, err := runCommand(t, "--config", cfgPath, "migrate", "create", "add orders")
	require.NoError(t, err)
	assert.Contains(t, out, "Created ")

	matches, err := filepath.Glob(filepath.Join(projectDir, "migrations", "*_add_orders.sql"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestUnknownDatabase(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	cfgPath := testutil.ConfigPath(projectDir)

	_, err := runCommand(t, "--config", cfgPath, "--db", "warehouse", "query", "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown database "warehouse"`)
}

func TestMissingMigrationsDir(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	cfgPath := testutil.ConfigPath(projectDir)

	_, err := runCommand(t, "--config", cfgPath, "--migrations-dir", "does-not-exist", "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations directory does not exist")
}
