// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// SetupTestProject creates a temporary testrig project: a config file
// pointing at an on-disk SQLite database, one goose migration, and one
// seed file. Returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	// Create directories
	dirs := []string{
		filepath.Join(tmpDir, "migrations"),
		filepath.Join(tmpDir, "seeds"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	// Create config
	config := `default: main

databases:
  main:
    provider: sqlite
    path: testrig.db

migrations_dir: migrations
seeds_dir: seeds
`
	if err := os.WriteFile(filepath.Join(tmpDir, "testrig.yaml"),
		[]byte(config), 0644); err != nil {
		t.Fatalf("failed to create testrig.yaml: %v", err)
	}

	// Create test migration
	migration := `-- +goose Up
CREATE TABLE users (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE
);

-- +goose Down
DROP TABLE users;
`
	if err := os.WriteFile(filepath.Join(tmpDir, "migrations", "00001_create_users.sql"),
		[]byte(migration), 0644); err != nil {
		t.Fatalf("failed to create 00001_create_users.sql: %v", err)
	}

	// Create seed file
	seed := `table: users
rows:
  - id: 1
    name: Ada Lovelace
    email: ada@example.com
  - id: 2
    name: Grace Hopper
    email: grace@example.com
`
	if err := os.WriteFile(filepath.Join(tmpDir, "seeds", "users.yaml"),
		[]byte(seed), 0644); err != nil {
		t.Fatalf("failed to create users.yaml: %v", err)
	}

	return tmpDir
}

// ConfigPath returns the config file path inside a test project.
func ConfigPath(projectDir string) string {
	return filepath.Join(projectDir, "testrig.yaml")
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
