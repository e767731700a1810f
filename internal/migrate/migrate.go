// Package migrate applies goose migrations to a connected client's
// underlying pool.
package migrate

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/leapstack-labs/testrig/pkg/dbclient"
)

// pooler is satisfied by clients that expose their database/sql pool.
// Every provider built on dbclient.Base does.
type pooler interface {
	Pool() *sql.DB
}

// Dialect maps a provider tag to the goose dialect name. Providers
// without a goose dialect (duckdb) are reported as unsupported.
func Dialect(provider string) (string, error) {
	switch provider {
	case "postgres":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlserver":
		return "mssql", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("migrations are not supported for provider %q", provider)
	}
}

// Up applies all pending migrations found under dir in fsys.
func Up(client dbclient.Client, fsys fs.FS, dir string) error {
	db, err := prepare(client, fsys)
	if err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(client dbclient.Client, fsys fs.FS, dir string) error {
	db, err := prepare(client, fsys)
	if err != nil {
		return err
	}
	if err := goose.Down(db, dir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Status prints the migration status through the goose logger.
func Status(client dbclient.Client, fsys fs.FS, dir string) error {
	db, err := prepare(client, fsys)
	if err != nil {
		return err
	}
	if err := goose.Status(db, dir); err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	return nil
}

// Version returns the current migration version.
func Version(client dbclient.Client, fsys fs.FS, dir string) (int64, error) {
	db, err := prepare(client, fsys)
	if err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}

// sqlTemplate is goose's standard skeleton for a new SQL migration.
const sqlTemplate = `-- +goose Up
-- +goose StatementBegin
SELECT 'up SQL query';
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
SELECT 'down SQL query';
-- +goose StatementEnd
`

// Create writes a timestamped migration skeleton into dir and returns
// its path. goose's own Create reports the path only through its
// package logger, so the file is written here in goose's naming
// convention instead.
func Create(dir, name string) (string, error) {
	name = normalizeName(name)
	if name == "" {
		return "", fmt.Errorf("migration name is required")
	}

	version := time.Now().Format("20060102150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, name))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(sqlTemplate), 0600); err != nil {
		return "", fmt.Errorf("failed to create migration: %w", err)
	}
	return path, nil
}

// normalizeName lowercases and maps anything outside [a-z0-9] to an
// underscore so the name is safe in a filename.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return strings.Trim(name, "_")
}

// prepare configures goose for the client's dialect and embedded
// filesystem. goose keeps this state package-wide, so concurrent
// migrations against different dialects are not supported.
func prepare(client dbclient.Client, fsys fs.FS) (*sql.DB, error) {
	dialect, err := Dialect(client.Provider())
	if err != nil {
		return nil, err
	}

	p, ok := client.(pooler)
	if !ok || p.Pool() == nil {
		return nil, &dbclient.NotConnectedError{Op: "migrate"}
	}

	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}
	return p.Pool(), nil
}
