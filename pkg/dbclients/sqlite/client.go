// Package sqlite provides the SQLite client for testrig, backed by the
// CGO-free modernc.org driver.
package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/testrig/pkg/dbclient"

	_ "modernc.org/sqlite" // sqlite driver
)

// Client implements the dbclient.Client interface for SQLite.
// The driver accepts `?` placeholders natively, so no rewrite is
// installed.
type Client struct {
	dbclient.Base
}

// New creates an unconnected SQLite client.
// If logger is nil, a discard logger is used.
func New(cfg dbclient.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{Base: dbclient.Base{Cfg: cfg, Logger: logger}}
}

// Provider returns the registry tag for this client.
func (c *Client) Provider() string { return "sqlite" }

// Connect opens the database file, or an in-memory database when no
// path is configured. Connecting an already connected client is a
// no-op.
func (c *Client) Connect(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	dsn := buildDSN(c.Cfg)
	c.Logger.Debug("connecting to sqlite", slog.String("path", dsn))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return &dbclient.ConnectionError{Provider: "sqlite", Err: err}
	}

	// One handle only: every pool connection would otherwise open its
	// own :memory: database, and concurrent writers fight over file
	// locks.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return &dbclient.ConnectionError{Provider: "sqlite", Err: err}
	}

	c.DB = db
	return nil
}

// buildDSN returns the database path, defaulting to :memory:. Options
// are appended as file URI query parameters. A configured URL passes
// through verbatim.
func buildDSN(cfg dbclient.Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if len(cfg.Options) == 0 {
		return path
	}

	var keys []string
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]string, 0, len(keys))
	for _, k := range keys {
		params = append(params, k+"="+cfg.Options[k])
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

var _ dbclient.Client = (*Client)(nil)
