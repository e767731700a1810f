// Package duckdb provides the DuckDB client for testrig.
package duckdb

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/testrig/pkg/dbclient"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Client implements the dbclient.Client interface for DuckDB.
// The driver accepts `?` placeholders natively, so no rewrite is
// installed.
type Client struct {
	dbclient.Base
}

// New creates an unconnected DuckDB client.
// If logger is nil, a discard logger is used.
func New(cfg dbclient.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{Base: dbclient.Base{Cfg: cfg, Logger: logger}}
}

// Provider returns the registry tag for this client.
func (c *Client) Provider() string { return "duckdb" }

// Connect opens the database file, or an in-memory database when no
// path is configured. Connecting an already connected client is a
// no-op.
func (c *Client) Connect(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	dsn := buildDSN(c.Cfg)
	c.Logger.Debug("connecting to duckdb", slog.String("path", dsn))

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return &dbclient.ConnectionError{Provider: "duckdb", Err: err}
	}
	dbclient.TunePool(db, c.Cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return &dbclient.ConnectionError{Provider: "duckdb", Err: err}
	}

	c.DB = db
	return nil
}

// buildDSN returns the database path; empty means in-memory. Options
// are appended as query parameters. A configured URL passes through
// verbatim.
func buildDSN(cfg dbclient.Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	if len(cfg.Options) == 0 {
		return cfg.Path
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
	return cfg.Path + "?" + strings.Join(params, "&")
}

var _ dbclient.Client = (*Client)(nil)
