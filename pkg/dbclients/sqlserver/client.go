// Package sqlserver provides the Microsoft SQL Server client for testrig.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/leapstack-labs/testrig/pkg/dbclient"

	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
)

// Client implements the dbclient.Client interface for SQL Server.
type Client struct {
	dbclient.Base
}

// New creates an unconnected SQL Server client.
// If logger is nil, a discard logger is used.
func New(cfg dbclient.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{Base: dbclient.Base{Cfg: cfg, Logger: logger}}
	c.Bind = bindNamed
	return c
}

// Provider returns the registry tag for this client.
func (c *Client) Provider() string { return "sqlserver" }

// Connect establishes the connection pool and verifies it with a ping.
// Connecting an already connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	c.Logger.Debug("connecting to sqlserver",
		slog.String("host", c.Cfg.Host), slog.String("database", c.Cfg.Database))

	db, err := sql.Open("sqlserver", buildDSN(c.Cfg))
	if err != nil {
		return &dbclient.ConnectionError{Provider: "sqlserver", Err: err}
	}
	dbclient.TunePool(db, c.Cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return &dbclient.ConnectionError{Provider: "sqlserver", Err: err}
	}

	c.DB = db
	return nil
}

// buildDSN constructs a semicolon-separated connection string. A
// configured URL passes through verbatim.
func buildDSN(cfg dbclient.Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 1433
	}

	dsn := fmt.Sprintf("server=%s;port=%d;database=%s", host, port, cfg.Database)
	if cfg.Username != "" {
		dsn += ";user id=" + cfg.Username
	}
	if cfg.Password != "" {
		dsn += ";password=" + cfg.Password
	}
	if cfg.TLS {
		dsn += ";encrypt=true"
	} else {
		dsn += ";encrypt=false"
	}

	var extra []string
	for k := range cfg.Options {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		dsn += ";" + k + "=" + cfg.Options[k]
	}
	return dsn
}

// bindNamed rewrites `?` placeholders to @p0..@pN tokens in order of
// occurrence and wraps each positional argument as sql.Named so the
// driver resolves them by name.
func bindNamed(query string, args []any) (string, []any) {
	rewritten, _ := dbclient.Rewrite(query, func(i int) string {
		return "@p" + strconv.Itoa(i)
	})
	named := make([]any, len(args))
	for i, arg := range args {
		named[i] = sql.Named("p"+strconv.Itoa(i), arg)
	}
	return rewritten, named
}

var _ dbclient.Client = (*Client)(nil)
