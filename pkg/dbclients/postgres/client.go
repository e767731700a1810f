// Package postgres provides the PostgreSQL client for testrig.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/leapstack-labs/testrig/pkg/dbclient"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
)

// Client implements the dbclient.Client interface for PostgreSQL.
type Client struct {
	dbclient.Base
}

// New creates an unconnected PostgreSQL client.
// If logger is nil, a discard logger is used.
func New(cfg dbclient.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{Base: dbclient.Base{Cfg: cfg, Logger: logger}}
	c.Bind = bindOrdinal
	return c
}

// Provider returns the registry tag for this client.
func (c *Client) Provider() string { return "postgres" }

// Connect establishes the connection pool and verifies it with a ping.
// Connecting an already connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	c.Logger.Debug("connecting to postgres",
		slog.String("host", c.Cfg.Host), slog.String("database", c.Cfg.Database))

	db, err := sql.Open("pgx", buildDSN(c.Cfg))
	if err != nil {
		return &dbclient.ConnectionError{Provider: "postgres", Err: err}
	}
	dbclient.TunePool(db, c.Cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return &dbclient.ConnectionError{Provider: "postgres", Err: err}
	}

	c.DB = db
	return nil
}

// buildDSN constructs a key=value connection string. A configured URL
// passes through verbatim.
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
		port = 5432
	}

	sslmode := "disable"
	if cfg.TLS {
		sslmode = "require"
	}
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += " user=" + cfg.Username
	}
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}

	var extra []string
	for k := range cfg.Options {
		if k != "sslmode" {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		dsn += " " + k + "=" + cfg.Options[k]
	}
	return dsn
}

// bindOrdinal rewrites `?` placeholders to the $1..$N ordinals the pgx
// driver expects. Arguments pass through unchanged.
func bindOrdinal(query string, args []any) (string, []any) {
	rewritten, _ := dbclient.Rewrite(query, func(i int) string {
		return "$" + strconv.Itoa(i+1)
	})
	return rewritten, args
}

var _ dbclient.Client = (*Client)(nil)
