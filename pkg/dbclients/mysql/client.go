// Package mysql provides the MySQL client for testrig.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/testrig/pkg/dbclient"

	_ "github.com/go-sql-driver/mysql" // mysql driver
)

// Client implements the dbclient.Client interface for MySQL.
// The driver accepts `?` placeholders natively, so no rewrite is
// installed.
type Client struct {
	dbclient.Base
}

// New creates an unconnected MySQL client.
// If logger is nil, a discard logger is used.
func New(cfg dbclient.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{Base: dbclient.Base{Cfg: cfg, Logger: logger}}
}

// Provider returns the registry tag for this client.
func (c *Client) Provider() string { return "mysql" }

// Connect establishes the connection pool and verifies it with a ping.
// Connecting an already connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	c.Logger.Debug("connecting to mysql",
		slog.String("host", c.Cfg.Host), slog.String("database", c.Cfg.Database))

	db, err := sql.Open("mysql", buildDSN(c.Cfg))
	if err != nil {
		return &dbclient.ConnectionError{Provider: "mysql", Err: err}
	}
	dbclient.TunePool(db, c.Cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return &dbclient.ConnectionError{Provider: "mysql", Err: err}
	}

	c.DB = db
	return nil
}

// buildDSN constructs a go-sql-driver connection string of the form
// user:pass@tcp(host:port)/dbname?parseTime=true. A configured URL
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
		port = 3306
	}

	var userinfo string
	if cfg.Username != "" {
		userinfo = cfg.Username
		if cfg.Password != "" {
			userinfo += ":" + cfg.Password
		}
		userinfo += "@"
	}

	// parseTime makes DATETIME columns scan as time.Time.
	dsn := fmt.Sprintf("%stcp(%s:%d)/%s?parseTime=true", userinfo, host, port, cfg.Database)
	if cfg.TLS {
		dsn += "&tls=true"
	}

	var extra []string
	for k := range cfg.Options {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		dsn += "&" + k + "=" + cfg.Options[k]
	}
	return dsn
}

var _ dbclient.Client = (*Client)(nil)
