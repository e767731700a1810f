package fixture

import (
	"log/slog"
	"time"

	"github.com/leapstack-labs/testrig/pkg/dbclient"
	"github.com/leapstack-labs/testrig/pkg/httpclient"
)

// Option adjusts how a fixture is acquired.
type Option func(*options)

type options struct {
	dbConfig       *dbclient.Config
	client         dbclient.Client
	httpConfig     *httpclient.Config
	logger         *slog.Logger
	connectTimeout time.Duration
}

func applyOptions(opts []Option) options {
	o := options{connectTimeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConfig supplies the database configuration directly instead of
// reading TESTRIG_DB_* from the environment.
func WithConfig(cfg dbclient.Config) Option {
	return func(o *options) { o.dbConfig = &cfg }
}

// WithClient supplies a pre-built client. Database still connects it
// and registers cleanup.
func WithClient(client dbclient.Client) Option {
	return func(o *options) { o.client = client }
}

// WithHTTPConfig supplies the API configuration directly instead of
// reading TESTRIG_API_* from the environment.
func WithHTTPConfig(cfg httpclient.Config) Option {
	return func(o *options) { o.httpConfig = &cfg }
}

// WithLogger routes fixture logging somewhere other than t.Log.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithConnectTimeout bounds the fixture's Connect call. Default 30s.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectTimeout = d }
}
