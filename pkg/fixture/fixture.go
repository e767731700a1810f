// Package fixture acquires test-scoped resources that release
// themselves through t.Cleanup, so teardown runs on every exit path
// including failures and panics.
//
// The database fixture reads TESTRIG_DB_* by default:
//
//	func TestOrders(t *testing.T) {
//		db := fixture.Database(t)
//		res, err := db.Query(ctx, "SELECT * FROM orders WHERE id = ?", 7)
//		...
//	}
//
// Provider packages register themselves on import; a test binary that
// uses the database fixture must blank-import the providers it needs,
// e.g. _ "github.com/leapstack-labs/testrig/pkg/dbclients/postgres".
package fixture

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/testrig/internal/migrate"
	"github.com/leapstack-labs/testrig/internal/seed"
	"github.com/leapstack-labs/testrig/internal/stubapi"
	"github.com/leapstack-labs/testrig/pkg/dbclient"
	"github.com/leapstack-labs/testrig/pkg/httpclient"
)

// Environment variables consumed by the HTTP fixture.
const (
	EnvAPIBaseURL = "TESTRIG_API_BASE_URL"
	EnvAPIToken   = "TESTRIG_API_TOKEN"
	EnvAPITimeout = "TESTRIG_API_TIMEOUT"
)

// Database returns a connected client that closes when the test ends.
// Configuration comes from TESTRIG_DB_*, or from WithConfig/WithClient.
// Any configuration or connection failure fails the test immediately.
func Database(t testing.TB, opts ...Option) dbclient.Client {
	t.Helper()
	o := applyOptions(opts)

	logger := o.logger
	if logger == nil {
		logger = testLogger(t)
	}

	client := o.client
	if client == nil {
		var cfg dbclient.Config
		if o.dbConfig != nil {
			cfg = *o.dbConfig
		} else {
			envCfg, err := dbclient.ConfigFromEnv()
			if err != nil {
				t.Fatalf("database fixture: %v", err)
			}
			cfg = envCfg
		}

		var err error
		client, err = dbclient.New(cfg, logger)
		if err != nil {
			t.Fatalf("database fixture: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.connectTimeout)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("database fixture: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client
}

// HTTP returns a client for the API named by TESTRIG_API_BASE_URL (or
// WithHTTPConfig). The optional TESTRIG_API_TOKEN becomes a bearer
// token and TESTRIG_API_TIMEOUT a request timeout.
func HTTP(t testing.TB, opts ...Option) *httpclient.Client {
	t.Helper()
	o := applyOptions(opts)

	logger := o.logger
	if logger == nil {
		logger = testLogger(t)
	}

	var cfg httpclient.Config
	if o.httpConfig != nil {
		cfg = *o.httpConfig
	} else {
		cfg.BaseURL = os.Getenv(EnvAPIBaseURL)
		if cfg.BaseURL == "" {
			t.Fatalf("http fixture: %s is not set", EnvAPIBaseURL)
		}
		cfg.BearerToken = os.Getenv(EnvAPIToken)
		if v := os.Getenv(EnvAPITimeout); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				t.Fatalf("http fixture: %s: %v", EnvAPITimeout, err)
			}
			cfg.Timeout = d
		}
	}

	client, err := httpclient.New(cfg, logger)
	if err != nil {
		t.Fatalf("http fixture: %v", err)
	}
	return client
}

// API boots the in-process stub API on an ephemeral listener and
// returns a client pointed at it. Both shut down with the test.
func API(t testing.TB) (*httpclient.Client, *stubapi.Server) {
	t.Helper()

	srv := stubapi.New()
	t.Cleanup(srv.Close)

	client, err := httpclient.New(httpclient.Config{BaseURL: srv.URL()}, testLogger(t))
	if err != nil {
		t.Fatalf("api fixture: %v", err)
	}
	return client, srv
}

// Migrate applies the goose migrations under dir in fsys to the
// client's database, failing the test on any error.
func Migrate(t testing.TB, client dbclient.Client, fsys fs.FS, dir string) {
	t.Helper()

	if err := migrate.Up(client, fsys, dir); err != nil {
		t.Fatalf("migrate fixture: %v", err)
	}
}

// Seed loads the YAML seed files under dir in fsys and returns the
// number of rows inserted, failing the test on any error.
func Seed(t testing.TB, client dbclient.Client, fsys fs.FS, dir string) int64 {
	t.Helper()

	n, err := seed.Apply(context.Background(), client, fsys, dir)
	if err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	return n
}

// UniqueName returns prefix plus a random suffix, safe for use as a
// table or schema identifier, so parallel tests do not collide.
func UniqueName(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return prefix + "_" + suffix
}

// testLogger routes fixture logging through t.Log, so debug output
// surfaces only on failure or under -v.
func testLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
