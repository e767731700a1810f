// Package dbclient defines the uniform database client contract used by
// testrig fixtures and commands.
//
// This package contains the capability set every provider implements
// (connect, close, query, execute, transaction), the configuration and
// result types, the error taxonomy, and the provider registry. Concrete
// provider implementations are in pkg/dbclients/ subdirectories and
// register themselves on import:
//
//	import _ "github.com/leapstack-labs/testrig/pkg/dbclients/postgres"
//
// Callers write positional `?` placeholders regardless of provider;
// each provider translates them to whatever its driver requires.
package dbclient

import (
	"context"
	"log/slog"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Querier is the statement surface shared by a connected client and the
// transaction-bound handle passed to a Transaction body. Arguments are
// always bound, never interpolated into the SQL text.
type Querier interface {
	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args ...any) (*Result, error)

	// Execute executes a mutating statement and returns the affected row count.
	Execute(ctx context.Context, query string, args ...any) (int64, error)
}

// Client is the capability set that all database providers implement.
type Client interface {
	Querier

	// Connect establishes the underlying connection pool and verifies it.
	// Calling Connect on an already connected client is a no-op.
	Connect(ctx context.Context) error

	// Close releases the pool. Safe to call repeatedly and before Connect.
	Close() error

	// Connected reports whether the client currently holds a live pool.
	Connected() bool

	// Transaction runs fn inside a single backend transaction. The Querier
	// passed to fn is bound to that transaction and must not be retained
	// after fn returns. A nil return commits; an error return (or panic)
	// rolls back, and the body's failure is surfaced unchanged.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Querier) error) error

	// Provider returns the registered provider tag.
	Provider() string
}

// Factory constructs an unconnected client from a configuration.
// Implementations fall back to a discard logger when logger is nil.
type Factory func(cfg Config, logger *slog.Logger) Client
