package dbclient

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// Base provides the database/sql-backed behavior shared by all
// providers. Provider packages embed it and contribute Connect,
// Provider, and an optional placeholder binder.
type Base struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger

	// Bind rewrites `?` placeholders and adapts args to what the driver
	// expects. Nil means the driver accepts `?` natively.
	Bind func(query string, args []any) (string, []any)
}

// Connected reports whether the client holds a live pool.
func (b *Base) Connected() bool { return b.DB != nil }

// Pool exposes the underlying pool for integrations that need raw
// database/sql access, such as migrations. Nil before Connect.
func (b *Base) Pool() *sql.DB { return b.DB }

// Close releases the pool. Repeated calls are no-ops.
func (b *Base) Close() error {
	if b.DB == nil {
		return nil
	}
	if b.Logger != nil {
		b.Logger.Debug("closing database connection")
	}
	err := b.DB.Close()
	b.DB = nil
	return err
}

// Query executes a statement that returns rows.
func (b *Base) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	if b.DB == nil {
		return nil, &NotConnectedError{Op: "query"}
	}
	q, bound := bindArgs(b.Bind, query, args)
	rows, err := b.DB.QueryContext(ctx, q, bound...)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer func() { _ = rows.Close() }()

	res, err := collectRows(rows)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return res, nil
}

// Execute executes a mutating statement and returns the affected row count.
func (b *Base) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	if b.DB == nil {
		return 0, &NotConnectedError{Op: "execute"}
	}
	q, bound := bindArgs(b.Bind, query, args)
	res, err := b.DB.ExecContext(ctx, q, bound...)
	if err != nil {
		return 0, &QueryError{Query: query, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &QueryError{Query: query, Err: err}
	}
	return n, nil
}

// Transaction runs fn inside one backend transaction. The Querier
// passed to fn is bound to that transaction; queries on the client
// itself keep using the pool. Commit happens on nil return; any error
// or panic from fn rolls back, and the body's failure is surfaced
// unchanged.
func (b *Base) Transaction(ctx context.Context, fn func(ctx context.Context, tx Querier) error) error {
	if b.DB == nil {
		return &NotConnectedError{Op: "transaction"}
	}
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return &TransactionError{Op: "begin", Err: err}
	}

	done := false
	defer func() {
		if !done {
			b.rollback(tx)
		}
	}()

	if err := fn(ctx, &txQuerier{tx: tx, bind: b.Bind}); err != nil {
		b.rollback(tx)
		done = true
		return err
	}

	if err := tx.Commit(); err != nil {
		return &TransactionError{Op: "commit", Err: err}
	}
	done = true
	return nil
}

func (b *Base) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		if b.Logger != nil {
			b.Logger.Warn("transaction rollback failed", slog.String("error", err.Error()))
		}
	}
}

// TunePool applies the configured pool bounds to db.
func TunePool(db *sql.DB, cfg Config) {
	if cfg.PoolMax > 0 {
		db.SetMaxOpenConns(cfg.PoolMax)
	}
	if cfg.PoolMin > 0 {
		db.SetMaxIdleConns(cfg.PoolMin)
	}
}

func bindArgs(bind func(string, []any) (string, []any), query string, args []any) (string, []any) {
	if bind == nil {
		return query, args
	}
	return bind(query, args)
}

// txQuerier routes statements to a single transaction handle. It is
// scoped to one Transaction body and must not outlive it.
type txQuerier struct {
	tx   *sql.Tx
	bind func(string, []any) (string, []any)
}

func (t *txQuerier) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	q, bound := bindArgs(t.bind, query, args)
	rows, err := t.tx.QueryContext(ctx, q, bound...)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer func() { _ = rows.Close() }()

	res, err := collectRows(rows)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return res, nil
}

func (t *txQuerier) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	q, bound := bindArgs(t.bind, query, args)
	res, err := t.tx.ExecContext(ctx, q, bound...)
	if err != nil {
		return 0, &QueryError{Query: query, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &QueryError{Query: query, Err: err}
	}
	return n, nil
}

var _ Querier = (*txQuerier)(nil)
