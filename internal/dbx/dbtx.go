// Package dbx provides the small database seams shared by repositories:
// DBTX, satisfied by both *sql.DB and *sql.Tx, and Runner, which hands out a
// handle for single statements and runs units of work inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is a unit of work executed against a transactional handle.
type TxFunc func(ctx context.Context, tx DBTX) error

// Runner is what services depend on instead of *sql.DB, so that storage
// backends without database/sql can take part in the same code paths.
type Runner interface {
	// Conn returns the handle for statements that run on their own.
	Conn() DBTX
	// InTx runs fn atomically: all of its writes are applied or none are.
	InTx(ctx context.Context, fn TxFunc) error
	// PingContext reports whether the backend is reachable.
	PingContext(ctx context.Context) error
}

// SQLRunner is the database/sql implementation of Runner.
type SQLRunner struct {
	db   *sql.DB
	opts *sql.TxOptions
}

type RunnerOption func(*SQLRunner)

// WithTxOptions sets the options every InTx transaction begins with.
func WithTxOptions(opts *sql.TxOptions) RunnerOption {
	return func(r *SQLRunner) { r.opts = opts }
}

func NewSQLRunner(db *sql.DB, opts ...RunnerOption) *SQLRunner {
	r := &SQLRunner{db: db}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *SQLRunner) Conn() DBTX { return r.db }

func (r *SQLRunner) InTx(ctx context.Context, fn TxFunc) error {
	return WithTx(ctx, r.db, r.opts, fn)
}

func (r *SQLRunner) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTx begins a transaction, runs fn with it, and commits on success or
// rolls back on error or panic. Panics are rethrown after the rollback.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
