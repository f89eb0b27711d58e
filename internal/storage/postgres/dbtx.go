// Package postgres implements the storage interfaces (internal/storage)
// backed by PostgreSQL, and the shared transaction-propagation helper that
// lets a mutation and its audit event commit as one unit (spec.md §4.5 step
// 3: "a transactional database sink that participates in the same
// transaction as the mutation — commit succeeds iff both writes succeed").
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of *sql.DB / *sql.Tx every store and sink needs.
// Accepting this instead of *sql.DB lets the same code run against a bare
// pool connection or against an open transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txContextKey struct{}

// WithTx returns a context carrying tx, so that anything called further down
// the request (a store write, the audit sink) reuses this transaction
// instead of opening its own connection.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction WithTx attached to ctx, if any.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx, ok
}

// DBTXFromContext returns the transaction attached to ctx if present,
// otherwise falls back to db itself. Every store method and the Postgres
// audit sink resolve their executor this way so a single WithTx at the top
// of a mutation handler is enough to make every write in that call tree
// commit or roll back together.
func DBTXFromContext(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// RunInTx begins a transaction, attaches it to ctx via WithTx, runs fn, and
// commits iff fn returns nil; any error (from fn or from commit) rolls back.
// Run Orchestrator steps and mutation handlers use this as the outer
// boundary so the domain write and its audit event are atomic.
func RunInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txCtx := WithTx(ctx, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
