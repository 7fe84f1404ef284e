// Package warehouse is the relational store of canonical entities described
// in spec §3: every other component (except the Host Client) reads and
// writes through it, and no entity row is ever retained in memory across
// requests (§4.3 Ownership).
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned (wrapped with entity context) when a lookup by
// natural key misses. The HTTP surface maps it to a 404 (§7).
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err (or any error it wraps) is ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx, the same shape the
// teacher's pkg/storage/postgres.BaseStore uses to let call sites be
// agnostic about whether they are inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Store wraps the warehouse's connection pool. All entity-specific methods
// are defined in sibling files (issues.go, pulls.go, ...) as methods on
// *Store so they share the transaction and Querier helpers below.
type Store struct {
	db *sqlx.DB
}

// New wraps an already-opened, already-migrated database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying pool, for callers (health checks, migrations
// version reporting) that need it directly.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

type txKey struct{}

// querier returns the active transaction if ctx carries one, else the pool.
func (s *Store) querier(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on error or panic. Every sync-page upsert (§4.3 "Access is
// transactional per sync-surface") goes through this.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isNoRows reports whether err is sql.ErrNoRows, the sentinel entity
// lookups use to signal "not found" to the HTTP layer (§7 not_found).
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
