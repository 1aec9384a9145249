package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/backoffice/internal/usecase"
)

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager opens ledger units of work. Writers of the same account, card or
// rendicion serialize on the FOR UPDATE locks taken inside the transaction;
// a lock timeout bounds how long one of them waits for another.
type TxManager struct {
	beginner    txBeginner
	txOptions   pgx.TxOptions
	lockTimeout time.Duration
}

// TxOption tunes the transactions opened by a TxManager.
type TxOption func(*TxManager)

// WithIsolation sets the isolation level of every transaction.
func WithIsolation(level pgx.TxIsoLevel) TxOption {
	return func(m *TxManager) { m.txOptions.IsoLevel = level }
}

// WithLockTimeout aborts a statement that waits longer than d for a row
// lock. Zero keeps the server default.
func WithLockTimeout(d time.Duration) TxOption {
	return func(m *TxManager) { m.lockTimeout = d }
}

func NewTxManager(pool *pgxpool.Pool, opts ...TxOption) *TxManager {
	return newTxManagerWithPool(pool, opts...)
}

func newTxManagerWithPool(beginner txBeginner, opts ...TxOption) *TxManager {
	m := &TxManager{beginner: beginner}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin opens a transaction and applies the configured lock timeout to it.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	pgTx, err := m.beginner.BeginTx(ctx, m.txOptions)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}

	if m.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err := pgTx.Exec(ctx, stmt); err != nil {
			_ = pgTx.Rollback(ctx)
			return nil, fmt.Errorf("set lock timeout: %w", err)
		}
	}

	return &Tx{tx: pgTx}, nil
}

// Tx is a unit of work backed by a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

// Rollback is a no-op once the transaction has been committed, so callers
// may defer it unconditionally.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == nil || errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return fmt.Errorf("roll back unit of work: %w", err)
}

// PgxTx exposes the transaction to the generated queries.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
