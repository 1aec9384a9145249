package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManagerCommit(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBegin()
	pool.ExpectCommit()

	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	assertExpectations(t, pool)
}

func TestTxManagerBeginFailure(t *testing.T) {
	pool := newMockPool(t)
	boom := errors.New("too many connections")
	pool.ExpectBegin().WillReturnError(boom)

	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "begin unit of work")
}

func TestTxManagerRollback(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBegin()
	pool.ExpectRollback()

	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(context.Background()))
	assertExpectations(t, pool)
}

func TestTxManagerAppliesIsolationAndLockTimeout(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	pool.ExpectExec("SET LOCAL lock_timeout = '1500ms'").
		WillReturnResult(pgxmock.NewResult("SET", 0))
	pool.ExpectCommit()

	manager := newTxManagerWithPool(pool,
		WithIsolation(pgx.RepeatableRead),
		WithLockTimeout(1500*time.Millisecond),
	)
	tx, err := manager.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	assertExpectations(t, pool)
}

func TestTxManagerLockTimeoutFailureRollsBack(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBegin()
	pool.ExpectExec("SET LOCAL lock_timeout").WillReturnError(errors.New("syntax error"))
	pool.ExpectRollback()

	tx, err := newTxManagerWithPool(pool, WithLockTimeout(time.Second)).Begin(context.Background())
	assert.Nil(t, tx)
	assert.ErrorContains(t, err, "set lock timeout")
	assertExpectations(t, pool)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	assert.NoError(t, pool.ExpectationsWereMet())
}
