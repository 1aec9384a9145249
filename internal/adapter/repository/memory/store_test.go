package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/domain"
)

func TestRollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := store.TxManager()

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	acc := &domain.Account{Name: "Banco", Type: domain.AccountTypeBank, OpeningBalance: decimal.NewFromInt(10), Active: true}
	require.NoError(t, store.Accounts().Create(ctx, tx, acc))
	require.NoError(t, tx.Commit(ctx))

	tx, err = txm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Movements().Create(ctx, tx, &domain.Movement{
		Type: domain.MovementIncome, Amount: decimal.NewFromInt(5), Status: domain.MovementConfirmed, AccountID: acc.ID,
	}))
	require.NoError(t, store.Accounts().UpdateBalance(ctx, tx, acc.ID, decimal.NewFromInt(15), time.Now()))
	require.NoError(t, tx.Rollback(ctx))

	got, err := store.Accounts().GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.IsZero(), "balance write must be rolled back")

	movements, err := store.Movements().ListByAccount(ctx, acc.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestRollbackAfterCommitIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	tx, err := store.TxManager().Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Accounts().Create(ctx, tx, &domain.Account{Name: "Caja", Type: domain.AccountTypeCash}))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	accounts, err := store.Accounts().List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestWritesRequireOwnTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	other := NewStore()

	tx, err := other.TxManager().Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	err = store.Accounts().Create(ctx, tx, &domain.Account{Name: "x"})
	assert.True(t, errors.Is(err, errForeignTx))
}

func TestReconciliationCreateRejectsSecondPending(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	cardID := seedCard(t, store)

	tx, err := store.TxManager().Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Reconciliations().Create(ctx, tx, &domain.Reconciliation{CardID: cardID, Status: domain.ReconciliationOpen}))
	err = store.Reconciliations().Create(ctx, tx, &domain.Reconciliation{CardID: cardID, Status: domain.ReconciliationOpen})
	assert.ErrorIs(t, err, domain.ErrOpenReconciliationExists)
	require.NoError(t, tx.Rollback(ctx))
}

func TestListUnassignedFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	cardID := seedCard(t, store)
	card, err := store.Cards().GetByID(ctx, cardID)
	require.NoError(t, err)

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	batch := int64(99)

	tx, err := store.TxManager().Begin(ctx)
	require.NoError(t, err)
	add := func(date time.Time, status domain.MovementStatus, rendicion *int64) int64 {
		m := &domain.Movement{Type: domain.MovementExpense, Amount: decimal.NewFromInt(1), Status: status, AccountID: card.AccountID, Date: date}
		require.NoError(t, store.Movements().Create(ctx, tx, m))
		e := &domain.CardExpense{CardID: cardID, Amount: m.Amount, Date: date, MovementID: m.ID, ReconciliationID: rendicion}
		require.NoError(t, store.Expenses().Create(ctx, tx, e))
		return e.ID
	}
	late := add(day(20), domain.MovementConfirmed, nil)
	early := add(day(10), domain.MovementConfirmed, nil)
	add(day(15), domain.MovementVoided, nil)
	add(day(12), domain.MovementConfirmed, &batch)
	add(day(31).AddDate(0, 0, 1), domain.MovementConfirmed, nil)
	require.NoError(t, tx.Commit(ctx))

	expenses, err := store.Expenses().ListUnassigned(ctx, cardID, day(1), day(31))
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, early, expenses[0].ID)
	assert.Equal(t, late, expenses[1].ID)
}

func seedCard(t *testing.T, store *Store) int64 {
	t.Helper()
	ctx := context.Background()

	tx, err := store.TxManager().Begin(ctx)
	require.NoError(t, err)
	acc := &domain.Account{Name: "Tarjeta", Type: domain.AccountTypeCard, Active: true}
	require.NoError(t, store.Accounts().Create(ctx, tx, acc))
	card := &domain.PrepaidCard{Type: domain.CardTypePrepaid, Alias: "Caja chica", AccountID: acc.ID}
	require.NoError(t, store.Cards().Create(ctx, tx, card))
	require.NoError(t, tx.Commit(ctx))
	return card.ID
}

func TestBeginGivesUpWhenContextEnds(t *testing.T) {
	store := NewStore()
	txm := store.TxManager()

	held, err := txm.Begin(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	tx, err := txm.Begin(ctx)
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, held.Commit(context.Background()))
	next, err := txm.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, next.Rollback(context.Background()))
}

func TestMarkPublishedHonorsContextWhileUnitOfWorkRuns(t *testing.T) {
	store := NewStore()
	held, err := store.TxManager().Begin(context.Background())
	require.NoError(t, err)
	defer held.Rollback(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = store.Outbox().MarkPublished(ctx, "evt-1", time.Now())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
