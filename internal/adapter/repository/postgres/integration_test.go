package postgres_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/adapter/repository/postgres"
	"github.com/iho/backoffice/internal/domain"
	pginfra "github.com/iho/backoffice/internal/infrastructure/postgres"
	"github.com/iho/backoffice/internal/usecase"
)

const migrationsPath = "../../../../migrations"

type ledgerDB struct {
	pool         *pgxpool.Pool
	accounts     *usecase.AccountUseCase
	movements    *usecase.MovementUseCase
	transfers    *usecase.TransferUseCase
	cards        *usecase.CardUseCase
	rendiciones  *usecase.ReconciliationUseCase
	ledger       *usecase.LedgerUseCase
	recalculator *usecase.BalanceRecalculator
}

func newLedgerDB(t *testing.T) *ledgerDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, pginfra.NewMigrator(dbURL, migrationsPath, zerolog.Nop()).Up())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, dbURL, 20, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE outbox_events, card_expenses, card_topups, movements, rendiciones, prepaid_cards, accounts RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	txm := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier(zerolog.Nop())
	idGen := postgres.NewULIDGenerator()
	accountRepo := postgres.NewAccountRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	cardRepo := postgres.NewCardRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)

	db := &ledgerDB{pool: pool}
	db.recalculator = usecase.NewBalanceRecalculator(txm, retrier, accountRepo, movementRepo, nil, nil)
	db.accounts = usecase.NewAccountUseCase(txm, retrier, accountRepo, movementRepo, outboxRepo, idGen, db.recalculator, nil, nil)
	db.movements = usecase.NewMovementUseCase(txm, retrier, accountRepo, movementRepo, outboxRepo, idGen, db.recalculator, nil)
	db.transfers = usecase.NewTransferUseCase(txm, retrier, accountRepo, movementRepo, outboxRepo, idGen, db.recalculator, nil)
	db.cards = usecase.NewCardUseCase(txm, retrier, usecase.CardRepositories{
		Accounts:  accountRepo,
		Movements: movementRepo,
		Cards:     cardRepo,
		TopUps:    postgres.NewTopUpRepository(pool),
		Expenses:  expenseRepo,
		Outbox:    outboxRepo,
	}, idGen, db.recalculator, nil)
	db.rendiciones = usecase.NewReconciliationUseCase(txm, retrier, cardRepo, movementRepo, expenseRepo,
		postgres.NewReconciliationRepository(pool), outboxRepo, idGen, nil)
	db.ledger = usecase.NewLedgerUseCase(accountRepo, postgres.NewLedgerRepository(pool), db.recalculator, false, nil)

	return db
}

func integrationCtx() context.Context {
	return domain.ContextWithUser(context.Background(), &domain.User{ID: 1, Role: domain.RoleAdmin})
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (db *ledgerDB) account(t *testing.T, name, opening string) *domain.Account {
	t.Helper()
	acc, err := db.accounts.CreateAccount(integrationCtx(), usecase.CreateAccountInput{
		Name: name, Type: domain.AccountTypeBank, OpeningBalance: amount(opening),
	})
	require.NoError(t, err)
	return acc
}

func (db *ledgerDB) requireBalance(t *testing.T, id int64, want string) {
	t.Helper()
	acc, err := db.accounts.GetAccount(context.Background(), id)
	require.NoError(t, err)
	require.Truef(t, acc.CurrentBalance.Equal(amount(want)), "account %d: balance %s, want %s", id, acc.CurrentBalance, want)
}

func TestIntegrationTransferAndVoid(t *testing.T) {
	db := newLedgerDB(t)
	ctx := integrationCtx()

	a := db.account(t, "Banco", "1000")
	b := db.account(t, "Caja", "0")

	transfer, err := db.transfers.CreateTransfer(ctx, usecase.CreateTransferInput{
		SourceAccountID: a.ID, DestAccountID: b.ID, Amount: amount("250.50"),
	})
	require.NoError(t, err)
	db.requireBalance(t, a.ID, "749.50")
	db.requireBalance(t, b.ID, "250.50")

	_, err = db.movements.VoidMovement(ctx, transfer.Source.ID)
	require.NoError(t, err)
	db.requireBalance(t, a.ID, "1000")
	db.requireBalance(t, b.ID, "0")

	report, err := db.ledger.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestIntegrationConcurrentTransfers(t *testing.T) {
	db := newLedgerDB(t)
	ctx := integrationCtx()

	a := db.account(t, "A", "1000")
	b := db.account(t, "B", "1000")

	const n = 50
	var (
		wg       sync.WaitGroup
		failures atomic.Int32
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			src, dst := a.ID, b.ID
			if i%2 == 1 {
				src, dst = dst, src
			}
			if _, err := db.transfers.CreateTransfer(ctx, usecase.CreateTransferInput{
				SourceAccountID: src, DestAccountID: dst, Amount: amount("10"),
			}); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	db.requireBalance(t, a.ID, "1000")
	db.requireBalance(t, b.ID, "1000")

	report, err := db.ledger.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n, report.TransfersChecked)
}

func TestIntegrationRendicionLifecycle(t *testing.T) {
	db := newLedgerDB(t)
	ctx := integrationCtx()

	backing := db.account(t, "Tarjeta", "0")
	card, err := db.cards.CreateCard(ctx, usecase.CreateCardInput{
		Type: domain.CardTypePrepaid, Alias: "Caja chica", AccountID: backing.ID,
	})
	require.NoError(t, err)

	on := func(day int) time.Time { return time.Date(2024, time.May, day, 0, 0, 0, 0, time.UTC) }

	_, err = db.cards.CreateTopUp(ctx, card.ID, usecase.CardMovementInput{Amount: amount("500"), Date: on(1)})
	require.NoError(t, err)
	for _, day := range []int{3, 10, 20} {
		_, err = db.cards.CreateExpense(ctx, card.ID, usecase.CardMovementInput{Amount: amount("40"), Date: on(day)})
		require.NoError(t, err)
	}
	db.requireBalance(t, backing.ID, "380")

	rec, err := db.rendiciones.CreateReconciliation(ctx, usecase.CreateReconciliationInput{
		CardID: card.ID, DateFrom: on(1), DateTo: on(15),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.ExpenseCount)
	assert.True(t, rec.TotalAmount.Equal(amount("80")))

	_, err = db.rendiciones.CreateReconciliation(ctx, usecase.CreateReconciliationInput{
		CardID: card.ID, DateFrom: on(16), DateTo: on(31),
	})
	assert.ErrorIs(t, err, domain.ErrOpenReconciliationExists)

	_, err = db.rendiciones.CloseReconciliation(ctx, rec.ID)
	require.NoError(t, err)
	rejected, err := db.rendiciones.RejectReconciliation(ctx, rec.ID, "missing receipts")
	require.NoError(t, err)
	assert.Equal(t, domain.ReconciliationRejected, rejected.Status)

	unassigned, err := db.cards.ListUnassignedExpenses(context.Background(), card.ID, on(1), on(31))
	require.NoError(t, err)
	assert.Len(t, unassigned, 3)
}
