package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/adapter/repository/memory"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

type seqIDGen struct{ n atomic.Int64 }

func (g *seqIDGen) Generate() string {
	return fmt.Sprintf("01TEST%020d", g.n.Add(1))
}

type fixture struct {
	store        *memory.Store
	movementRepo usecase.MovementRepository
	recalculator *usecase.BalanceRecalculator
	accounts     *usecase.AccountUseCase
	movements    *usecase.MovementUseCase
	transfers    *usecase.TransferUseCase
	cards        *usecase.CardUseCase
	rendiciones  *usecase.ReconciliationUseCase
	ledger       *usecase.LedgerUseCase
}

type fixtureOption func(*fixture)

// withMovementRepo replaces the movement store seen by the use cases.
func withMovementRepo(wrap func(usecase.MovementRepository) usecase.MovementRepository) fixtureOption {
	return func(f *fixture) { f.movementRepo = wrap(f.movementRepo) }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{store: store, movementRepo: store.Movements()}
	for _, opt := range opts {
		opt(f)
	}

	txm := store.TxManager()
	idGen := &seqIDGen{}

	f.recalculator = usecase.NewBalanceRecalculator(txm, nil, store.Accounts(), f.movementRepo, nil, nil)
	f.accounts = usecase.NewAccountUseCase(txm, nil, store.Accounts(), f.movementRepo, store.Outbox(), idGen, f.recalculator, nil, nil)
	f.movements = usecase.NewMovementUseCase(txm, nil, store.Accounts(), f.movementRepo, store.Outbox(), idGen, f.recalculator, nil)
	f.transfers = usecase.NewTransferUseCase(txm, nil, store.Accounts(), f.movementRepo, store.Outbox(), idGen, f.recalculator, nil)
	f.cards = usecase.NewCardUseCase(txm, nil, usecase.CardRepositories{
		Accounts:  store.Accounts(),
		Movements: f.movementRepo,
		Cards:     store.Cards(),
		TopUps:    store.TopUps(),
		Expenses:  store.Expenses(),
		Outbox:    store.Outbox(),
	}, idGen, f.recalculator, nil)
	f.rendiciones = usecase.NewReconciliationUseCase(txm, nil, store.Cards(), f.movementRepo, store.Expenses(),
		store.Reconciliations(), store.Outbox(), idGen, nil)
	f.ledger = usecase.NewLedgerUseCase(store.Accounts(), store.Ledger(), f.recalculator, false, nil)

	return f
}

func actorCtx() context.Context {
	return domain.ContextWithUser(context.Background(), &domain.User{ID: 7, Role: domain.RoleAdmin})
}

func date(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) account(t *testing.T, name string, opening string) *domain.Account {
	t.Helper()
	acc, err := f.accounts.CreateAccount(actorCtx(), usecase.CreateAccountInput{
		Name:           name,
		Type:           domain.AccountTypeBank,
		OpeningBalance: dec(opening),
	})
	require.NoError(t, err)
	return acc
}

func (f *fixture) balance(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	acc, err := f.accounts.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.CurrentBalance
}

func (f *fixture) expense(t *testing.T, accountID int64, amount string) *domain.Movement {
	t.Helper()
	m, err := f.movements.CreateMovement(actorCtx(), usecase.CreateMovementInput{
		Type:      domain.MovementExpense,
		Amount:    dec(amount),
		Category:  "SERVICIOS",
		Date:      date(time.January, 3),
		AccountID: accountID,
	})
	require.NoError(t, err)
	return m
}

func requireBalance(t *testing.T, f *fixture, id int64, want string) {
	t.Helper()
	got := f.balance(t, id)
	require.Truef(t, got.Equal(dec(want)), "account %d: balance %s, want %s", id, got, want)
}
