package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
	"github.com/iho/backoffice/internal/usecase/mocks"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.CreateAccountInput
		errorType error
	}{
		{
			name:  "creates active account at opening balance",
			input: usecase.CreateAccountInput{Name: "Banco Estado", Type: domain.AccountTypeBank, OpeningBalance: dec("1500.75")},
		},
		{
			name:      "reject empty name",
			input:     usecase.CreateAccountInput{Name: " ", Type: domain.AccountTypeBank},
			errorType: domain.ErrValidation,
		},
		{
			name:      "reject unknown type",
			input:     usecase.CreateAccountInput{Name: "Cripto", Type: "WALLET"},
			errorType: domain.ErrValidation,
		},
		{
			name:      "reject sub-cent opening balance",
			input:     usecase.CreateAccountInput{Name: "Caja", Type: domain.AccountTypeCash, OpeningBalance: dec("1.001")},
			errorType: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			acc, err := f.accounts.CreateAccount(actorCtx(), tt.input)
			if tt.errorType != nil {
				assert.ErrorIs(t, err, tt.errorType)
				return
			}

			require.NoError(t, err)
			assert.True(t, acc.Active)
			assert.True(t, acc.CurrentBalance.Equal(tt.input.OpeningBalance))

			events, err := f.store.Outbox().GetByAggregate(context.Background(), domain.AggregateTypeAccount, domain.FormatID(acc.ID), 10, 0)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, string(domain.AuditActionAccountCreate), events[0].EventType)
		})
	}
}

func TestAccountUseCase_MissingActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{Name: "x", Type: domain.AccountTypeCash})
	assert.ErrorIs(t, err, domain.ErrMissingActor)
}

func TestAccountUseCase_DeactivateAccount(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx()
	acc := f.account(t, "Caja", "10")

	deactivated, err := f.accounts.DeactivateAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	// deactivation is idempotent
	_, err = f.accounts.DeactivateAccount(ctx, acc.ID)
	require.NoError(t, err)

	_, err = f.accounts.DeactivateAccount(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	// movements are still accepted on inactive accounts
	f.expense(t, acc.ID, "4")
	requireBalance(t, f, acc.ID, "6")
}

func TestAccountUseCase_RecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t, "Caja", "100")
	f.expense(t, acc.ID, "30")

	first, err := f.accounts.RecomputeBalance(context.Background(), acc.ID)
	require.NoError(t, err)
	second, err := f.accounts.RecomputeBalance(context.Background(), acc.ID)
	require.NoError(t, err)

	assert.True(t, first.CurrentBalance.Equal(dec("70")))
	assert.True(t, first.CurrentBalance.Equal(second.CurrentBalance))

	_, err = f.accounts.RecomputeBalance(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_ListMovements(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t, "Caja", "100")
	f.expense(t, acc.ID, "1")
	f.expense(t, acc.ID, "2")

	movements, err := f.accounts.ListMovements(context.Background(), acc.ID, usecase.ListAccountsInput{})
	require.NoError(t, err)
	assert.Len(t, movements, 2)

	_, err = f.accounts.ListMovements(context.Background(), 999, usecase.ListAccountsInput{})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_GetAccountUsesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	accountRepo := mocks.NewMockAccountRepository(ctrl)
	cache := mocks.NewMockAccountCache(ctrl)

	cached := &domain.Account{ID: 5, Name: "Cached", CurrentBalance: dec("10")}
	stored := &domain.Account{ID: 6, Name: "Stored", CurrentBalance: dec("20")}

	cache.EXPECT().Get(gomock.Any(), int64(5)).Return(cached, nil)
	cache.EXPECT().Get(gomock.Any(), int64(6)).Return(nil, nil)
	accountRepo.EXPECT().GetByID(gomock.Any(), int64(6)).Return(stored, nil)
	cache.EXPECT().Set(gomock.Any(), stored).Return(nil)

	uc := usecase.NewAccountUseCase(nil, nil, accountRepo, nil, nil, nil, nil, cache, nil)

	got, err := uc.GetAccount(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Name)

	got, err = uc.GetAccount(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, "Stored", got.Name)
}

func TestAccountUseCase_GetAccountFallsBackOnCacheError(t *testing.T) {
	ctrl := gomock.NewController(t)
	accountRepo := mocks.NewMockAccountRepository(ctrl)
	cache := mocks.NewMockAccountCache(ctrl)

	stored := &domain.Account{ID: 6, Name: "Stored"}
	cache.EXPECT().Get(gomock.Any(), int64(6)).Return(nil, errors.New("redis down"))
	accountRepo.EXPECT().GetByID(gomock.Any(), int64(6)).Return(stored, nil)
	cache.EXPECT().Set(gomock.Any(), stored).Return(errors.New("redis down"))

	uc := usecase.NewAccountUseCase(nil, nil, accountRepo, nil, nil, nil, nil, cache, nil)

	got, err := uc.GetAccount(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestBalanceRecalculator_InvalidatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	acc := f.account(t, "Caja", "100")

	cache := mocks.NewMockAccountCache(ctrl)
	cache.EXPECT().Invalidate(gomock.Any(), acc.ID).Return(nil)

	recalculator := usecase.NewBalanceRecalculator(f.store.TxManager(), nil, f.store.Accounts(), f.store.Movements(), cache, nil)
	got, err := recalculator.Recompute(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec("100")))
}
