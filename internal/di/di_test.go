package di_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/adapter/repository/memory"
	"github.com/iho/backoffice/internal/di"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

func TestMemoryServicesTransferAndAudit(t *testing.T) {
	ctx := domain.ContextWithUser(context.Background(), &domain.User{ID: 1, Role: domain.RoleAdmin})
	svc := di.NewServices(di.MemoryRepositories(memory.NewStore()), di.Options{})

	bank, err := svc.Accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		Name:           "Banco",
		Type:           domain.AccountTypeBank,
		OpeningBalance: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	cash, err := svc.Accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		Name: "Caja",
		Type: domain.AccountTypeCash,
	})
	require.NoError(t, err)

	transfer, err := svc.Transfers.CreateTransfer(ctx, usecase.CreateTransferInput{
		SourceAccountID: bank.ID,
		DestAccountID:   cash.ID,
		Amount:          decimal.NewFromInt(250),
		Date:            time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, transfer.Token, 26)

	bank, err = svc.Accounts.GetAccount(ctx, bank.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(750).Equal(bank.CurrentBalance))

	report, err := svc.Ledger.Report(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 2, report.AccountsChecked)
	assert.Equal(t, 1, report.TransfersChecked)
}

func TestNewServicesSharesRecalculator(t *testing.T) {
	svc := di.NewServices(di.MemoryRepositories(memory.NewStore()), di.Options{RepairDrift: true})

	require.NotNil(t, svc.Recalculator)
	assert.NotNil(t, svc.Movements)
	assert.NotNil(t, svc.Cards)
	assert.NotNil(t, svc.Reconciliations)
}
