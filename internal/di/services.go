package di

import (
	"github.com/iho/backoffice/internal/adapter/repository/postgres"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
	"github.com/iho/backoffice/internal/usecase"
)

// Options carries the optional collaborators of the use cases. Nil values
// disable the corresponding feature, except IDGenerator which defaults to
// ULIDs.
type Options struct {
	Retrier     usecase.Retrier
	IDGenerator usecase.IDGenerator
	Cache       usecase.AccountCache
	Metrics     *metrics.Metrics
	// RepairDrift makes ledger audits recompute drifted balances.
	RepairDrift bool
}

// Services holds every use case.
type Services struct {
	Recalculator    *usecase.BalanceRecalculator
	Accounts        *usecase.AccountUseCase
	Movements       *usecase.MovementUseCase
	Transfers       *usecase.TransferUseCase
	Cards           *usecase.CardUseCase
	Reconciliations *usecase.ReconciliationUseCase
	Ledger          *usecase.LedgerUseCase
}

// NewServices wires the use cases on repos.
func NewServices(repos *Repositories, opts Options) *Services {
	r := repos
	if opts.IDGenerator == nil {
		opts.IDGenerator = postgres.NewULIDGenerator()
	}
	recalculator := usecase.NewBalanceRecalculator(r.TxManager, opts.Retrier, r.Accounts, r.Movements, opts.Cache, opts.Metrics)

	return &Services{
		Recalculator: recalculator,
		Accounts: usecase.NewAccountUseCase(
			r.TxManager, opts.Retrier, r.Accounts, r.Movements, r.Outbox,
			opts.IDGenerator, recalculator, opts.Cache, opts.Metrics,
		),
		Movements: usecase.NewMovementUseCase(
			r.TxManager, opts.Retrier, r.Accounts, r.Movements, r.Outbox,
			opts.IDGenerator, recalculator, opts.Metrics,
		),
		Transfers: usecase.NewTransferUseCase(
			r.TxManager, opts.Retrier, r.Accounts, r.Movements, r.Outbox,
			opts.IDGenerator, recalculator, opts.Metrics,
		),
		Cards: usecase.NewCardUseCase(r.TxManager, opts.Retrier, usecase.CardRepositories{
			Accounts:  r.Accounts,
			Movements: r.Movements,
			Cards:     r.Cards,
			TopUps:    r.TopUps,
			Expenses:  r.Expenses,
			Outbox:    r.Outbox,
		}, opts.IDGenerator, recalculator, opts.Metrics),
		Reconciliations: usecase.NewReconciliationUseCase(
			r.TxManager, opts.Retrier, r.Cards, r.Movements, r.Expenses,
			r.Reconciliations, r.Outbox, opts.IDGenerator, opts.Metrics,
		),
		Ledger: usecase.NewLedgerUseCase(r.Accounts, r.Ledger, recalculator, opts.RepairDrift, opts.Metrics),
	}
}
