// Package di wires repositories and use cases for the server and the CLI.
package di

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/backoffice/internal/adapter/repository/memory"
	"github.com/iho/backoffice/internal/adapter/repository/postgres"
	"github.com/iho/backoffice/internal/usecase"
)

// Repositories is one storage backend seen through the use case ports.
type Repositories struct {
	TxManager       usecase.TransactionManager
	Accounts        usecase.AccountRepository
	Movements       usecase.MovementRepository
	Cards           usecase.CardRepository
	TopUps          usecase.TopUpRepository
	Expenses        usecase.ExpenseRepository
	Reconciliations usecase.ReconciliationRepository
	Ledger          usecase.LedgerRepository
	Outbox          usecase.OutboxRepository
}

// PostgresRepositories builds every repository on pool. opts tune the units
// of work opened by the transaction manager.
func PostgresRepositories(pool *pgxpool.Pool, opts ...postgres.TxOption) *Repositories {
	return &Repositories{
		TxManager:       postgres.NewTxManager(pool, opts...),
		Accounts:        postgres.NewAccountRepository(pool),
		Movements:       postgres.NewMovementRepository(pool),
		Cards:           postgres.NewCardRepository(pool),
		TopUps:          postgres.NewTopUpRepository(pool),
		Expenses:        postgres.NewExpenseRepository(pool),
		Reconciliations: postgres.NewReconciliationRepository(pool),
		Ledger:          postgres.NewLedgerRepository(pool),
		Outbox:          postgres.NewOutboxRepository(pool),
	}
}

// MemoryRepositories builds every repository on an in-process store.
func MemoryRepositories(store *memory.Store) *Repositories {
	return &Repositories{
		TxManager:       store.TxManager(),
		Accounts:        store.Accounts(),
		Movements:       store.Movements(),
		Cards:           store.Cards(),
		TopUps:          store.TopUps(),
		Expenses:        store.Expenses(),
		Reconciliations: store.Reconciliations(),
		Ledger:          store.Ledger(),
		Outbox:          store.Outbox(),
	}
}
