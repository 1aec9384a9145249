package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDTx(ctx context.Context, tx Transaction, id int64) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Account, error)
	// GetByIDsForUpdate locks the accounts in ascending id order.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, tx Transaction, id int64, active bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// MovementRepository defines data access for movements.
type MovementRepository interface {
	// Create persists the movement and assigns its ID.
	Create(ctx context.Context, tx Transaction, movement *domain.Movement) error
	GetByID(ctx context.Context, id int64) (*domain.Movement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Movement, error)
	GetByTransferToken(ctx context.Context, token string) ([]*domain.Movement, error)
	GetByTransferTokenForUpdate(ctx context.Context, tx Transaction, token string) ([]*domain.Movement, error)
	UpdateStatus(ctx context.Context, tx Transaction, id int64, status domain.MovementStatus) error
	SetReconciliation(ctx context.Context, tx Transaction, ids []int64, reconciliationID *int64) error
	// SumByAccount aggregates the non-voided movements of an account.
	SumByAccount(ctx context.Context, tx Transaction, accountID int64) (domain.BalanceTotals, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Movement, error)
}

// CardRepository defines data access for prepaid cards.
type CardRepository interface {
	Create(ctx context.Context, tx Transaction, card *domain.PrepaidCard) error
	GetByID(ctx context.Context, id int64) (*domain.PrepaidCard, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.PrepaidCard, error)
	SoftDelete(ctx context.Context, tx Transaction, id int64, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.PrepaidCard, error)
}

// TopUpRepository defines data access for card top-ups.
type TopUpRepository interface {
	Create(ctx context.Context, tx Transaction, topUp *domain.CardTopUp) error
	ListByCard(ctx context.Context, cardID int64) ([]*domain.CardTopUp, error)
}

// ExpenseRepository defines data access for card expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.CardExpense) error
	ListByCard(ctx context.Context, cardID int64) ([]*domain.CardExpense, error)
	// ListUnassigned returns expenses without a rendicion whose movement is
	// not voided, dated inside [from, to], ordered by date then id.
	ListUnassigned(ctx context.Context, cardID int64, from, to time.Time) ([]*domain.CardExpense, error)
	ListUnassignedForUpdate(ctx context.Context, tx Transaction, cardID int64, from, to time.Time) ([]*domain.CardExpense, error)
	ListByReconciliation(ctx context.Context, reconciliationID int64) ([]*domain.CardExpense, error)
	ListByReconciliationForUpdate(ctx context.Context, tx Transaction, reconciliationID int64) ([]*domain.CardExpense, error)
	SetReconciliation(ctx context.Context, tx Transaction, ids []int64, reconciliationID *int64) error
}

// ReconciliationRepository defines data access for rendiciones.
type ReconciliationRepository interface {
	// Create persists the rendicion and assigns its ID. A second pending
	// rendicion for the same card fails with domain.ErrOpenReconciliationExists.
	Create(ctx context.Context, tx Transaction, reconciliation *domain.Reconciliation) error
	GetByID(ctx context.Context, id int64) (*domain.Reconciliation, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Reconciliation, error)
	HasPending(ctx context.Context, tx Transaction, cardID int64) (bool, error)
	CountByCard(ctx context.Context, tx Transaction, cardID int64) (int, error)
	Update(ctx context.Context, tx Transaction, reconciliation *domain.Reconciliation) error
	ListByCard(ctx context.Context, cardID int64) ([]*domain.Reconciliation, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// AccountTotals returns the non-voided totals of every account with movements.
	AccountTotals(ctx context.Context) (map[int64]domain.BalanceTotals, error)
	// TransferLegs returns every movement carrying a transfer token.
	TransferLegs(ctx context.Context) ([]*domain.Movement, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// AccountCache caches account snapshots. A miss returns (nil, nil).
type AccountCache interface {
	Get(ctx context.Context, id int64) (*domain.Account, error)
	Set(ctx context.Context, account *domain.Account) error
	Invalidate(ctx context.Context, id int64) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a reservation so the request can be retried.
	Release(ctx context.Context, key string) error
}
