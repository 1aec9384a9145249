// Package memory is an in-process implementation of the ledger stores. Units
// of work are serialized and rolled back by restoring a snapshot, which makes
// it suitable for tests and local runs without Postgres.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

var errForeignTx = errors.New("memory: transaction does not belong to this store")

type state struct {
	accounts        map[int64]domain.Account
	movements       map[int64]domain.Movement
	cards           map[int64]domain.PrepaidCard
	topUps          map[int64]domain.CardTopUp
	expenses        map[int64]domain.CardExpense
	reconciliations map[int64]domain.Reconciliation
	outbox          []domain.OutboxEvent
	seq             map[string]int64
}

func newState() state {
	return state{
		accounts:        make(map[int64]domain.Account),
		movements:       make(map[int64]domain.Movement),
		cards:           make(map[int64]domain.PrepaidCard),
		topUps:          make(map[int64]domain.CardTopUp),
		expenses:        make(map[int64]domain.CardExpense),
		reconciliations: make(map[int64]domain.Reconciliation),
		seq:             make(map[string]int64),
	}
}

func (s state) clone() state {
	return state{
		accounts:        maps.Clone(s.accounts),
		movements:       maps.Clone(s.movements),
		cards:           maps.Clone(s.cards),
		topUps:          maps.Clone(s.topUps),
		expenses:        maps.Clone(s.expenses),
		reconciliations: maps.Clone(s.reconciliations),
		outbox:          slices.Clone(s.outbox),
		seq:             maps.Clone(s.seq),
	}
}

// Store holds all ledger data in memory.
type Store struct {
	// txSem admits one unit of work at a time.
	txSem *semaphore.Weighted
	// mu guards data.
	mu   sync.RWMutex
	data state
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{txSem: semaphore.NewWeighted(1), data: newState()}
}

func (s *Store) nextID(table string) int64 {
	s.data.seq[table]++
	return s.data.seq[table]
}

func (s *Store) read(fn func(d *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

func (s *Store) write(tx usecase.Transaction, fn func(d *state) error) error {
	if err := s.owns(tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (s *Store) owns(tx usecase.Transaction) error {
	t, ok := tx.(*Tx)
	if !ok || t.store != s || t.done {
		return errForeignTx
	}
	return nil
}

// TxManager returns the unit of work manager of the store.
func (s *Store) TxManager() *TxManager { return &TxManager{store: s} }

// Accounts returns the account repository of the store.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{store: s} }

// Movements returns the movement repository of the store.
func (s *Store) Movements() *MovementRepository { return &MovementRepository{store: s} }

// Cards returns the card repository of the store.
func (s *Store) Cards() *CardRepository { return &CardRepository{store: s} }

// TopUps returns the top-up repository of the store.
func (s *Store) TopUps() *TopUpRepository { return &TopUpRepository{store: s} }

// Expenses returns the expense repository of the store.
func (s *Store) Expenses() *ExpenseRepository { return &ExpenseRepository{store: s} }

// Reconciliations returns the rendicion repository of the store.
func (s *Store) Reconciliations() *ReconciliationRepository {
	return &ReconciliationRepository{store: s}
}

// Ledger returns the ledger audit repository of the store.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{store: s} }

// Outbox returns the outbox repository of the store.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{store: s} }

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// Begin waits for the running unit of work, if any, and snapshots the store.
// It gives up when ctx is done before the store is free.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.store.txSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	m.store.mu.RLock()
	snapshot := m.store.data.clone()
	m.store.mu.RUnlock()

	return &Tx{store: m.store, snapshot: snapshot}, nil
}

// Tx is a unit of work on a Store.
type Tx struct {
	store    *Store
	snapshot state
	done     bool
}

// Commit keeps the writes made through the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errForeignTx
	}
	t.done = true
	t.store.txSem.Release(1)
	return nil
}

// Rollback restores the snapshot taken at Begin. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	t.store.mu.Lock()
	t.store.data = t.snapshot
	t.store.mu.Unlock()

	t.store.txSem.Release(1)
	return nil
}
