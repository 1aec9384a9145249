package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

func (s *Store) readTx(tx usecase.Transaction, fn func(d *state) error) error {
	if err := s.owns(tx); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.data)
}

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// Create stores the account and assigns its ID.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.store.write(tx, func(d *state) error {
		account.ID = r.store.nextID("accounts")
		d.accounts[account.ID] = *account
		return nil
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var (
		acc domain.Account
		ok  bool
	)
	r.store.read(func(d *state) { acc, ok = d.accounts[id] })
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &acc, nil
}

// GetByIDTx retrieves an account inside a transaction.
func (r *AccountRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Account, error) {
	var acc domain.Account
	err := r.store.readTx(tx, func(d *state) error {
		a, ok := d.accounts[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		acc = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetByIDForUpdate retrieves an account inside a transaction. Units of work
// are serialized so no row lock is needed.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Account, error) {
	return r.GetByIDTx(ctx, tx, id)
}

// GetByIDsForUpdate retrieves the existing accounts among ids in ascending id order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.store.readTx(tx, func(d *state) error {
		seen := make(map[int64]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if a, ok := d.accounts[id]; ok {
				acc := a
				accounts = append(accounts, &acc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// UpdateBalance sets the cached current balance.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	return r.store.write(tx, func(d *state) error {
		acc, ok := d.accounts[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		acc.CurrentBalance = balance
		acc.UpdatedAt = updatedAt
		d.accounts[id] = acc
		return nil
	})
}

// SetActive toggles the active flag.
func (r *AccountRepository) SetActive(ctx context.Context, tx usecase.Transaction, id int64, active bool, updatedAt time.Time) error {
	return r.store.write(tx, func(d *state) error {
		acc, ok := d.accounts[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		acc.Active = active
		acc.UpdatedAt = updatedAt
		d.accounts[id] = acc
		return nil
	})
}

// List lists accounts ordered by id.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	var all []*domain.Account
	r.store.read(func(d *state) {
		for _, a := range d.accounts {
			acc := a
			all = append(all, &acc)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
