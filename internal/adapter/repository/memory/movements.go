package memory

import (
	"context"
	"sort"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	store *Store
}

// Create stores the movement and assigns its ID. The account must exist.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	return r.store.write(tx, func(d *state) error {
		if _, ok := d.accounts[movement.AccountID]; !ok {
			return domain.ErrAccountNotFound
		}
		movement.ID = r.store.nextID("movements")
		d.movements[movement.ID] = *movement
		return nil
	})
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id int64) (*domain.Movement, error) {
	var (
		m  domain.Movement
		ok bool
	)
	r.store.read(func(d *state) { m, ok = d.movements[id] })
	if !ok {
		return nil, domain.ErrMovementNotFound
	}
	return &m, nil
}

// GetByIDForUpdate retrieves a movement inside a transaction.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Movement, error) {
	var m domain.Movement
	err := r.store.readTx(tx, func(d *state) error {
		found, ok := d.movements[id]
		if !ok {
			return domain.ErrMovementNotFound
		}
		m = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByTransferToken returns the legs of a transfer ordered by id.
func (r *MovementRepository) GetByTransferToken(ctx context.Context, token string) ([]*domain.Movement, error) {
	var legs []*domain.Movement
	r.store.read(func(d *state) { legs = legsOf(d, token) })
	if len(legs) == 0 {
		return nil, domain.ErrTransferNotFound
	}
	return legs, nil
}

// GetByTransferTokenForUpdate returns the legs of a transfer inside a transaction.
func (r *MovementRepository) GetByTransferTokenForUpdate(ctx context.Context, tx usecase.Transaction, token string) ([]*domain.Movement, error) {
	var legs []*domain.Movement
	err := r.store.readTx(tx, func(d *state) error {
		legs = legsOf(d, token)
		if len(legs) == 0 {
			return domain.ErrTransferNotFound
		}
		return nil
	})
	return legs, err
}

func legsOf(d *state, token string) []*domain.Movement {
	var legs []*domain.Movement
	for _, m := range d.movements {
		if m.TransferToken != nil && *m.TransferToken == token {
			leg := m
			legs = append(legs, &leg)
		}
	}
	sort.Slice(legs, func(i, j int) bool { return legs[i].ID < legs[j].ID })
	return legs
}

// UpdateStatus changes the state of a movement.
func (r *MovementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id int64, status domain.MovementStatus) error {
	return r.store.write(tx, func(d *state) error {
		m, ok := d.movements[id]
		if !ok {
			return domain.ErrMovementNotFound
		}
		m.Status = status
		d.movements[id] = m
		return nil
	})
}

// SetReconciliation stamps or clears the rendicion of the movements.
func (r *MovementRepository) SetReconciliation(ctx context.Context, tx usecase.Transaction, ids []int64, reconciliationID *int64) error {
	return r.store.write(tx, func(d *state) error {
		for _, id := range ids {
			m, ok := d.movements[id]
			if !ok {
				return domain.ErrMovementNotFound
			}
			m.ReconciliationID = copyID(reconciliationID)
			d.movements[id] = m
		}
		return nil
	})
}

// SumByAccount aggregates the non-voided movements of an account.
func (r *MovementRepository) SumByAccount(ctx context.Context, tx usecase.Transaction, accountID int64) (domain.BalanceTotals, error) {
	var totals domain.BalanceTotals
	err := r.store.readTx(tx, func(d *state) error {
		totals = totalsOf(d, accountID)
		return nil
	})
	return totals, err
}

func totalsOf(d *state, accountID int64) domain.BalanceTotals {
	var movements []*domain.Movement
	for _, m := range d.movements {
		if m.AccountID == accountID {
			mv := m
			movements = append(movements, &mv)
		}
	}
	return domain.TotalsOf(movements)
}

// ListByAccount lists the movements of an account, newest first.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Movement, error) {
	var movements []*domain.Movement
	r.store.read(func(d *state) {
		for _, m := range d.movements {
			if m.AccountID == accountID {
				mv := m
				movements = append(movements, &mv)
			}
		}
	})
	sort.Slice(movements, func(i, j int) bool {
		if !movements[i].Date.Equal(movements[j].Date) {
			return movements[i].Date.After(movements[j].Date)
		}
		return movements[i].ID > movements[j].ID
	})
	return page(movements, limit, offset), nil
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
