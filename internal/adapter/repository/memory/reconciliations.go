package memory

import (
	"context"
	"sort"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// ReconciliationRepository implements usecase.ReconciliationRepository.
type ReconciliationRepository struct {
	store *Store
}

// Create stores the rendicion and assigns its ID. Like the partial unique
// index of the SQL schema, it refuses a second pending rendicion per card.
func (r *ReconciliationRepository) Create(ctx context.Context, tx usecase.Transaction, reconciliation *domain.Reconciliation) error {
	return r.store.write(tx, func(d *state) error {
		if _, ok := d.cards[reconciliation.CardID]; !ok {
			return domain.ErrCardNotFound
		}
		if hasPending(d, reconciliation.CardID) {
			return domain.ErrOpenReconciliationExists
		}
		reconciliation.ID = r.store.nextID("rendiciones")
		d.reconciliations[reconciliation.ID] = *reconciliation
		return nil
	})
}

// GetByID retrieves a rendicion by ID.
func (r *ReconciliationRepository) GetByID(ctx context.Context, id int64) (*domain.Reconciliation, error) {
	var (
		rec domain.Reconciliation
		ok  bool
	)
	r.store.read(func(d *state) { rec, ok = d.reconciliations[id] })
	if !ok {
		return nil, domain.ErrReconciliationNotFound
	}
	return &rec, nil
}

// GetByIDForUpdate retrieves a rendicion inside a transaction.
func (r *ReconciliationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Reconciliation, error) {
	var rec domain.Reconciliation
	err := r.store.readTx(tx, func(d *state) error {
		found, ok := d.reconciliations[id]
		if !ok {
			return domain.ErrReconciliationNotFound
		}
		rec = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// HasPending reports whether the card has an ABIERTA or CERRADA rendicion.
func (r *ReconciliationRepository) HasPending(ctx context.Context, tx usecase.Transaction, cardID int64) (bool, error) {
	var pending bool
	err := r.store.readTx(tx, func(d *state) error {
		pending = hasPending(d, cardID)
		return nil
	})
	return pending, err
}

func hasPending(d *state, cardID int64) bool {
	for _, rec := range d.reconciliations {
		if rec.CardID == cardID && rec.Status.IsPending() {
			return true
		}
	}
	return false
}

// CountByCard counts every rendicion of a card regardless of state.
func (r *ReconciliationRepository) CountByCard(ctx context.Context, tx usecase.Transaction, cardID int64) (int, error) {
	count := 0
	err := r.store.readTx(tx, func(d *state) error {
		for _, rec := range d.reconciliations {
			if rec.CardID == cardID {
				count++
			}
		}
		return nil
	})
	return count, err
}

// Update stores the mutable fields of a rendicion.
func (r *ReconciliationRepository) Update(ctx context.Context, tx usecase.Transaction, reconciliation *domain.Reconciliation) error {
	return r.store.write(tx, func(d *state) error {
		if _, ok := d.reconciliations[reconciliation.ID]; !ok {
			return domain.ErrReconciliationNotFound
		}
		d.reconciliations[reconciliation.ID] = *reconciliation
		return nil
	})
}

// ListByCard lists the rendiciones of a card, newest first.
func (r *ReconciliationRepository) ListByCard(ctx context.Context, cardID int64) ([]*domain.Reconciliation, error) {
	out := []*domain.Reconciliation{}
	r.store.read(func(d *state) {
		for _, rec := range d.reconciliations {
			if rec.CardID == cardID {
				found := rec
				out = append(out, &found)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
