package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	store *Store
}

// Create stores the expense and assigns its ID.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.CardExpense) error {
	return r.store.write(tx, func(d *state) error {
		if _, ok := d.cards[expense.CardID]; !ok {
			return domain.ErrCardNotFound
		}
		if _, ok := d.movements[expense.MovementID]; !ok {
			return domain.ErrMovementNotFound
		}
		expense.ID = r.store.nextID("card_expenses")
		d.expenses[expense.ID] = *expense
		return nil
	})
}

// ListByCard lists the expenses of a card ordered by date then id.
func (r *ExpenseRepository) ListByCard(ctx context.Context, cardID int64) ([]*domain.CardExpense, error) {
	var out []*domain.CardExpense
	r.store.read(func(d *state) {
		out = filterExpenses(d, func(e domain.CardExpense) bool { return e.CardID == cardID })
	})
	return out, nil
}

// ListUnassigned lists the unassigned, non-voided expenses of a card dated
// inside [from, to].
func (r *ExpenseRepository) ListUnassigned(ctx context.Context, cardID int64, from, to time.Time) ([]*domain.CardExpense, error) {
	var out []*domain.CardExpense
	r.store.read(func(d *state) { out = unassigned(d, cardID, from, to) })
	return out, nil
}

// ListUnassignedForUpdate is ListUnassigned inside a transaction.
func (r *ExpenseRepository) ListUnassignedForUpdate(ctx context.Context, tx usecase.Transaction, cardID int64, from, to time.Time) ([]*domain.CardExpense, error) {
	var out []*domain.CardExpense
	err := r.store.readTx(tx, func(d *state) error {
		out = unassigned(d, cardID, from, to)
		return nil
	})
	return out, err
}

func unassigned(d *state, cardID int64, from, to time.Time) []*domain.CardExpense {
	return filterExpenses(d, func(e domain.CardExpense) bool {
		if e.CardID != cardID || e.ReconciliationID != nil {
			return false
		}
		if m, ok := d.movements[e.MovementID]; !ok || m.Status == domain.MovementVoided {
			return false
		}
		return domain.InDateRange(e.Date, from, to)
	})
}

// ListByReconciliation lists the expenses assigned to a rendicion.
func (r *ExpenseRepository) ListByReconciliation(ctx context.Context, reconciliationID int64) ([]*domain.CardExpense, error) {
	var out []*domain.CardExpense
	r.store.read(func(d *state) { out = assignedTo(d, reconciliationID) })
	return out, nil
}

// ListByReconciliationForUpdate is ListByReconciliation inside a transaction.
func (r *ExpenseRepository) ListByReconciliationForUpdate(ctx context.Context, tx usecase.Transaction, reconciliationID int64) ([]*domain.CardExpense, error) {
	var out []*domain.CardExpense
	err := r.store.readTx(tx, func(d *state) error {
		out = assignedTo(d, reconciliationID)
		return nil
	})
	return out, err
}

func assignedTo(d *state, reconciliationID int64) []*domain.CardExpense {
	return filterExpenses(d, func(e domain.CardExpense) bool {
		return e.ReconciliationID != nil && *e.ReconciliationID == reconciliationID
	})
}

// SetReconciliation stamps or clears the rendicion of the expenses.
func (r *ExpenseRepository) SetReconciliation(ctx context.Context, tx usecase.Transaction, ids []int64, reconciliationID *int64) error {
	return r.store.write(tx, func(d *state) error {
		for _, id := range ids {
			e, ok := d.expenses[id]
			if !ok {
				return domain.ErrNotFound
			}
			e.ReconciliationID = copyID(reconciliationID)
			d.expenses[id] = e
		}
		return nil
	})
}

func filterExpenses(d *state, keep func(domain.CardExpense) bool) []*domain.CardExpense {
	out := []*domain.CardExpense{}
	for _, e := range d.expenses {
		if keep(e) {
			expense := e
			out = append(out, &expense)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
