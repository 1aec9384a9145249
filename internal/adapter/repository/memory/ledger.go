package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// AccountTotals returns the non-voided totals per account.
func (r *LedgerRepository) AccountTotals(ctx context.Context) (map[int64]domain.BalanceTotals, error) {
	totals := make(map[int64]domain.BalanceTotals)
	r.store.read(func(d *state) {
		for id := range d.accounts {
			totals[id] = totalsOf(d, id)
		}
	})
	return totals, nil
}

// TransferLegs returns every transfer movement ordered by token then id.
func (r *LedgerRepository) TransferLegs(ctx context.Context) ([]*domain.Movement, error) {
	var legs []*domain.Movement
	r.store.read(func(d *state) {
		for _, m := range d.movements {
			if m.TransferToken != nil {
				leg := m
				legs = append(legs, &leg)
			}
		}
	})
	sort.Slice(legs, func(i, j int) bool {
		if *legs[i].TransferToken != *legs[j].TransferToken {
			return *legs[i].TransferToken < *legs[j].TransferToken
		}
		return legs[i].ID < legs[j].ID
	})
	return legs, nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// Create appends an event.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return r.store.write(tx, func(d *state) error {
		d.outbox = append(d.outbox, *event)
		return nil
	})
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	r.store.read(func(d *state) {
		for _, e := range d.outbox {
			if e.Published {
				continue
			}
			event := e
			out = append(out, &event)
			if len(out) == limit {
				break
			}
		}
	})
	return out, nil
}

// MarkPublished flags an event as published. It waits for the running unit
// of work so a rollback cannot undo the flag.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if err := r.store.txSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.store.txSem.Release(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.data.outbox {
		if r.store.data.outbox[i].ID == id {
			r.store.data.outbox[i].Published = true
			r.store.data.outbox[i].PublishedAt = &publishedAt
			return nil
		}
	}
	return domain.ErrNotFound
}

// GetByAggregate lists the events of one aggregate, oldest first.
func (r *OutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	r.store.read(func(d *state) {
		for _, e := range d.outbox {
			if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
				event := e
				out = append(out, &event)
			}
		}
	})
	return page(out, limit, offset), nil
}

// DeletePublished removes events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	if err := r.store.txSem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer r.store.txSem.Release(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.data.outbox[:0]
	var deleted int64
	for _, e := range r.store.data.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.store.data.outbox = kept
	return deleted, nil
}
