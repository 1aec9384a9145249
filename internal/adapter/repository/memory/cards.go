package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// CardRepository implements usecase.CardRepository.
type CardRepository struct {
	store *Store
}

// Create stores the card and assigns its ID. The backing account must exist.
func (r *CardRepository) Create(ctx context.Context, tx usecase.Transaction, card *domain.PrepaidCard) error {
	return r.store.write(tx, func(d *state) error {
		if _, ok := d.accounts[card.AccountID]; !ok {
			return domain.ErrAccountNotFound
		}
		card.ID = r.store.nextID("cards")
		d.cards[card.ID] = *card
		return nil
	})
}

// GetByID retrieves a card by ID, deleted or not.
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*domain.PrepaidCard, error) {
	var (
		c  domain.PrepaidCard
		ok bool
	)
	r.store.read(func(d *state) { c, ok = d.cards[id] })
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return &c, nil
}

// GetByIDForUpdate retrieves a card inside a transaction.
func (r *CardRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.PrepaidCard, error) {
	var c domain.PrepaidCard
	err := r.store.readTx(tx, func(d *state) error {
		found, ok := d.cards[id]
		if !ok {
			return domain.ErrCardNotFound
		}
		c = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SoftDelete stamps the deletion time of a card.
func (r *CardRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id int64, at time.Time) error {
	return r.store.write(tx, func(d *state) error {
		c, ok := d.cards[id]
		if !ok {
			return domain.ErrCardNotFound
		}
		c.DeletedAt = &at
		c.UpdatedAt = at
		d.cards[id] = c
		return nil
	})
}

// List lists cards that were not deleted, ordered by id.
func (r *CardRepository) List(ctx context.Context, limit, offset int) ([]*domain.PrepaidCard, error) {
	var cards []*domain.PrepaidCard
	r.store.read(func(d *state) {
		for _, c := range d.cards {
			if c.DeletedAt != nil {
				continue
			}
			card := c
			cards = append(cards, &card)
		}
	})
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return page(cards, limit, offset), nil
}

// TopUpRepository implements usecase.TopUpRepository.
type TopUpRepository struct {
	store *Store
}

// Create stores the top-up and assigns its ID.
func (r *TopUpRepository) Create(ctx context.Context, tx usecase.Transaction, topUp *domain.CardTopUp) error {
	return r.store.write(tx, func(d *state) error {
		if _, ok := d.cards[topUp.CardID]; !ok {
			return domain.ErrCardNotFound
		}
		topUp.ID = r.store.nextID("card_topups")
		d.topUps[topUp.ID] = *topUp
		return nil
	})
}

// ListByCard lists the top-ups of a card ordered by date then id.
func (r *TopUpRepository) ListByCard(ctx context.Context, cardID int64) ([]*domain.CardTopUp, error) {
	var topUps []*domain.CardTopUp
	r.store.read(func(d *state) {
		for _, t := range d.topUps {
			if t.CardID == cardID {
				topUp := t
				topUps = append(topUps, &topUp)
			}
		}
	})
	sort.Slice(topUps, func(i, j int) bool {
		if !topUps[i].Date.Equal(topUps[j].Date) {
			return topUps[i].Date.Before(topUps[j].Date)
		}
		return topUps[i].ID < topUps[j].ID
	})
	return topUps, nil
}
