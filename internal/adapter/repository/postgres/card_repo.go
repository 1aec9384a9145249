package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/postgres/generated"
	"github.com/iho/backoffice/internal/usecase"
)

// CardRepository implements usecase.CardRepository.
type CardRepository struct {
	queries *generated.Queries
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(db generated.DBTX) *CardRepository {
	return &CardRepository{queries: generated.New(db)}
}

// Create inserts a card and assigns its ID.
func (r *CardRepository) Create(ctx context.Context, tx usecase.Transaction, card *domain.PrepaidCard) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row, err := queries.CreateCard(ctx, generated.CreateCardParams{
		Type:       string(card.Type),
		Alias:      card.Alias,
		Number:     card.Number,
		AccountID:  card.AccountID,
		EmployeeID: int64PtrToPgInt8(card.EmployeeID),
		CreatedAt:  timeToPgTimestamptz(card.CreatedAt),
		UpdatedAt:  timeToPgTimestamptz(card.UpdatedAt),
	})
	if err != nil {
		return err
	}

	card.ID = row.ID
	return nil
}

// GetByID retrieves a card, deleted or not.
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*domain.PrepaidCard, error) {
	return getCard(ctx, r.queries.GetCardByID, id)
}

// GetByIDForUpdate retrieves a card with a FOR UPDATE lock.
func (r *CardRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.PrepaidCard, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}
	return getCard(ctx, queries.GetCardByIDForUpdate, id)
}

func getCard(ctx context.Context, get func(context.Context, int64) (generated.PrepaidCard, error), id int64) (*domain.PrepaidCard, error) {
	row, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	return rowToCard(row), nil
}

// SoftDelete stamps the deletion time of a card.
func (r *CardRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id int64, at time.Time) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.SoftDeleteCard(ctx, generated.SoftDeleteCardParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

// List lists the cards that are not deleted.
func (r *CardRepository) List(ctx context.Context, limit, offset int) ([]*domain.PrepaidCard, error) {
	rows, err := r.queries.ListCards(ctx, generated.ListCardsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	cards := make([]*domain.PrepaidCard, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, rowToCard(row))
	}
	return cards, nil
}

func rowToCard(row generated.PrepaidCard) *domain.PrepaidCard {
	return &domain.PrepaidCard{
		ID:         row.ID,
		Type:       domain.CardType(row.Type),
		Alias:      row.Alias,
		Number:     row.Number,
		AccountID:  row.AccountID,
		EmployeeID: pgInt8ToPtr(row.EmployeeID),
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
		DeletedAt:  pgTimestamptzToPtr(row.DeletedAt),
	}
}

// TopUpRepository implements usecase.TopUpRepository.
type TopUpRepository struct {
	queries *generated.Queries
}

// NewTopUpRepository creates a new TopUpRepository.
func NewTopUpRepository(db generated.DBTX) *TopUpRepository {
	return &TopUpRepository{queries: generated.New(db)}
}

// Create inserts a top-up and assigns its ID.
func (r *TopUpRepository) Create(ctx context.Context, tx usecase.Transaction, topUp *domain.CardTopUp) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row, err := queries.CreateCardTopup(ctx, generated.CreateCardTopupParams{
		CardID:      topUp.CardID,
		Amount:      decimalToNumeric(topUp.Amount),
		TopupDate:   dateToPgDate(topUp.Date),
		Description: topUp.Description,
		MovementID:  topUp.MovementID,
		CreatedBy:   topUp.CreatedBy,
		CreatedAt:   timeToPgTimestamptz(topUp.CreatedAt),
	})
	if err != nil {
		return err
	}

	topUp.ID = row.ID
	return nil
}

// ListByCard lists the top-ups of a card ordered by date then id.
func (r *TopUpRepository) ListByCard(ctx context.Context, cardID int64) ([]*domain.CardTopUp, error) {
	rows, err := r.queries.ListCardTopupsByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	topUps := make([]*domain.CardTopUp, 0, len(rows))
	for _, row := range rows {
		topUps = append(topUps, &domain.CardTopUp{
			ID:          row.ID,
			CardID:      row.CardID,
			Amount:      numericToDecimal(row.Amount),
			Date:        pgDateToTime(row.TopupDate),
			Description: row.Description,
			MovementID:  row.MovementID,
			CreatedBy:   row.CreatedBy,
			CreatedAt:   row.CreatedAt.Time,
		})
	}
	return topUps, nil
}
