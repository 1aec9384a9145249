package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createCard = `-- name: CreateCard :one
INSERT INTO prepaid_cards (type, alias, number, account_id, employee_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, type, alias, number, account_id, employee_id, created_at, updated_at, deleted_at
`

type CreateCardParams struct {
	Type       string             `json:"type"`
	Alias      string             `json:"alias"`
	Number     string             `json:"number"`
	AccountID  int64              `json:"account_id"`
	EmployeeID pgtype.Int8        `json:"employee_id"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateCard(ctx context.Context, arg CreateCardParams) (PrepaidCard, error) {
	row := q.db.QueryRow(ctx, createCard,
		arg.Type,
		arg.Alias,
		arg.Number,
		arg.AccountID,
		arg.EmployeeID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i PrepaidCard
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Alias,
		&i.Number,
		&i.AccountID,
		&i.EmployeeID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.DeletedAt,
	)
	return i, err
}

const getCardByID = `-- name: GetCardByID :one
SELECT id, type, alias, number, account_id, employee_id, created_at, updated_at, deleted_at FROM prepaid_cards WHERE id = $1
`

func (q *Queries) GetCardByID(ctx context.Context, id int64) (PrepaidCard, error) {
	row := q.db.QueryRow(ctx, getCardByID, id)
	var i PrepaidCard
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Alias,
		&i.Number,
		&i.AccountID,
		&i.EmployeeID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.DeletedAt,
	)
	return i, err
}

const getCardByIDForUpdate = `-- name: GetCardByIDForUpdate :one
SELECT id, type, alias, number, account_id, employee_id, created_at, updated_at, deleted_at FROM prepaid_cards WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetCardByIDForUpdate(ctx context.Context, id int64) (PrepaidCard, error) {
	row := q.db.QueryRow(ctx, getCardByIDForUpdate, id)
	var i PrepaidCard
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Alias,
		&i.Number,
		&i.AccountID,
		&i.EmployeeID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.DeletedAt,
	)
	return i, err
}

const softDeleteCard = `-- name: SoftDeleteCard :execrows
UPDATE prepaid_cards SET deleted_at = $2, updated_at = $2 WHERE id = $1
`

type SoftDeleteCardParams struct {
	ID        int64              `json:"id"`
	DeletedAt pgtype.Timestamptz `json:"deleted_at"`
}

func (q *Queries) SoftDeleteCard(ctx context.Context, arg SoftDeleteCardParams) (int64, error) {
	result, err := q.db.Exec(ctx, softDeleteCard, arg.ID, arg.DeletedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listCards = `-- name: ListCards :many
SELECT id, type, alias, number, account_id, employee_id, created_at, updated_at, deleted_at FROM prepaid_cards WHERE deleted_at IS NULL ORDER BY id LIMIT $1 OFFSET $2
`

type ListCardsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListCards(ctx context.Context, arg ListCardsParams) ([]PrepaidCard, error) {
	rows, err := q.db.Query(ctx, listCards, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PrepaidCard{}
	for rows.Next() {
		var i PrepaidCard
		if err := rows.Scan(
			&i.ID,
			&i.Type,
			&i.Alias,
			&i.Number,
			&i.AccountID,
			&i.EmployeeID,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.DeletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCardTopup = `-- name: CreateCardTopup :one
INSERT INTO card_topups (card_id, amount, topup_date, description, movement_id, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, card_id, amount, topup_date, description, movement_id, created_by, created_at
`

type CreateCardTopupParams struct {
	CardID      int64              `json:"card_id"`
	Amount      pgtype.Numeric     `json:"amount"`
	TopupDate   pgtype.Date        `json:"topup_date"`
	Description string             `json:"description"`
	MovementID  int64              `json:"movement_id"`
	CreatedBy   int64              `json:"created_by"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateCardTopup(ctx context.Context, arg CreateCardTopupParams) (CardTopup, error) {
	row := q.db.QueryRow(ctx, createCardTopup,
		arg.CardID,
		arg.Amount,
		arg.TopupDate,
		arg.Description,
		arg.MovementID,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	var i CardTopup
	err := row.Scan(
		&i.ID,
		&i.CardID,
		&i.Amount,
		&i.TopupDate,
		&i.Description,
		&i.MovementID,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listCardTopupsByCard = `-- name: ListCardTopupsByCard :many
SELECT id, card_id, amount, topup_date, description, movement_id, created_by, created_at FROM card_topups WHERE card_id = $1 ORDER BY topup_date, id
`

func (q *Queries) ListCardTopupsByCard(ctx context.Context, cardID int64) ([]CardTopup, error) {
	rows, err := q.db.Query(ctx, listCardTopupsByCard, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CardTopup{}
	for rows.Next() {
		var i CardTopup
		if err := rows.Scan(
			&i.ID,
			&i.CardID,
			&i.Amount,
			&i.TopupDate,
			&i.Description,
			&i.MovementID,
			&i.CreatedBy,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
