package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createCardExpense = `-- name: CreateCardExpense :one
INSERT INTO card_expenses (card_id, amount, expense_date, description, movement_id, rendicion_id, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, card_id, amount, expense_date, description, movement_id, rendicion_id, created_by, created_at
`

type CreateCardExpenseParams struct {
	CardID      int64              `json:"card_id"`
	Amount      pgtype.Numeric     `json:"amount"`
	ExpenseDate pgtype.Date        `json:"expense_date"`
	Description string             `json:"description"`
	MovementID  int64              `json:"movement_id"`
	RendicionID pgtype.Int8        `json:"rendicion_id"`
	CreatedBy   int64              `json:"created_by"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateCardExpense(ctx context.Context, arg CreateCardExpenseParams) (CardExpense, error) {
	row := q.db.QueryRow(ctx, createCardExpense,
		arg.CardID,
		arg.Amount,
		arg.ExpenseDate,
		arg.Description,
		arg.MovementID,
		arg.RendicionID,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	var i CardExpense
	err := row.Scan(
		&i.ID,
		&i.CardID,
		&i.Amount,
		&i.ExpenseDate,
		&i.Description,
		&i.MovementID,
		&i.RendicionID,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listCardExpensesByCard = `-- name: ListCardExpensesByCard :many
SELECT id, card_id, amount, expense_date, description, movement_id, rendicion_id, created_by, created_at FROM card_expenses WHERE card_id = $1 ORDER BY expense_date, id
`

func (q *Queries) ListCardExpensesByCard(ctx context.Context, cardID int64) ([]CardExpense, error) {
	rows, err := q.db.Query(ctx, listCardExpensesByCard, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CardExpense{}
	for rows.Next() {
		var i CardExpense
		if err := rows.Scan(
			&i.ID,
			&i.CardID,
			&i.Amount,
			&i.ExpenseDate,
			&i.Description,
			&i.MovementID,
			&i.RendicionID,
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

const listUnassignedCardExpenses = `-- name: ListUnassignedCardExpenses :many
SELECT e.id, e.card_id, e.amount, e.expense_date, e.description, e.movement_id, e.rendicion_id, e.created_by, e.created_at FROM card_expenses e
JOIN movements m ON m.id = e.movement_id
WHERE e.card_id = $1
  AND e.rendicion_id IS NULL
  AND m.status <> 'VOIDED'
  AND e.expense_date BETWEEN $2 AND $3
ORDER BY e.expense_date, e.id
`

type ListUnassignedCardExpensesParams struct {
	CardID   int64       `json:"card_id"`
	DateFrom pgtype.Date `json:"date_from"`
	DateTo   pgtype.Date `json:"date_to"`
}

func (q *Queries) ListUnassignedCardExpenses(ctx context.Context, arg ListUnassignedCardExpensesParams) ([]CardExpense, error) {
	rows, err := q.db.Query(ctx, listUnassignedCardExpenses, arg.CardID, arg.DateFrom, arg.DateTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CardExpense{}
	for rows.Next() {
		var i CardExpense
		if err := rows.Scan(
			&i.ID,
			&i.CardID,
			&i.Amount,
			&i.ExpenseDate,
			&i.Description,
			&i.MovementID,
			&i.RendicionID,
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

const listUnassignedCardExpensesForUpdate = `-- name: ListUnassignedCardExpensesForUpdate :many
SELECT e.id, e.card_id, e.amount, e.expense_date, e.description, e.movement_id, e.rendicion_id, e.created_by, e.created_at FROM card_expenses e
JOIN movements m ON m.id = e.movement_id
WHERE e.card_id = $1
  AND e.rendicion_id IS NULL
  AND m.status <> 'VOIDED'
  AND e.expense_date BETWEEN $2 AND $3
ORDER BY e.expense_date, e.id
FOR UPDATE OF e
`

type ListUnassignedCardExpensesForUpdateParams struct {
	CardID   int64       `json:"card_id"`
	DateFrom pgtype.Date `json:"date_from"`
	DateTo   pgtype.Date `json:"date_to"`
}

func (q *Queries) ListUnassignedCardExpensesForUpdate(ctx context.Context, arg ListUnassignedCardExpensesForUpdateParams) ([]CardExpense, error) {
	rows, err := q.db.Query(ctx, listUnassignedCardExpensesForUpdate, arg.CardID, arg.DateFrom, arg.DateTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CardExpense{}
	for rows.Next() {
		var i CardExpense
		if err := rows.Scan(
			&i.ID,
			&i.CardID,
			&i.Amount,
			&i.ExpenseDate,
			&i.Description,
			&i.MovementID,
			&i.RendicionID,
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

const listCardExpensesByRendicion = `-- name: ListCardExpensesByRendicion :many
SELECT id, card_id, amount, expense_date, description, movement_id, rendicion_id, created_by, created_at FROM card_expenses WHERE rendicion_id = $1 ORDER BY expense_date, id
`

func (q *Queries) ListCardExpensesByRendicion(ctx context.Context, rendicionID pgtype.Int8) ([]CardExpense, error) {
	rows, err := q.db.Query(ctx, listCardExpensesByRendicion, rendicionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CardExpense{}
	for rows.Next() {
		var i CardExpense
		if err := rows.Scan(
			&i.ID,
			&i.CardID,
			&i.Amount,
			&i.ExpenseDate,
			&i.Description,
			&i.MovementID,
			&i.RendicionID,
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

const listCardExpensesByRendicionForUpdate = `-- name: ListCardExpensesByRendicionForUpdate :many
SELECT id, card_id, amount, expense_date, description, movement_id, rendicion_id, created_by, created_at FROM card_expenses WHERE rendicion_id = $1 ORDER BY expense_date, id FOR UPDATE
`

func (q *Queries) ListCardExpensesByRendicionForUpdate(ctx context.Context, rendicionID pgtype.Int8) ([]CardExpense, error) {
	rows, err := q.db.Query(ctx, listCardExpensesByRendicionForUpdate, rendicionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CardExpense{}
	for rows.Next() {
		var i CardExpense
		if err := rows.Scan(
			&i.ID,
			&i.CardID,
			&i.Amount,
			&i.ExpenseDate,
			&i.Description,
			&i.MovementID,
			&i.RendicionID,
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

const setCardExpensesRendicion = `-- name: SetCardExpensesRendicion :execrows
UPDATE card_expenses SET rendicion_id = $2 WHERE id = ANY($1::bigint[])
`

type SetCardExpensesRendicionParams struct {
	IDs         []int64     `json:"ids"`
	RendicionID pgtype.Int8 `json:"rendicion_id"`
}

func (q *Queries) SetCardExpensesRendicion(ctx context.Context, arg SetCardExpensesRendicionParams) (int64, error) {
	result, err := q.db.Exec(ctx, setCardExpensesRendicion, arg.IDs, arg.RendicionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
