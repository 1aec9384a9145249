package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createRendicion = `-- name: CreateRendicion :one
INSERT INTO rendiciones (code, card_id, date_from, date_to, total_amount, expense_count, status, notes, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, code, card_id, date_from, date_to, total_amount, expense_count, status, notes, rejection_reason, created_by, approved_by, approved_at, closed_at, created_at, updated_at
`

type CreateRendicionParams struct {
	Code         string             `json:"code"`
	CardID       int64              `json:"card_id"`
	DateFrom     pgtype.Date        `json:"date_from"`
	DateTo       pgtype.Date        `json:"date_to"`
	TotalAmount  pgtype.Numeric     `json:"total_amount"`
	ExpenseCount int32              `json:"expense_count"`
	Status       string             `json:"status"`
	Notes        string             `json:"notes"`
	CreatedBy    int64              `json:"created_by"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateRendicion(ctx context.Context, arg CreateRendicionParams) (Rendicion, error) {
	row := q.db.QueryRow(ctx, createRendicion,
		arg.Code,
		arg.CardID,
		arg.DateFrom,
		arg.DateTo,
		arg.TotalAmount,
		arg.ExpenseCount,
		arg.Status,
		arg.Notes,
		arg.CreatedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Rendicion
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.CardID,
		&i.DateFrom,
		&i.DateTo,
		&i.TotalAmount,
		&i.ExpenseCount,
		&i.Status,
		&i.Notes,
		&i.RejectionReason,
		&i.CreatedBy,
		&i.ApprovedBy,
		&i.ApprovedAt,
		&i.ClosedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getRendicionByID = `-- name: GetRendicionByID :one
SELECT id, code, card_id, date_from, date_to, total_amount, expense_count, status, notes, rejection_reason, created_by, approved_by, approved_at, closed_at, created_at, updated_at FROM rendiciones WHERE id = $1
`

func (q *Queries) GetRendicionByID(ctx context.Context, id int64) (Rendicion, error) {
	row := q.db.QueryRow(ctx, getRendicionByID, id)
	var i Rendicion
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.CardID,
		&i.DateFrom,
		&i.DateTo,
		&i.TotalAmount,
		&i.ExpenseCount,
		&i.Status,
		&i.Notes,
		&i.RejectionReason,
		&i.CreatedBy,
		&i.ApprovedBy,
		&i.ApprovedAt,
		&i.ClosedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getRendicionByIDForUpdate = `-- name: GetRendicionByIDForUpdate :one
SELECT id, code, card_id, date_from, date_to, total_amount, expense_count, status, notes, rejection_reason, created_by, approved_by, approved_at, closed_at, created_at, updated_at FROM rendiciones WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetRendicionByIDForUpdate(ctx context.Context, id int64) (Rendicion, error) {
	row := q.db.QueryRow(ctx, getRendicionByIDForUpdate, id)
	var i Rendicion
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.CardID,
		&i.DateFrom,
		&i.DateTo,
		&i.TotalAmount,
		&i.ExpenseCount,
		&i.Status,
		&i.Notes,
		&i.RejectionReason,
		&i.CreatedBy,
		&i.ApprovedBy,
		&i.ApprovedAt,
		&i.ClosedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const hasPendingRendicion = `-- name: HasPendingRendicion :one
SELECT EXISTS (SELECT 1 FROM rendiciones WHERE card_id = $1 AND status IN ('ABIERTA', 'CERRADA'))
`

func (q *Queries) HasPendingRendicion(ctx context.Context, cardID int64) (bool, error) {
	row := q.db.QueryRow(ctx, hasPendingRendicion, cardID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const countRendicionesByCard = `-- name: CountRendicionesByCard :one
SELECT COUNT(*) FROM rendiciones WHERE card_id = $1
`

func (q *Queries) CountRendicionesByCard(ctx context.Context, cardID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countRendicionesByCard, cardID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateRendicion = `-- name: UpdateRendicion :execrows
UPDATE rendiciones
SET total_amount = $2, expense_count = $3, status = $4, notes = $5, rejection_reason = $6,
    approved_by = $7, approved_at = $8, closed_at = $9, updated_at = $10
WHERE id = $1
`

type UpdateRendicionParams struct {
	ID              int64              `json:"id"`
	TotalAmount     pgtype.Numeric     `json:"total_amount"`
	ExpenseCount    int32              `json:"expense_count"`
	Status          string             `json:"status"`
	Notes           string             `json:"notes"`
	RejectionReason pgtype.Text        `json:"rejection_reason"`
	ApprovedBy      pgtype.Int8        `json:"approved_by"`
	ApprovedAt      pgtype.Timestamptz `json:"approved_at"`
	ClosedAt        pgtype.Timestamptz `json:"closed_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateRendicion(ctx context.Context, arg UpdateRendicionParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateRendicion,
		arg.ID,
		arg.TotalAmount,
		arg.ExpenseCount,
		arg.Status,
		arg.Notes,
		arg.RejectionReason,
		arg.ApprovedBy,
		arg.ApprovedAt,
		arg.ClosedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listRendicionesByCard = `-- name: ListRendicionesByCard :many
SELECT id, code, card_id, date_from, date_to, total_amount, expense_count, status, notes, rejection_reason, created_by, approved_by, approved_at, closed_at, created_at, updated_at FROM rendiciones WHERE card_id = $1 ORDER BY id DESC
`

func (q *Queries) ListRendicionesByCard(ctx context.Context, cardID int64) ([]Rendicion, error) {
	rows, err := q.db.Query(ctx, listRendicionesByCard, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Rendicion{}
	for rows.Next() {
		var i Rendicion
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.CardID,
			&i.DateFrom,
			&i.DateTo,
			&i.TotalAmount,
			&i.ExpenseCount,
			&i.Status,
			&i.Notes,
			&i.RejectionReason,
			&i.CreatedBy,
			&i.ApprovedBy,
			&i.ApprovedAt,
			&i.ClosedAt,
			&i.CreatedAt,
			&i.UpdatedAt,
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
