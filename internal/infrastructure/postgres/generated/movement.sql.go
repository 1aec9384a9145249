package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createMovement = `-- name: CreateMovement :one
INSERT INTO movements (type, amount, category, payment_method, description, movement_date, status, account_id, employee_id, transfer_token, rendicion_id, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, type, amount, category, payment_method, description, movement_date, status, account_id, employee_id, transfer_token, rendicion_id, created_by, created_at
`

type CreateMovementParams struct {
	Type          string             `json:"type"`
	Amount        pgtype.Numeric     `json:"amount"`
	Category      string             `json:"category"`
	PaymentMethod string             `json:"payment_method"`
	Description   string             `json:"description"`
	MovementDate  pgtype.Date        `json:"movement_date"`
	Status        string             `json:"status"`
	AccountID     int64              `json:"account_id"`
	EmployeeID    pgtype.Int8        `json:"employee_id"`
	TransferToken pgtype.Text        `json:"transfer_token"`
	RendicionID   pgtype.Int8        `json:"rendicion_id"`
	CreatedBy     int64              `json:"created_by"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateMovement(ctx context.Context, arg CreateMovementParams) (Movement, error) {
	row := q.db.QueryRow(ctx, createMovement,
		arg.Type,
		arg.Amount,
		arg.Category,
		arg.PaymentMethod,
		arg.Description,
		arg.MovementDate,
		arg.Status,
		arg.AccountID,
		arg.EmployeeID,
		arg.TransferToken,
		arg.RendicionID,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	var i Movement
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Amount,
		&i.Category,
		&i.PaymentMethod,
		&i.Description,
		&i.MovementDate,
		&i.Status,
		&i.AccountID,
		&i.EmployeeID,
		&i.TransferToken,
		&i.RendicionID,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const getMovementByID = `-- name: GetMovementByID :one
SELECT id, type, amount, category, payment_method, description, movement_date, status, account_id, employee_id, transfer_token, rendicion_id, created_by, created_at FROM movements WHERE id = $1
`

func (q *Queries) GetMovementByID(ctx context.Context, id int64) (Movement, error) {
	row := q.db.QueryRow(ctx, getMovementByID, id)
	var i Movement
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Amount,
		&i.Category,
		&i.PaymentMethod,
		&i.Description,
		&i.MovementDate,
		&i.Status,
		&i.AccountID,
		&i.EmployeeID,
		&i.TransferToken,
		&i.RendicionID,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const getMovementByIDForUpdate = `-- name: GetMovementByIDForUpdate :one
SELECT id, type, amount, category, payment_method, description, movement_date, status, account_id, employee_id, transfer_token, rendicion_id, created_by, created_at FROM movements WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetMovementByIDForUpdate(ctx context.Context, id int64) (Movement, error) {
	row := q.db.QueryRow(ctx, getMovementByIDForUpdate, id)
	var i Movement
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Amount,
		&i.Category,
		&i.PaymentMethod,
		&i.Description,
		&i.MovementDate,
		&i.Status,
		&i.AccountID,
		&i.EmployeeID,
		&i.TransferToken,
		&i.RendicionID,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const getMovementsByTransferToken = `-- name: GetMovementsByTransferToken :many
SELECT id, type, amount, category, payment_method, description, movement_date, status, account_id, employee_id, transfer_token, rendicion_id, created_by, created_at FROM movements WHERE transfer_token = $1 ORDER BY id
`

func (q *Queries) GetMovementsByTransferToken(ctx context.Context, transferToken pgtype.Text) ([]Movement, error) {
	rows, err := q.db.Query(ctx, getMovementsByTransferToken, transferToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Movement{}
	for rows.Next() {
		var i Movement
		if err := rows.Scan(
			&i.ID,
			&i.Type,
			&i.Amount,
			&i.Category,
			&i.PaymentMethod,
			&i.Description,
			&i.MovementDate,
			&i.Status,
			&i.AccountID,
			&i.EmployeeID,
			&i.TransferToken,
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

const getMovementsByTransferTokenForUpdate = `-- name: GetMovementsByTransferTokenForUpdate :many
SELECT id, type, amount, category, payment_method, description, movement_date, status, account_id, employee_id, transfer_token, rendicion_id, created_by, created_at FROM movements WHERE transfer_token = $1 ORDER BY id FOR UPDATE
`

func (q *Queries) GetMovementsByTransferTokenForUpdate(ctx context.Context, transferToken pgtype.Text) ([]Movement, error) {
	rows, err := q.db.Query(ctx, getMovementsByTransferTokenForUpdate, transferToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Movement{}
	for rows.Next() {
		var i Movement
		if err := rows.Scan(
			&i.ID,
			&i.Type,
			&i.Amount,
			&i.Category,
			&i.PaymentMethod,
			&i.Description,
			&i.MovementDate,
			&i.Status,
			&i.AccountID,
			&i.EmployeeID,
			&i.TransferToken,
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

const updateMovementStatus = `-- name: UpdateMovementStatus :execrows
UPDATE movements SET status = $2 WHERE id = $1
`

type UpdateMovementStatusParams struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func (q *Queries) UpdateMovementStatus(ctx context.Context, arg UpdateMovementStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateMovementStatus, arg.ID, arg.Status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setMovementsRendicion = `-- name: SetMovementsRendicion :execrows
UPDATE movements SET rendicion_id = $2 WHERE id = ANY($1::bigint[])
`

type SetMovementsRendicionParams struct {
	IDs         []int64     `json:"ids"`
	RendicionID pgtype.Int8 `json:"rendicion_id"`
}

func (q *Queries) SetMovementsRendicion(ctx context.Context, arg SetMovementsRendicionParams) (int64, error) {
	result, err := q.db.Exec(ctx, setMovementsRendicion, arg.IDs, arg.RendicionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const sumMovementsByAccount = `-- name: SumMovementsByAccount :one
SELECT
    COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0)::numeric AS income,
    COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0)::numeric AS expense
FROM movements
WHERE account_id = $1 AND status <> 'VOIDED'
`

type SumMovementsByAccountRow struct {
	Income  pgtype.Numeric `json:"income"`
	Expense pgtype.Numeric `json:"expense"`
}

func (q *Queries) SumMovementsByAccount(ctx context.Context, accountID int64) (SumMovementsByAccountRow, error) {
	row := q.db.QueryRow(ctx, sumMovementsByAccount, accountID)
	var i SumMovementsByAccountRow
	err := row.Scan(
		&i.Income,
		&i.Expense,
	)
	return i, err
}

const listMovementsByAccount = `-- name: ListMovementsByAccount :many
SELECT id, type, amount, category, payment_method, description, movement_date, status, account_id, employee_id, transfer_token, rendicion_id, created_by, created_at FROM movements
WHERE account_id = $1
ORDER BY movement_date DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListMovementsByAccountParams struct {
	AccountID int64 `json:"account_id"`
	Limit     int32 `json:"limit"`
	Offset    int32 `json:"offset"`
}

func (q *Queries) ListMovementsByAccount(ctx context.Context, arg ListMovementsByAccountParams) ([]Movement, error) {
	rows, err := q.db.Query(ctx, listMovementsByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Movement{}
	for rows.Next() {
		var i Movement
		if err := rows.Scan(
			&i.ID,
			&i.Type,
			&i.Amount,
			&i.Category,
			&i.PaymentMethod,
			&i.Description,
			&i.MovementDate,
			&i.Status,
			&i.AccountID,
			&i.EmployeeID,
			&i.TransferToken,
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
