package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const accountMovementTotals = `-- name: AccountMovementTotals :many
SELECT
    account_id,
    COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0)::numeric AS income,
    COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0)::numeric AS expense
FROM movements
WHERE status <> 'VOIDED'
GROUP BY account_id
`

type AccountMovementTotalsRow struct {
	AccountID int64          `json:"account_id"`
	Income    pgtype.Numeric `json:"income"`
	Expense   pgtype.Numeric `json:"expense"`
}

func (q *Queries) AccountMovementTotals(ctx context.Context) ([]AccountMovementTotalsRow, error) {
	rows, err := q.db.Query(ctx, accountMovementTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []AccountMovementTotalsRow{}
	for rows.Next() {
		var i AccountMovementTotalsRow
		if err := rows.Scan(
			&i.AccountID,
			&i.Income,
			&i.Expense,
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

const listTransferLegs = `-- name: ListTransferLegs :many
SELECT id, type, amount, category, payment_method, description, movement_date, status, account_id, employee_id, transfer_token, rendicion_id, created_by, created_at FROM movements WHERE transfer_token IS NOT NULL ORDER BY transfer_token, id
`

func (q *Queries) ListTransferLegs(ctx context.Context) ([]Movement, error) {
	rows, err := q.db.Query(ctx, listTransferLegs)
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
