package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/postgres/generated"
	"github.com/iho/backoffice/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	queries *generated.Queries
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db generated.DBTX) *ExpenseRepository {
	return &ExpenseRepository{queries: generated.New(db)}
}

// Create inserts an expense and assigns its ID.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.CardExpense) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row, err := queries.CreateCardExpense(ctx, generated.CreateCardExpenseParams{
		CardID:      expense.CardID,
		Amount:      decimalToNumeric(expense.Amount),
		ExpenseDate: dateToPgDate(expense.Date),
		Description: expense.Description,
		MovementID:  expense.MovementID,
		RendicionID: int64PtrToPgInt8(expense.ReconciliationID),
		CreatedBy:   expense.CreatedBy,
		CreatedAt:   timeToPgTimestamptz(expense.CreatedAt),
	})
	if err != nil {
		return err
	}

	expense.ID = row.ID
	return nil
}

// ListByCard lists every expense of a card ordered by date then id.
func (r *ExpenseRepository) ListByCard(ctx context.Context, cardID int64) ([]*domain.CardExpense, error) {
	rows, err := r.queries.ListCardExpensesByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return rowsToExpenses(rows), nil
}

// ListUnassigned returns the candidate expenses of a rendicion window.
func (r *ExpenseRepository) ListUnassigned(ctx context.Context, cardID int64, from, to time.Time) ([]*domain.CardExpense, error) {
	rows, err := r.queries.ListUnassignedCardExpenses(ctx, generated.ListUnassignedCardExpensesParams{
		CardID:   cardID,
		DateFrom: dateToPgDate(from),
		DateTo:   dateToPgDate(to),
	})
	if err != nil {
		return nil, err
	}
	return rowsToExpenses(rows), nil
}

// ListUnassignedForUpdate is ListUnassigned with the expense rows locked.
func (r *ExpenseRepository) ListUnassignedForUpdate(ctx context.Context, tx usecase.Transaction, cardID int64, from, to time.Time) ([]*domain.CardExpense, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListUnassignedCardExpensesForUpdate(ctx, generated.ListUnassignedCardExpensesForUpdateParams{
		CardID:   cardID,
		DateFrom: dateToPgDate(from),
		DateTo:   dateToPgDate(to),
	})
	if err != nil {
		return nil, err
	}
	return rowsToExpenses(rows), nil
}

// ListByReconciliation lists the expenses assigned to a rendicion.
func (r *ExpenseRepository) ListByReconciliation(ctx context.Context, reconciliationID int64) ([]*domain.CardExpense, error) {
	rows, err := r.queries.ListCardExpensesByRendicion(ctx, pgtype.Int8{Int64: reconciliationID, Valid: true})
	if err != nil {
		return nil, err
	}
	return rowsToExpenses(rows), nil
}

// ListByReconciliationForUpdate locks the expenses assigned to a rendicion.
func (r *ExpenseRepository) ListByReconciliationForUpdate(ctx context.Context, tx usecase.Transaction, reconciliationID int64) ([]*domain.CardExpense, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListCardExpensesByRendicionForUpdate(ctx, pgtype.Int8{Int64: reconciliationID, Valid: true})
	if err != nil {
		return nil, err
	}
	return rowsToExpenses(rows), nil
}

// SetReconciliation stamps or clears the rendicion of the expenses.
func (r *ExpenseRepository) SetReconciliation(ctx context.Context, tx usecase.Transaction, ids []int64, reconciliationID *int64) error {
	if len(ids) == 0 {
		return nil
	}

	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.SetCardExpensesRendicion(ctx, generated.SetCardExpensesRendicionParams{
		IDs:         ids,
		RendicionID: int64PtrToPgInt8(reconciliationID),
	})
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return domain.ErrNotFound
	}
	return nil
}

func rowsToExpenses(rows []generated.CardExpense) []*domain.CardExpense {
	expenses := make([]*domain.CardExpense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, &domain.CardExpense{
			ID:               row.ID,
			CardID:           row.CardID,
			Amount:           numericToDecimal(row.Amount),
			Date:             pgDateToTime(row.ExpenseDate),
			Description:      row.Description,
			MovementID:       row.MovementID,
			ReconciliationID: pgInt8ToPtr(row.RendicionID),
			CreatedBy:        row.CreatedBy,
			CreatedAt:        row.CreatedAt.Time,
		})
	}
	return expenses
}
