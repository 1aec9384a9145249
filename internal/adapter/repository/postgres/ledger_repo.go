package postgres

import (
	"context"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// AccountTotals returns the non-voided income and expense sums per account.
func (r *LedgerRepository) AccountTotals(ctx context.Context) (map[int64]domain.BalanceTotals, error) {
	rows, err := r.queries.AccountMovementTotals(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[int64]domain.BalanceTotals, len(rows))
	for _, row := range rows {
		totals[row.AccountID] = domain.BalanceTotals{
			Income:  numericToDecimal(row.Income),
			Expense: numericToDecimal(row.Expense),
		}
	}
	return totals, nil
}

// TransferLegs returns every transfer movement ordered by token then id.
func (r *LedgerRepository) TransferLegs(ctx context.Context) ([]*domain.Movement, error) {
	rows, err := r.queries.ListTransferLegs(ctx)
	if err != nil {
		return nil, err
	}
	return rowsToMovements(rows), nil
}
