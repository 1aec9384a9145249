package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/postgres/generated"
	"github.com/iho/backoffice/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	queries *generated.Queries
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db generated.DBTX) *MovementRepository {
	return &MovementRepository{queries: generated.New(db)}
}

// Create inserts a movement and assigns its ID and creation time.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row, err := queries.CreateMovement(ctx, generated.CreateMovementParams{
		Type:          string(movement.Type),
		Amount:        decimalToNumeric(movement.Amount),
		Category:      movement.Category,
		PaymentMethod: movement.PaymentMethod,
		Description:   movement.Description,
		MovementDate:  dateToPgDate(movement.Date),
		Status:        string(movement.Status),
		AccountID:     movement.AccountID,
		EmployeeID:    int64PtrToPgInt8(movement.EmployeeID),
		TransferToken: stringPtrToPgText(movement.TransferToken),
		RendicionID:   int64PtrToPgInt8(movement.ReconciliationID),
		CreatedBy:     movement.CreatedBy,
		CreatedAt:     timeToPgTimestamptz(movement.CreatedAt),
	})
	if err != nil {
		return err
	}

	movement.ID = row.ID
	return nil
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id int64) (*domain.Movement, error) {
	return getMovement(ctx, r.queries.GetMovementByID, id)
}

// GetByIDForUpdate retrieves a movement by ID with a FOR UPDATE lock.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Movement, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}
	return getMovement(ctx, queries.GetMovementByIDForUpdate, id)
}

func getMovement(ctx context.Context, get func(context.Context, int64) (generated.Movement, error), id int64) (*domain.Movement, error) {
	row, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}
	return rowToMovement(row), nil
}

// GetByTransferToken returns the legs of a transfer ordered by id.
func (r *MovementRepository) GetByTransferToken(ctx context.Context, token string) ([]*domain.Movement, error) {
	rows, err := r.queries.GetMovementsByTransferToken(ctx, pgtype.Text{String: token, Valid: true})
	if err != nil {
		return nil, err
	}
	return rowsToMovements(rows), nil
}

// GetByTransferTokenForUpdate locks the legs of a transfer.
func (r *MovementRepository) GetByTransferTokenForUpdate(ctx context.Context, tx usecase.Transaction, token string) ([]*domain.Movement, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetMovementsByTransferTokenForUpdate(ctx, pgtype.Text{String: token, Valid: true})
	if err != nil {
		return nil, err
	}
	return rowsToMovements(rows), nil
}

// UpdateStatus changes the state of a movement.
func (r *MovementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id int64, status domain.MovementStatus) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateMovementStatus(ctx, generated.UpdateMovementStatusParams{
		ID:     id,
		Status: string(status),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// SetReconciliation stamps or clears the rendicion of the movements.
func (r *MovementRepository) SetReconciliation(ctx context.Context, tx usecase.Transaction, ids []int64, reconciliationID *int64) error {
	if len(ids) == 0 {
		return nil
	}

	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.SetMovementsRendicion(ctx, generated.SetMovementsRendicionParams{
		IDs:         ids,
		RendicionID: int64PtrToPgInt8(reconciliationID),
	})
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return domain.ErrMovementNotFound
	}
	return nil
}

// SumByAccount aggregates the non-voided movements of an account.
func (r *MovementRepository) SumByAccount(ctx context.Context, tx usecase.Transaction, accountID int64) (domain.BalanceTotals, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return domain.BalanceTotals{}, err
	}

	row, err := queries.SumMovementsByAccount(ctx, accountID)
	if err != nil {
		return domain.BalanceTotals{}, err
	}

	return domain.BalanceTotals{
		Income:  numericToDecimal(row.Income),
		Expense: numericToDecimal(row.Expense),
	}, nil
}

// ListByAccount lists the movements of an account, newest first.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Movement, error) {
	rows, err := r.queries.ListMovementsByAccount(ctx, generated.ListMovementsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}
	return rowsToMovements(rows), nil
}

func rowsToMovements(rows []generated.Movement) []*domain.Movement {
	movements := make([]*domain.Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, rowToMovement(row))
	}
	return movements
}

func rowToMovement(row generated.Movement) *domain.Movement {
	return &domain.Movement{
		ID:               row.ID,
		Type:             domain.MovementType(row.Type),
		Amount:           numericToDecimal(row.Amount),
		Category:         row.Category,
		PaymentMethod:    row.PaymentMethod,
		Description:      row.Description,
		Date:             pgDateToTime(row.MovementDate),
		Status:           domain.MovementStatus(row.Status),
		AccountID:        row.AccountID,
		EmployeeID:       pgInt8ToPtr(row.EmployeeID),
		TransferToken:    pgTextToPtr(row.TransferToken),
		ReconciliationID: pgInt8ToPtr(row.RendicionID),
		CreatedBy:        row.CreatedBy,
		CreatedAt:        row.CreatedAt.Time,
	}
}
