package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/postgres/generated"
	"github.com/iho/backoffice/internal/usecase"
)

// pendingRendicionConstraint is the partial unique index allowing a single
// ABIERTA or CERRADA rendicion per card.
const pendingRendicionConstraint = "uq_rendiciones_pending_card"

// ReconciliationRepository implements usecase.ReconciliationRepository.
type ReconciliationRepository struct {
	queries *generated.Queries
}

// NewReconciliationRepository creates a new ReconciliationRepository.
func NewReconciliationRepository(db generated.DBTX) *ReconciliationRepository {
	return &ReconciliationRepository{queries: generated.New(db)}
}

// Create inserts a rendicion. A concurrent pending rendicion for the same
// card surfaces as domain.ErrOpenReconciliationExists.
func (r *ReconciliationRepository) Create(ctx context.Context, tx usecase.Transaction, rec *domain.Reconciliation) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row, err := queries.CreateRendicion(ctx, generated.CreateRendicionParams{
		Code:         rec.Code,
		CardID:       rec.CardID,
		DateFrom:     dateToPgDate(rec.DateFrom),
		DateTo:       dateToPgDate(rec.DateTo),
		TotalAmount:  decimalToNumeric(rec.TotalAmount),
		ExpenseCount: int32(rec.ExpenseCount),
		Status:       string(rec.Status),
		Notes:        rec.Notes,
		CreatedBy:    rec.CreatedBy,
		CreatedAt:    timeToPgTimestamptz(rec.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(rec.UpdatedAt),
	})
	if err != nil {
		if isUniqueViolation(err, pendingRendicionConstraint) {
			return domain.ErrOpenReconciliationExists
		}
		return err
	}

	rec.ID = row.ID
	return nil
}

// GetByID retrieves a rendicion by ID.
func (r *ReconciliationRepository) GetByID(ctx context.Context, id int64) (*domain.Reconciliation, error) {
	return getRendicion(ctx, r.queries.GetRendicionByID, id)
}

// GetByIDForUpdate retrieves a rendicion with a FOR UPDATE lock.
func (r *ReconciliationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Reconciliation, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}
	return getRendicion(ctx, queries.GetRendicionByIDForUpdate, id)
}

func getRendicion(ctx context.Context, get func(context.Context, int64) (generated.Rendicion, error), id int64) (*domain.Reconciliation, error) {
	row, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReconciliationNotFound
		}
		return nil, err
	}
	return rowToReconciliation(row), nil
}

// HasPending reports whether the card has an ABIERTA or CERRADA rendicion.
func (r *ReconciliationRepository) HasPending(ctx context.Context, tx usecase.Transaction, cardID int64) (bool, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return false, err
	}
	return queries.HasPendingRendicion(ctx, cardID)
}

// CountByCard counts every rendicion of a card regardless of state.
func (r *ReconciliationRepository) CountByCard(ctx context.Context, tx usecase.Transaction, cardID int64) (int, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return 0, err
	}

	n, err := queries.CountRendicionesByCard(ctx, cardID)
	return int(n), err
}

// Update stores the mutable fields of a rendicion.
func (r *ReconciliationRepository) Update(ctx context.Context, tx usecase.Transaction, rec *domain.Reconciliation) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateRendicion(ctx, generated.UpdateRendicionParams{
		ID:              rec.ID,
		TotalAmount:     decimalToNumeric(rec.TotalAmount),
		ExpenseCount:    int32(rec.ExpenseCount),
		Status:          string(rec.Status),
		Notes:           rec.Notes,
		RejectionReason: stringPtrToPgText(rec.RejectionReason),
		ApprovedBy:      int64PtrToPgInt8(rec.ApprovedBy),
		ApprovedAt:      timePtrToPgTimestamptz(rec.ApprovedAt),
		ClosedAt:        timePtrToPgTimestamptz(rec.ClosedAt),
		UpdatedAt:       timeToPgTimestamptz(rec.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrReconciliationNotFound
	}
	return nil
}

// ListByCard lists the rendiciones of a card, newest first.
func (r *ReconciliationRepository) ListByCard(ctx context.Context, cardID int64) ([]*domain.Reconciliation, error) {
	rows, err := r.queries.ListRendicionesByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Reconciliation, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToReconciliation(row))
	}
	return out, nil
}

func rowToReconciliation(row generated.Rendicion) *domain.Reconciliation {
	return &domain.Reconciliation{
		ID:              row.ID,
		Code:            row.Code,
		CardID:          row.CardID,
		DateFrom:        pgDateToTime(row.DateFrom),
		DateTo:          pgDateToTime(row.DateTo),
		TotalAmount:     numericToDecimal(row.TotalAmount),
		ExpenseCount:    int(row.ExpenseCount),
		Status:          domain.ReconciliationStatus(row.Status),
		Notes:           row.Notes,
		RejectionReason: pgTextToPtr(row.RejectionReason),
		CreatedBy:       row.CreatedBy,
		ApprovedBy:      pgInt8ToPtr(row.ApprovedBy),
		ApprovedAt:      pgTimestamptzToPtr(row.ApprovedAt),
		ClosedAt:        pgTimestamptzToPtr(row.ClosedAt),
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}
}
