package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
)

// ReconciliationUseCase drives the rendicion workflow of prepaid cards.
type ReconciliationUseCase struct {
	uow                unitOfWork
	events             eventWriter
	cardRepo           CardRepository
	movementRepo       MovementRepository
	expenseRepo        ExpenseRepository
	reconciliationRepo ReconciliationRepository
	metrics            *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	retrier Retrier,
	cardRepo CardRepository,
	movementRepo MovementRepository,
	expenseRepo ExpenseRepository,
	reconciliationRepo ReconciliationRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		uow:                newUnitOfWork(txManager, retrier),
		events:             eventWriter{outboxRepo: outboxRepo, idGen: idGen},
		cardRepo:           cardRepo,
		movementRepo:       movementRepo,
		expenseRepo:        expenseRepo,
		reconciliationRepo: reconciliationRepo,
		metrics:            metrics,
	}
}

// CreateReconciliationInput represents input for opening a rendicion.
type CreateReconciliationInput struct {
	CardID   int64
	DateFrom time.Time
	DateTo   time.Time
	Notes    string
}

// CreateReconciliation opens a rendicion for a card and claims every
// unassigned, non-voided expense dated inside the window. A card has at most
// one ABIERTA or CERRADA rendicion.
func (uc *ReconciliationUseCase) CreateReconciliation(ctx context.Context, input CreateReconciliationInput) (*domain.Reconciliation, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateDateRange(input.DateFrom, input.DateTo); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Notes); err != nil {
		return nil, err
	}

	from, to := domain.DateOnly(input.DateFrom), domain.DateOnly(input.DateTo)
	var reconciliation *domain.Reconciliation

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		// 1. Serialize on the card row
		card, err := uc.cardRepo.GetByIDForUpdate(ctx, tx, input.CardID)
		if err != nil {
			return err
		}
		if card.IsDeleted() {
			return domain.ErrCardNotFound
		}

		pending, err := uc.reconciliationRepo.HasPending(ctx, tx, card.ID)
		if err != nil {
			return err
		}
		if pending {
			return domain.ErrOpenReconciliationExists
		}

		// 2. Claim the expenses
		expenses, err := uc.expenseRepo.ListUnassignedForUpdate(ctx, tx, card.ID, from, to)
		if err != nil {
			return err
		}
		total, count := domain.SummarizeExpenses(expenses)

		seq, err := uc.reconciliationRepo.CountByCard(ctx, tx, card.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		r := &domain.Reconciliation{
			Code:         domain.ReconciliationCode(card.ID, seq+1),
			CardID:       card.ID,
			DateFrom:     from,
			DateTo:       to,
			TotalAmount:  total,
			ExpenseCount: count,
			Status:       domain.ReconciliationOpen,
			Notes:        strings.TrimSpace(input.Notes),
			CreatedBy:    actorID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.reconciliationRepo.Create(ctx, tx, r); err != nil {
			return err
		}

		if err := uc.assignExpenses(ctx, tx, expenses, &r.ID); err != nil {
			return err
		}

		if err := uc.events.write(ctx, tx, domain.AuditActionReconciliationCreate, domain.AggregateTypeReconciliation,
			domain.FormatID(r.ID), actorID, map[string]any{
				"code":          r.Code,
				"card_id":       r.CardID,
				"date_from":     formatDate(r.DateFrom),
				"date_to":       formatDate(r.DateTo),
				"total_amount":  r.TotalAmount.String(),
				"expense_count": r.ExpenseCount,
			}, now); err != nil {
			return err
		}

		reconciliation = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.observeTransition(domain.ReconciliationOpen)
	return reconciliation, nil
}

// GetReconciliation retrieves a rendicion by ID.
func (uc *ReconciliationUseCase) GetReconciliation(ctx context.Context, id int64) (*domain.Reconciliation, error) {
	return uc.reconciliationRepo.GetByID(ctx, id)
}

// ListByCard lists the rendiciones of a card, newest first.
func (uc *ReconciliationUseCase) ListByCard(ctx context.Context, cardID int64) ([]*domain.Reconciliation, error) {
	if _, err := uc.cardRepo.GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	return uc.reconciliationRepo.ListByCard(ctx, cardID)
}

// ListExpenses lists the expenses assigned to a rendicion.
func (uc *ReconciliationUseCase) ListExpenses(ctx context.Context, id int64) ([]*domain.CardExpense, error) {
	if _, err := uc.reconciliationRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return uc.expenseRepo.ListByReconciliation(ctx, id)
}

// CloseReconciliation moves an ABIERTA rendicion to CERRADA.
func (uc *ReconciliationUseCase) CloseReconciliation(ctx context.Context, id int64) (*domain.Reconciliation, error) {
	return uc.transition(ctx, id, domain.AuditActionReconciliationClose, func(r *domain.Reconciliation, _ int64, now time.Time) error {
		return r.Close(now)
	})
}

// ApproveReconciliation moves a CERRADA rendicion to APROBADA. The expenses
// stay assigned.
func (uc *ReconciliationUseCase) ApproveReconciliation(ctx context.Context, id int64) (*domain.Reconciliation, error) {
	return uc.transition(ctx, id, domain.AuditActionReconciliationApprove, func(r *domain.Reconciliation, actorID int64, now time.Time) error {
		return r.Approve(actorID, now)
	})
}

// RejectReconciliation moves a CERRADA rendicion to RECHAZADA and releases
// its expenses so they can be claimed again.
func (uc *ReconciliationUseCase) RejectReconciliation(ctx context.Context, id int64, reason string) (*domain.Reconciliation, error) {
	return uc.transition(ctx, id, domain.AuditActionReconciliationReject, func(r *domain.Reconciliation, _ int64, now time.Time) error {
		return r.Reject(reason, now)
	})
}

func (uc *ReconciliationUseCase) transition(
	ctx context.Context,
	id int64,
	action domain.AuditAction,
	apply func(r *domain.Reconciliation, actorID int64, now time.Time) error,
) (*domain.Reconciliation, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var reconciliation *domain.Reconciliation

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		r, err := uc.reconciliationRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := apply(r, actorID, now); err != nil {
			return err
		}

		released := 0
		if r.Status == domain.ReconciliationRejected {
			expenses, err := uc.expenseRepo.ListByReconciliationForUpdate(ctx, tx, r.ID)
			if err != nil {
				return err
			}
			if err := uc.assignExpenses(ctx, tx, expenses, nil); err != nil {
				return err
			}
			released = len(expenses)
		}

		if err := uc.reconciliationRepo.Update(ctx, tx, r); err != nil {
			return err
		}

		payload := map[string]any{"code": r.Code, "card_id": r.CardID, "status": string(r.Status)}
		if r.RejectionReason != nil {
			payload["reason"] = *r.RejectionReason
			payload["released_expenses"] = released
		}
		if err := uc.events.write(ctx, tx, action, domain.AggregateTypeReconciliation,
			domain.FormatID(r.ID), actorID, payload, now); err != nil {
			return err
		}

		reconciliation = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.observeTransition(reconciliation.Status)
	return reconciliation, nil
}

// assignExpenses stamps (or clears, when reconciliationID is nil) the batch id
// on the expenses and on their movements.
func (uc *ReconciliationUseCase) assignExpenses(ctx context.Context, tx Transaction, expenses []*domain.CardExpense, reconciliationID *int64) error {
	if len(expenses) == 0 {
		return nil
	}

	expenseIDs := make([]int64, 0, len(expenses))
	movementIDs := make([]int64, 0, len(expenses))
	for _, e := range expenses {
		expenseIDs = append(expenseIDs, e.ID)
		movementIDs = append(movementIDs, e.MovementID)
		e.ReconciliationID = reconciliationID
	}

	if err := uc.expenseRepo.SetReconciliation(ctx, tx, expenseIDs, reconciliationID); err != nil {
		return err
	}
	return uc.movementRepo.SetReconciliation(ctx, tx, movementIDs, reconciliationID)
}

func (uc *ReconciliationUseCase) observeTransition(status domain.ReconciliationStatus) {
	if uc.metrics != nil {
		uc.metrics.ReconciliationTransitions.WithLabelValues(string(status)).Inc()
	}
}
