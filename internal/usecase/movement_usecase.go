package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
)

// MovementUseCase handles the movement ledger.
type MovementUseCase struct {
	uow          unitOfWork
	events       eventWriter
	accountRepo  AccountRepository
	movementRepo MovementRepository
	recalculator *BalanceRecalculator
	metrics      *metrics.Metrics
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	recalculator *BalanceRecalculator,
	metrics *metrics.Metrics,
) *MovementUseCase {
	return &MovementUseCase{
		uow:          newUnitOfWork(txManager, retrier),
		events:       eventWriter{outboxRepo: outboxRepo, idGen: idGen},
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		recalculator: recalculator,
		metrics:      metrics,
	}
}

// CreateMovementInput represents input for recording a movement.
type CreateMovementInput struct {
	Type          domain.MovementType
	Amount        decimal.Decimal
	Category      string
	PaymentMethod string
	Description   string
	Date          time.Time
	AccountID     int64
	EmployeeID    *int64
	// Pending records the movement as PENDING instead of CONFIRMED.
	Pending bool
}

func (in CreateMovementInput) validate() error {
	if !in.Type.IsValid() {
		return domain.NewValidationError("type", "type must be INCOME or EXPENSE")
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return domain.NewValidationError("category", "category is required")
	}
	return domain.ValidateDescription(in.Description)
}

// CreateMovement records a movement against an existing account and
// recomputes the account balance.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, input CreateMovementInput) (*domain.Movement, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := domain.MovementConfirmed
	if input.Pending {
		status = domain.MovementPending
	}

	movement := &domain.Movement{
		Type:          input.Type,
		Amount:        input.Amount,
		Category:      input.Category,
		PaymentMethod: input.PaymentMethod,
		Description:   input.Description,
		Date:          movementDate(input.Date, now),
		Status:        status,
		AccountID:     input.AccountID,
		EmployeeID:    input.EmployeeID,
		CreatedBy:     actorID,
		CreatedAt:     now,
	}

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		if _, err := uc.accountRepo.GetByIDTx(ctx, tx, input.AccountID); err != nil {
			return err
		}

		if err := uc.movementRepo.Create(ctx, tx, movement); err != nil {
			return err
		}

		return uc.events.write(ctx, tx, domain.AuditActionMovementCreate, domain.AggregateTypeMovement,
			domain.FormatID(movement.ID), actorID, movementPayload(movement), now)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.recalculator.AfterCommit(ctx, movement.AccountID); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementsCreated.WithLabelValues(string(movement.Type)).Inc()
	}

	return movement, nil
}

// GetMovement retrieves a movement by ID.
func (uc *MovementUseCase) GetMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	return uc.movementRepo.GetByID(ctx, id)
}

// VoidMovement moves a CONFIRMED movement to VOIDED. Voiding either leg of a
// transfer voids both legs in the same unit of work.
func (uc *MovementUseCase) VoidMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		voided   *domain.Movement
		affected []int64
	)

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		target, err := uc.movementRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		legs := []*domain.Movement{target}
		if target.IsTransferLeg() {
			legs, err = uc.movementRepo.GetByTransferTokenForUpdate(ctx, tx, *target.TransferToken)
			if err != nil {
				return err
			}
		}

		// The requested movement decides the reported transition.
		if err := target.Void(); err != nil {
			return err
		}

		now := time.Now().UTC()
		affected = affected[:0]
		for _, leg := range legs {
			if leg.ID != target.ID {
				if err := leg.Void(); err != nil {
					return err
				}
			}

			if err := uc.movementRepo.UpdateStatus(ctx, tx, leg.ID, domain.MovementVoided); err != nil {
				return err
			}

			payload := map[string]any{"account_id": leg.AccountID, "amount": leg.Amount.String()}
			if leg.IsTransferLeg() {
				payload["transfer_token"] = *leg.TransferToken
			}
			if err := uc.events.write(ctx, tx, domain.AuditActionMovementVoid, domain.AggregateTypeMovement,
				domain.FormatID(leg.ID), actorID, payload, now); err != nil {
				return err
			}

			affected = append(affected, leg.AccountID)
		}

		voided = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := uc.recalculator.AfterCommit(ctx, affected...); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementsVoided.Add(float64(len(affected)))
	}

	return voided, nil
}

// ConfirmMovement moves a PENDING movement to CONFIRMED.
func (uc *MovementUseCase) ConfirmMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var movement *domain.Movement
	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		m, err := uc.movementRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := m.Confirm(); err != nil {
			return err
		}
		if err := uc.movementRepo.UpdateStatus(ctx, tx, m.ID, m.Status); err != nil {
			return err
		}

		movement = m
		return uc.events.write(ctx, tx, domain.AuditActionMovementConfirm, domain.AggregateTypeMovement,
			domain.FormatID(m.ID), actorID, map[string]any{"account_id": m.AccountID}, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	if err := uc.recalculator.AfterCommit(ctx, movement.AccountID); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementsConfirmed.Inc()
	}

	return movement, nil
}

func movementPayload(m *domain.Movement) map[string]any {
	payload := map[string]any{
		"account_id": m.AccountID,
		"type":       string(m.Type),
		"amount":     m.Amount.String(),
		"category":   m.Category,
		"date":       formatDate(m.Date),
		"status":     string(m.Status),
	}
	if m.TransferToken != nil {
		payload["transfer_token"] = *m.TransferToken
	}
	return payload
}
