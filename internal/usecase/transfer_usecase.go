package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
)

// TransferUseCase coordinates transfers between accounts.
type TransferUseCase struct {
	uow          unitOfWork
	events       eventWriter
	accountRepo  AccountRepository
	movementRepo MovementRepository
	idGen        IDGenerator
	recalculator *BalanceRecalculator
	metrics      *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	recalculator *BalanceRecalculator,
	metrics *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		uow:          newUnitOfWork(txManager, retrier),
		events:       eventWriter{outboxRepo: outboxRepo, idGen: idGen},
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		idGen:        idGen,
		recalculator: recalculator,
		metrics:      metrics,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	SourceAccountID int64
	DestAccountID   int64
	Amount          decimal.Decimal
	Description     string
	Date            time.Time
}

// CreateTransfer moves amount from the source to the destination account as
// an EXPENSE and an INCOME movement sharing a fresh token. Both legs are
// written or neither is.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	// 0. Validate inputs before starting transaction
	if err := domain.ValidateTransferRequest(input.SourceAccountID, input.DestAccountID, input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var transfer *domain.Transfer

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		// 1. Lock accounts in ascending id order (deadlock prevention)
		accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, []int64{input.SourceAccountID, input.DestAccountID})
		if err != nil {
			return err
		}
		if len(accounts) != 2 {
			return domain.ErrAccountMissing
		}

		for _, acc := range accounts {
			if err := acc.ValidateForTransfer(); err != nil {
				return err
			}
		}

		// 2. Write both legs
		now := time.Now().UTC()
		token := uc.idGen.Generate()
		date := movementDate(input.Date, now)

		source := uc.newLeg(domain.MovementExpense, input.SourceAccountID, input, token, date, actorID, now)
		if err := uc.movementRepo.Create(ctx, tx, source); err != nil {
			return err
		}

		dest := uc.newLeg(domain.MovementIncome, input.DestAccountID, input, token, date, actorID, now)
		if err := uc.movementRepo.Create(ctx, tx, dest); err != nil {
			return err
		}

		// 3. Emit transfer created event
		if err := uc.events.write(ctx, tx, domain.AuditActionTransferCreate, domain.AggregateTypeTransfer, token, actorID,
			map[string]any{
				"source_account_id":  input.SourceAccountID,
				"dest_account_id":    input.DestAccountID,
				"source_movement_id": source.ID,
				"dest_movement_id":   dest.ID,
				"amount":             input.Amount.String(),
				"date":               formatDate(date),
			}, now); err != nil {
			return err
		}

		transfer = &domain.Transfer{
			Token:   token,
			Source:  source,
			Dest:    dest,
			Amount:  input.Amount,
			Date:    date,
			Created: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 4. Recompute both balances after commit
	if err := uc.recalculator.AfterCommit(ctx, input.SourceAccountID, input.DestAccountID); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
		uc.metrics.TransferAmount.Observe(input.Amount.InexactFloat64())
	}

	return transfer, nil
}

func (uc *TransferUseCase) newLeg(
	typ domain.MovementType,
	accountID int64,
	input CreateTransferInput,
	token string,
	date time.Time,
	actorID int64,
	now time.Time,
) *domain.Movement {
	return &domain.Movement{
		Type:          typ,
		Amount:        input.Amount,
		Category:      domain.CategoryTransfer,
		PaymentMethod: domain.PaymentMethodTransfer,
		Description:   input.Description,
		Date:          date,
		Status:        domain.MovementConfirmed,
		AccountID:     accountID,
		TransferToken: &token,
		CreatedBy:     actorID,
		CreatedAt:     now,
	}
}

// GetTransfer rebuilds a transfer from the legs sharing token.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, token string) (*domain.Transfer, error) {
	legs, err := uc.movementRepo.GetByTransferToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return domain.TransferFromLegs(token, legs)
}
