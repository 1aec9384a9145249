package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	uow          unitOfWork
	events       eventWriter
	accountRepo  AccountRepository
	movementRepo MovementRepository
	recalculator *BalanceRecalculator
	cache        AccountCache
	metrics      *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	recalculator *BalanceRecalculator,
	cache AccountCache,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		uow:          newUnitOfWork(txManager, retrier),
		events:       eventWriter{outboxRepo: outboxRepo, idGen: idGen},
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		recalculator: recalculator,
		cache:        cache,
		metrics:      metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name           string
	Type           domain.AccountType
	OpeningBalance decimal.Decimal
}

// CreateAccount creates a new active account whose current balance starts at
// the opening balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, domain.NewValidationError("type", "type must be one of BANCO, EFECTIVO, TARJETA")
	}
	if !input.OpeningBalance.Equal(input.OpeningBalance.Round(domain.MoneyScale)) {
		return nil, domain.NewValidationError("opening_balance", "opening balance has more than 2 decimal places")
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Name:           input.Name,
		Type:           input.Type,
		OpeningBalance: input.OpeningBalance,
		CurrentBalance: input.OpeningBalance,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}

		return uc.events.write(ctx, tx, domain.AuditActionAccountCreate, domain.AggregateTypeAccount,
			domain.FormatID(account.ID), actorID, map[string]any{
				"name":            account.Name,
				"type":            string(account.Type),
				"opening_balance": account.OpeningBalance.String(),
			}, now)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID, serving it from the cache when possible.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, id)
		switch {
		case err != nil:
			zerolog.Ctx(ctx).Warn().Err(err).Int64("account_id", id).Msg("account cache read failed")
		case cached != nil:
			uc.observeCache("hit")
			return cached, nil
		}
		uc.observeCache("miss")
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, account); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("account_id", id).Msg("account cache write failed")
		}
	}

	return account, nil
}

func (uc *AccountUseCase) observeCache(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// DeactivateAccount marks an account inactive. Inactive accounts keep their
// history and balance but cannot take part in transfers.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id int64) (*domain.Account, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var account *domain.Account
	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		acc, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		account = acc

		if !acc.Active {
			return nil
		}

		now := time.Now().UTC()
		if err := uc.accountRepo.SetActive(ctx, tx, id, false, now); err != nil {
			return err
		}
		acc.Active = false
		acc.UpdatedAt = now

		return uc.events.write(ctx, tx, domain.AuditActionAccountDeactivate, domain.AggregateTypeAccount,
			domain.FormatID(id), actorID, nil, now)
	})
	if err != nil {
		return nil, err
	}

	invalidateAccount(ctx, uc.cache, id)
	return account, nil
}

// ListMovements lists the movements of an account, newest first.
func (uc *AccountUseCase) ListMovements(ctx context.Context, accountID int64, input ListAccountsInput) ([]*domain.Movement, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.movementRepo.ListByAccount(ctx, accountID, limit, offset)
}

// RecomputeBalance forces a balance recalculation of one account.
func (uc *AccountUseCase) RecomputeBalance(ctx context.Context, accountID int64) (*domain.Account, error) {
	return uc.recalculator.Recompute(ctx, accountID)
}
