package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
)

// CardUseCase handles prepaid cards, their top-ups and their expenses.
type CardUseCase struct {
	uow          unitOfWork
	events       eventWriter
	accountRepo  AccountRepository
	movementRepo MovementRepository
	cardRepo     CardRepository
	topUpRepo    TopUpRepository
	expenseRepo  ExpenseRepository
	recalculator *BalanceRecalculator
	metrics      *metrics.Metrics
}

// CardRepositories groups the stores used by CardUseCase.
type CardRepositories struct {
	Accounts  AccountRepository
	Movements MovementRepository
	Cards     CardRepository
	TopUps    TopUpRepository
	Expenses  ExpenseRepository
	Outbox    OutboxRepository
}

// NewCardUseCase creates a new CardUseCase.
func NewCardUseCase(
	txManager TransactionManager,
	retrier Retrier,
	repos CardRepositories,
	idGen IDGenerator,
	recalculator *BalanceRecalculator,
	metrics *metrics.Metrics,
) *CardUseCase {
	return &CardUseCase{
		uow:          newUnitOfWork(txManager, retrier),
		events:       eventWriter{outboxRepo: repos.Outbox, idGen: idGen},
		accountRepo:  repos.Accounts,
		movementRepo: repos.Movements,
		cardRepo:     repos.Cards,
		topUpRepo:    repos.TopUps,
		expenseRepo:  repos.Expenses,
		recalculator: recalculator,
		metrics:      metrics,
	}
}

// CreateCardInput represents input for registering a card.
type CreateCardInput struct {
	Type       domain.CardType
	Alias      string
	Number     string
	AccountID  int64
	EmployeeID *int64
}

// CreateCard registers a card backed by an existing account.
func (uc *CardUseCase) CreateCard(ctx context.Context, input CreateCardInput) (*domain.PrepaidCard, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !input.Type.IsValid() {
		return nil, domain.NewValidationError("type", "type must be PRECARGABLE or CREDITO")
	}
	if strings.TrimSpace(input.Alias) == "" {
		return nil, domain.NewValidationError("alias", "alias is required")
	}

	now := time.Now().UTC()
	card := &domain.PrepaidCard{
		Type:       input.Type,
		Alias:      strings.TrimSpace(input.Alias),
		Number:     input.Number,
		AccountID:  input.AccountID,
		EmployeeID: input.EmployeeID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		if _, err := uc.accountRepo.GetByIDTx(ctx, tx, input.AccountID); err != nil {
			return err
		}
		if err := uc.cardRepo.Create(ctx, tx, card); err != nil {
			return err
		}

		return uc.events.write(ctx, tx, domain.AuditActionCardCreate, domain.AggregateTypeCard,
			domain.FormatID(card.ID), actorID, map[string]any{
				"type":       string(card.Type),
				"alias":      card.Alias,
				"account_id": card.AccountID,
			}, now)
	})
	if err != nil {
		return nil, err
	}

	return card, nil
}

// GetCard retrieves a card. Deleted cards are reported as not found.
func (uc *CardUseCase) GetCard(ctx context.Context, id int64) (*domain.PrepaidCard, error) {
	card, err := uc.cardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if card.IsDeleted() {
		return nil, domain.ErrCardNotFound
	}
	return card, nil
}

// ListCards lists cards that were not deleted.
func (uc *CardUseCase) ListCards(ctx context.Context, limit, offset int) ([]*domain.PrepaidCard, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.cardRepo.List(ctx, limit, offset)
}

// DeleteCard retires a card. Its history stays in place.
func (uc *CardUseCase) DeleteCard(ctx context.Context, id int64) error {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	return uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		card, err := uc.lockActiveCard(ctx, tx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := uc.cardRepo.SoftDelete(ctx, tx, card.ID, now); err != nil {
			return err
		}

		return uc.events.write(ctx, tx, domain.AuditActionCardDelete, domain.AggregateTypeCard,
			domain.FormatID(card.ID), actorID, nil, now)
	})
}

// CardMovementInput represents input for a top-up or an expense.
type CardMovementInput struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	// Category applies to expenses only and defaults to GASTO_TARJETA.
	Category string
}

func (in CardMovementInput) validate() error {
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	return domain.ValidateDescription(in.Description)
}

// CreateTopUp loads money onto a PRECARGABLE card: an INCOME movement on the
// backing account plus the top-up record.
func (uc *CardUseCase) CreateTopUp(ctx context.Context, cardID int64, input CardMovementInput) (*domain.CardTopUp, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var topUp *domain.CardTopUp
	var accountID int64

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		card, err := uc.lockActiveCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if !card.Type.AcceptsTopUps() {
			return domain.ErrCardNotTopUpCapable
		}

		now := time.Now().UTC()
		movement := &domain.Movement{
			Type:          domain.MovementIncome,
			Amount:        input.Amount,
			Category:      domain.CategoryCardTopUp,
			PaymentMethod: domain.PaymentMethodTransfer,
			Description:   input.Description,
			Date:          movementDate(input.Date, now),
			Status:        domain.MovementConfirmed,
			AccountID:     card.AccountID,
			EmployeeID:    card.EmployeeID,
			CreatedBy:     actorID,
			CreatedAt:     now,
		}
		if err := uc.movementRepo.Create(ctx, tx, movement); err != nil {
			return err
		}

		t := &domain.CardTopUp{
			CardID:      card.ID,
			Amount:      input.Amount,
			Date:        movement.Date,
			Description: input.Description,
			MovementID:  movement.ID,
			CreatedBy:   actorID,
			CreatedAt:   now,
		}
		if err := uc.topUpRepo.Create(ctx, tx, t); err != nil {
			return err
		}

		if err := uc.events.write(ctx, tx, domain.AuditActionCardTopUp, domain.AggregateTypeCard,
			domain.FormatID(card.ID), actorID, map[string]any{
				"topup_id":    t.ID,
				"movement_id": movement.ID,
				"account_id":  card.AccountID,
				"amount":      t.Amount.String(),
				"date":        formatDate(t.Date),
			}, now); err != nil {
			return err
		}

		topUp = t
		accountID = card.AccountID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := uc.recalculator.AfterCommit(ctx, accountID); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CardTopUps.Inc()
	}

	return topUp, nil
}

// CreateExpense records money spent with a card: an EXPENSE movement on the
// backing account plus an unassigned expense record.
func (uc *CardUseCase) CreateExpense(ctx context.Context, cardID int64, input CardMovementInput) (*domain.CardExpense, error) {
	actorID, err := domain.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.CategoryCardExpense
	}

	var expense *domain.CardExpense
	var accountID int64

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		card, err := uc.lockActiveCard(ctx, tx, cardID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		movement := &domain.Movement{
			Type:          domain.MovementExpense,
			Amount:        input.Amount,
			Category:      category,
			PaymentMethod: domain.PaymentMethodCard,
			Description:   input.Description,
			Date:          movementDate(input.Date, now),
			Status:        domain.MovementConfirmed,
			AccountID:     card.AccountID,
			EmployeeID:    card.EmployeeID,
			CreatedBy:     actorID,
			CreatedAt:     now,
		}
		if err := uc.movementRepo.Create(ctx, tx, movement); err != nil {
			return err
		}

		e := &domain.CardExpense{
			CardID:      card.ID,
			Amount:      input.Amount,
			Date:        movement.Date,
			Description: input.Description,
			MovementID:  movement.ID,
			CreatedBy:   actorID,
			CreatedAt:   now,
		}
		if err := uc.expenseRepo.Create(ctx, tx, e); err != nil {
			return err
		}

		if err := uc.events.write(ctx, tx, domain.AuditActionCardExpense, domain.AggregateTypeCard,
			domain.FormatID(card.ID), actorID, map[string]any{
				"expense_id":  e.ID,
				"movement_id": movement.ID,
				"account_id":  card.AccountID,
				"amount":      e.Amount.String(),
				"category":    category,
				"date":        formatDate(e.Date),
			}, now); err != nil {
			return err
		}

		expense = e
		accountID = card.AccountID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := uc.recalculator.AfterCommit(ctx, accountID); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CardExpenses.Inc()
	}

	return expense, nil
}

// ListTopUps lists the top-ups of a card.
func (uc *CardUseCase) ListTopUps(ctx context.Context, cardID int64) ([]*domain.CardTopUp, error) {
	if _, err := uc.cardRepo.GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	return uc.topUpRepo.ListByCard(ctx, cardID)
}

// ListExpenses lists every expense of a card.
func (uc *CardUseCase) ListExpenses(ctx context.Context, cardID int64) ([]*domain.CardExpense, error) {
	if _, err := uc.cardRepo.GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	return uc.expenseRepo.ListByCard(ctx, cardID)
}

// ListUnassignedExpenses lists the card expenses that belong to no rendicion,
// whose movement is not voided and whose date is inside [from, to], ordered
// by date then id.
func (uc *CardUseCase) ListUnassignedExpenses(ctx context.Context, cardID int64, from, to time.Time) ([]*domain.CardExpense, error) {
	if err := domain.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	if _, err := uc.cardRepo.GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	return uc.expenseRepo.ListUnassigned(ctx, cardID, domain.DateOnly(from), domain.DateOnly(to))
}

func (uc *CardUseCase) lockActiveCard(ctx context.Context, tx Transaction, id int64) (*domain.PrepaidCard, error) {
	card, err := uc.cardRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if card.IsDeleted() {
		return nil, domain.ErrCardNotFound
	}
	return card, nil
}
