package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	Type           string `json:"type" validate:"required,oneof=BANCO EFECTIVO TARJETA"`
	OpeningBalance string `json:"opening_balance" validate:"omitempty,number"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	opening := decimal.Zero
	if r.OpeningBalance != "" {
		var err error
		if opening, err = parseAmount("opening_balance", r.OpeningBalance); err != nil {
			return usecase.CreateAccountInput{}, err
		}
	}

	return usecase.CreateAccountInput{
		Name:           r.Name,
		Type:           domain.AccountType(r.Type),
		OpeningBalance: opening,
	}, nil
}

// CreateMovementRequest represents a request to record a movement.
type CreateMovementRequest struct {
	Type          string `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount        string `json:"amount" validate:"required"`
	Category      string `json:"category" validate:"required,max=100"`
	PaymentMethod string `json:"payment_method" validate:"max=50"`
	Description   string `json:"description" validate:"max=1000"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	AccountID     int64  `json:"account_id" validate:"required,gt=0"`
	EmployeeID    *int64 `json:"employee_id,omitempty" validate:"omitempty,gt=0"`
	Pending       bool   `json:"pending"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateMovementRequest) ToUseCaseInput() (usecase.CreateMovementInput, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.CreateMovementInput{}, err
	}
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return usecase.CreateMovementInput{}, err
	}

	return usecase.CreateMovementInput{
		Type:          domain.MovementType(r.Type),
		Amount:        amount,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
		Date:          date,
		AccountID:     r.AccountID,
		EmployeeID:    r.EmployeeID,
		Pending:       r.Pending,
	}, nil
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	SourceAccountID int64  `json:"source_account_id" validate:"required,gt=0"`
	DestAccountID   int64  `json:"dest_account_id" validate:"required,gt=0"`
	Amount          string `json:"amount" validate:"required"`
	Description     string `json:"description" validate:"max=1000"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() (usecase.CreateTransferInput, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.CreateTransferInput{}, err
	}
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return usecase.CreateTransferInput{}, err
	}

	return usecase.CreateTransferInput{
		SourceAccountID: r.SourceAccountID,
		DestAccountID:   r.DestAccountID,
		Amount:          amount,
		Description:     r.Description,
		Date:            date,
	}, nil
}

// CreateCardRequest represents a request to register a card.
type CreateCardRequest struct {
	Type       string `json:"type" validate:"required,oneof=PRECARGABLE CREDITO"`
	Alias      string `json:"alias" validate:"required,max=100"`
	Number     string `json:"number" validate:"omitempty,max=4,numeric"`
	AccountID  int64  `json:"account_id" validate:"required,gt=0"`
	EmployeeID *int64 `json:"employee_id,omitempty" validate:"omitempty,gt=0"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCardRequest) ToUseCaseInput() usecase.CreateCardInput {
	return usecase.CreateCardInput{
		Type:       domain.CardType(r.Type),
		Alias:      r.Alias,
		Number:     r.Number,
		AccountID:  r.AccountID,
		EmployeeID: r.EmployeeID,
	}
}

// CardMovementRequest represents a top-up or an expense on a card.
type CardMovementRequest struct {
	Amount      string `json:"amount" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category,omitempty" validate:"max=100"`
}

// ToUseCaseInput converts to use case input.
func (r *CardMovementRequest) ToUseCaseInput() (usecase.CardMovementInput, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.CardMovementInput{}, err
	}
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return usecase.CardMovementInput{}, err
	}

	return usecase.CardMovementInput{
		Amount:      amount,
		Date:        date,
		Description: r.Description,
		Category:    r.Category,
	}, nil
}

// CreateRendicionRequest represents a request to open a rendicion.
type CreateRendicionRequest struct {
	CardID   int64  `json:"card_id" validate:"required,gt=0"`
	DateFrom string `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo   string `json:"date_to" validate:"required,datetime=2006-01-02"`
	Notes    string `json:"notes" validate:"max=1000"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateRendicionRequest) ToUseCaseInput() (usecase.CreateReconciliationInput, error) {
	from, err := ParseDate("date_from", r.DateFrom)
	if err != nil {
		return usecase.CreateReconciliationInput{}, err
	}
	to, err := ParseDate("date_to", r.DateTo)
	if err != nil {
		return usecase.CreateReconciliationInput{}, err
	}

	return usecase.CreateReconciliationInput{
		CardID:   r.CardID,
		DateFrom: from,
		DateTo:   to,
		Notes:    r.Notes,
	}, nil
}

// RejectRendicionRequest carries the mandatory rejection reason.
type RejectRendicionRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// ParseDate parses a YYYY-MM-DD value into a UTC date.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "expected a date formatted as YYYY-MM-DD")
	}
	return t, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, domain.NewValidationError(field, "invalid decimal amount")
	}
	return amount, nil
}
