package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType identifies what kind of funds an account holds.
type AccountType string

const (
	AccountTypeBank AccountType = "BANCO"
	AccountTypeCash AccountType = "EFECTIVO"
	AccountTypeCard AccountType = "TARJETA"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCash, AccountTypeCard:
		return true
	}
	return false
}

// Account is a financial account: a bank account, a cash box or the backing
// account of a prepaid card.
type Account struct {
	ID             int64
	Name           string
	Type           AccountType
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateForTransfer checks that the account can take part in a transfer.
func (a *Account) ValidateForTransfer() error {
	if !a.Active {
		return ErrAccountInactive
	}
	return nil
}
