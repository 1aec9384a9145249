package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardType identifies how a prepaid card is funded.
type CardType string

const (
	// CardTypePrepaid cards are funded through top-ups.
	CardTypePrepaid CardType = "PRECARGABLE"
	CardTypeCredit  CardType = "CREDITO"
)

// IsValid reports whether t is a known card type.
func (t CardType) IsValid() bool {
	return t == CardTypePrepaid || t == CardTypeCredit
}

// AcceptsTopUps reports whether cards of this type can be topped up.
func (t CardType) AcceptsTopUps() bool {
	return t == CardTypePrepaid
}

// PrepaidCard mirrors its spending and top-ups as movements on a backing account.
type PrepaidCard struct {
	ID         int64
	Type       CardType
	Alias      string
	Number     string
	AccountID  int64
	EmployeeID *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// IsDeleted reports whether the card was retired.
func (c *PrepaidCard) IsDeleted() bool {
	return c.DeletedAt != nil
}

// CardTopUp records money loaded onto a card.
type CardTopUp struct {
	ID          int64
	CardID      int64
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	MovementID  int64
	CreatedBy   int64
	CreatedAt   time.Time
}

// CardExpense records money spent with a card. ReconciliationID is nil while
// the expense is unassigned.
type CardExpense struct {
	ID               int64
	CardID           int64
	Amount           decimal.Decimal
	Date             time.Time
	Description      string
	MovementID       int64
	ReconciliationID *int64
	CreatedBy        int64
	CreatedAt        time.Time
}

// IsAssigned reports whether the expense belongs to a rendicion.
func (e *CardExpense) IsAssigned() bool {
	return e.ReconciliationID != nil
}
