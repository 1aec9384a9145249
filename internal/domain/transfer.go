package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is the pair of movements that shifts funds between two accounts.
// It is not stored; the two legs share Token.
type Transfer struct {
	Token   string
	Source  *Movement
	Dest    *Movement
	Amount  decimal.Decimal
	Date    time.Time
	Created time.Time
}

// ValidateTransferRequest checks the request-level invariants of a transfer.
func ValidateTransferRequest(sourceID, destID int64, amount decimal.Decimal) error {
	if sourceID == destID {
		return ErrSameAccount
	}
	return ValidateAmount(amount)
}

// TransferFromLegs rebuilds a transfer from its stored movements.
func TransferFromLegs(token string, legs []*Movement) (*Transfer, error) {
	if len(legs) != 2 {
		return nil, ErrTransferNotFound
	}

	t := &Transfer{Token: token}
	for _, leg := range legs {
		switch leg.Type {
		case MovementExpense:
			t.Source = leg
		case MovementIncome:
			t.Dest = leg
		}
	}
	if t.Source == nil || t.Dest == nil {
		return nil, ErrTransferNotFound
	}

	t.Amount = t.Source.Amount
	t.Date = t.Source.Date
	t.Created = t.Source.CreatedAt
	return t, nil
}
