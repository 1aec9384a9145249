package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a movement.
type MovementType string

const (
	MovementIncome  MovementType = "INCOME"
	MovementExpense MovementType = "EXPENSE"
)

// IsValid reports whether t is a known direction.
func (t MovementType) IsValid() bool {
	return t == MovementIncome || t == MovementExpense
}

// MovementStatus is the lifecycle state of a movement.
type MovementStatus string

const (
	MovementPending   MovementStatus = "PENDING"
	MovementConfirmed MovementStatus = "CONFIRMED"
	MovementVoided    MovementStatus = "VOIDED"
)

// Payment methods recorded on movements created by the system.
const (
	PaymentMethodCash     = "EFECTIVO"
	PaymentMethodTransfer = "TRANSFERENCIA"
	PaymentMethodCard     = "TARJETA"
)

// Categories recorded on movements created by the system.
const (
	CategoryTransfer    = "TRANSFERENCIA"
	CategoryCardTopUp   = "CARGA_TARJETA"
	CategoryCardExpense = "GASTO_TARJETA"
)

// Movement is a single dated monetary entry against one account.
type Movement struct {
	ID               int64
	Type             MovementType
	Amount           decimal.Decimal
	Category         string
	PaymentMethod    string
	Description      string
	Date             time.Time
	Status           MovementStatus
	AccountID        int64
	EmployeeID       *int64
	TransferToken    *string
	ReconciliationID *int64
	CreatedBy        int64
	CreatedAt        time.Time
}

// Contribution is the signed effect of the movement on its account balance.
// Voided movements contribute nothing.
func (m *Movement) Contribution() decimal.Decimal {
	if m.Status == MovementVoided {
		return decimal.Zero
	}
	if m.Type == MovementExpense {
		return m.Amount.Neg()
	}
	return m.Amount
}

// Void moves a confirmed movement to VOIDED.
func (m *Movement) Void() error {
	if m.Status != MovementConfirmed {
		return &TransitionError{Entity: "movement", From: string(m.Status), To: string(MovementVoided)}
	}
	m.Status = MovementVoided
	return nil
}

// Confirm moves a pending movement to CONFIRMED.
func (m *Movement) Confirm() error {
	if m.Status != MovementPending {
		return &TransitionError{Entity: "movement", From: string(m.Status), To: string(MovementConfirmed)}
	}
	m.Status = MovementConfirmed
	return nil
}

// IsTransferLeg reports whether the movement belongs to a transfer.
func (m *Movement) IsTransferLeg() bool {
	return m.TransferToken != nil && *m.TransferToken != ""
}
