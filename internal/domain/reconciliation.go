package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the state of a rendicion.
type ReconciliationStatus string

const (
	ReconciliationOpen     ReconciliationStatus = "ABIERTA"
	ReconciliationClosed   ReconciliationStatus = "CERRADA"
	ReconciliationApproved ReconciliationStatus = "APROBADA"
	ReconciliationRejected ReconciliationStatus = "RECHAZADA"
)

var reconciliationTransitions = map[ReconciliationStatus][]ReconciliationStatus{
	ReconciliationOpen:   {ReconciliationClosed},
	ReconciliationClosed: {ReconciliationApproved, ReconciliationRejected},
}

// CanTransitionTo reports whether s may move to next.
func (s ReconciliationStatus) CanTransitionTo(next ReconciliationStatus) bool {
	for _, allowed := range reconciliationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsPending reports whether the rendicion still blocks new ones for its card.
func (s ReconciliationStatus) IsPending() bool {
	return s == ReconciliationOpen || s == ReconciliationClosed
}

// IsTerminal reports whether no further transitions exist.
func (s ReconciliationStatus) IsTerminal() bool {
	return s == ReconciliationApproved || s == ReconciliationRejected
}

// Reconciliation (rendicion) is a batch of card expenses submitted for
// approval over an inclusive date window.
type Reconciliation struct {
	ID              int64
	Code            string
	CardID          int64
	DateFrom        time.Time
	DateTo          time.Time
	TotalAmount     decimal.Decimal
	ExpenseCount    int
	Status          ReconciliationStatus
	Notes           string
	RejectionReason *string
	CreatedBy       int64
	ApprovedBy      *int64
	ApprovedAt      *time.Time
	ClosedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r *Reconciliation) transition(next ReconciliationStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return &TransitionError{Entity: "rendicion", From: string(r.Status), To: string(next)}
	}
	r.Status = next
	return nil
}

// Close moves an open rendicion to CERRADA.
func (r *Reconciliation) Close(at time.Time) error {
	if err := r.transition(ReconciliationClosed); err != nil {
		return err
	}
	r.ClosedAt = &at
	r.UpdatedAt = at
	return nil
}

// Approve moves a closed rendicion to APROBADA.
func (r *Reconciliation) Approve(approverID int64, at time.Time) error {
	if err := r.transition(ReconciliationApproved); err != nil {
		return err
	}
	r.ApprovedBy = &approverID
	r.ApprovedAt = &at
	r.UpdatedAt = at
	return nil
}

// Reject moves a closed rendicion to RECHAZADA. The reason is mandatory.
func (r *Reconciliation) Reject(reason string, at time.Time) error {
	if !r.Status.CanTransitionTo(ReconciliationRejected) {
		return &TransitionError{Entity: "rendicion", From: string(r.Status), To: string(ReconciliationRejected)}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewValidationError("reason", "rejection reason is required")
	}
	r.Status = ReconciliationRejected
	r.RejectionReason = &reason
	r.UpdatedAt = at
	return nil
}

// ReconciliationCode builds the human readable code of the seq-th rendicion of a card.
func ReconciliationCode(cardID int64, seq int) string {
	return fmt.Sprintf("REN-%d-%04d", cardID, seq)
}

// SummarizeExpenses returns the total amount and count of expenses.
func SummarizeExpenses(expenses []*CardExpense) (decimal.Decimal, int) {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total, len(expenses)
}
