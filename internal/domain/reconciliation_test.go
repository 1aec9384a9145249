package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestReconciliationStatus_CanTransitionTo(t *testing.T) {
	all := []ReconciliationStatus{ReconciliationOpen, ReconciliationClosed, ReconciliationApproved, ReconciliationRejected}
	allowed := map[[2]ReconciliationStatus]bool{
		{ReconciliationOpen, ReconciliationClosed}:     true,
		{ReconciliationClosed, ReconciliationApproved}: true,
		{ReconciliationClosed, ReconciliationRejected}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]ReconciliationStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestReconciliation_Lifecycle(t *testing.T) {
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("approve requires closed", func(t *testing.T) {
		r := &Reconciliation{Status: ReconciliationOpen}
		err := r.Approve(7, now)

		var transitionErr *TransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("expected TransitionError, got %v", err)
		}
		if transitionErr.From != "ABIERTA" || transitionErr.To != "APROBADA" {
			t.Fatalf("unexpected detail %+v", transitionErr)
		}
	})

	t.Run("close then approve", func(t *testing.T) {
		r := &Reconciliation{Status: ReconciliationOpen}
		if err := r.Close(now); err != nil {
			t.Fatalf("close: %v", err)
		}
		if err := r.Approve(7, now); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if r.Status != ReconciliationApproved || *r.ApprovedBy != 7 || !r.ApprovedAt.Equal(now) {
			t.Fatalf("unexpected state %+v", r)
		}
		if err := r.Close(now); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("terminal state must reject transitions, got %v", err)
		}
	})

	t.Run("reject requires reason", func(t *testing.T) {
		r := &Reconciliation{Status: ReconciliationClosed}
		if err := r.Reject("   ", now); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if r.Status != ReconciliationClosed {
			t.Fatalf("status changed on failed reject: %s", r.Status)
		}
		if err := r.Reject("duplicated", now); err != nil {
			t.Fatalf("reject: %v", err)
		}
		if *r.RejectionReason != "duplicated" {
			t.Fatalf("unexpected reason %q", *r.RejectionReason)
		}
	})

	t.Run("reject from open is a transition error", func(t *testing.T) {
		r := &Reconciliation{Status: ReconciliationOpen}
		if err := r.Reject("", now); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestSummarizeExpenses(t *testing.T) {
	expenses := []*CardExpense{
		{Amount: decimal.NewFromInt(100)},
		{Amount: decimal.RequireFromString("100.50")},
		{Amount: decimal.NewFromInt(99)},
	}
	total, count := SummarizeExpenses(expenses)
	if count != 3 || !total.Equal(decimal.RequireFromString("299.50")) {
		t.Fatalf("unexpected summary total=%s count=%d", total, count)
	}
	if ReconciliationCode(12, 3) != "REN-12-0003" {
		t.Fatalf("unexpected code %s", ReconciliationCode(12, 3))
	}
}
