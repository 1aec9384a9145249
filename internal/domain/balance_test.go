package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeBalance(t *testing.T) {
	opening := decimal.NewFromInt(1000)
	movements := []*Movement{
		{Type: MovementExpense, Amount: decimal.NewFromInt(300), Status: MovementConfirmed},
		{Type: MovementExpense, Amount: decimal.NewFromInt(200), Status: MovementConfirmed},
		{Type: MovementIncome, Amount: decimal.RequireFromString("50.25"), Status: MovementPending},
		{Type: MovementIncome, Amount: decimal.NewFromInt(999), Status: MovementVoided},
	}

	got := ComputeBalance(opening, movements)
	want := decimal.RequireFromString("550.25")
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	totals := TotalsOf(movements)
	if !totals.Balance(opening).Equal(got) {
		t.Fatalf("totals balance %s differs from computed %s", totals.Balance(opening), got)
	}
	if !totals.Income.Equal(decimal.RequireFromString("50.25")) || !totals.Expense.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestComputeBalance_VoidNegatesContribution(t *testing.T) {
	opening := decimal.NewFromInt(1000)
	expense := &Movement{Type: MovementExpense, Amount: decimal.NewFromInt(300), Status: MovementConfirmed}

	before := ComputeBalance(opening, []*Movement{expense})
	contribution := expense.Contribution()
	if err := expense.Void(); err != nil {
		t.Fatalf("void failed: %v", err)
	}
	after := ComputeBalance(opening, []*Movement{expense})

	if !after.Sub(before).Equal(contribution.Neg()) {
		t.Fatalf("void changed balance by %s, expected %s", after.Sub(before), contribution.Neg())
	}
}
