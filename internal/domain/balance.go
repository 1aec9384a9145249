package domain

import "github.com/shopspring/decimal"

// BalanceTotals are the non-voided income and expense sums of one account.
type BalanceTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Balance applies the totals to an opening balance.
func (t BalanceTotals) Balance(opening decimal.Decimal) decimal.Decimal {
	return opening.Add(t.Income).Sub(t.Expense)
}

// ComputeBalance derives a balance from an opening balance and the full
// movement history of an account.
func ComputeBalance(opening decimal.Decimal, movements []*Movement) decimal.Decimal {
	balance := opening
	for _, m := range movements {
		balance = balance.Add(m.Contribution())
	}
	return balance
}

// TotalsOf sums the non-voided movements by direction.
func TotalsOf(movements []*Movement) BalanceTotals {
	totals := BalanceTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, m := range movements {
		if m.Status == MovementVoided {
			continue
		}
		switch m.Type {
		case MovementIncome:
			totals.Income = totals.Income.Add(m.Amount)
		case MovementExpense:
			totals.Expense = totals.Expense.Add(m.Amount)
		}
	}
	return totals
}
