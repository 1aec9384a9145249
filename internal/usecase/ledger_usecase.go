package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
)

// ErrInconsistentLedger is returned by Verify when the audit finds drift.
var ErrInconsistentLedger = errors.New("ledger is inconsistent")

// LedgerUseCase audits the ledger: cached balances against the movement
// history and transfer legs against each other.
type LedgerUseCase struct {
	accountRepo  AccountRepository
	ledgerRepo   LedgerRepository
	recalculator *BalanceRecalculator
	repair       bool
	metrics      *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. With repair enabled, drifted
// accounts are recomputed by Report.
func NewLedgerUseCase(
	accountRepo AccountRepository,
	ledgerRepo LedgerRepository,
	recalculator *BalanceRecalculator,
	repair bool,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		recalculator: recalculator,
		repair:       repair,
		metrics:      metrics,
	}
}

// BalanceDiscrepancy is an account whose cached balance differs from the one
// derived from its movements.
type BalanceDiscrepancy struct {
	AccountID       int64
	RecordedBalance decimal.Decimal
	ExpectedBalance decimal.Decimal
	Difference      decimal.Decimal
	Repaired        bool
}

// TransferDiscrepancy is a transfer token whose legs are not symmetric.
type TransferDiscrepancy struct {
	Token  string
	Legs   int
	Reason string
}

// AuditReport combines both audit checks.
type AuditReport struct {
	AccountsChecked  int
	TransfersChecked int
	Balances         []BalanceDiscrepancy
	Transfers        []TransferDiscrepancy
	CheckedAt        time.Time
}

// Consistent reports whether the audit found nothing.
func (r *AuditReport) Consistent() bool {
	return len(r.Balances) == 0 && len(r.Transfers) == 0
}

// AuditBalances compares every account's cached balance with its recomputed one.
func (uc *LedgerUseCase) AuditBalances(ctx context.Context) ([]BalanceDiscrepancy, int, error) {
	totals, err := uc.ledgerRepo.AccountTotals(ctx)
	if err != nil {
		return nil, 0, err
	}

	var discrepancies []BalanceDiscrepancy
	checked := 0

	for offset := 0; ; offset += auditPageSize {
		accounts, err := uc.accountRepo.List(ctx, auditPageSize, offset)
		if err != nil {
			return nil, 0, err
		}

		for _, account := range accounts {
			checked++
			t, ok := totals[account.ID]
			if !ok {
				t = domain.BalanceTotals{Income: decimal.Zero, Expense: decimal.Zero}
			}

			expected := t.Balance(account.OpeningBalance)
			if !expected.Equal(account.CurrentBalance) {
				discrepancies = append(discrepancies, BalanceDiscrepancy{
					AccountID:       account.ID,
					RecordedBalance: account.CurrentBalance,
					ExpectedBalance: expected,
					Difference:      account.CurrentBalance.Sub(expected),
				})
			}
		}

		if len(accounts) < auditPageSize {
			break
		}
	}

	return discrepancies, checked, nil
}

// CheckTransferPairs lists transfer tokens that do not have exactly one INCOME
// and one EXPENSE leg with equal amounts and equal void state.
func (uc *LedgerUseCase) CheckTransferPairs(ctx context.Context) ([]TransferDiscrepancy, int, error) {
	legs, err := uc.ledgerRepo.TransferLegs(ctx)
	if err != nil {
		return nil, 0, err
	}

	byToken := make(map[string][]*domain.Movement)
	for _, leg := range legs {
		if !leg.IsTransferLeg() {
			continue
		}
		byToken[*leg.TransferToken] = append(byToken[*leg.TransferToken], leg)
	}

	tokens := make([]string, 0, len(byToken))
	for token := range byToken {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	var discrepancies []TransferDiscrepancy
	for _, token := range tokens {
		if reason := checkTransferLegs(byToken[token]); reason != "" {
			discrepancies = append(discrepancies, TransferDiscrepancy{
				Token:  token,
				Legs:   len(byToken[token]),
				Reason: reason,
			})
		}
	}

	return discrepancies, len(tokens), nil
}

func checkTransferLegs(legs []*domain.Movement) string {
	if len(legs) != 2 {
		return fmt.Sprintf("expected 2 legs, found %d", len(legs))
	}

	a, b := legs[0], legs[1]
	switch {
	case a.Type == b.Type:
		return "legs must be one INCOME and one EXPENSE"
	case !a.Amount.Equal(b.Amount):
		return fmt.Sprintf("leg amounts differ: %s and %s", a.Amount, b.Amount)
	case (a.Status == domain.MovementVoided) != (b.Status == domain.MovementVoided):
		return "only one leg is voided"
	}
	return ""
}

// Report runs both checks. With repair enabled, drifted accounts are
// recomputed and marked as repaired.
func (uc *LedgerUseCase) Report(ctx context.Context) (*AuditReport, error) {
	balances, accounts, err := uc.AuditBalances(ctx)
	if err != nil {
		return nil, err
	}

	transfers, tokens, err := uc.CheckTransferPairs(ctx)
	if err != nil {
		return nil, err
	}

	if uc.repair && uc.recalculator != nil {
		for i := range balances {
			if _, err := uc.recalculator.Recompute(ctx, balances[i].AccountID); err != nil {
				return nil, err
			}
			balances[i].Repaired = true
		}
	}

	if uc.metrics != nil {
		uc.metrics.AuditDiscrepancies.WithLabelValues("balances").Set(float64(len(balances)))
		uc.metrics.AuditDiscrepancies.WithLabelValues("transfers").Set(float64(len(transfers)))
	}

	return &AuditReport{
		AccountsChecked:  accounts,
		TransfersChecked: tokens,
		Balances:         balances,
		Transfers:        transfers,
		CheckedAt:        time.Now().UTC(),
	}, nil
}

// Verify runs the audit and fails with ErrInconsistentLedger on any finding.
func (uc *LedgerUseCase) Verify(ctx context.Context) (*AuditReport, error) {
	report, err := uc.Report(ctx)
	if err != nil {
		return nil, err
	}
	if !report.Consistent() {
		return report, fmt.Errorf("%w: %d balance and %d transfer discrepancies",
			ErrInconsistentLedger, len(report.Balances), len(report.Transfers))
	}
	return report, nil
}
