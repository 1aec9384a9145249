package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
)

// BalanceRecalculator derives account balances from the movement history.
// It is the only writer of Account.CurrentBalance.
type BalanceRecalculator struct {
	uow          unitOfWork
	accountRepo  AccountRepository
	movementRepo MovementRepository
	cache        AccountCache
	metrics      *metrics.Metrics
}

// NewBalanceRecalculator creates a new BalanceRecalculator. cache and metrics
// may be nil.
func NewBalanceRecalculator(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	cache AccountCache,
	metrics *metrics.Metrics,
) *BalanceRecalculator {
	return &BalanceRecalculator{
		uow:          newUnitOfWork(txManager, retrier),
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		cache:        cache,
		metrics:      metrics,
	}
}

// Recompute sets the current balance of an account to its opening balance
// plus every non-voided income minus every non-voided expense. The account
// row is locked while aggregating so concurrent recomputes serialize.
func (r *BalanceRecalculator) Recompute(ctx context.Context, accountID int64) (*domain.Account, error) {
	var account *domain.Account

	err := r.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		acc, err := r.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
		if err != nil {
			return err
		}

		totals, err := r.movementRepo.SumByAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		balance := totals.Balance(acc.OpeningBalance)
		if err := r.accountRepo.UpdateBalance(ctx, tx, accountID, balance, now); err != nil {
			return err
		}

		acc.CurrentBalance = balance
		acc.UpdatedAt = now
		account = acc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recompute balance of account %d: %w", accountID, err)
	}

	invalidateAccount(ctx, r.cache, accountID)

	if r.metrics != nil {
		r.metrics.BalanceRecomputes.Inc()
	}

	return account, nil
}

// RecomputeAll recomputes each distinct account once, in ascending id order.
func (r *BalanceRecalculator) RecomputeAll(ctx context.Context, accountIDs ...int64) error {
	for _, id := range uniqueSortedIDs(accountIDs) {
		if _, err := r.Recompute(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AfterCommit recomputes the accounts touched by a committed unit of work.
// A failure is reported as a *domain.CommittedError because the write it
// follows cannot be undone.
func (r *BalanceRecalculator) AfterCommit(ctx context.Context, accountIDs ...int64) error {
	if err := r.RecomputeAll(ctx, accountIDs...); err != nil {
		return &domain.CommittedError{Err: err}
	}
	return nil
}

func uniqueSortedIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// invalidateAccount drops a cached account snapshot. Failures are logged and
// the entry expires with its TTL.
func invalidateAccount(ctx context.Context, cache AccountCache, accountID int64) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, accountID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("account_id", accountID).Msg("failed to invalidate account cache")
	}
}
