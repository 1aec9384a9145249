package usecase

import (
	"context"
	"time"

	"github.com/iho/backoffice/internal/domain"
)

// unitOfWork runs a group of store writes all-or-nothing.
type unitOfWork struct {
	txManager TransactionManager
	retrier   Retrier
}

func newUnitOfWork(txManager TransactionManager, retrier Retrier) unitOfWork {
	return unitOfWork{txManager: txManager, retrier: retrier}
}

// run executes fn in a transaction bounded by DefaultTransactionTimeout. The
// whole attempt is retried when the retrier classifies the failure as
// transient, so fn must not leak state between attempts.
func (u unitOfWork) run(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := u.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if u.retrier == nil {
		return attempt()
	}
	return u.retrier.Retry(ctx, attempt)
}

// eventWriter appends audit events to the outbox inside a unit of work.
type eventWriter struct {
	outboxRepo OutboxRepository
	idGen      IDGenerator
}

func (w eventWriter) write(
	ctx context.Context,
	tx Transaction,
	action domain.AuditAction,
	aggregateType string,
	aggregateID string,
	actorID int64,
	payload map[string]any,
	at time.Time,
) error {
	event := domain.NewAuditEvent(w.idGen.Generate(), action, aggregateType, aggregateID, actorID, payload, at)
	return w.outboxRepo.Create(ctx, tx, event)
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// movementDate normalizes a requested movement date, defaulting to today.
func movementDate(requested, now time.Time) time.Time {
	if requested.IsZero() {
		return domain.DateOnly(now)
	}
	return domain.DateOnly(requested)
}
