package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/backoffice/internal/usecase"
)

// LedgerReporter produces a ledger audit report.
type LedgerReporter interface {
	Report(ctx context.Context) (*usecase.AuditReport, error)
}

// LedgerAuditJob recomputes expected balances and checks transfer pairs.
type LedgerAuditJob struct {
	ledger LedgerReporter
}

// NewLedgerAuditJob creates a LedgerAuditJob.
func NewLedgerAuditJob(ledger LedgerReporter) *LedgerAuditJob {
	return &LedgerAuditJob{ledger: ledger}
}

func (j *LedgerAuditJob) Name() string { return "ledger_audit" }

// Run logs every discrepancy found. Discrepancies are not job failures.
func (j *LedgerAuditJob) Run(ctx context.Context) error {
	report, err := j.ledger.Report(ctx)
	if err != nil {
		return err
	}

	log := zerolog.Ctx(ctx)
	for _, d := range report.Balances {
		log.Warn().
			Int64("account_id", d.AccountID).
			Str("recorded", d.RecordedBalance.String()).
			Str("expected", d.ExpectedBalance.String()).
			Bool("repaired", d.Repaired).
			Msg("balance drift detected")
	}
	for _, d := range report.Transfers {
		log.Warn().
			Str("transfer_token", d.Token).
			Int("legs", d.Legs).
			Str("reason", d.Reason).
			Msg("asymmetric transfer detected")
	}

	log.Info().
		Int("accounts_checked", report.AccountsChecked).
		Int("transfers_checked", report.TransfersChecked).
		Bool("consistent", report.Consistent()).
		Msg("ledger audit finished")

	return nil
}

// OutboxCleaner deletes published outbox events past their retention.
type OutboxCleaner interface {
	Cleanup(ctx context.Context) error
}

// OutboxCleanupJob runs the outbox retention sweep.
type OutboxCleanupJob struct {
	cleaner OutboxCleaner
}

// NewOutboxCleanupJob creates an OutboxCleanupJob.
func NewOutboxCleanupJob(cleaner OutboxCleaner) *OutboxCleanupJob {
	return &OutboxCleanupJob{cleaner: cleaner}
}

func (j *OutboxCleanupJob) Name() string { return "outbox_cleanup" }

func (j *OutboxCleanupJob) Run(ctx context.Context) error {
	return j.cleaner.Cleanup(ctx)
}

// FuncJob adapts a plain function to a Job.
type FuncJob struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFuncJob creates a FuncJob.
func NewFuncJob(name string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{name: name, fn: fn}
}

func (j *FuncJob) Name() string { return j.name }

func (j *FuncJob) Run(ctx context.Context) error { return j.fn(ctx) }
