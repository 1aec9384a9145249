package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/usecase"
)

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop(), time.Second)
	err := s.AddJob("every tuesday", funcJob{name: "x", run: func(context.Context) error { return nil }})
	assert.Error(t, err)
}

func TestRunNowBoundsJobWithTimeout(t *testing.T) {
	s := New(zerolog.Nop(), 20*time.Millisecond)

	err := s.RunNow(funcJob{name: "slow", run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduledJobRuns(t *testing.T) {
	s := New(zerolog.Nop(), time.Second)
	ran := make(chan struct{}, 1)

	require.NoError(t, s.AddJob("@every 10ms", funcJob{name: "tick", run: func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}}))
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestStopCancelsRunningJobs(t *testing.T) {
	s := New(zerolog.Nop(), 0)
	started := make(chan struct{})
	stopped := make(chan error, 1)

	require.NoError(t, s.AddJob("@every 10ms", funcJob{name: "blocking", run: func(ctx context.Context) error {
		select {
		case <-started:
		default:
			close(started)
		}
		<-ctx.Done()
		select {
		case stopped <- ctx.Err():
		default:
		}
		return ctx.Err()
	}}))
	s.Start()

	<-started
	s.Stop()
	assert.ErrorIs(t, <-stopped, context.Canceled)
}

type stubReporter struct {
	report *usecase.AuditReport
	err    error
}

func (s stubReporter) Report(context.Context) (*usecase.AuditReport, error) { return s.report, s.err }

func TestLedgerAuditJobLogsDiscrepancies(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	job := NewLedgerAuditJob(stubReporter{report: &usecase.AuditReport{
		AccountsChecked: 3,
		Balances: []usecase.BalanceDiscrepancy{{
			AccountID:       2,
			RecordedBalance: decimal.RequireFromString("10"),
			ExpectedBalance: decimal.RequireFromString("12"),
		}},
		Transfers: []usecase.TransferDiscrepancy{{Token: "01ABC", Legs: 1, Reason: "expected 2 legs, found 1"}},
	}})

	require.NoError(t, job.Run(log.WithContext(context.Background())))
	out := buf.String()
	assert.Contains(t, out, "balance drift detected")
	assert.Contains(t, out, `"transfer_token":"01ABC"`)
	assert.Contains(t, out, `"consistent":false`)
}

func TestLedgerAuditJobPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	err := NewLedgerAuditJob(stubReporter{err: boom}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

type cleanerFunc func(ctx context.Context) error

func (f cleanerFunc) Cleanup(ctx context.Context) error { return f(ctx) }

func TestOutboxCleanupJob(t *testing.T) {
	called := false
	job := NewOutboxCleanupJob(cleanerFunc(func(context.Context) error {
		called = true
		return nil
	}))

	require.NoError(t, job.Run(context.Background()))
	assert.True(t, called)
	assert.Equal(t, "outbox_cleanup", job.Name())
}

func TestFuncJob(t *testing.T) {
	boom := errors.New("boom")
	job := NewFuncJob("limiter_cleanup", func(context.Context) error { return boom })

	assert.Equal(t, "limiter_cleanup", job.Name())
	assert.ErrorIs(t, job.Run(context.Background()), boom)
}
