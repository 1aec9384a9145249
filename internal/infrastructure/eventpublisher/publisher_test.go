package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
	"github.com/iho/backoffice/internal/usecase"
)

func event(id, entityType, entityID string) *domain.OutboxEvent {
	return &domain.OutboxEvent{ID: id, AggregateType: entityType, AggregateID: entityID, EventType: "movement.created"}
}

func TestPublishBatchDeliversAndMarks(t *testing.T) {
	repo := &fakeOutbox{pending: []*domain.OutboxEvent{event("evt-1", domain.AggregateTypeAccount, "1")}}
	sink := &fakeSink{}
	frozen := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	ep := newTestPublisher(repo, sink)
	ep.now = func() time.Time { return frozen }

	n, err := ep.publishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"evt-1"}, sink.ids())
	assert.Equal(t, map[string]time.Time{"evt-1": frozen}, repo.marked)
}

func TestPublishBatchHoldsBackLaterEventsOfAFailedEntity(t *testing.T) {
	repo := &fakeOutbox{pending: []*domain.OutboxEvent{
		event("evt-1", domain.AggregateTypeReconciliation, "5"),
		event("evt-2", domain.AggregateTypeAccount, "1"),
		event("evt-3", domain.AggregateTypeReconciliation, "5"),
	}}
	sink := &fakeSink{fail: map[string]error{"evt-1": errors.New("stream unavailable")}}
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	ep := newTestPublisher(repo, sink)
	ep.metrics = m

	n, err := ep.publishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"evt-2"}, sink.ids())
	assert.Contains(t, repo.marked, "evt-2")
	assert.NotContains(t, repo.marked, "evt-3")
	assert.InDelta(t, 1, testutil.ToFloat64(m.OutboxFailures), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.OutboxPublished), 0)
}

func TestPublishBatchSurfacesOutboxReadError(t *testing.T) {
	repo := &fakeOutbox{readErr: errors.New("connection reset")}
	_, err := newTestPublisher(repo, &fakeSink{}).publishBatch(context.Background())
	assert.EqualError(t, err, "connection reset")
}

func TestStartReturnsOnCancel(t *testing.T) {
	ep := newTestPublisher(&fakeOutbox{}, &fakeSink{})
	ep.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ep.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker still running after cancel")
	}
}

func TestCleanupPurgesBeforeRetention(t *testing.T) {
	repo := &fakeOutbox{}
	frozen := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	ep := newTestPublisher(repo, &fakeSink{})
	ep.retention = time.Hour
	ep.now = func() time.Time { return frozen }

	require.NoError(t, ep.Cleanup(context.Background()))
	assert.Equal(t, frozen.Add(-time.Hour), repo.purgedBefore)
}

func TestNewEventPublisherDefaults(t *testing.T) {
	ep := NewEventPublisher(Config{OutboxRepo: &fakeOutbox{}, Publisher: &fakeSink{}, Logger: zerolog.Nop()})
	assert.Equal(t, defaultBatchSize, ep.batchSize)
	assert.Equal(t, defaultInterval, ep.interval)
	assert.Equal(t, defaultRetention, ep.retention)
}

func TestLogPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))
	ev := domain.NewAuditEvent("evt-4", domain.AuditActionTransferCreate, domain.AggregateTypeTransfer, "01HTOKEN", 7,
		map[string]any{"amount": "200"}, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	require.NoError(t, pub.Publish(context.Background(), ev))
	assert.Contains(t, buf.String(), `"entity_id":"01HTOKEN"`)
	assert.Contains(t, buf.String(), `"amount":"200"`)
}

func TestStreamPublisherAppendsEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pub := NewStreamPublisher(client, "backoffice:audit", 0)
	ev := domain.NewAuditEvent("evt-9", domain.AuditActionTransferCreate, domain.AggregateTypeTransfer, "01HTOKEN", 7,
		map[string]any{"amount": "200"}, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, pub.Publish(context.Background(), ev))

	entries, err := client.XRange(context.Background(), "backoffice:audit", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "transfer.created", entries[0].Values["event_type"])
	assert.Equal(t, "01HTOKEN", entries[0].Values["aggregate_id"])
}

func newTestPublisher(repo *fakeOutbox, sink *fakeSink) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  sink,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type fakeOutbox struct {
	pending      []*domain.OutboxEvent
	readErr      error
	marked       map[string]time.Time
	purgedBefore time.Time
}

func (f *fakeOutbox) Create(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
	return nil
}

func (f *fakeOutbox) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []*domain.OutboxEvent
	for _, e := range f.pending {
		if _, done := f.marked[e.ID]; !done && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, id string, at time.Time) error {
	if f.marked == nil {
		f.marked = make(map[string]time.Time)
	}
	f.marked[id] = at
	return nil
}

func (f *fakeOutbox) GetByAggregate(context.Context, string, string, int, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) DeletePublished(_ context.Context, before time.Time) (int64, error) {
	f.purgedBefore = before
	return 0, nil
}

type fakeSink struct {
	delivered []*domain.OutboxEvent
	fail      map[string]error
}

func (f *fakeSink) Publish(_ context.Context, e *domain.OutboxEvent) error {
	if err := f.fail[e.ID]; err != nil {
		return err
	}
	f.delivered = append(f.delivered, e)
	return nil
}

func (f *fakeSink) ids() []string {
	ids := make([]string, len(f.delivered))
	for i, e := range f.delivered {
		ids[i] = e.ID
	}
	return ids
}
