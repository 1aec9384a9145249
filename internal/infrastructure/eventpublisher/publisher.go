// Package eventpublisher drains the audit outbox. Events are written in the
// same unit of work as the ledger change they describe and shipped here
// afterwards, at least once and in creation order per entity.
package eventpublisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
	"github.com/iho/backoffice/internal/usecase"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 5 * time.Second
	defaultRetention = 7 * 24 * time.Hour
)

// Publisher delivers one audit event to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int
	Interval   time.Duration
	// Retention is how long delivered events stay queryable in the outbox.
	Retention time.Duration
}

// EventPublisher polls the outbox and hands pending events to a Publisher.
type EventPublisher struct {
	outbox    usecase.OutboxRepository
	sink      Publisher
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewEventPublisher(cfg Config) *EventPublisher {
	ep := &EventPublisher{
		outbox:    cfg.OutboxRepo,
		sink:      cfg.Publisher,
		logger:    cfg.Logger.With().Str("component", "outbox").Logger(),
		metrics:   cfg.Metrics,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		retention: cfg.Retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if ep.batchSize <= 0 {
		ep.batchSize = defaultBatchSize
	}
	if ep.interval <= 0 {
		ep.interval = defaultInterval
	}
	if ep.retention <= 0 {
		ep.retention = defaultRetention
	}
	return ep
}

// Start drains the outbox once, then every interval until ctx is done.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().Int("batch_size", ep.batchSize).Dur("interval", ep.interval).Msg("outbox worker started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	for {
		if _, err := ep.publishBatch(ctx); err != nil && ctx.Err() == nil {
			ep.logger.Error().Err(err).Msg("outbox batch failed")
		}

		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("outbox worker stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// publishBatch ships one batch and returns how many events were delivered.
// When an event fails, later events of the same entity stay pending so the
// entity's audit trail is never delivered out of order.
func (ep *EventPublisher) publishBatch(ctx context.Context) (int, error) {
	events, err := ep.outbox.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return 0, err
	}

	blocked := make(map[string]bool)
	delivered := 0
	for _, event := range events {
		entity := event.AggregateType + "/" + event.AggregateID
		if blocked[entity] {
			continue
		}

		log := ep.logger.With().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Str("entity", entity).
			Logger()

		if err := ep.sink.Publish(ctx, event); err != nil {
			blocked[entity] = true
			ep.countFailure()
			log.Error().Err(err).Msg("audit event not delivered")
			continue
		}

		if err := ep.outbox.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			// Delivered but still pending; it will be delivered again.
			blocked[entity] = true
			log.Error().Err(err).Msg("audit event delivered but not marked")
			continue
		}
		delivered++
		if ep.metrics != nil {
			ep.metrics.OutboxPublished.Inc()
		}
	}

	if len(events) > 0 {
		ep.logger.Debug().Int("pending", len(events)).Int("delivered", delivered).Msg("outbox batch done")
	}
	return delivered, nil
}

func (ep *EventPublisher) countFailure() {
	if ep.metrics != nil {
		ep.metrics.OutboxFailures.Inc()
	}
}

// Cleanup purges delivered events older than the retention window.
func (ep *EventPublisher) Cleanup(ctx context.Context) error {
	deleted, err := ep.outbox.DeletePublished(ctx, ep.now().Add(-ep.retention))
	if err != nil {
		return err
	}
	if deleted > 0 {
		ep.logger.Info().Int64("deleted", deleted).Dur("retention", ep.retention).Msg("delivered audit events purged")
	}
	return nil
}

// LogPublisher writes audit events to the application log. It is the sink
// when no stream is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "audit").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Time("at", event.CreatedAt).
		Fields(event.Payload).
		Msg("audit")
	return nil
}
