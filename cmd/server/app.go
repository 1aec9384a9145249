package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/backoffice/internal/adapter/http"
	"github.com/iho/backoffice/internal/adapter/http/handler"
	"github.com/iho/backoffice/internal/adapter/http/middleware"
	"github.com/iho/backoffice/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/backoffice/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/backoffice/internal/adapter/repository/redis"
	"github.com/iho/backoffice/internal/di"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/auth"
	"github.com/iho/backoffice/internal/infrastructure/config"
	"github.com/iho/backoffice/internal/infrastructure/eventpublisher"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
	"github.com/iho/backoffice/internal/infrastructure/postgres"
	"github.com/iho/backoffice/internal/infrastructure/redis"
	"github.com/iho/backoffice/internal/infrastructure/scheduler"
	"github.com/iho/backoffice/internal/usecase"
)

const (
	streamMaxLen     = 100_000
	limiterMaxIdle   = 10 * time.Minute
	limiterSchedule  = "@every 1m"
	schedulerTimeout = 10 * time.Minute
)

// app is the fully wired server process.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	handler   http.Handler
	services  *di.Services
	publisher *eventpublisher.EventPublisher
	scheduler *scheduler.Scheduler
	closers   []func()
}

// buildApp connects the configured backends and wires every component. On
// error everything opened so far is closed.
func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, registry *prometheus.Registry) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	m := metrics.NewWithRegisterer(registry)
	checks := map[string]handler.HealthCheck{}

	var repos *di.Repositories
	var retrier usecase.Retrier
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		repos = di.MemoryRepositories(memory.NewStore())
	default:
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info().Msg("connected to postgres")

		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return nil, err
		}

		repos = di.PostgresRepositories(pool, postgresRepo.WithLockTimeout(cfg.LockTimeout))
		retrier = postgresRepo.NewRetrier(log)
		checks["postgres"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	}

	var (
		redisClient      *goredis.Client
		cache            usecase.AccountCache
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewAccountCache(redisClient, cfg.AccountCacheTTL)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	a.services = di.NewServices(repos, di.Options{
		Retrier:     retrier,
		IDGenerator: postgresRepo.NewULIDGenerator(),
		Cache:       cache,
		Metrics:     m,
		RepairDrift: cfg.LedgerAuditRepair,
	})

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	if redisClient != nil && cfg.OutboxStream != "" {
		publisher = eventpublisher.NewStreamPublisher(redisClient, cfg.OutboxStream, streamMaxLen)
	}
	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: repos.Outbox,
		Publisher:  publisher,
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	a.scheduler = scheduler.New(log, schedulerTimeout)
	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.LedgerAuditSchedule, scheduler.NewLedgerAuditJob(a.services.Ledger)},
		{cfg.OutboxCleanupSchedule, scheduler.NewOutboxCleanupJob(a.publisher)},
		{limiterSchedule, scheduler.NewFuncJob("rate_limiter_cleanup", func(ctx context.Context) error {
			if n := rateLimiter.CleanupLimiters(limiterMaxIdle); n > 0 {
				zerolog.Ctx(ctx).Debug().Int("removed", n).Msg("idle rate limiters removed")
			}
			return nil
		})},
	}
	for _, j := range jobs {
		if j.schedule == "" {
			continue
		}
		if err := a.scheduler.AddJob(j.schedule, j.job); err != nil {
			return nil, err
		}
	}

	routerCfg := httpAdapter.RouterConfig{
		Logger:           log,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AccountHandler:   handler.NewAccountHandler(a.services.Accounts),
		MovementHandler:  handler.NewMovementHandler(a.services.Movements),
		TransferHandler:  handler.NewTransferHandler(a.services.Transfers),
		CardHandler:      handler.NewCardHandler(a.services.Cards),
		RendicionHandler: handler.NewRendicionHandler(a.services.Reconciliations),
		LedgerHandler:    handler.NewLedgerHandler(a.services.Ledger),
		HealthHandler:    handler.NewHealthHandler(checks),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		SystemUser:       &domain.User{ID: cfg.SystemUserID, Name: "system", Role: domain.RoleAdmin},
	}
	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}
	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

// newRegistry returns a registry carrying the process and Go runtime
// collectors next to the application metrics.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// startBackground launches the outbox worker and the scheduler. Both stop
// when ctx is cancelled or close is called.
func (a *app) startBackground(ctx context.Context) {
	go func() {
		if err := a.publisher.Start(ctx); err != nil && ctx.Err() == nil {
			a.log.Error().Err(err).Msg("event publisher stopped")
		}
	}()
	a.scheduler.Start()
	a.closers = append(a.closers, a.scheduler.Stop)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
