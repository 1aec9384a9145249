package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"

	"github.com/iho/backoffice/internal/adapter/http/handler"
	"github.com/iho/backoffice/internal/adapter/http/middleware"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/auth"
	"github.com/iho/backoffice/internal/infrastructure/metrics"
	"github.com/iho/backoffice/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler

	AccountHandler   *handler.AccountHandler
	MovementHandler  *handler.MovementHandler
	TransferHandler  *handler.TransferHandler
	CardHandler      *handler.CardHandler
	RendicionHandler *handler.RendicionHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	// JWTManager enables bearer authentication. When nil every request
	// acts as SystemUser.
	JWTManager *auth.JWTManager
	SystemUser *domain.User

	// SSLRedirect forces https behind a proxy setting X-Forwarded-Proto.
	SSLRedirect bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
		SSLRedirect:           cfg.SSLRedirect,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(secureMiddleware.Handler)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(middleware.StaticActor(cfg.SystemUser))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		record := middleware.RequireRole(domain.Role.CanCreate)
		manage := middleware.RequireRole(domain.Role.CanManage)

		r.Route("/accounts", func(r chi.Router) {
			r.With(manage).Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.With(manage).Post("/{id}/deactivate", cfg.AccountHandler.Deactivate)
			r.Get("/{id}/movements", cfg.AccountHandler.ListMovements)
			r.With(manage).Post("/{id}/recompute", cfg.AccountHandler.Recompute)
		})

		r.Route("/movements", func(r chi.Router) {
			r.With(record).Post("/", cfg.MovementHandler.Create)
			r.Get("/{id}", cfg.MovementHandler.Get)
			r.With(record).Post("/{id}/void", cfg.MovementHandler.Void)
			r.With(record).Post("/{id}/confirm", cfg.MovementHandler.Confirm)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.With(record).Post("/", cfg.TransferHandler.Create)
			r.Get("/{token}", cfg.TransferHandler.Get)
		})

		r.Route("/cards", func(r chi.Router) {
			r.With(manage).Post("/", cfg.CardHandler.Create)
			r.Get("/", cfg.CardHandler.List)
			r.Get("/{id}", cfg.CardHandler.Get)
			r.With(manage).Delete("/{id}", cfg.CardHandler.Delete)
			r.With(record).Post("/{id}/topups", cfg.CardHandler.CreateTopUp)
			r.Get("/{id}/topups", cfg.CardHandler.ListTopUps)
			r.With(record).Post("/{id}/expenses", cfg.CardHandler.CreateExpense)
			r.Get("/{id}/expenses", cfg.CardHandler.ListExpenses)
			r.Get("/{id}/expenses/unassigned", cfg.CardHandler.ListUnassignedExpenses)
			r.Get("/{id}/rendiciones", cfg.RendicionHandler.ListByCard)
		})

		r.Route("/rendiciones", func(r chi.Router) {
			r.With(record).Post("/", cfg.RendicionHandler.Create)
			r.Get("/{id}", cfg.RendicionHandler.Get)
			r.Get("/{id}/expenses", cfg.RendicionHandler.ListExpenses)
			r.With(record).Post("/{id}/close", cfg.RendicionHandler.Close)
			r.With(manage).Post("/{id}/approve", cfg.RendicionHandler.Approve)
			r.With(manage).Post("/{id}/reject", cfg.RendicionHandler.Reject)
		})

		r.Get("/ledger/audit", cfg.LedgerHandler.Audit)
	})

	return r
}
