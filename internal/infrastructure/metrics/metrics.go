package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	MovementsCreated   *prometheus.CounterVec
	MovementsVoided    prometheus.Counter
	MovementsConfirmed prometheus.Counter
	TransfersCreated   prometheus.Counter
	TransferAmount     prometheus.Histogram
	BalanceRecomputes  prometheus.Counter
	UnitOfWorkDuration *prometheus.HistogramVec

	// Account metrics
	AccountsCreated prometheus.Counter

	// Card metrics
	CardTopUps   prometheus.Counter
	CardExpenses prometheus.Counter

	// Rendicion metrics
	ReconciliationTransitions *prometheus.CounterVec

	// Audit metrics
	AuditDiscrepancies *prometheus.GaugeVec
	OutboxPublished    prometheus.Counter
	OutboxFailures     prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Redis metrics
	CacheLookups *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MovementsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_movements_created_total",
				Help: "Total number of movements created by direction",
			},
			[]string{"type"},
		),
		MovementsVoided: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_movements_voided_total",
			Help: "Total number of movements voided",
		}),
		MovementsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_movements_confirmed_total",
			Help: "Total number of pending movements confirmed",
		}),
		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_transfers_created_total",
			Help: "Total number of transfers created",
		}),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "backoffice_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		BalanceRecomputes: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_balance_recomputes_total",
			Help: "Total number of account balance recomputations",
		}),
		UnitOfWorkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_unit_of_work_duration_seconds",
				Help:    "Duration of ledger units of work",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		CardTopUps: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_card_topups_total",
			Help: "Total number of card top-ups",
		}),
		CardExpenses: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_card_expenses_total",
			Help: "Total number of card expenses",
		}),

		ReconciliationTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_rendicion_transitions_total",
				Help: "Total rendicion state transitions by target state",
			},
			[]string{"state"},
		),

		AuditDiscrepancies: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "backoffice_ledger_audit_discrepancies",
				Help: "Discrepancies found by the last ledger audit",
			},
			[]string{"check"},
		),
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_outbox_failures_total",
			Help: "Total outbox events that failed to publish",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_lookups_total",
				Help: "Account cache lookups by result",
			},
			[]string{"result"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
