package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistererRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.TransfersCreated == nil || m.HTTPRequests == nil || m.ReconciliationTransitions == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.MovementsCreated.WithLabelValues("INCOME").Inc()
	m.ReconciliationTransitions.WithLabelValues("CERRADA").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.MovementsCreated.WithLabelValues("INCOME")); got != 1 {
		t.Fatalf("expected 1 income movement, got %v", got)
	}
}

func TestNewWithRegistererIsolatedRegistries(t *testing.T) {
	// Two registries must not collide on metric names.
	_ = NewWithRegisterer(prometheus.NewRegistry())
	_ = NewWithRegisterer(prometheus.NewRegistry())
}
