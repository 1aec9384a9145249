package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/iho/backoffice/internal/infrastructure/metrics"
)

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/v1/cards/{id}/rendiciones", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post("/api/v1/transfers", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	for _, path := range []string{"/api/v1/cards/3/rendiciones", "/api/v1/cards/8/rendiciones"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil))

	assert.InDelta(t, 2, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/cards/{id}/rendiciones", "404")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/v1/transfers", "201")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPDuration))
}

func TestMetricsWithoutRouterNormalizesPath(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	h := Metrics(m)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/accounts/42/movements", nil))

	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/accounts/{id}/movements", "200")), 0)
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/api/v1/accounts/42":                          "/api/v1/accounts/{id}",
		"/api/v1/cards/7/topups":                       "/api/v1/cards/{id}/topups",
		"/api/v1/transfers/01HZX3K8Q9V7W2M4N6P8R0T2Y4": "/api/v1/transfers/{token}",
		"/api/v1/ledger/audit":                         "/api/v1/ledger/audit",
		"/":                                            "/",
	}
	for in, want := range cases {
		assert.Equalf(t, want, normalizePath(in), "path %q", in)
	}
}
