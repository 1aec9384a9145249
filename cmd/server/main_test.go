package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/infrastructure/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Store:                 config.StoreMemory,
		SystemUserID:          1,
		RateLimitRPS:          1000,
		RateLimitBurst:        1000,
		IdempotencyTTL:        time.Hour,
		AccountCacheTTL:       time.Minute,
		LedgerAuditSchedule:   "0 3 * * *",
		OutboxCleanupSchedule: "@hourly",
		OutboxPollInterval:    10 * time.Millisecond,
		OutboxBatchSize:       10,
		OutboxRetention:       time.Hour,
	}
}

func TestBuildAppMemoryStore(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(), zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.close()

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/",
		strings.NewReader(`{"name":"Caja","type":"EFECTIVO","opening_balance":"50"}`))
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backoffice_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestBuildAppWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.RedisEnabled = true
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.OutboxStream = "backoffice.audit"

	a, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.startBackground(ctx)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/",
		strings.NewReader(`{"name":"Banco","type":"BANCO"}`))
	a.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Eventually(t, func() bool {
		return mr.Exists(cfg.OutboxStream)
	}, 2*time.Second, 20*time.Millisecond, "audit event should reach the stream")
}

func TestBuildAppRejectsBadSchedule(t *testing.T) {
	cfg := memoryConfig()
	cfg.LedgerAuditSchedule = "every night"

	_, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	assert.Error(t, err)
}

func TestBuildAppRedisUnavailable(t *testing.T) {
	cfg := memoryConfig()
	cfg.RedisEnabled = true
	cfg.RedisURL = "redis://127.0.0.1:1"

	_, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}
