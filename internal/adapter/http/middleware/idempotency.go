package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	redisrepo "github.com/iho/backoffice/internal/adapter/repository/redis"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// DefaultIdempotencyTTL is how long a completed response is replayed.
	DefaultIdempotencyTTL = 24 * time.Hour
	// DefaultIdempotencyLockTTL bounds how long an in-flight reservation
	// survives a process that dies before finishing the request.
	DefaultIdempotencyLockTTL = time.Minute
)

// cachedResponse is the stored form of a completed request.
type cachedResponse struct {
	Status    int    `msgpack:"s"`
	Body      []byte `msgpack:"b"`
	Committed bool   `msgpack:"c,omitempty"`
}

// IdempotencyMiddleware handles request idempotency using Redis.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	lockTTL time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, lockTTL: min(DefaultIdempotencyLockTTL, ttl)}
}

// Wrap wraps an http.Handler with idempotency checking. Keys are scoped to
// method, path and the acting user, so two users never share a response.
//
// Successful responses are replayed for the full TTL. Failed ones release
// the key unless the change was already recorded, in which case the failure
// is replayed instead of letting a retry record it twice.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(IdempotencyKeyHeader)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		key := scopedKey(r, header)
		log := zerolog.Ctx(r.Context())

		exists, stored, err := m.store.CheckAndSet(r.Context(), key, nil, m.lockTTL)
		if err != nil {
			log.Error().Err(err).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			if redisrepo.IsProcessing(stored) {
				writeJSONError(w, http.StatusConflict, "a request with this idempotency key is in progress")
				return
			}
			replay(w, stored)
			return
		}

		finished := false
		defer func() {
			// A panicking handler must not leave the key reserved.
			if !finished {
				m.release(r.Context(), key, log)
			}
		}()

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)
		finished = true

		committed := recorder.Header().Get(dto.CommittedHeader) == "true"
		if (recorder.statusCode < 200 || recorder.statusCode >= 300) && !committed {
			m.release(r.Context(), key, log)
			return
		}

		payload, err := msgpack.Marshal(cachedResponse{
			Status:    recorder.statusCode,
			Body:      recorder.body.Bytes(),
			Committed: committed,
		})
		if err == nil {
			err = m.store.Update(context.WithoutCancel(r.Context()), key, payload, m.ttl)
		}
		if err != nil {
			log.Warn().Err(err).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) release(ctx context.Context, key string, log *zerolog.Logger) {
	if err := m.store.Release(context.WithoutCancel(ctx), key); err != nil {
		log.Warn().Err(err).Msg("failed to release idempotency key")
	}
}

func scopedKey(r *http.Request, header string) string {
	actor, _ := domain.ActorFromContext(r.Context())
	return r.Method + " " + r.URL.Path + " " + strconv.FormatInt(actor, 10) + " " + header
}

func replay(w http.ResponseWriter, stored []byte) {
	var cached cachedResponse
	if err := msgpack.Unmarshal(stored, &cached); err != nil || cached.Status == 0 {
		cached = cachedResponse{Status: http.StatusOK, Body: stored}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotency-Replay", "true")
	if cached.Committed {
		w.Header().Set(dto.CommittedHeader, "true")
	}
	w.WriteHeader(cached.Status)
	_, _ = w.Write(cached.Body)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
