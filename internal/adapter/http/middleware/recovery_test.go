package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/adapter/http/dto"
)

func TestRecoveryWritesInternalError(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("balance overflow")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req = req.WithContext(log.WithContext(req.Context()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Message)

	assert.Contains(t, logs.String(), "balance overflow")
	assert.Contains(t, logs.String(), "POST /api/v1/transfers")
}

func TestRecoveryRepanicsOnAbort(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
