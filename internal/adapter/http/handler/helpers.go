package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError renders err with the status of its kind. Internal errors are
// logged and their details withheld.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	resp := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Kind:    string(kind),
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
		resp.Message = vErr.Message
	}

	var tErr *domain.TransitionError
	if errors.As(err, &tErr) {
		resp.CurrentState = tErr.From
		resp.AttemptedState = tErr.To
	}

	if kind == domain.KindInternal {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		resp.Message = "internal server error"
	}

	if domain.IsCommitted(err) {
		w.Header().Set(dto.CommittedHeader, "true")
		resp.Message = "change recorded but balances were not refreshed"
	}

	writeJSON(w, status, resp)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidAccount, domain.KindInvalidCardType, domain.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case domain.KindConflictingReconciliation:
		return http.StatusConflict
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate reads a JSON body into req and runs its validation tags.
func decodeAndValidate(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return domain.NewValidationError("", "invalid request body: "+err.Error())
	}
	return dto.Validate(req)
}

// parseIDParam reads a positive int64 path parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
