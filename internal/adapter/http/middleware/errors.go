package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
)

func writeJSONError(w http.ResponseWriter, status int, message string) {
	resp := dto.ErrorResponse{Error: http.StatusText(status), Message: message}
	if status == http.StatusUnauthorized {
		resp.Kind = string(domain.KindUnauthenticated)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
