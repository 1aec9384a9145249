package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/infrastructure/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestLedgerAuditPassed(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/v1/ledger/audit", r.URL.Path)
		_ = json.NewEncoder(w).Encode(dto.AuditReportResponse{Consistent: true, AccountsChecked: 3, TransfersChecked: 1})
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "--token", "abc", "ledger", "audit")

	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Contains(t, out, "Accounts checked: 3")
	assert.Contains(t, out, "Ledger audit PASSED")
}

func TestLedgerAuditReportsDiscrepancies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(dto.AuditReportResponse{
			AccountsChecked: 1,
			Balances:        []dto.BalanceDiscrepancyResponse{{AccountID: 9}},
			Transfers:       []dto.TransferDiscrepancyResponse{{Token: "01TOKEN", Legs: 1, Reason: "expected 2 legs, found 1"}},
		})
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "ledger", "audit")

	assert.ErrorIs(t, err, errInconsistentLedger)
	assert.Contains(t, out, "DRIFT account=9")
	assert.Contains(t, out, "ASYMMETRIC transfer=01TOKEN legs=1")

	out, err = execute(t, "--url", srv.URL, "ledger", "audit", "--json")
	assert.ErrorIs(t, err, errInconsistentLedger)
	assert.Contains(t, out, `"transfer_token": "01TOKEN"`)
}

func TestLedgerAuditServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "ledger", "audit")

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestAccountsRecompute(t *testing.T) {
	var mu sync.Mutex
	var recomputed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/accounts/":
			resp := dto.ListAccountsResponse{}
			if r.URL.Query().Get("offset") == "0" {
				resp.Accounts = []*dto.AccountResponse{{ID: 1}, {ID: 2}}
			}
			_ = json.NewEncoder(w).Encode(resp)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/recompute"):
			mu.Lock()
			recomputed = append(recomputed, r.URL.Path)
			mu.Unlock()
			_ = json.NewEncoder(w).Encode(dto.AccountResponse{ID: 1})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "accounts", "recompute", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "account=1 balance=0")
	assert.Equal(t, []string{"/api/v1/accounts/1/recompute"}, recomputed)

	recomputed = nil
	_, err = execute(t, "--url", srv.URL, "accounts", "recompute", "--all")
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/v1/accounts/1/recompute", "/api/v1/accounts/2/recompute"}, recomputed)
}

func TestAccountsRecomputeArgs(t *testing.T) {
	_, err := execute(t, "accounts", "recompute")
	assert.Error(t, err)

	_, err = execute(t, "accounts", "recompute", "1", "--all")
	assert.Error(t, err)

	_, err = execute(t, "accounts", "recompute", "abc")
	assert.ErrorContains(t, err, "invalid account id")
}

func TestTokenIssue(t *testing.T) {
	out, err := execute(t, "token", "issue", "--secret", "s3cret", "--user", "42", "--role", "admin", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("s3cret", time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestTokenIssueValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "token", "issue", "--user", "1")
	assert.ErrorContains(t, err, "secret")

	_, err = execute(t, "token", "issue", "--secret", "x", "--user", "1", "--role", "root")
	assert.ErrorContains(t, err, "invalid role")

	_, err = execute(t, "token", "issue", "--secret", "x")
	assert.ErrorContains(t, err, "--user")
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate", "version")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
