package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

type accountServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, id int64) (*domain.Account, error)
	listFn       func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	deactivateFn func(ctx context.Context, id int64) (*domain.Account, error)
	movementsFn  func(ctx context.Context, id int64, input usecase.ListAccountsInput) ([]*domain.Movement, error)
	recomputeFn  func(ctx context.Context, id int64) (*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) DeactivateAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.deactivateFn(ctx, id)
}

func (s *accountServiceStub) ListMovements(ctx context.Context, id int64, input usecase.ListAccountsInput) ([]*domain.Movement, error) {
	return s.movementsFn(ctx, id, input)
}

func (s *accountServiceStub) RecomputeBalance(ctx context.Context, id int64) (*domain.Account, error) {
	return s.recomputeFn(ctx, id)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{
				ID:             1,
				Name:           input.Name,
				Type:           input.Type,
				OpeningBalance: input.OpeningBalance,
				CurrentBalance: input.OpeningBalance,
				Active:         true,
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, newRequest(http.MethodPost, "/accounts", `{"name":"Banco Estado","type":"BANCO","opening_balance":"1000"}`, nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Banco Estado", captured.Name)
	assert.Equal(t, domain.AccountTypeBank, captured.Type)
	assert.True(t, decimal.NewFromInt(1000).Equal(captured.OpeningBalance))

	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.True(t, resp.Active)
}

func TestAccountHandler_Create_ValidationFailure(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"malformed json", `{"name":`, ""},
		{"unknown type", `{"name":"x","type":"CRYPTO"}`, "type"},
		{"missing name", `{"type":"BANCO"}`, "name"},
		{"bad opening balance", `{"name":"x","type":"BANCO","opening_balance":"lots"}`, "opening_balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			})

			rec := httptest.NewRecorder()
			handler.Create(rec, newRequest(http.MethodPost, "/accounts", tt.body, nil))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, string(domain.KindValidation), resp.Kind)
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}
}

func TestAccountHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{"found", "7", nil, http.StatusOK},
		{"not found", "8", domain.ErrAccountNotFound, http.StatusNotFound},
		{"non numeric id", "abc", nil, http.StatusBadRequest},
		{"zero id", "0", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				getFn: func(ctx context.Context, id int64) (*domain.Account, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.Account{ID: id, Name: "Caja", Type: domain.AccountTypeCash}, nil
				},
			})

			rec := httptest.NewRecorder()
			handler.Get(rec, newRequest(http.MethodGet, "/accounts/"+tt.id, "", map[string]string{"id": tt.id}))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAccountHandler_List_PassesPagination(t *testing.T) {
	var captured usecase.ListAccountsInput
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			captured = input
			return []*domain.Account{{ID: 1}, {ID: 2}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, newRequest(http.MethodGet, "/accounts?limit=5&offset=10", "", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.ListAccountsInput{Limit: 5, Offset: 10}, captured)

	var resp dto.ListAccountsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
}

func TestAccountHandler_DeactivateAndRecompute(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		deactivateFn: func(ctx context.Context, id int64) (*domain.Account, error) {
			return &domain.Account{ID: id, Active: false}, nil
		},
		recomputeFn: func(ctx context.Context, id int64) (*domain.Account, error) {
			return &domain.Account{ID: id, CurrentBalance: decimal.NewFromInt(800)}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Deactivate(rec, newRequest(http.MethodPost, "/accounts/3/deactivate", "", map[string]string{"id": "3"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Recompute(rec, newRequest(http.MethodPost, "/accounts/3/recompute", "", map[string]string{"id": "3"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, decimal.NewFromInt(800).Equal(resp.CurrentBalance))
}

func TestAccountHandler_ListMovements(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		movementsFn: func(ctx context.Context, id int64, input usecase.ListAccountsInput) ([]*domain.Movement, error) {
			assert.Equal(t, int64(4), id)
			return []*domain.Movement{{ID: 9, AccountID: id, Type: domain.MovementIncome}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.ListMovements(rec, newRequest(http.MethodGet, "/accounts/4/movements", "", map[string]string{"id": "4"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ListMovementsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Movements, 1)
	assert.Equal(t, int64(9), resp.Movements[0].ID)
}
