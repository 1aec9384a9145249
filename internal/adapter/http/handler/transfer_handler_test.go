package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

type transferServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error)
	getFn    func(ctx context.Context, token string) (*domain.Transfer, error)
}

func (s *transferServiceStub) CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
	return s.createFn(ctx, input)
}

func (s *transferServiceStub) GetTransfer(ctx context.Context, token string) (*domain.Transfer, error) {
	return s.getFn(ctx, token)
}

func sampleTransfer(token string, amount decimal.Decimal) *domain.Transfer {
	date := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	return &domain.Transfer{
		Token:  token,
		Source: &domain.Movement{ID: 1, AccountID: 1, Type: domain.MovementExpense, Amount: amount, Date: date, TransferToken: &token},
		Dest:   &domain.Movement{ID: 2, AccountID: 2, Type: domain.MovementIncome, Amount: amount, Date: date, TransferToken: &token},
		Amount: amount,
		Date:   date,
	}
}

func TestTransferHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateTransferInput
	handler := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
			captured = input
			return sampleTransfer("01TOKEN", input.Amount), nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, newRequest(http.MethodPost, "/transfers",
		`{"source_account_id":1,"dest_account_id":2,"amount":"200.00","date":"2024-01-12"}`, nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), captured.SourceAccountID)
	assert.Equal(t, int64(2), captured.DestAccountID)
	assert.True(t, decimal.NewFromInt(200).Equal(captured.Amount))

	var resp dto.TransferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "01TOKEN", resp.Token)
	assert.Equal(t, "EXPENSE", resp.Source.Type)
	assert.Equal(t, "INCOME", resp.Dest.Type)
}

func TestTransferHandler_Create_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   domain.ErrorKind
	}{
		{"same account", domain.ErrSameAccount, http.StatusUnprocessableEntity, domain.KindInvalidAccount},
		{"missing account", domain.ErrAccountMissing, http.StatusUnprocessableEntity, domain.KindInvalidAccount},
		{"non positive amount", domain.NewValidationError("amount", "amount must be positive"), http.StatusBadRequest, domain.KindValidation},
		{"no actor", domain.ErrMissingActor, http.StatusUnauthorized, domain.KindUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&transferServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
					return nil, tt.err
				},
			})

			rec := httptest.NewRecorder()
			handler.Create(rec, newRequest(http.MethodPost, "/transfers",
				`{"source_account_id":1,"dest_account_id":1,"amount":"10","date":"2024-01-12"}`, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.wantKind), resp.Kind)
		})
	}
}

func TestTransferHandler_Get(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, token string) (*domain.Transfer, error) {
			if token == "missing" {
				return nil, domain.ErrTransferNotFound
			}
			return sampleTransfer(token, decimal.NewFromInt(5)), nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, newRequest(http.MethodGet, "/transfers/01ABC", "", map[string]string{"token": "01ABC"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Get(rec, newRequest(http.MethodGet, "/transfers/missing", "", map[string]string{"token": "missing"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
