package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

type movementServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateMovementInput) (*domain.Movement, error)
	getFn     func(ctx context.Context, id int64) (*domain.Movement, error)
	voidFn    func(ctx context.Context, id int64) (*domain.Movement, error)
	confirmFn func(ctx context.Context, id int64) (*domain.Movement, error)
}

func (s *movementServiceStub) CreateMovement(ctx context.Context, input usecase.CreateMovementInput) (*domain.Movement, error) {
	return s.createFn(ctx, input)
}

func (s *movementServiceStub) GetMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	return s.getFn(ctx, id)
}

func (s *movementServiceStub) VoidMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	return s.voidFn(ctx, id)
}

func (s *movementServiceStub) ConfirmMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	return s.confirmFn(ctx, id)
}

func TestMovementHandler_Create(t *testing.T) {
	var captured usecase.CreateMovementInput
	handler := NewMovementHandler(&movementServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateMovementInput) (*domain.Movement, error) {
			captured = input
			return &domain.Movement{
				ID:        11,
				Type:      input.Type,
				Amount:    input.Amount,
				Category:  input.Category,
				Date:      input.Date,
				Status:    domain.MovementPending,
				AccountID: input.AccountID,
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, newRequest(http.MethodPost, "/movements",
		`{"type":"EXPENSE","amount":"300","category":"PROVEEDORES","date":"2024-01-10","account_id":1,"employee_id":4,"pending":true}`, nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.MovementExpense, captured.Type)
	assert.True(t, captured.Pending)
	require.NotNil(t, captured.EmployeeID)
	assert.Equal(t, int64(4), *captured.EmployeeID)

	var resp dto.MovementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "2024-01-10", resp.Date)
}

func TestMovementHandler_Void_InvalidTransition(t *testing.T) {
	handler := NewMovementHandler(&movementServiceStub{
		voidFn: func(ctx context.Context, id int64) (*domain.Movement, error) {
			return nil, &domain.TransitionError{Entity: "movement", From: "VOIDED", To: "VOIDED"}
		},
	})

	rec := httptest.NewRecorder()
	handler.Void(rec, newRequest(http.MethodPost, "/movements/5/void", "", map[string]string{"id": "5"}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VOIDED", resp.CurrentState)
	assert.Equal(t, string(domain.KindInvalidTransition), resp.Kind)
}

func TestMovementHandler_ConfirmAndGet(t *testing.T) {
	handler := NewMovementHandler(&movementServiceStub{
		confirmFn: func(ctx context.Context, id int64) (*domain.Movement, error) {
			return &domain.Movement{ID: id, Status: domain.MovementConfirmed}, nil
		},
		getFn: func(ctx context.Context, id int64) (*domain.Movement, error) {
			return nil, domain.ErrMovementNotFound
		},
	})

	rec := httptest.NewRecorder()
	handler.Confirm(rec, newRequest(http.MethodPost, "/movements/5/confirm", "", map[string]string{"id": "5"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Get(rec, newRequest(http.MethodGet, "/movements/6", "", map[string]string{"id": "6"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
