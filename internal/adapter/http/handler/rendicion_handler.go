package handler

import (
	"context"
	"net/http"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// RendicionService defines the behavior needed by RendicionHandler.
type RendicionService interface {
	CreateReconciliation(ctx context.Context, input usecase.CreateReconciliationInput) (*domain.Reconciliation, error)
	GetReconciliation(ctx context.Context, id int64) (*domain.Reconciliation, error)
	ListByCard(ctx context.Context, cardID int64) ([]*domain.Reconciliation, error)
	ListExpenses(ctx context.Context, id int64) ([]*domain.CardExpense, error)
	CloseReconciliation(ctx context.Context, id int64) (*domain.Reconciliation, error)
	ApproveReconciliation(ctx context.Context, id int64) (*domain.Reconciliation, error)
	RejectReconciliation(ctx context.Context, id int64, reason string) (*domain.Reconciliation, error)
}

// RendicionHandler handles expense reconciliation HTTP requests.
type RendicionHandler struct {
	rendicionUC RendicionService
}

// NewRendicionHandler creates a new RendicionHandler.
func NewRendicionHandler(rendicionUC RendicionService) *RendicionHandler {
	return &RendicionHandler{rendicionUC: rendicionUC}
}

// Create opens a rendicion over a card's unassigned expenses.
func (h *RendicionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRendicionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	rendicion, err := h.rendicionUC.CreateReconciliation(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RendicionFromDomain(rendicion))
}

// Get retrieves a rendicion by ID.
func (h *RendicionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.rendicionUC.GetReconciliation)
}

// ListByCard lists the rendiciones of the card in the {id} path parameter.
func (h *RendicionHandler) ListByCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	rendiciones, err := h.rendicionUC.ListByCard(r.Context(), cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RendicionesFromDomain(rendiciones))
}

// ListExpenses lists the expenses batched into a rendicion.
func (h *RendicionHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := h.rendicionUC.ListExpenses(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}

// Close moves an ABIERTA rendicion to CERRADA.
func (h *RendicionHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.rendicionUC.CloseReconciliation)
}

// Approve moves a CERRADA rendicion to APROBADA.
func (h *RendicionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.rendicionUC.ApproveReconciliation)
}

// Reject moves a CERRADA rendicion to RECHAZADA and releases its expenses.
func (h *RendicionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req dto.RejectRendicionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rendicion, err := h.rendicionUC.RejectReconciliation(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RendicionFromDomain(rendicion))
}

func (h *RendicionHandler) byID(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (*domain.Reconciliation, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	rendicion, err := op(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RendicionFromDomain(rendicion))
}
