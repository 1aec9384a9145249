package handler

import (
	"context"
	"net/http"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	CreateMovement(ctx context.Context, input usecase.CreateMovementInput) (*domain.Movement, error)
	GetMovement(ctx context.Context, id int64) (*domain.Movement, error)
	VoidMovement(ctx context.Context, id int64) (*domain.Movement, error)
	ConfirmMovement(ctx context.Context, id int64) (*domain.Movement, error)
}

// MovementHandler handles movement-related HTTP requests.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Create records a movement.
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMovementRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	movement, err := h.movementUC.CreateMovement(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Get retrieves a movement by ID.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.movementUC.GetMovement)
}

// Void voids a confirmed movement.
func (h *MovementHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.movementUC.VoidMovement)
}

// Confirm confirms a pending movement.
func (h *MovementHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.movementUC.ConfirmMovement)
}

func (h *MovementHandler) byID(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (*domain.Movement, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	movement, err := op(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}
