package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// CardService defines the behavior needed by CardHandler.
type CardService interface {
	CreateCard(ctx context.Context, input usecase.CreateCardInput) (*domain.PrepaidCard, error)
	GetCard(ctx context.Context, id int64) (*domain.PrepaidCard, error)
	ListCards(ctx context.Context, limit, offset int) ([]*domain.PrepaidCard, error)
	DeleteCard(ctx context.Context, id int64) error
	CreateTopUp(ctx context.Context, cardID int64, input usecase.CardMovementInput) (*domain.CardTopUp, error)
	ListTopUps(ctx context.Context, cardID int64) ([]*domain.CardTopUp, error)
	CreateExpense(ctx context.Context, cardID int64, input usecase.CardMovementInput) (*domain.CardExpense, error)
	ListExpenses(ctx context.Context, cardID int64) ([]*domain.CardExpense, error)
	ListUnassignedExpenses(ctx context.Context, cardID int64, from, to time.Time) ([]*domain.CardExpense, error)
}

// CardHandler handles prepaid card HTTP requests.
type CardHandler struct {
	cardUC CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardUC CardService) *CardHandler {
	return &CardHandler{cardUC: cardUC}
}

// Create registers a card.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	card, err := h.cardUC.CreateCard(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CardFromDomain(card))
}

// Get retrieves a card by ID.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	card, err := h.cardUC.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CardFromDomain(card))
}

// List lists cards that have not been deleted.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cardUC.ListCards(r.Context(), parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCardsResponse{
		Cards: dto.CardsFromDomain(cards),
		Total: int64(len(cards)),
	})
}

// Delete soft-deletes a card.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.cardUC.DeleteCard(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateTopUp loads money onto a PRECARGABLE card.
func (h *CardHandler) CreateTopUp(w http.ResponseWriter, r *http.Request) {
	id, input, ok := h.cardMovement(w, r)
	if !ok {
		return
	}

	topUp, err := h.cardUC.CreateTopUp(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TopUpFromDomain(topUp))
}

// ListTopUps lists the top-ups of a card.
func (h *CardHandler) ListTopUps(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	topUps, err := h.cardUC.ListTopUps(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TopUpsFromDomain(topUps))
}

// CreateExpense records money spent with a card.
func (h *CardHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	id, input, ok := h.cardMovement(w, r)
	if !ok {
		return
	}

	expense, err := h.cardUC.CreateExpense(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// ListExpenses lists the expenses of a card.
func (h *CardHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := h.cardUC.ListExpenses(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}

// ListUnassignedExpenses lists expenses in ?from=&to= not yet in a rendicion.
func (h *CardHandler) ListUnassignedExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	from, err := dto.ParseDate("from", q.Get("from"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := dto.ParseDate("to", q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := h.cardUC.ListUnassignedExpenses(r.Context(), id, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}

func (h *CardHandler) cardMovement(w http.ResponseWriter, r *http.Request) (int64, usecase.CardMovementInput, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return 0, usecase.CardMovementInput{}, false
	}

	var req dto.CardMovementRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return 0, usecase.CardMovementInput{}, false
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, r, err)
		return 0, usecase.CardMovementInput{}, false
	}

	return id, input, true
}
