package handler

import (
	"context"
	"net/http"

	"github.com/iho/backoffice/internal/adapter/http/dto"
	"github.com/iho/backoffice/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Report(ctx context.Context) (*usecase.AuditReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Audit runs the ledger audit. An inconsistent ledger answers 409 with the
// full report.
func (h *LedgerHandler) Audit(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.Report(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if !report.Consistent() {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.AuditReportFromUseCase(report))
}
