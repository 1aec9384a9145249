package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a paginated list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// MovementResponse represents a movement in API responses.
type MovementResponse struct {
	ID            int64           `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Description   string          `json:"description,omitempty"`
	Date          string          `json:"date"`
	Status        string          `json:"status"`
	AccountID     int64           `json:"account_id"`
	EmployeeID    *int64          `json:"employee_id,omitempty"`
	TransferToken *string         `json:"transfer_token,omitempty"`
	RendicionID   *int64          `json:"rendicion_id,omitempty"`
	CreatedBy     int64           `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementFromDomain converts domain movement to response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:            m.ID,
		Type:          string(m.Type),
		Amount:        m.Amount,
		Category:      m.Category,
		PaymentMethod: m.PaymentMethod,
		Description:   m.Description,
		Date:          m.Date.Format(DateLayout),
		Status:        string(m.Status),
		AccountID:     m.AccountID,
		EmployeeID:    m.EmployeeID,
		TransferToken: m.TransferToken,
		RendicionID:   m.ReconciliationID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// ListMovementsResponse represents a paginated list of movements.
type ListMovementsResponse struct {
	Movements []*MovementResponse `json:"movements"`
	Total     int64               `json:"total"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	Token           string            `json:"token"`
	SourceAccountID int64             `json:"source_account_id"`
	DestAccountID   int64             `json:"dest_account_id"`
	Amount          decimal.Decimal   `json:"amount"`
	Date            string            `json:"date"`
	Source          *MovementResponse `json:"source"`
	Dest            *MovementResponse `json:"dest"`
	CreatedAt       time.Time         `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		Token:           t.Token,
		SourceAccountID: t.Source.AccountID,
		DestAccountID:   t.Dest.AccountID,
		Amount:          t.Amount,
		Date:            t.Date.Format(DateLayout),
		Source:          MovementFromDomain(t.Source),
		Dest:            MovementFromDomain(t.Dest),
		CreatedAt:       t.Created,
	}
}

// CardResponse represents a prepaid card in API responses.
type CardResponse struct {
	ID         int64      `json:"id"`
	Type       string     `json:"type"`
	Alias      string     `json:"alias"`
	Number     string     `json:"number,omitempty"`
	AccountID  int64      `json:"account_id"`
	EmployeeID *int64     `json:"employee_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// CardFromDomain converts domain card to response.
func CardFromDomain(c *domain.PrepaidCard) *CardResponse {
	return &CardResponse{
		ID:         c.ID,
		Type:       string(c.Type),
		Alias:      c.Alias,
		Number:     c.Number,
		AccountID:  c.AccountID,
		EmployeeID: c.EmployeeID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		DeletedAt:  c.DeletedAt,
	}
}

// ListCardsResponse represents a paginated list of cards.
type ListCardsResponse struct {
	Cards []*CardResponse `json:"cards"`
	Total int64           `json:"total"`
}

// CardsFromDomain converts domain cards to responses.
func CardsFromDomain(cards []*domain.PrepaidCard) []*CardResponse {
	result := make([]*CardResponse, len(cards))
	for i, c := range cards {
		result[i] = CardFromDomain(c)
	}
	return result
}

// TopUpResponse represents a card top-up.
type TopUpResponse struct {
	ID          int64           `json:"id"`
	CardID      int64           `json:"card_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	MovementID  int64           `json:"movement_id"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TopUpFromDomain converts a domain top-up to response.
func TopUpFromDomain(t *domain.CardTopUp) *TopUpResponse {
	return &TopUpResponse{
		ID:          t.ID,
		CardID:      t.CardID,
		Amount:      t.Amount,
		Date:        t.Date.Format(DateLayout),
		Description: t.Description,
		MovementID:  t.MovementID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}

// TopUpsFromDomain converts domain top-ups to responses.
func TopUpsFromDomain(topUps []*domain.CardTopUp) []*TopUpResponse {
	result := make([]*TopUpResponse, len(topUps))
	for i, t := range topUps {
		result[i] = TopUpFromDomain(t)
	}
	return result
}

// ExpenseResponse represents a card expense.
type ExpenseResponse struct {
	ID          int64           `json:"id"`
	CardID      int64           `json:"card_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	MovementID  int64           `json:"movement_id"`
	RendicionID *int64          `json:"rendicion_id,omitempty"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ExpenseFromDomain converts a domain expense to response.
func ExpenseFromDomain(e *domain.CardExpense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		CardID:      e.CardID,
		Amount:      e.Amount,
		Date:        e.Date.Format(DateLayout),
		Description: e.Description,
		MovementID:  e.MovementID,
		RendicionID: e.ReconciliationID,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.CardExpense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// RendicionResponse represents a rendicion in API responses.
type RendicionResponse struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	CardID          int64           `json:"card_id"`
	DateFrom        string          `json:"date_from"`
	DateTo          string          `json:"date_to"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ExpenseCount    int             `json:"expense_count"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CreatedBy       int64           `json:"created_by"`
	ApprovedBy      *int64          `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RendicionFromDomain converts a domain reconciliation to response.
func RendicionFromDomain(r *domain.Reconciliation) *RendicionResponse {
	return &RendicionResponse{
		ID:              r.ID,
		Code:            r.Code,
		CardID:          r.CardID,
		DateFrom:        r.DateFrom.Format(DateLayout),
		DateTo:          r.DateTo.Format(DateLayout),
		TotalAmount:     r.TotalAmount,
		ExpenseCount:    r.ExpenseCount,
		Status:          string(r.Status),
		Notes:           r.Notes,
		RejectionReason: r.RejectionReason,
		CreatedBy:       r.CreatedBy,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		ClosedAt:        r.ClosedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// RendicionesFromDomain converts domain reconciliations to responses.
func RendicionesFromDomain(rs []*domain.Reconciliation) []*RendicionResponse {
	result := make([]*RendicionResponse, len(rs))
	for i, r := range rs {
		result[i] = RendicionFromDomain(r)
	}
	return result
}

// BalanceDiscrepancyResponse is one drifted account.
type BalanceDiscrepancyResponse struct {
	AccountID       int64           `json:"account_id"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Repaired        bool            `json:"repaired"`
}

// TransferDiscrepancyResponse is one asymmetric transfer.
type TransferDiscrepancyResponse struct {
	Token  string `json:"transfer_token"`
	Legs   int    `json:"legs"`
	Reason string `json:"reason"`
}

// AuditReportResponse represents the result of a ledger audit.
type AuditReportResponse struct {
	Consistent       bool                          `json:"consistent"`
	AccountsChecked  int                           `json:"accounts_checked"`
	TransfersChecked int                           `json:"transfers_checked"`
	Balances         []BalanceDiscrepancyResponse  `json:"balance_discrepancies"`
	Transfers        []TransferDiscrepancyResponse `json:"transfer_discrepancies"`
	CheckedAt        time.Time                     `json:"checked_at"`
}

// AuditReportFromUseCase converts an audit report to response.
func AuditReportFromUseCase(r *usecase.AuditReport) *AuditReportResponse {
	resp := &AuditReportResponse{
		Consistent:       r.Consistent(),
		AccountsChecked:  r.AccountsChecked,
		TransfersChecked: r.TransfersChecked,
		Balances:         make([]BalanceDiscrepancyResponse, len(r.Balances)),
		Transfers:        make([]TransferDiscrepancyResponse, len(r.Transfers)),
		CheckedAt:        r.CheckedAt,
	}
	for i, d := range r.Balances {
		resp.Balances[i] = BalanceDiscrepancyResponse{
			AccountID:       d.AccountID,
			RecordedBalance: d.RecordedBalance,
			ExpectedBalance: d.ExpectedBalance,
			Difference:      d.Difference,
			Repaired:        d.Repaired,
		}
	}
	for i, d := range r.Transfers {
		resp.Transfers[i] = TransferDiscrepancyResponse{Token: d.Token, Legs: d.Legs, Reason: d.Reason}
	}
	return resp
}

// CommittedHeader is set on an error response whose change was recorded
// before the failure. Such a request must not be repeated.
const CommittedHeader = "X-Change-Committed"

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error          string `json:"error"`
	Message        string `json:"message,omitempty"`
	Kind           string `json:"kind,omitempty"`
	Field          string `json:"field,omitempty"`
	CurrentState   string `json:"current_state,omitempty"`
	AttemptedState string `json:"attempted_state,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
