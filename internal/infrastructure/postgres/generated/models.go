package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	Type           string             `json:"type"`
	OpeningBalance pgtype.Numeric     `json:"opening_balance"`
	CurrentBalance pgtype.Numeric     `json:"current_balance"`
	Active         bool               `json:"active"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}

type CardExpense struct {
	ID          int64              `json:"id"`
	CardID      int64              `json:"card_id"`
	Amount      pgtype.Numeric     `json:"amount"`
	ExpenseDate pgtype.Date        `json:"expense_date"`
	Description string             `json:"description"`
	MovementID  int64              `json:"movement_id"`
	RendicionID pgtype.Int8        `json:"rendicion_id"`
	CreatedBy   int64              `json:"created_by"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type CardTopup struct {
	ID          int64              `json:"id"`
	CardID      int64              `json:"card_id"`
	Amount      pgtype.Numeric     `json:"amount"`
	TopupDate   pgtype.Date        `json:"topup_date"`
	Description string             `json:"description"`
	MovementID  int64              `json:"movement_id"`
	CreatedBy   int64              `json:"created_by"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type Movement struct {
	ID            int64              `json:"id"`
	Type          string             `json:"type"`
	Amount        pgtype.Numeric     `json:"amount"`
	Category      string             `json:"category"`
	PaymentMethod string             `json:"payment_method"`
	Description   string             `json:"description"`
	MovementDate  pgtype.Date        `json:"movement_date"`
	Status        string             `json:"status"`
	AccountID     int64              `json:"account_id"`
	EmployeeID    pgtype.Int8        `json:"employee_id"`
	TransferToken pgtype.Text        `json:"transfer_token"`
	RendicionID   pgtype.Int8        `json:"rendicion_id"`
	CreatedBy     int64              `json:"created_by"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type PrepaidCard struct {
	ID         int64              `json:"id"`
	Type       string             `json:"type"`
	Alias      string             `json:"alias"`
	Number     string             `json:"number"`
	AccountID  int64              `json:"account_id"`
	EmployeeID pgtype.Int8        `json:"employee_id"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
	DeletedAt  pgtype.Timestamptz `json:"deleted_at"`
}

type Rendicion struct {
	ID              int64              `json:"id"`
	Code            string             `json:"code"`
	CardID          int64              `json:"card_id"`
	DateFrom        pgtype.Date        `json:"date_from"`
	DateTo          pgtype.Date        `json:"date_to"`
	TotalAmount     pgtype.Numeric     `json:"total_amount"`
	ExpenseCount    int32              `json:"expense_count"`
	Status          string             `json:"status"`
	Notes           string             `json:"notes"`
	RejectionReason pgtype.Text        `json:"rejection_reason"`
	CreatedBy       int64              `json:"created_by"`
	ApprovedBy      pgtype.Int8        `json:"approved_by"`
	ApprovedAt      pgtype.Timestamptz `json:"approved_at"`
	ClosedAt        pgtype.Timestamptz `json:"closed_at"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}
