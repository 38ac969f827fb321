package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecordExpenseRequest struct {
	Category      string          `json:"category"      validate:"required,oneof=rent utilities materials marketing other_expense"`
	Amount        decimal.Decimal `json:"amount"        validate:"required,gt=0"`
	Title         string          `json:"title"         validate:"required,min=3,max=200"`
	Description   *string         `json:"description"   validate:"omitempty,max=1000"`
	PaymentMethod string          `json:"paymentMethod" validate:"omitempty,oneof=cash bank_transfer credit_card mobile_wallet check"`
}

type RecordPaymentRequest struct {
	StudentID     string          `json:"studentId"     validate:"required,uuid"`
	GroupID       string          `json:"groupId"       validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"        validate:"required,gt=0"`
	CoversMonth   string          `json:"coversMonth"   validate:"required,len=7"` // "2026-08"
	PaymentMethod string          `json:"paymentMethod" validate:"omitempty,oneof=cash bank_transfer credit_card mobile_wallet check"`
	Note          *string         `json:"note"          validate:"omitempty,max=500"`
}

type TransactionFilter struct {
	Type     string // "", "income", "expense"
	Category string
	From     string // "2006-01-02"
	To       string
	Page     int
	Limit    int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransactionResponse struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Title           string          `json:"title"`
	Description     *string         `json:"description"`
	TransactionDate string          `json:"transactionDate"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          string          `json:"status"`
	RelatedType     *string         `json:"relatedType"`
	RelatedID       *string         `json:"relatedId"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// GroupRevenueLine is one row of the per-group revenue breakdown.
type GroupRevenueLine struct {
	GroupID      string          `json:"groupId"`
	GroupName    string          `json:"groupName"`
	Revenue      decimal.Decimal `json:"revenue"`
	SessionsHeld int             `json:"sessionsHeld"`
}

type AccountingSummaryResponse struct {
	From         string             `json:"from"`
	To           string             `json:"to"`
	TotalIncome  decimal.Decimal    `json:"totalIncome"`
	TotalExpense decimal.Decimal    `json:"totalExpense"`
	Net          decimal.Decimal    `json:"net"`
	ByGroup      []GroupRevenueLine `json:"byGroup"`
}

type PaymentResponse struct {
	ID            string          `json:"id"`
	StudentID     string          `json:"studentId"`
	StudentName   string          `json:"studentName"`
	GroupID       string          `json:"groupId"`
	GroupName     string          `json:"groupName"`
	Amount        decimal.Decimal `json:"amount"`
	CoversMonth   string          `json:"coversMonth"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     string          `json:"createdAt"`
}
