package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialTransaction is an immutable income/expense ledger entry.
// Type: "income" | "expense"
//
// For attendance-derived income, RelatedType/RelatedID point at exactly one
// Attendance row. The composite unique index makes the 1:1 link a database
// guarantee, so a crashed or repeated posting can never double-book.
type FinancialTransaction struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Type     string    `gorm:"type:varchar(10);not null;index" json:"type"`
	Category string    `gorm:"type:varchar(30);not null;index" json:"category"`

	TeacherID uuid.UUID `gorm:"type:uuid;not null;index" json:"teacherId"`

	RelatedType *string    `gorm:"type:varchar(30);index:idx_tx_related,unique" json:"relatedType,omitempty"`
	RelatedID   *uuid.UUID `gorm:"type:uuid;index:idx_tx_related,unique" json:"relatedId,omitempty"`

	Amount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency string          `gorm:"type:varchar(3);not null;default:'EGP'" json:"currency"`

	Title       string  `gorm:"not null" json:"title"`
	Description *string `json:"description,omitempty"`

	TransactionDate time.Time `gorm:"not null;index" json:"transactionDate"`
	PaymentMethod   string    `gorm:"type:varchar(20);not null;default:'cash'" json:"paymentMethod"`
	Status          string    `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	ReceiptNumber   *string   `gorm:"uniqueIndex" json:"receiptNumber,omitempty"`

	CreatedAt time.Time
}

// Transaction types
const (
	TxIncome  = "income"
	TxExpense = "expense"
)

// Income / expense categories carried over from the accounting ledger.
const (
	CategoryStudentPayment = "student_payment"
	CategoryEnrollmentFee  = "enrollment_fee"
	CategoryOtherIncome    = "other_income"

	CategoryRent         = "rent"
	CategoryUtilities    = "utilities"
	CategoryMaterials    = "materials"
	CategoryMarketing    = "marketing"
	CategoryOtherExpense = "other_expense"
)

// RelatedAttendance is the RelatedType value linking a transaction to the
// attendance session it was posted from.
const RelatedAttendance = "attendance"
