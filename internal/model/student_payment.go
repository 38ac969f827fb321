package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StudentPayment records money received from a student for a group.
// Each payment also writes one income FinancialTransaction, inside the same
// database transaction.
type StudentPayment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"studentId"`
	GroupID   uuid.UUID `gorm:"type:uuid;not null;index" json:"groupId"`

	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'EGP'" json:"currency"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'cash'" json:"paymentMethod"`
	// Month the payment covers, "2026-01" style.
	CoversMonth string  `gorm:"type:varchar(7);not null" json:"coversMonth"`
	Note        *string `json:"note,omitempty"`

	RecordedBy uuid.UUID `gorm:"type:uuid;not null" json:"recordedBy"`
	CreatedAt  time.Time

	Student *User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Group   *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}
