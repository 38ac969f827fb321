package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject is a taught discipline (Math, Physics, …). Grade levels live on the
// Group, not here.
type Subject struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code        string    `gorm:"type:varchar(12);uniqueIndex;not null" json:"code"` // SU-######
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
