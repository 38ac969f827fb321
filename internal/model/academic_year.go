package model

import (
	"time"

	"github.com/google/uuid"
)

// AcademicYear scopes courses to a school year (e.g. "2025-2026").
type AcademicYear struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code      string    `gorm:"type:varchar(12);uniqueIndex;not null" json:"code"` // AY-######
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	StartDate time.Time `gorm:"type:date;not null" json:"startDate"`
	EndDate   time.Time `gorm:"type:date;not null" json:"endDate"`
	IsCurrent bool      `gorm:"not null;default:false" json:"isCurrent"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
