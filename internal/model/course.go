package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Course binds a subject to a teacher within one academic year. Its groups
// are the actual weekly teaching sections; the aggregate counters here mirror
// the sum over those groups' posted session revenue.
type Course struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code           string    `gorm:"type:varchar(12);uniqueIndex;not null" json:"code"` // CO-######
	Name           string    `gorm:"not null" json:"name"`
	Description    *string   `json:"description,omitempty"`
	SubjectID      uuid.UUID `gorm:"type:uuid;not null;index" json:"subjectId"`
	TeacherID      uuid.UUID `gorm:"type:uuid;not null;index" json:"teacherId"`
	AcademicYearID uuid.UUID `gorm:"type:uuid;not null;index" json:"academicYearId"`

	// Additive counters, incremented once per posted attendance session.
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"totalRevenue"`
	TotalSessionsHeld int             `gorm:"not null;default:0" json:"totalSessionsHeld"`

	IsActive  bool `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Subject      *Subject      `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Teacher      *User         `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	AcademicYear *AcademicYear `gorm:"foreignKey:AcademicYearID" json:"academicYear,omitempty"`
}
