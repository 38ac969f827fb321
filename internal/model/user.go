package model

import (
	"time"

	"github.com/google/uuid"
)

// User stores system users with role-based access.
// Role: "admin" | "teacher" | "student"
type User struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code string    `gorm:"type:varchar(12);uniqueIndex;not null" json:"code"` // AD-/TE-/ST-######
	Role string    `gorm:"type:varchar(20);not null;index" json:"role"`

	FirstName    string  `gorm:"not null" json:"firstName"`
	LastName     string  `gorm:"not null" json:"lastName"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Phone        *string `json:"phone,omitempty"`
	PasswordHash string  `gorm:"not null" json:"-"`

	// CurrentGrade is set for students only ("Grade 1" … "Grade 12").
	CurrentGrade *string `gorm:"type:varchar(20)" json:"currentGrade,omitempty"`

	IsActive  bool `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName mirrors the display name the frontend shows everywhere.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// GradeLevels lists the valid grade enum values, Egyptian K-12 ladder.
var GradeLevels = []string{
	"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6",
	"Grade 7", "Grade 8", "Grade 9",
	"Grade 10", "Grade 11", "Grade 12",
}

// ValidGrade reports whether g is one of GradeLevels.
func ValidGrade(g string) bool {
	for _, lvl := range GradeLevels {
		if lvl == g {
			return true
		}
	}
	return false
}
