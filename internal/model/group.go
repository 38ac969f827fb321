package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Group is a weekly-recurring teaching section of a course.
//
// Groups are never hard-deleted: "deleting" one sets IsActive=false, and is
// refused while CurrentEnrollment > 0.
type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code        string    `gorm:"type:varchar(12);uniqueIndex;not null" json:"code"` // GR-######
	Name        string    `gorm:"not null" json:"name"`
	Description *string   `json:"description,omitempty"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"courseId"`
	GradeLevel  string    `gorm:"type:varchar(20);not null;index" json:"gradeLevel"`

	PricePerSession decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pricePerSession"`

	Capacity int `gorm:"not null;default:30" json:"capacity"`
	// CurrentEnrollment always equals the count of active enrollment rows;
	// it is recomputed inside the same transaction as every roster write.
	CurrentEnrollment int `gorm:"not null;default:0" json:"currentEnrollment"`

	// Additive counters, incremented exactly once per posted session.
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"totalRevenue"`
	TotalSessionsHeld int             `gorm:"not null;default:0" json:"totalSessionsHeld"`

	IsActive  bool `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Course   *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Schedule []ScheduleSlot `gorm:"foreignKey:GroupID" json:"schedule,omitempty"`
	Students []GroupStudent `gorm:"foreignKey:GroupID" json:"students,omitempty"`
}

// ScheduleSlot is one weekly recurring time slot of a group.
// Day: "monday" … "sunday". Times are "HH:MM".
type ScheduleSlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GroupID   uuid.UUID `gorm:"type:uuid;not null;index" json:"groupId"`
	Day       string    `gorm:"type:varchar(10);not null" json:"day"`
	StartTime string    `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime   string    `gorm:"type:varchar(5);not null" json:"endTime"`
	Room      *string   `json:"room,omitempty"`
}

// GroupStudent is the enrollment join entity — the single source of truth for
// the student↔group relationship. "Which groups does this student attend" is
// a query over this table, never a second list to keep in sync.
//
// Status: "active" | "dropped" | "completed" | "transferred"
// A partial unique index (group_id, student_id) WHERE status='active' is
// applied as a schema patch; GORM tags cannot express it.
type GroupStudent struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GroupID        uuid.UUID `gorm:"type:uuid;not null;index" json:"groupId"`
	StudentID      uuid.UUID `gorm:"type:uuid;not null;index" json:"studentId"`
	EnrollmentDate time.Time `gorm:"not null" json:"enrollmentDate"`
	Status         string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Student *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// Enrollment statuses
const (
	EnrollmentActive      = "active"
	EnrollmentDropped     = "dropped"
	EnrollmentCompleted   = "completed"
	EnrollmentTransferred = "transferred"
)

// Days accepted in ScheduleSlot.Day, in week order.
var WeekDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
