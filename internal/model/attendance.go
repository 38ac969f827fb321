package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Attendance is one teaching session of a group on one calendar date.
// A unique index on (group_id, session_date) guarantees at most one session
// per pair; a concurrent duplicate create surfaces as a unique violation that
// the service maps to ErrDuplicateSession.
//
// PresentCount and SessionRevenue are derived on every save from Records and
// the PricePerSession snapshot — they are never independently settable.
// RevenuePostedAt marks that the group/course aggregates were incremented for
// this session; posting is refused once it is set.
type Attendance struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code string    `gorm:"type:varchar(12);uniqueIndex;not null" json:"code"` // ATT-######

	GroupID       uuid.UUID `gorm:"type:uuid;not null;index:idx_attendance_session,unique" json:"groupId"`
	SessionDate   time.Time `gorm:"type:date;not null;index:idx_attendance_session,unique" json:"sessionDate"`
	ScheduleIndex int       `gorm:"not null;default:0" json:"scheduleIndex"`

	TeacherID uuid.UUID `gorm:"type:uuid;not null;index" json:"teacherId"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null" json:"subjectId"`

	// PricePerSession snapshots the group's price at marking time. Later
	// price edits never rewrite past sessions.
	PricePerSession decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pricePerSession"`
	PresentCount    int             `gorm:"not null;default:0" json:"presentCount"`
	SessionRevenue  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"sessionRevenue"`

	IsCompleted     bool       `gorm:"not null;default:false" json:"isCompleted"`
	IsLocked        bool       `gorm:"not null;default:false" json:"isLocked"`
	LockedAt        *time.Time `json:"lockedAt,omitempty"`
	LockedBy        *uuid.UUID `gorm:"type:uuid" json:"lockedBy,omitempty"`
	RevenuePostedAt *time.Time `json:"revenuePostedAt,omitempty"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Group   *Group             `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Records []AttendanceRecord `gorm:"foreignKey:AttendanceID" json:"records,omitempty"`
}

// AttendanceRecord is one student's mark within a session.
// Status: "present" | "absent" | "late" | "excused"
type AttendanceRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AttendanceID uuid.UUID `gorm:"type:uuid;not null;index:idx_record_student,unique" json:"attendanceId"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;index:idx_record_student,unique" json:"studentId"`
	Status       string    `gorm:"type:varchar(10);not null" json:"status"`
	MinutesLate  int       `gorm:"not null;default:0" json:"minutesLate"`
	Note         *string   `json:"note,omitempty"`
	MarkedAt     time.Time `gorm:"not null" json:"markedAt"`
	MarkedBy     uuid.UUID `gorm:"type:uuid;not null" json:"markedBy"`

	Student *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

// ValidAttendanceStatus reports whether s is a known status.
func ValidAttendanceStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// AttendanceValue is the weight a record contributes to the attendance-rate
// statistic. Deliberately broader than the revenue policy: late and excused
// earn attendance credit but (under the default policy) no revenue.
func (r *AttendanceRecord) AttendanceValue() float64 {
	switch r.Status {
	case StatusPresent:
		return 1.0
	case StatusLate:
		if r.MinutesLate <= 15 {
			return 0.8
		}
		return 0.5
	case StatusExcused:
		return 1.0
	default:
		return 0.0
	}
}
