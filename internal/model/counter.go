package model

import "fmt"

// Counter backs the per-entity-kind code sequences. The value column is only
// ever touched by an atomic upsert-returning statement (see CounterRepository),
// never by read-then-write.
type Counter struct {
	Name  string `gorm:"primaryKey;type:varchar(10)"`
	Value int64  `gorm:"not null;default:0"`
}

// Code prefixes, one per entity kind. Codes are immutable once assigned.
const (
	PrefixGroup        = "GR"
	PrefixCourse       = "CO"
	PrefixSubject      = "SU"
	PrefixStudent      = "ST"
	PrefixTeacher      = "TE"
	PrefixAdmin        = "AD"
	PrefixAttendance   = "ATT"
	PrefixAcademicYear = "AY"
)

// FormatCode renders the canonical zero-padded code, e.g. GR-000123.
func FormatCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// RolePrefix maps a user role to its code prefix.
func RolePrefix(role string) string {
	switch role {
	case RoleAdmin:
		return PrefixAdmin
	case RoleTeacher:
		return PrefixTeacher
	default:
		return PrefixStudent
	}
}
