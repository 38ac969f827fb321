package service

import "errors"

// Business-rule errors. Handlers translate these to HTTP statuses with
// errors.Is; anything not in this taxonomy surfaces as a 500.
var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrYearNotFound       = errors.New("academic year not found")
	ErrSessionNotFound    = errors.New("attendance session not found")
	ErrUserNotFound       = errors.New("user not found")

	ErrDuplicateEnrollment = errors.New("student is already enrolled in this group")
	ErrNotEnrolled         = errors.New("student has no active enrollment in this group")
	ErrGradeMismatch       = errors.New("student grade does not match the group grade level")
	ErrGroupFull           = errors.New("group is at full capacity")
	ErrGroupHasStudents    = errors.New("group still has active students enrolled")

	ErrDuplicateSession      = errors.New("an attendance session already exists for this group and date")
	ErrSessionLocked         = errors.New("attendance session is locked")
	ErrSessionNotLocked      = errors.New("attendance session is not locked")
	ErrSessionIncomplete     = errors.New("attendance session is not completed")
	ErrRevenueAlreadyPosted  = errors.New("session revenue was already posted")
	ErrNoBillableStudents    = errors.New("session has no billable students")
	ErrInvalidGrade          = errors.New("invalid grade level")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrStudentNotInGroup     = errors.New("record references a student not enrolled in this group")
)
