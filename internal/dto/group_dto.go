package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ScheduleSlotRequest struct {
	Day       string  `json:"day"       validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string  `json:"startTime" validate:"required,len=5"`
	EndTime   string  `json:"endTime"   validate:"required,len=5"`
	Room      *string `json:"room"`
}

type CreateGroupRequest struct {
	Name            string                `json:"name"            validate:"required,min=2,max=100"`
	Description     *string               `json:"description"     validate:"omitempty,max=500"`
	CourseID        string                `json:"courseId"        validate:"required,uuid"`
	GradeLevel      string                `json:"gradeLevel"      validate:"required"`
	PricePerSession decimal.Decimal       `json:"pricePerSession" validate:"min=0"`
	Capacity        int                   `json:"capacity"        validate:"required,min=1,max=100"`
	Schedule        []ScheduleSlotRequest `json:"schedule"        validate:"required,min=1,dive"`
}

type UpdateGroupRequest struct {
	Name            *string               `json:"name"            validate:"omitempty,min=2,max=100"`
	Description     *string               `json:"description"     validate:"omitempty,max=500"`
	GradeLevel      *string               `json:"gradeLevel"`
	PricePerSession *decimal.Decimal      `json:"pricePerSession" validate:"omitempty"`
	Capacity        *int                  `json:"capacity"        validate:"omitempty,min=1,max=100"`
	Schedule        []ScheduleSlotRequest `json:"schedule"        validate:"omitempty,dive"`
	IsActive        *bool                 `json:"isActive"`
}

type AddStudentRequest struct {
	StudentID string `json:"studentId" validate:"required,uuid"`
}

type ScheduleConflictRequest struct {
	CourseID       string                `json:"courseId"       validate:"required,uuid"`
	Schedule       []ScheduleSlotRequest `json:"schedule"       validate:"required,min=1,dive"`
	ExcludeGroupID *string               `json:"excludeGroupId" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GroupStudentResponse struct {
	StudentID      string `json:"studentId"`
	StudentName    string `json:"studentName"`
	StudentCode    string `json:"studentCode"`
	EnrollmentDate string `json:"enrollmentDate"`
	Status         string `json:"status"`
}

type GroupResponse struct {
	ID                string                 `json:"id"`
	Code              string                 `json:"code"`
	Name              string                 `json:"name"`
	Description       *string                `json:"description"`
	CourseID          string                 `json:"courseId"`
	CourseName        string                 `json:"courseName,omitempty"`
	TeacherName       string                 `json:"teacherName,omitempty"`
	SubjectName       string                 `json:"subjectName,omitempty"`
	GradeLevel        string                 `json:"gradeLevel"`
	PricePerSession   decimal.Decimal        `json:"pricePerSession"`
	Capacity          int                    `json:"capacity"`
	CurrentEnrollment int                    `json:"currentEnrollment"`
	AvailableSpots    int                    `json:"availableSpots"`
	TotalRevenue      decimal.Decimal        `json:"totalRevenue"`
	TotalSessionsHeld int                    `json:"totalSessionsHeld"`
	IsActive          bool                   `json:"isActive"`
	Schedule          []ScheduleSlotRequest  `json:"schedule"`
	Students          []GroupStudentResponse `json:"students,omitempty"`
}

// ScheduleConflict describes one overlapping slot found by the conflict check.
type ScheduleConflict struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type ScheduleConflictResponse struct {
	HasConflict bool               `json:"hasConflict"`
	Conflicts   []ScheduleConflict `json:"conflicts"`
}
