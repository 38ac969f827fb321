package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCourseRequest struct {
	Name           string  `json:"name"           validate:"required,min=2,max=100"`
	Description    *string `json:"description"    validate:"omitempty,max=500"`
	SubjectID      string  `json:"subjectId"      validate:"required,uuid"`
	TeacherID      string  `json:"teacherId"      validate:"required,uuid"`
	AcademicYearID string  `json:"academicYearId" validate:"required,uuid"`
}

type UpdateCourseRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	TeacherID   *string `json:"teacherId"   validate:"omitempty,uuid"`
	IsActive    *bool   `json:"isActive"`
}

type CreateSubjectRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CreateAcademicYearRequest struct {
	Name      string `json:"name"      validate:"required,min=4,max=20"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate"   validate:"required,datetime=2006-01-02"`
	IsCurrent bool   `json:"isCurrent"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CourseResponse struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	SubjectID         string          `json:"subjectId"`
	SubjectName       string          `json:"subjectName,omitempty"`
	TeacherID         string          `json:"teacherId"`
	TeacherName       string          `json:"teacherName,omitempty"`
	AcademicYearID    string          `json:"academicYearId"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalSessionsHeld int             `json:"totalSessionsHeld"`
	IsActive          bool            `json:"isActive"`
}

type SubjectResponse struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    bool    `json:"isActive"`
}

type AcademicYearResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsCurrent bool   `json:"isCurrent"`
}

// TodaySessionResponse is one entry of the teacher's today view.
type TodaySessionResponse struct {
	GroupID    string  `json:"groupId"`
	GroupName  string  `json:"groupName"`
	GroupCode  string  `json:"groupCode"`
	GradeLevel string  `json:"gradeLevel"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Room       *string `json:"room"`
	Marked     bool    `json:"marked"` // attendance already created today
}
