package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AttendanceRecordRequest struct {
	StudentID   string  `json:"studentId"   validate:"required,uuid"`
	Status      string  `json:"status"      validate:"required,oneof=present absent late excused"`
	MinutesLate int     `json:"minutesLate" validate:"min=0,max=240"`
	Note        *string `json:"note"        validate:"omitempty,max=500"`
}

type CreateAttendanceRequest struct {
	GroupID       string                    `json:"groupId"       validate:"required,uuid"`
	SessionDate   string                    `json:"sessionDate"   validate:"required,datetime=2006-01-02"`
	ScheduleIndex int                       `json:"scheduleIndex" validate:"min=0"`
	Records       []AttendanceRecordRequest `json:"records"       validate:"required,min=1,dive"`
}

type UpdateRecordsRequest struct {
	Records []AttendanceRecordRequest `json:"records" validate:"required,min=1,dive"`
}

type AttendanceFilter struct {
	GroupID string
	From    string
	To      string
	Page    int
	Limit   int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AttendanceRecordResponse struct {
	StudentID   string  `json:"studentId"`
	StudentName string  `json:"studentName"`
	Status      string  `json:"status"`
	MinutesLate int     `json:"minutesLate"`
	Note        *string `json:"note"`
	MarkedAt    string  `json:"markedAt"`
}

type AttendanceResponse struct {
	ID              string                     `json:"id"`
	Code            string                     `json:"code"`
	GroupID         string                     `json:"groupId"`
	GroupName       string                     `json:"groupName,omitempty"`
	SessionDate     string                     `json:"sessionDate"`
	ScheduleIndex   int                        `json:"scheduleIndex"`
	PricePerSession decimal.Decimal            `json:"pricePerSession"`
	PresentCount    int                        `json:"presentCount"`
	SessionRevenue  decimal.Decimal            `json:"sessionRevenue"`
	AttendanceRate  float64                    `json:"attendanceRate"`
	IsCompleted     bool                       `json:"isCompleted"`
	IsLocked        bool                       `json:"isLocked"`
	RevenuePosted   bool                       `json:"revenuePosted"`
	Records         []AttendanceRecordResponse `json:"records,omitempty"`
}

type AttendanceListResponse struct {
	Data  []AttendanceResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
