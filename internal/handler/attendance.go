package handler

import (
	"net/http"

	"droseonline/internal/dto"
	"droseonline/internal/middleware"
	"droseonline/internal/model"
	"droseonline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AttendanceHandler struct {
	svc      service.AttendanceService
	schedule service.ScheduleService
}

func NewAttendanceHandler(svc service.AttendanceService, schedule service.ScheduleService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, schedule: schedule}
}

// CreateSession godoc
// @Summary      Create attendance session
// @Description  Marks attendance for one group on one date. At most one session per (group, date); concurrent duplicates get 409.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateAttendanceRequest true "Session with records"
// @Success      201  {object} dto.AttendanceResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/attendance [post]
func (h *AttendanceHandler) CreateSession(c *gin.Context) {
	var req dto.CreateAttendanceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.CreateSession(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidateSchedule(c, claims)
	c.JSON(http.StatusCreated, resp)
}

// UpdateRecords godoc
// @Summary      Update attendance records
// @Description  Replaces the session's records and rederives present count and revenue. Refused once the session is locked (non-admin) or its revenue is posted.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Session UUID"
// @Param        body body dto.UpdateRecordsRequest true "Records"
// @Success      200  {object} dto.AttendanceResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/attendance/{id}/records [put]
func (h *AttendanceHandler) UpdateRecords(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRecordsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	isAdmin := claims.Role == model.RoleAdmin

	resp, err := h.svc.UpdateRecords(c.Request.Context(), id, actorID, isAdmin, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Lock godoc
// @Summary      Lock session
// @Description  One-way lock that freezes the records and queues the session report mail to the teacher.
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session UUID"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/attendance/{id}/lock [post]
func (h *AttendanceHandler) Lock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.Lock(c.Request.Context(), id, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unlock is admin-only (enforced in the router).
func (h *AttendanceHandler) Unlock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Unlock(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostRevenue godoc
// @Summary      Post session revenue
// @Description  Writes the income ledger entry and increments group/course counters in one transaction. Idempotent — retries get 409.
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session UUID"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/attendance/{id}/post-revenue [post]
func (h *AttendanceHandler) PostRevenue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.PostSessionRevenue(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AttendanceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) List(c *gin.Context) {
	filter := dto.AttendanceFilter{
		GroupID: c.Query("groupId"),
		From:    c.Query("from"),
		To:      c.Query("to"),
	}
	filter.Page, _ = atoiDefault(c.Query("page"), 1)
	filter.Limit, _ = atoiDefault(c.Query("limit"), 20)

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TodaySchedule godoc
// @Summary      Teacher's today view
// @Description  Lists today's scheduled slots for the authenticated teacher, flagging sessions already marked. Cached briefly in Redis.
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.TodaySessionResponse
// @Router       /v1/schedule/today [get]
func (h *AttendanceHandler) TodaySchedule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	teacherID, _ := uuid.Parse(claims.UserID)

	resp, err := h.schedule.TodaySessions(c.Request.Context(), teacherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) invalidateSchedule(c *gin.Context, claims *middleware.JWTClaims) {
	if claims == nil || claims.Role != model.RoleTeacher {
		return
	}
	if teacherID, err := uuid.Parse(claims.UserID); err == nil {
		h.schedule.InvalidateTeacher(c.Request.Context(), teacherID)
	}
}
