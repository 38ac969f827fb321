package handler

import (
	"net/http"

	"droseonline/internal/dto"
	"droseonline/internal/service"

	"github.com/gin-gonic/gin"
)

type GroupsHandler struct{ svc service.GroupService }

func NewGroupsHandler(svc service.GroupService) *GroupsHandler { return &GroupsHandler{svc: svc} }

// Create godoc
// @Summary      Create group
// @Description  Creates a teaching group under a course with a weekly schedule. A GR-###### code is assigned atomically.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateGroupRequest true "Group"
// @Success      201  {object} dto.GroupResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/groups [post]
func (h *GroupsHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GroupsHandler) Get(c *gin.Context) {
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

func (h *GroupsHandler) List(c *gin.Context) {
	onlyActive := c.DefaultQuery("active", "true") == "true"
	resp, err := h.svc.List(c.Request.Context(), onlyActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GroupsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Deactivate group
// @Description  Soft-deletes a group. Refused with 409 while students remain enrolled.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Group UUID"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/groups/{id} [delete]
func (h *GroupsHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddStudent godoc
// @Summary      Enroll student
// @Description  Enrolls a student into the group. Grade level must match and the group must have a free seat.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Group UUID"
// @Param        body body dto.AddStudentRequest  true "Student"
// @Success      200  {object} dto.GroupResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/groups/{id}/students [post]
func (h *GroupsHandler) AddStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddStudentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddStudent(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GroupsHandler) RemoveStudent(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	if err := h.svc.RemoveStudent(c.Request.Context(), groupID, studentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StudentGroups godoc
// @Summary      Groups of a student
// @Description  Derived view over active enrollments — always symmetric with the group rosters.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Student UUID"
// @Success      200  {array} dto.GroupResponse
// @Router       /v1/students/{id}/groups [get]
func (h *GroupsHandler) StudentGroups(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.StudentGroups(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckConflict godoc
// @Summary      Check schedule conflicts
// @Description  Reports overlapping slots across all groups taught by the course's teacher.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ScheduleConflictRequest true "Proposed schedule"
// @Success      200  {object} dto.ScheduleConflictResponse
// @Router       /v1/groups/check-schedule-conflict [post]
func (h *GroupsHandler) CheckConflict(c *gin.Context) {
	var req dto.ScheduleConflictRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CheckScheduleConflict(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
