package handler

import (
	"net/http"

	"droseonline/internal/dto"
	"droseonline/internal/service"

	"github.com/gin-gonic/gin"
)

type CoursesHandler struct{ svc service.CourseService }

func NewCoursesHandler(svc service.CourseService) *CoursesHandler { return &CoursesHandler{svc: svc} }

// ── Courses ───────────────────────────────────────────────────────────────────

// Create godoc
// @Summary      Create course
// @Description  Binds a subject to a teacher within an academic year. A CO-###### code is assigned atomically.
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateCourseRequest true "Course"
// @Success      201  {object} dto.CourseResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/courses [post]
func (h *CoursesHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
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

func (h *CoursesHandler) Get(c *gin.Context) {
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

func (h *CoursesHandler) List(c *gin.Context) {
	onlyActive := c.DefaultQuery("active", "true") == "true"
	resp, err := h.svc.List(c.Request.Context(), onlyActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CoursesHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
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

// ── Subjects ──────────────────────────────────────────────────────────────────

func (h *CoursesHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSubject(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CoursesHandler) ListSubjects(c *gin.Context) {
	onlyActive := c.DefaultQuery("active", "true") == "true"
	resp, err := h.svc.ListSubjects(c.Request.Context(), onlyActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Academic years ────────────────────────────────────────────────────────────

func (h *CoursesHandler) CreateAcademicYear(c *gin.Context) {
	var req dto.CreateAcademicYearRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateAcademicYear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CoursesHandler) ListAcademicYears(c *gin.Context) {
	resp, err := h.svc.ListAcademicYears(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CoursesHandler) SetCurrentYear(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetCurrentYear(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
