package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"droseonline/internal/apierror"
	"droseonline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps business-rule errors to HTTP statuses. Anything outside
// the taxonomy is a 500 with a generic body; the real error goes to the log
// via the ErrorHandler middleware.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrYearNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateEnrollment),
		errors.Is(err, service.ErrDuplicateSession),
		errors.Is(err, service.ErrGroupFull),
		errors.Is(err, service.ErrGroupHasStudents),
		errors.Is(err, service.ErrSessionLocked),
		errors.Is(err, service.ErrSessionNotLocked),
		errors.Is(err, service.ErrSessionIncomplete),
		errors.Is(err, service.ErrRevenueAlreadyPosted),
		errors.Is(err, service.ErrNoBillableStudents):
		status = http.StatusConflict
	case errors.Is(err, service.ErrGradeMismatch),
		errors.Is(err, service.ErrNotEnrolled),
		errors.Is(err, service.ErrInvalidGrade),
		errors.Is(err, service.ErrStudentNotInGroup):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	default:
		c.Error(err) // surfaces via ErrorHandler as a 500
		c.Abort()
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

// atoiDefault parses a query param, falling back to def on empty or junk.
func atoiDefault(s string, def int) (int, bool) {
	if s == "" {
		return def, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def, false
	}
	return n, true
}

// pathID parses a path param as a UUID, writing the 400 on failure.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
