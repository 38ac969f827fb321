package handler

import (
	"net/http"
	"time"

	"droseonline/internal/apierror"
	"droseonline/internal/dto"
	"droseonline/internal/middleware"
	"droseonline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AccountingHandler struct {
	svc   service.AccountingService
	audit service.AuditService
}

func NewAccountingHandler(svc service.AccountingService, audit service.AuditService) *AccountingHandler {
	return &AccountingHandler{svc: svc, audit: audit}
}

// Summary godoc
// @Summary      Accounting summary
// @Description  Income/expense totals over a date range plus the per-group revenue breakdown.
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "YYYY-MM-DD (default: first of current month)"
// @Param        to   query string false "YYYY-MM-DD (default: today)"
// @Success      200  {object} dto.AccountingSummaryResponse
// @Router       /v1/accounting/summary [get]
func (h *AccountingHandler) Summary(c *gin.Context) {
	now := time.Now()
	from := c.DefaultQuery("from", time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"))
	to := c.DefaultQuery("to", now.Format("2006-01-02"))

	resp, err := h.svc.Summary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordExpense godoc
// @Summary      Record expense
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordExpenseRequest true "Expense"
// @Success      201  {object} dto.TransactionResponse
// @Router       /v1/accounting/expenses [post]
func (h *AccountingHandler) RecordExpense(c *gin.Context) {
	var req dto.RecordExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RecordExpense(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordPayment godoc
// @Summary      Record student payment
// @Description  Records money received from a student for a group; the income ledger entry is written in the same transaction.
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordPaymentRequest true "Payment"
// @Success      201  {object} dto.PaymentResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/accounting/payments [post]
func (h *AccountingHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RecordPayment(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AccountingHandler) ListTransactions(c *gin.Context) {
	filter := dto.TransactionFilter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
		From:     c.Query("from"),
		To:       c.Query("to"),
	}
	filter.Page, _ = atoiDefault(c.Query("page"), 1)
	filter.Limit, _ = atoiDefault(c.Query("limit"), 20)

	resp, err := h.svc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AccountingHandler) ListPayments(c *gin.Context) {
	var groupID, studentID *uuid.UUID
	if s := c.Query("groupId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid groupId"))
			return
		}
		groupID = &id
	}
	if s := c.Query("studentId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid studentId"))
			return
		}
		studentID = &id
	}
	page, _ := atoiDefault(c.Query("page"), 1)
	limit, _ := atoiDefault(c.Query("limit"), 20)

	payments, total, err := h.svc.ListPayments(c.Request.Context(), groupID, studentID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments, "total": total, "page": page, "limit": limit})
}

// MonthlyReport godoc
// @Summary      Monthly accounting report (PDF)
// @Tags         accounting
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        month query string true "YYYY-MM"
// @Success      200
// @Router       /v1/accounting/report [get]
func (h *AccountingHandler) MonthlyReport(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	pdf, err := h.svc.MonthlyReportPDF(c.Request.Context(), month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="accounting-`+month+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// AuditDetect godoc
// @Summary      Detect revenue drift
// @Description  Read-only pass comparing sessions, ledger entries, and aggregate counters.
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} service.AuditReport
// @Router       /v1/accounting/audit [get]
func (h *AccountingHandler) AuditDetect(c *gin.Context) {
	report, err := h.audit.Detect(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AuditRepair godoc
// @Summary      Repair revenue drift
// @Description  Posts unposted sessions through the normal path and reconciles counters. Idempotent.
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} service.AuditReport
// @Router       /v1/accounting/audit/repair [post]
func (h *AccountingHandler) AuditRepair(c *gin.Context) {
	report, err := h.audit.Repair(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
