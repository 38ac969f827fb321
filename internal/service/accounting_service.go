package service

import (
	"context"
	"fmt"
	"time"

	"droseonline/internal/dto"
	"droseonline/internal/infra"
	"droseonline/internal/model"
	"droseonline/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountingService interface {
	Summary(ctx context.Context, from, to string) (*dto.AccountingSummaryResponse, error)
	RecordExpense(ctx context.Context, actorID uuid.UUID, req dto.RecordExpenseRequest) (*dto.TransactionResponse, error)
	// RecordPayment writes the payment row and its income ledger entry in one
	// transaction.
	RecordPayment(ctx context.Context, actorID uuid.UUID, req dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
	ListPayments(ctx context.Context, groupID, studentID *uuid.UUID, page, limit int) ([]dto.PaymentResponse, int64, error)
	// MonthlyReportPDF renders the accounting summary for one month ("2026-08")
	// as a PDF.
	MonthlyReportPDF(ctx context.Context, month string) ([]byte, error)
}

type accountingService struct {
	txRepo      repository.TransactionRepository
	paymentRepo repository.PaymentRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	currency    string
}

func NewAccountingService(
	txRepo repository.TransactionRepository,
	paymentRepo repository.PaymentRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	currency string,
) AccountingService {
	return &accountingService{
		txRepo:      txRepo,
		paymentRepo: paymentRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		currency:    currency,
	}
}

func (s *accountingService) Summary(ctx context.Context, from, to string) (*dto.AccountingSummaryResponse, error) {
	income, expense, err := s.txRepo.Sums(ctx, from, to)
	if err != nil {
		return nil, err
	}
	resp := &dto.AccountingSummaryResponse{
		From:         from,
		To:           to,
		TotalIncome:  income,
		TotalExpense: expense,
		Net:          income.Sub(expense),
		ByGroup:      []dto.GroupRevenueLine{},
	}

	// Per-group lines come from the aggregate counters, which the posting
	// transaction keeps in lockstep with the ledger.
	groups, err := s.groupRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].TotalSessionsHeld == 0 && groups[i].TotalRevenue.IsZero() {
			continue
		}
		resp.ByGroup = append(resp.ByGroup, dto.GroupRevenueLine{
			GroupID:      groups[i].ID.String(),
			GroupName:    groups[i].Name,
			Revenue:      groups[i].TotalRevenue,
			SessionsHeld: groups[i].TotalSessionsHeld,
		})
	}
	return resp, nil
}

func (s *accountingService) RecordExpense(ctx context.Context, actorID uuid.UUID, req dto.RecordExpenseRequest) (*dto.TransactionResponse, error) {
	method := req.PaymentMethod
	if method == "" {
		method = "cash"
	}
	entry := &model.FinancialTransaction{
		Type:            model.TxExpense,
		Category:        req.Category,
		TeacherID:       actorID,
		Amount:          req.Amount,
		Currency:        s.currency,
		Title:           req.Title,
		Description:     req.Description,
		TransactionDate: time.Now(),
		PaymentMethod:   method,
		Status:          "completed",
	}
	if err := s.txRepo.Create(ctx, nil, entry); err != nil {
		return nil, err
	}
	return toTransactionResponse(entry), nil
}

func (s *accountingService) RecordPayment(ctx context.Context, actorID uuid.UUID, req dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("studentId: %w", err)
	}
	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("groupId: %w", err)
	}
	student, err := s.userRepo.FindStudent(ctx, studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}
	group, err := s.groupRepo.FindBasic(ctx, nil, groupID)
	if err != nil {
		return nil, ErrGroupNotFound
	}
	if _, err := s.groupRepo.FindActiveEnrollment(ctx, groupID, studentID); err != nil {
		return nil, ErrNotEnrolled
	}

	method := req.PaymentMethod
	if method == "" {
		method = "cash"
	}
	payment := &model.StudentPayment{
		StudentID:     studentID,
		GroupID:       groupID,
		Amount:        req.Amount,
		Currency:      s.currency,
		PaymentMethod: method,
		CoversMonth:   req.CoversMonth,
		Note:          req.Note,
		RecordedBy:    actorID,
	}

	txErr := runTx(ctx, s.groupRepo.DB(), func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return err
		}
		desc := fmt.Sprintf("Monthly payment %s from %s", req.CoversMonth, student.FullName())
		entry := &model.FinancialTransaction{
			Type:            model.TxIncome,
			Category:        model.CategoryStudentPayment,
			TeacherID:       group.Course.TeacherID,
			Amount:          req.Amount,
			Currency:        s.currency,
			Title:           "Student Payment - " + group.Name,
			Description:     &desc,
			TransactionDate: time.Now(),
			PaymentMethod:   method,
			Status:          "completed",
		}
		return s.txRepo.Create(ctx, tx, entry)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.PaymentResponse{
		ID:            payment.ID.String(),
		StudentID:     studentID.String(),
		StudentName:   student.FullName(),
		GroupID:       groupID.String(),
		GroupName:     group.Name,
		Amount:        payment.Amount,
		CoversMonth:   payment.CoversMonth,
		PaymentMethod: payment.PaymentMethod,
		CreatedAt:     payment.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *accountingService) ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	txs, total, err := s.txRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.TransactionListResponse{Total: total, Page: filter.Page, Limit: filter.Limit, Data: []dto.TransactionResponse{}}
	for i := range txs {
		resp.Data = append(resp.Data, *toTransactionResponse(&txs[i]))
	}
	return resp, nil
}

func (s *accountingService) ListPayments(ctx context.Context, groupID, studentID *uuid.UUID, page, limit int) ([]dto.PaymentResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	payments, total, err := s.paymentRepo.List(ctx, groupID, studentID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		r := dto.PaymentResponse{
			ID:            p.ID.String(),
			StudentID:     p.StudentID.String(),
			GroupID:       p.GroupID.String(),
			Amount:        p.Amount,
			CoversMonth:   p.CoversMonth,
			PaymentMethod: p.PaymentMethod,
			CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		}
		if p.Student != nil {
			r.StudentName = p.Student.FullName()
		}
		if p.Group != nil {
			r.GroupName = p.Group.Name
		}
		out = append(out, r)
	}
	return out, total, nil
}

func (s *accountingService) MonthlyReportPDF(ctx context.Context, month string) ([]byte, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("month: %w", err)
	}
	end := start.AddDate(0, 1, -1)
	from, to := start.Format("2006-01-02"), end.Format("2006-01-02")

	summary, err := s.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	data := infra.AccountingReport{
		Title:        "Monthly Accounting Report",
		Period:       month,
		Currency:     s.currency,
		TotalIncome:  summary.TotalIncome,
		TotalExpense: summary.TotalExpense,
		Net:          summary.Net,
	}
	for _, line := range summary.ByGroup {
		data.Lines = append(data.Lines, infra.ReportLine{
			Label:    line.GroupName,
			Sessions: line.SessionsHeld,
			Amount:   line.Revenue,
		})
	}
	return infra.RenderAccountingReport(data)
}

func toTransactionResponse(t *model.FinancialTransaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:              t.ID.String(),
		Type:            t.Type,
		Category:        t.Category,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Title:           t.Title,
		Description:     t.Description,
		TransactionDate: t.TransactionDate.Format("2006-01-02"),
		PaymentMethod:   t.PaymentMethod,
		Status:          t.Status,
		RelatedType:     t.RelatedType,
	}
	if t.RelatedID != nil {
		id := t.RelatedID.String()
		resp.RelatedID = &id
	}
	return resp
}
