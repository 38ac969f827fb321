package service

import (
	"bytes"
	"context"
	"testing"

	"droseonline/internal/dto"
	"droseonline/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountingFixture struct {
	svc      AccountingService
	users    *stubUserRepo
	groups   *stubGroupRepo
	courses  *stubCourseRepo
	ledger   *stubTransactionRepo
	payments *stubPaymentRepo
}

func buildAccountingFixture() *accountingFixture {
	users := newStubUserRepo()
	groups := newStubGroupRepo(users)
	courses := newStubCourseRepo()
	ledger := &stubTransactionRepo{}
	payments := &stubPaymentRepo{}
	return &accountingFixture{
		svc:      NewAccountingService(ledger, payments, groups, users, "EGP"),
		users:    users,
		groups:   groups,
		courses:  courses,
		ledger:   ledger,
		payments: payments,
	}
}

func TestRecordPayment_WritesPaymentAndLedgerEntry(t *testing.T) {
	f := buildAccountingFixture()
	group := seedGroup(f.groups, f.courses, "Grade 7", decimal.NewFromInt(50), 10)
	student := seedStudent(f.users, "hany", "Grade 7")
	enroll(f.groups, group, student)

	resp, err := f.svc.RecordPayment(context.Background(), uuid.New(), dto.RecordPaymentRequest{
		StudentID:   student.ID.String(),
		GroupID:     group.ID.String(),
		Amount:      decimal.NewFromInt(400),
		CoversMonth: "2026-08",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-08", resp.CoversMonth)
	assert.Equal(t, "cash", resp.PaymentMethod)

	require.Len(t, f.payments.payments, 1)
	require.Len(t, f.ledger.txs, 1)
	entry := f.ledger.txs[0]
	assert.Equal(t, model.TxIncome, entry.Type)
	assert.Equal(t, model.CategoryStudentPayment, entry.Category)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(400)))
}

func TestRecordPayment_RequiresActiveEnrollment(t *testing.T) {
	f := buildAccountingFixture()
	group := seedGroup(f.groups, f.courses, "Grade 7", decimal.NewFromInt(50), 10)
	student := seedStudent(f.users, "laila", "Grade 7")

	_, err := f.svc.RecordPayment(context.Background(), uuid.New(), dto.RecordPaymentRequest{
		StudentID:   student.ID.String(),
		GroupID:     group.ID.String(),
		Amount:      decimal.NewFromInt(400),
		CoversMonth: "2026-08",
	})
	assert.ErrorIs(t, err, ErrNotEnrolled)
	assert.Empty(t, f.payments.payments)
	assert.Empty(t, f.ledger.txs)
}

func TestRecordExpense(t *testing.T) {
	f := buildAccountingFixture()

	resp, err := f.svc.RecordExpense(context.Background(), uuid.New(), dto.RecordExpenseRequest{
		Category: "rent",
		Amount:   decimal.NewFromInt(3000),
		Title:    "August rent",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TxExpense, resp.Type)
	assert.Equal(t, "completed", resp.Status)
	assert.Len(t, f.ledger.txs, 1)
}

func TestSummary_NetAndGroupBreakdown(t *testing.T) {
	f := buildAccountingFixture()
	group := seedGroup(f.groups, f.courses, "Grade 7", decimal.NewFromInt(50), 10)
	group.TotalRevenue = decimal.NewFromInt(500)
	group.TotalSessionsHeld = 10
	// Groups that never held a session stay out of the breakdown.
	seedGroup(f.groups, f.courses, "Grade 8", decimal.NewFromInt(60), 10)

	f.ledger.txs = append(f.ledger.txs,
		model.FinancialTransaction{ID: uuid.New(), Type: model.TxIncome, Amount: decimal.NewFromInt(500)},
		model.FinancialTransaction{ID: uuid.New(), Type: model.TxExpense, Amount: decimal.NewFromInt(120)},
	)

	resp, err := f.svc.Summary(context.Background(), "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	assert.True(t, resp.TotalIncome.Equal(decimal.NewFromInt(500)))
	assert.True(t, resp.TotalExpense.Equal(decimal.NewFromInt(120)))
	assert.True(t, resp.Net.Equal(decimal.NewFromInt(380)))
	require.Len(t, resp.ByGroup, 1)
	assert.Equal(t, group.ID.String(), resp.ByGroup[0].GroupID)
	assert.Equal(t, 10, resp.ByGroup[0].SessionsHeld)
}

func TestMonthlyReportPDF(t *testing.T) {
	f := buildAccountingFixture()
	group := seedGroup(f.groups, f.courses, "Grade 7", decimal.NewFromInt(50), 10)
	group.TotalRevenue = decimal.NewFromInt(500)
	group.TotalSessionsHeld = 10

	out, err := f.svc.MonthlyReportPDF(context.Background(), "2026-08")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "expected a PDF document")

	_, err = f.svc.MonthlyReportPDF(context.Background(), "August 2026")
	assert.Error(t, err)
}
