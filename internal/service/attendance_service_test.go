package service

import (
	"context"
	"testing"

	"droseonline/internal/dto"
	"droseonline/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attendanceFixture struct {
	svc      AttendanceService
	sessions *stubAttendanceRepo
	groups   *stubGroupRepo
	courses  *stubCourseRepo
	ledger   *stubTransactionRepo
	group    *model.Group
	students []*model.User
}

func defaultBillable() map[string]bool {
	return map[string]bool{model.StatusPresent: true}
}

// buildAttendanceFixture wires the service against in-memory repos with one
// group (price 50.00, grade 7) and `enrolled` active students.
func buildAttendanceFixture(billable map[string]bool, enrolled int) *attendanceFixture {
	users := newStubUserRepo()
	groups := newStubGroupRepo(users)
	courses := newStubCourseRepo()
	sessions := newStubAttendanceRepo(groups)
	ledger := &stubTransactionRepo{}
	counters := newStubCounterRepo()

	group := seedGroup(groups, courses, "Grade 7", decimal.NewFromInt(50), 10)
	f := &attendanceFixture{
		svc:      NewAttendanceService(sessions, groups, courses, ledger, counters, nil, billable, "EGP"),
		sessions: sessions,
		groups:   groups,
		courses:  courses,
		ledger:   ledger,
		group:    group,
	}
	for i := 0; i < enrolled; i++ {
		student := seedStudent(users, uuid.NewString()[:8], "Grade 7")
		enroll(groups, group, student)
		f.students = append(f.students, student)
	}
	return f
}

func (f *attendanceFixture) markAll(status string) []dto.AttendanceRecordRequest {
	records := make([]dto.AttendanceRecordRequest, 0, len(f.students))
	for _, s := range f.students {
		records = append(records, dto.AttendanceRecordRequest{StudentID: s.ID.String(), Status: status})
	}
	return records
}

func TestCreateSession_DerivesRevenueFromBillableRecords(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 5)

	// 3 present, 1 late, 1 absent at 50.00 per session → 150.00.
	records := f.markAll(model.StatusPresent)
	records[3].Status = model.StatusLate
	records[4].Status = model.StatusAbsent

	resp, err := f.svc.CreateSession(context.Background(), uuid.New(), dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     records,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.PresentCount)
	assert.True(t, resp.SessionRevenue.Equal(decimal.NewFromInt(150)),
		"3 present at 50.00 each, got %s", resp.SessionRevenue)
	assert.True(t, resp.IsCompleted)
	assert.False(t, resp.RevenuePosted)
	assert.Equal(t, "ATT-000001", resp.Code)
}

func TestCreateSession_LateAndExcusedNotBillableByDefault(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 3)

	records := f.markAll(model.StatusPresent)
	records[1].Status = model.StatusLate
	records[2].Status = model.StatusExcused

	resp, err := f.svc.CreateSession(context.Background(), uuid.New(), dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     records,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.PresentCount)
	assert.True(t, resp.SessionRevenue.Equal(decimal.NewFromInt(50)))
	// Late and excused still earn attendance credit even when they earn no
	// revenue: 1.0 + 0.8 + 1.0 over three records.
	assert.InDelta(t, 0.933, resp.AttendanceRate, 0.001)
}

func TestCreateSession_WiderBillablePolicyCountsLate(t *testing.T) {
	billable := map[string]bool{model.StatusPresent: true, model.StatusLate: true}
	f := buildAttendanceFixture(billable, 3)

	records := f.markAll(model.StatusPresent)
	records[1].Status = model.StatusLate
	records[2].Status = model.StatusAbsent

	resp, err := f.svc.CreateSession(context.Background(), uuid.New(), dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     records,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.PresentCount)
	assert.True(t, resp.SessionRevenue.Equal(decimal.NewFromInt(100)))
}

func TestCreateSession_DuplicateDateRejected(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 2)
	ctx := context.Background()

	req := dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     f.markAll(model.StatusPresent),
	}
	_, err := f.svc.CreateSession(ctx, uuid.New(), req)
	require.NoError(t, err)

	_, err = f.svc.CreateSession(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, ErrDuplicateSession)

	// A different date is fine.
	req.SessionDate = "2026-03-09"
	_, err = f.svc.CreateSession(ctx, uuid.New(), req)
	assert.NoError(t, err)
}

func TestCreateSession_RejectsStudentOutsideRoster(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 2)

	records := f.markAll(model.StatusPresent)
	records = append(records, dto.AttendanceRecordRequest{
		StudentID: uuid.NewString(),
		Status:    model.StatusPresent,
	})

	_, err := f.svc.CreateSession(context.Background(), uuid.New(), dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     records,
	})
	assert.ErrorIs(t, err, ErrStudentNotInGroup)
}

func TestCreateSession_PartialRosterIsIncomplete(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 4)

	resp, err := f.svc.CreateSession(context.Background(), uuid.New(), dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     f.markAll(model.StatusPresent)[:2],
	})
	require.NoError(t, err)
	assert.False(t, resp.IsCompleted)

	err = f.svc.PostSessionRevenue(context.Background(), uuid.MustParse(resp.ID))
	assert.ErrorIs(t, err, ErrSessionIncomplete)
}

func TestPostSessionRevenue_ExactlyOnce(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 3)
	ctx := context.Background()

	resp, err := f.svc.CreateSession(ctx, uuid.New(), dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     f.markAll(model.StatusPresent),
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(resp.ID)

	require.NoError(t, f.svc.PostSessionRevenue(ctx, sessionID))

	expected := decimal.NewFromInt(150)
	assert.True(t, f.group.TotalRevenue.Equal(expected), "group revenue, got %s", f.group.TotalRevenue)
	assert.Equal(t, 1, f.group.TotalSessionsHeld)
	course := f.courses.courses[f.group.CourseID]
	assert.True(t, course.TotalRevenue.Equal(expected), "course revenue, got %s", course.TotalRevenue)
	assert.Equal(t, 1, course.TotalSessionsHeld)
	require.Len(t, f.ledger.txs, 1)
	entry := f.ledger.txs[0]
	assert.Equal(t, model.TxIncome, entry.Type)
	assert.Equal(t, model.CategoryStudentPayment, entry.Category)
	assert.True(t, entry.Amount.Equal(expected))
	require.NotNil(t, entry.RelatedID)
	assert.Equal(t, sessionID, *entry.RelatedID)

	// A retry must be a no-op: same counters, same single ledger entry.
	err = f.svc.PostSessionRevenue(ctx, sessionID)
	assert.ErrorIs(t, err, ErrRevenueAlreadyPosted)
	assert.True(t, f.group.TotalRevenue.Equal(expected))
	assert.Equal(t, 1, f.group.TotalSessionsHeld)
	assert.Len(t, f.ledger.txs, 1)
}

func TestPostSessionRevenue_NoBillableStudents(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 2)
	ctx := context.Background()

	resp, err := f.svc.CreateSession(ctx, uuid.New(), dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     f.markAll(model.StatusAbsent),
	})
	require.NoError(t, err)
	assert.True(t, resp.IsCompleted)
	assert.Equal(t, 0, resp.PresentCount)

	err = f.svc.PostSessionRevenue(ctx, uuid.MustParse(resp.ID))
	assert.ErrorIs(t, err, ErrNoBillableStudents)
	assert.Empty(t, f.ledger.txs)
}

func TestUpdateRecords_RederivesRevenue(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 3)
	ctx := context.Background()
	teacher := uuid.New()

	records := f.markAll(model.StatusPresent)
	records[2].Status = model.StatusAbsent
	resp, err := f.svc.CreateSession(ctx, teacher, dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     records,
	})
	require.NoError(t, err)
	require.Equal(t, 2, resp.PresentCount)

	// The absent student showed up after all.
	updated, err := f.svc.UpdateRecords(ctx, uuid.MustParse(resp.ID), teacher, false, dto.UpdateRecordsRequest{
		Records: f.markAll(model.StatusPresent),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.PresentCount)
	assert.True(t, updated.SessionRevenue.Equal(decimal.NewFromInt(150)))
}

func TestUpdateRecords_RefusedAfterPosting(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 2)
	ctx := context.Background()
	teacher := uuid.New()

	resp, err := f.svc.CreateSession(ctx, teacher, dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     f.markAll(model.StatusPresent),
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.PostSessionRevenue(ctx, sessionID))

	// Editing records now would desync the already-incremented aggregates.
	_, err = f.svc.UpdateRecords(ctx, sessionID, teacher, true, dto.UpdateRecordsRequest{
		Records: f.markAll(model.StatusAbsent),
	})
	assert.ErrorIs(t, err, ErrRevenueAlreadyPosted)
}

func TestLock_BlocksTeacherEditsButNotAdmin(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 2)
	ctx := context.Background()
	teacher := uuid.New()

	resp, err := f.svc.CreateSession(ctx, teacher, dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     f.markAll(model.StatusPresent),
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(resp.ID)

	require.NoError(t, f.svc.Lock(ctx, sessionID, teacher))
	assert.ErrorIs(t, f.svc.Lock(ctx, sessionID, teacher), ErrSessionLocked)

	_, err = f.svc.UpdateRecords(ctx, sessionID, teacher, false, dto.UpdateRecordsRequest{
		Records: f.markAll(model.StatusAbsent),
	})
	assert.ErrorIs(t, err, ErrSessionLocked)

	// Admins override the lock.
	_, err = f.svc.UpdateRecords(ctx, sessionID, teacher, true, dto.UpdateRecordsRequest{
		Records: f.markAll(model.StatusAbsent),
	})
	assert.NoError(t, err)

	require.NoError(t, f.svc.Unlock(ctx, sessionID))
	assert.ErrorIs(t, f.svc.Unlock(ctx, sessionID), ErrSessionNotLocked)
}

func TestCreateSession_SnapshotsPriceAtMarkingTime(t *testing.T) {
	f := buildAttendanceFixture(defaultBillable(), 2)
	ctx := context.Background()

	resp, err := f.svc.CreateSession(ctx, uuid.New(), dto.CreateAttendanceRequest{
		GroupID:     f.group.ID.String(),
		SessionDate: "2026-03-02",
		Records:     f.markAll(model.StatusPresent),
	})
	require.NoError(t, err)

	// Raising the group price later never rewrites past sessions.
	f.group.PricePerSession = decimal.NewFromInt(80)

	got, err := f.svc.Get(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.True(t, got.PricePerSession.Equal(decimal.NewFromInt(50)))
	assert.True(t, got.SessionRevenue.Equal(decimal.NewFromInt(100)))
}
