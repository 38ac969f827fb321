package service

import (
	"context"
	"fmt"
	"time"

	"droseonline/internal/dto"
	"droseonline/internal/model"
	"droseonline/internal/repository"
	"droseonline/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AttendanceService interface {
	CreateSession(ctx context.Context, teacherID uuid.UUID, req dto.CreateAttendanceRequest) (*dto.AttendanceResponse, error)
	UpdateRecords(ctx context.Context, id, actorID uuid.UUID, isAdmin bool, req dto.UpdateRecordsRequest) (*dto.AttendanceResponse, error)
	Lock(ctx context.Context, id, actorID uuid.UUID) error
	Unlock(ctx context.Context, id uuid.UUID) error
	// PostSessionRevenue applies the attendance→aggregate update exactly once:
	// one transaction spanning the ledger insert, both counter increments, and
	// the posted marker.
	PostSessionRevenue(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.AttendanceResponse, error)
	List(ctx context.Context, filter dto.AttendanceFilter) (*dto.AttendanceListResponse, error)
}

type attendanceService struct {
	repo       repository.AttendanceRepository
	groupRepo  repository.GroupRepository
	courseRepo repository.CourseRepository
	txRepo     repository.TransactionRepository
	counters   repository.CounterRepository
	dispatcher *worker.Dispatcher
	billable   map[string]bool
	currency   string
}

func NewAttendanceService(
	repo repository.AttendanceRepository,
	groupRepo repository.GroupRepository,
	courseRepo repository.CourseRepository,
	txRepo repository.TransactionRepository,
	counters repository.CounterRepository,
	dispatcher *worker.Dispatcher,
	billable map[string]bool,
	currency string,
) AttendanceService {
	return &attendanceService{
		repo:       repo,
		groupRepo:  groupRepo,
		courseRepo: courseRepo,
		txRepo:     txRepo,
		counters:   counters,
		dispatcher: dispatcher,
		billable:   billable,
		currency:   currency,
	}
}

// ── CreateSession ─────────────────────────────────────────────────────────────
// One session per (group, date). The unique index is the arbiter for
// concurrent creates: the loser of the race gets ErrDuplicateSession and must
// fetch-and-update instead.

func (s *attendanceService) CreateSession(ctx context.Context, teacherID uuid.UUID, req dto.CreateAttendanceRequest) (*dto.AttendanceResponse, error) {
	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("groupId: %w", err)
	}
	sessionDate, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		return nil, fmt.Errorf("sessionDate: %w", err)
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, ErrGroupNotFound
	}

	// Fast-path duplicate check; the unique index still backstops the race.
	if exists, err := s.repo.ExistsForGroupAndDate(ctx, groupID, sessionDate); err == nil && exists {
		return nil, ErrDuplicateSession
	}

	records, err := s.buildRecords(group, teacherID, req.Records)
	if err != nil {
		return nil, err
	}

	session := &model.Attendance{
		GroupID:         groupID,
		SessionDate:     sessionDate,
		ScheduleIndex:   req.ScheduleIndex,
		TeacherID:       group.Course.TeacherID,
		SubjectID:       group.Course.SubjectID,
		PricePerSession: group.PricePerSession,
		Records:         records,
	}
	s.derive(session, records)
	session.IsCompleted = len(records) >= group.CurrentEnrollment && group.CurrentEnrollment > 0

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		code, err := s.counters.NextCode(ctx, tx, model.PrefixAttendance)
		if err != nil {
			return err
		}
		session.Code = code
		return s.repo.Create(ctx, tx, session)
	})
	if txErr != nil {
		if repository.IsUniqueViolation(txErr) {
			return nil, ErrDuplicateSession
		}
		return nil, txErr
	}

	return s.toResponse(session, group.Name), nil
}

// ── UpdateRecords ─────────────────────────────────────────────────────────────

func (s *attendanceService) UpdateRecords(ctx context.Context, id, actorID uuid.UUID, isAdmin bool, req dto.UpdateRecordsRequest) (*dto.AttendanceResponse, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.IsLocked && !isAdmin {
		return nil, ErrSessionLocked
	}
	// Once the aggregates were incremented, editing records would silently
	// desync them; only the backfill reconciliation may touch posted sessions.
	if session.RevenuePostedAt != nil {
		return nil, ErrRevenueAlreadyPosted
	}

	group, err := s.groupRepo.FindByID(ctx, session.GroupID)
	if err != nil {
		return nil, ErrGroupNotFound
	}

	records, err := s.buildRecords(group, actorID, req.Records)
	if err != nil {
		return nil, err
	}
	s.derive(session, records)
	session.IsCompleted = len(records) >= group.CurrentEnrollment && group.CurrentEnrollment > 0

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ReplaceRecords(ctx, tx, session.ID, records); err != nil {
			return err
		}
		session.Records = nil
		return s.repo.Update(ctx, tx, session)
	})
	if txErr != nil {
		return nil, txErr
	}
	session.Records = records

	return s.toResponse(session, group.Name), nil
}

// ── Lock / Unlock ─────────────────────────────────────────────────────────────

func (s *attendanceService) Lock(ctx context.Context, id, actorID uuid.UUID) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrSessionNotFound
	}
	if session.IsLocked {
		return ErrSessionLocked
	}
	now := time.Now()
	session.IsLocked = true
	session.LockedAt = &now
	session.LockedBy = &actorID
	if err := s.repo.Update(ctx, nil, session); err != nil {
		return err
	}

	// Post-commit: session report mail to the teacher. Best effort — the
	// worker owns retries and the DLQ.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.SessionReportPayload{
			AttendanceID: session.ID.String(),
			TeacherID:    session.TeacherID.String(),
		})
	}
	return nil
}

func (s *attendanceService) Unlock(ctx context.Context, id uuid.UUID) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrSessionNotFound
	}
	if !session.IsLocked {
		return ErrSessionNotLocked
	}
	session.IsLocked = false
	session.LockedAt = nil
	session.LockedBy = nil
	return s.repo.Update(ctx, nil, session)
}

// ── PostSessionRevenue ────────────────────────────────────────────────────────
// The row lock serializes concurrent postings; the RevenuePostedAt marker
// makes retries no-ops; the unique (related_type, related_id) index on the
// ledger is the database-level backstop.

func (s *attendanceService) PostSessionRevenue(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		session, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrSessionNotFound
		}
		if session.RevenuePostedAt != nil {
			return ErrRevenueAlreadyPosted
		}
		if !session.IsCompleted {
			return ErrSessionIncomplete
		}
		if session.PresentCount == 0 || session.SessionRevenue.IsZero() {
			return ErrNoBillableStudents
		}

		group, err := s.groupRepo.FindBasic(ctx, tx, session.GroupID)
		if err != nil {
			return ErrGroupNotFound
		}

		relatedType := model.RelatedAttendance
		relatedID := session.ID
		desc := fmt.Sprintf("%d students attended @ %s %s each",
			session.PresentCount, session.PricePerSession.StringFixed(2), s.currency)
		entry := &model.FinancialTransaction{
			Type:            model.TxIncome,
			Category:        model.CategoryStudentPayment,
			TeacherID:       group.Course.TeacherID,
			RelatedType:     &relatedType,
			RelatedID:       &relatedID,
			Amount:          session.SessionRevenue,
			Currency:        s.currency,
			Title:           "Session Income - " + group.Name,
			Description:     &desc,
			TransactionDate: session.SessionDate,
			PaymentMethod:   "cash",
			Status:          "completed",
		}
		if err := s.txRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		if err := s.groupRepo.IncrementTotals(ctx, tx, group.ID, session.SessionRevenue, 1); err != nil {
			return err
		}
		if err := s.courseRepo.IncrementTotals(ctx, tx, group.CourseID, session.SessionRevenue, 1); err != nil {
			return err
		}

		now := time.Now()
		session.RevenuePostedAt = &now
		return s.repo.Update(ctx, tx, session)
	})
	if err != nil && repository.IsUniqueViolation(err) {
		return ErrRevenueAlreadyPosted
	}
	return err
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *attendanceService) Get(ctx context.Context, id uuid.UUID) (*dto.AttendanceResponse, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	groupName := ""
	if session.Group != nil {
		groupName = session.Group.Name
	}
	return s.toResponse(session, groupName), nil
}

func (s *attendanceService) List(ctx context.Context, filter dto.AttendanceFilter) (*dto.AttendanceListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.AttendanceListResponse{Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range sessions {
		groupName := ""
		if sessions[i].Group != nil {
			groupName = sessions[i].Group.Name
		}
		r := s.toResponse(&sessions[i], groupName)
		r.Records = nil // list view stays light
		resp.Data = append(resp.Data, *r)
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// buildRecords validates every record against the group's active roster and
// stamps marking metadata.
func (s *attendanceService) buildRecords(group *model.Group, markedBy uuid.UUID, reqs []dto.AttendanceRecordRequest) ([]model.AttendanceRecord, error) {
	roster := make(map[uuid.UUID]bool, len(group.Students))
	for _, gs := range group.Students {
		if gs.Status == model.EnrollmentActive {
			roster[gs.StudentID] = true
		}
	}

	now := time.Now()
	records := make([]model.AttendanceRecord, 0, len(reqs))
	seen := make(map[uuid.UUID]bool, len(reqs))
	for _, req := range reqs {
		studentID, err := uuid.Parse(req.StudentID)
		if err != nil {
			return nil, fmt.Errorf("studentId: %w", err)
		}
		if !roster[studentID] {
			return nil, ErrStudentNotInGroup
		}
		if seen[studentID] {
			continue // last write wins is for updates; duplicates in one request collapse
		}
		seen[studentID] = true
		records = append(records, model.AttendanceRecord{
			StudentID:   studentID,
			Status:      req.Status,
			MinutesLate: req.MinutesLate,
			Note:        req.Note,
			MarkedAt:    now,
			MarkedBy:    markedBy,
		})
	}
	return records, nil
}

// derive recomputes PresentCount and SessionRevenue from the records and the
// price snapshot. Called on every save — the invariant holds at write time,
// never only in audit passes.
func (s *attendanceService) derive(session *model.Attendance, records []model.AttendanceRecord) {
	count := 0
	for _, r := range records {
		if s.billable[r.Status] {
			count++
		}
	}
	session.PresentCount = count
	session.SessionRevenue = session.PricePerSession.Mul(decimal.NewFromInt(int64(count)))
}

func (s *attendanceService) toResponse(a *model.Attendance, groupName string) *dto.AttendanceResponse {
	resp := &dto.AttendanceResponse{
		ID:              a.ID.String(),
		Code:            a.Code,
		GroupID:         a.GroupID.String(),
		GroupName:       groupName,
		SessionDate:     a.SessionDate.Format("2006-01-02"),
		ScheduleIndex:   a.ScheduleIndex,
		PricePerSession: a.PricePerSession,
		PresentCount:    a.PresentCount,
		SessionRevenue:  a.SessionRevenue,
		IsCompleted:     a.IsCompleted,
		IsLocked:        a.IsLocked,
		RevenuePosted:   a.RevenuePostedAt != nil,
	}
	if len(a.Records) > 0 {
		var sum float64
		for i := range a.Records {
			r := &a.Records[i]
			sum += r.AttendanceValue()
			name := ""
			if r.Student != nil {
				name = r.Student.FullName()
			}
			resp.Records = append(resp.Records, dto.AttendanceRecordResponse{
				StudentID:   r.StudentID.String(),
				StudentName: name,
				Status:      r.Status,
				MinutesLate: r.MinutesLate,
				Note:        r.Note,
				MarkedAt:    r.MarkedAt.Format(time.RFC3339),
			})
		}
		resp.AttendanceRate = sum / float64(len(a.Records))
	}
	return resp
}
