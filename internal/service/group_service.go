package service

import (
	"context"
	"fmt"
	"time"

	"droseonline/internal/dto"
	"droseonline/internal/model"
	"droseonline/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupService interface {
	Create(ctx context.Context, req dto.CreateGroupRequest) (*dto.GroupResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.GroupResponse, error)
	List(ctx context.Context, onlyActive bool) ([]dto.GroupResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateGroupRequest) (*dto.GroupResponse, error)
	// Deactivate is the "delete" operation: groups are never hard-deleted, and
	// deactivation is refused while students are still enrolled.
	Deactivate(ctx context.Context, id uuid.UUID) error

	AddStudent(ctx context.Context, groupID uuid.UUID, req dto.AddStudentRequest) (*dto.GroupResponse, error)
	RemoveStudent(ctx context.Context, groupID, studentID uuid.UUID) error
	// StudentGroups is the derived "which groups does this student attend"
	// view, computed from the enrollment table.
	StudentGroups(ctx context.Context, studentID uuid.UUID) ([]dto.GroupResponse, error)

	CheckScheduleConflict(ctx context.Context, req dto.ScheduleConflictRequest) (*dto.ScheduleConflictResponse, error)
}

type groupService struct {
	repo       repository.GroupRepository
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	counters   repository.CounterRepository
}

func NewGroupService(
	repo repository.GroupRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	counters repository.CounterRepository,
) GroupService {
	return &groupService{repo: repo, courseRepo: courseRepo, userRepo: userRepo, counters: counters}
}

// ── CRUD ──────────────────────────────────────────────────────────────────────

func (s *groupService) Create(ctx context.Context, req dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("courseId: %w", err)
	}
	if !model.ValidGrade(req.GradeLevel) {
		return nil, ErrInvalidGrade
	}
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	group := &model.Group{
		Name:            req.Name,
		Description:     req.Description,
		CourseID:        course.ID,
		GradeLevel:      req.GradeLevel,
		PricePerSession: req.PricePerSession,
		Capacity:        req.Capacity,
		IsActive:        true,
	}
	for _, slot := range req.Schedule {
		group.Schedule = append(group.Schedule, model.ScheduleSlot{
			Day:       slot.Day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Room:      slot.Room,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		code, err := s.counters.NextCode(ctx, tx, model.PrefixGroup)
		if err != nil {
			return err
		}
		group.Code = code
		return s.repo.Create(ctx, tx, group)
	})
	if txErr != nil {
		return nil, txErr
	}
	group.Course = course
	return s.toResponse(group), nil
}

func (s *groupService) Get(ctx context.Context, id uuid.UUID) (*dto.GroupResponse, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrGroupNotFound
	}
	return s.toResponse(group), nil
}

func (s *groupService) List(ctx context.Context, onlyActive bool) ([]dto.GroupResponse, error) {
	groups, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		r := s.toResponse(&groups[i])
		r.Students = nil
		out = append(out, *r)
	}
	return out, nil
}

func (s *groupService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrGroupNotFound
	}
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Description != nil {
		group.Description = req.Description
	}
	if req.GradeLevel != nil {
		if !model.ValidGrade(*req.GradeLevel) {
			return nil, ErrInvalidGrade
		}
		group.GradeLevel = *req.GradeLevel
	}
	// Price edits apply to future sessions only — already-marked sessions keep
	// their snapshot.
	if req.PricePerSession != nil {
		group.PricePerSession = *req.PricePerSession
	}
	if req.Capacity != nil {
		group.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if req.Schedule != nil {
			slots := make([]model.ScheduleSlot, 0, len(req.Schedule))
			for _, slot := range req.Schedule {
				slots = append(slots, model.ScheduleSlot{
					Day:       slot.Day,
					StartTime: slot.StartTime,
					EndTime:   slot.EndTime,
					Room:      slot.Room,
				})
			}
			if err := s.repo.ReplaceSchedule(ctx, tx, group.ID, slots); err != nil {
				return err
			}
			group.Schedule = slots
		}
		return s.repo.Update(ctx, tx, group)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.toResponse(group), nil
}

func (s *groupService) Deactivate(ctx context.Context, id uuid.UUID) error {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrGroupNotFound
	}
	n, err := s.repo.CountActiveEnrollments(ctx, nil, group.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrGroupHasStudents
	}
	group.IsActive = false
	return s.repo.Update(ctx, nil, group)
}

// ── Enrollment ────────────────────────────────────────────────────────────────
// All roster writes recount active enrollments inside the same transaction, so
// CurrentEnrollment can never drift from the join table.

func (s *groupService) AddStudent(ctx context.Context, groupID uuid.UUID, req dto.AddStudentRequest) (*dto.GroupResponse, error) {
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("studentId: %w", err)
	}
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return nil, ErrGroupNotFound
	}
	student, err := s.userRepo.FindStudent(ctx, studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}
	if student.CurrentGrade == nil || *student.CurrentGrade != group.GradeLevel {
		return nil, ErrGradeMismatch
	}
	if _, err := s.repo.FindActiveEnrollment(ctx, groupID, studentID); err == nil {
		return nil, ErrDuplicateEnrollment
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Count under the transaction so two concurrent enrolls into the last
		// seat cannot both pass the capacity check.
		n, err := s.repo.CountActiveEnrollments(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if int(n) >= group.Capacity {
			return ErrGroupFull
		}
		gs := &model.GroupStudent{
			GroupID:        groupID,
			StudentID:      studentID,
			EnrollmentDate: time.Now(),
			Status:         model.EnrollmentActive,
		}
		if err := s.repo.CreateEnrollment(ctx, tx, gs); err != nil {
			return err
		}
		return s.repo.SetEnrollmentCount(ctx, tx, groupID, n+1)
	})
	if txErr != nil {
		if repository.IsUniqueViolation(txErr) {
			return nil, ErrDuplicateEnrollment
		}
		return nil, txErr
	}

	group, err = s.repo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(group), nil
}

func (s *groupService) RemoveStudent(ctx context.Context, groupID, studentID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return ErrGroupNotFound
	}
	gs, err := s.repo.FindActiveEnrollment(ctx, groupID, studentID)
	if err != nil {
		return ErrNotEnrolled
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		gs.Status = model.EnrollmentDropped
		if err := s.repo.UpdateEnrollment(ctx, tx, gs); err != nil {
			return err
		}
		n, err := s.repo.CountActiveEnrollments(ctx, tx, groupID)
		if err != nil {
			return err
		}
		return s.repo.SetEnrollmentCount(ctx, tx, groupID, n)
	})
}

func (s *groupService) StudentGroups(ctx context.Context, studentID uuid.UUID) ([]dto.GroupResponse, error) {
	if _, err := s.userRepo.FindStudent(ctx, studentID); err != nil {
		return nil, ErrStudentNotFound
	}
	groups, err := s.repo.ListStudentGroups(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		r := s.toResponse(&groups[i])
		r.Students = nil
		out = append(out, *r)
	}
	return out, nil
}

// ── Schedule conflicts ────────────────────────────────────────────────────────

func (s *groupService) CheckScheduleConflict(ctx context.Context, req dto.ScheduleConflictRequest) (*dto.ScheduleConflictResponse, error) {
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("courseId: %w", err)
	}
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	var excludeID uuid.UUID
	if req.ExcludeGroupID != nil {
		excludeID, err = uuid.Parse(*req.ExcludeGroupID)
		if err != nil {
			return nil, fmt.Errorf("excludeGroupId: %w", err)
		}
	}

	// Conflicts are checked against every active group the same teacher
	// teaches, regardless of course.
	groups, err := s.repo.ListByTeacher(ctx, course.TeacherID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ScheduleConflictResponse{Conflicts: []dto.ScheduleConflict{}}
	for i := range groups {
		if groups[i].ID == excludeID {
			continue
		}
		for _, existing := range groups[i].Schedule {
			for _, proposed := range req.Schedule {
				if existing.Day != proposed.Day {
					continue
				}
				if slotsOverlap(proposed.StartTime, proposed.EndTime, existing.StartTime, existing.EndTime) {
					resp.Conflicts = append(resp.Conflicts, dto.ScheduleConflict{
						GroupID:   groups[i].ID.String(),
						GroupName: groups[i].Name,
						Day:       existing.Day,
						StartTime: existing.StartTime,
						EndTime:   existing.EndTime,
					})
				}
			}
		}
	}
	resp.HasConflict = len(resp.Conflicts) > 0
	return resp, nil
}

// slotsOverlap treats "HH:MM" strings as comparable; back-to-back slots
// (aEnd == bStart) do not conflict.
func slotsOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func (s *groupService) toResponse(g *model.Group) *dto.GroupResponse {
	resp := &dto.GroupResponse{
		ID:                g.ID.String(),
		Code:              g.Code,
		Name:              g.Name,
		Description:       g.Description,
		CourseID:          g.CourseID.String(),
		GradeLevel:        g.GradeLevel,
		PricePerSession:   g.PricePerSession,
		Capacity:          g.Capacity,
		CurrentEnrollment: g.CurrentEnrollment,
		AvailableSpots:    g.Capacity - g.CurrentEnrollment,
		TotalRevenue:      g.TotalRevenue,
		TotalSessionsHeld: g.TotalSessionsHeld,
		IsActive:          g.IsActive,
		Schedule:          []dto.ScheduleSlotRequest{},
	}
	if g.Course != nil {
		resp.CourseName = g.Course.Name
		if g.Course.Teacher != nil {
			resp.TeacherName = g.Course.Teacher.FullName()
		}
		if g.Course.Subject != nil {
			resp.SubjectName = g.Course.Subject.Name
		}
	}
	for _, slot := range g.Schedule {
		resp.Schedule = append(resp.Schedule, dto.ScheduleSlotRequest{
			Day:       slot.Day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Room:      slot.Room,
		})
	}
	for _, gs := range g.Students {
		sr := dto.GroupStudentResponse{
			StudentID:      gs.StudentID.String(),
			EnrollmentDate: gs.EnrollmentDate.Format("2006-01-02"),
			Status:         gs.Status,
		}
		if gs.Student != nil {
			sr.StudentName = gs.Student.FullName()
			sr.StudentCode = gs.Student.Code
		}
		resp.Students = append(resp.Students, sr)
	}
	return resp
}
