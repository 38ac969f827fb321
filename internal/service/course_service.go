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

type CourseService interface {
	Create(ctx context.Context, req dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CourseResponse, error)
	List(ctx context.Context, onlyActive bool) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error)

	CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	ListSubjects(ctx context.Context, onlyActive bool) ([]dto.SubjectResponse, error)

	CreateAcademicYear(ctx context.Context, req dto.CreateAcademicYearRequest) (*dto.AcademicYearResponse, error)
	ListAcademicYears(ctx context.Context) ([]dto.AcademicYearResponse, error)
	SetCurrentYear(ctx context.Context, id uuid.UUID) error
}

type courseService struct {
	repo        repository.CourseRepository
	subjectRepo repository.SubjectRepository
	yearRepo    repository.AcademicYearRepository
	userRepo    repository.UserRepository
	counters    repository.CounterRepository
	db          func() *gorm.DB
}

func NewCourseService(
	repo repository.CourseRepository,
	subjectRepo repository.SubjectRepository,
	yearRepo repository.AcademicYearRepository,
	userRepo repository.UserRepository,
	counters repository.CounterRepository,
	db func() *gorm.DB,
) CourseService {
	return &courseService{
		repo:        repo,
		subjectRepo: subjectRepo,
		yearRepo:    yearRepo,
		userRepo:    userRepo,
		counters:    counters,
		db:          db,
	}
}

// ── Courses ───────────────────────────────────────────────────────────────────

func (s *courseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("subjectId: %w", err)
	}
	teacherID, err := uuid.Parse(req.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("teacherId: %w", err)
	}
	yearID, err := uuid.Parse(req.AcademicYearID)
	if err != nil {
		return nil, fmt.Errorf("academicYearId: %w", err)
	}

	subject, err := s.subjectRepo.FindByID(ctx, subjectID)
	if err != nil {
		return nil, ErrSubjectNotFound
	}
	teacher, err := s.userRepo.FindByID(ctx, teacherID)
	if err != nil || teacher.Role != model.RoleTeacher {
		return nil, ErrUserNotFound
	}
	if _, err := s.yearRepo.FindByID(ctx, yearID); err != nil {
		return nil, ErrYearNotFound
	}

	course := &model.Course{
		Name:           req.Name,
		Description:    req.Description,
		SubjectID:      subjectID,
		TeacherID:      teacherID,
		AcademicYearID: yearID,
		IsActive:       true,
	}
	txErr := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		code, err := s.counters.NextCode(ctx, tx, model.PrefixCourse)
		if err != nil {
			return err
		}
		course.Code = code
		return s.repo.Create(ctx, tx, course)
	})
	if txErr != nil {
		return nil, txErr
	}
	course.Subject = subject
	course.Teacher = teacher
	return toCourseResponse(course), nil
}

func (s *courseService) Get(ctx context.Context, id uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	return toCourseResponse(course), nil
}

func (s *courseService) List(ctx context.Context, onlyActive bool) ([]dto.CourseResponse, error) {
	courses, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, *toCourseResponse(&courses[i]))
	}
	return out, nil
}

func (s *courseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.TeacherID != nil {
		teacherID, err := uuid.Parse(*req.TeacherID)
		if err != nil {
			return nil, fmt.Errorf("teacherId: %w", err)
		}
		teacher, err := s.userRepo.FindByID(ctx, teacherID)
		if err != nil || teacher.Role != model.RoleTeacher {
			return nil, ErrUserNotFound
		}
		course.TeacherID = teacherID
		course.Teacher = teacher
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ── Subjects ──────────────────────────────────────────────────────────────────

func (s *courseService) CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	subject := &model.Subject{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	txErr := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		code, err := s.counters.NextCode(ctx, tx, model.PrefixSubject)
		if err != nil {
			return err
		}
		subject.Code = code
		return s.subjectRepo.Create(ctx, tx, subject)
	})
	if txErr != nil {
		return nil, txErr
	}
	return toSubjectResponse(subject), nil
}

func (s *courseService) ListSubjects(ctx context.Context, onlyActive bool) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjectRepo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		out = append(out, *toSubjectResponse(&subjects[i]))
	}
	return out, nil
}

// ── Academic years ────────────────────────────────────────────────────────────

func (s *courseService) CreateAcademicYear(ctx context.Context, req dto.CreateAcademicYearRequest) (*dto.AcademicYearResponse, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("startDate: %w", err)
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("endDate: %w", err)
	}

	year := &model.AcademicYear{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	}
	txErr := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		code, err := s.counters.NextCode(ctx, tx, model.PrefixAcademicYear)
		if err != nil {
			return err
		}
		year.Code = code
		return s.yearRepo.Create(ctx, tx, year)
	})
	if txErr != nil {
		return nil, txErr
	}
	if req.IsCurrent {
		if err := s.yearRepo.SetCurrent(ctx, year.ID); err != nil {
			return nil, err
		}
		year.IsCurrent = true
	}
	return toYearResponse(year), nil
}

func (s *courseService) ListAcademicYears(ctx context.Context) ([]dto.AcademicYearResponse, error) {
	years, err := s.yearRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AcademicYearResponse, 0, len(years))
	for i := range years {
		out = append(out, *toYearResponse(&years[i]))
	}
	return out, nil
}

func (s *courseService) SetCurrentYear(ctx context.Context, id uuid.UUID) error {
	if _, err := s.yearRepo.FindByID(ctx, id); err != nil {
		return ErrYearNotFound
	}
	return s.yearRepo.SetCurrent(ctx, id)
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	resp := &dto.CourseResponse{
		ID:                c.ID.String(),
		Code:              c.Code,
		Name:              c.Name,
		Description:       c.Description,
		SubjectID:         c.SubjectID.String(),
		TeacherID:         c.TeacherID.String(),
		AcademicYearID:    c.AcademicYearID.String(),
		TotalRevenue:      c.TotalRevenue,
		TotalSessionsHeld: c.TotalSessionsHeld,
		IsActive:          c.IsActive,
	}
	if c.Subject != nil {
		resp.SubjectName = c.Subject.Name
	}
	if c.Teacher != nil {
		resp.TeacherName = c.Teacher.FullName()
	}
	return resp
}

func toSubjectResponse(s *model.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:          s.ID.String(),
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		IsActive:    s.IsActive,
	}
}

func toYearResponse(y *model.AcademicYear) *dto.AcademicYearResponse {
	return &dto.AcademicYearResponse{
		ID:        y.ID.String(),
		Code:      y.Code,
		Name:      y.Name,
		StartDate: y.StartDate.Format("2006-01-02"),
		EndDate:   y.EndDate.Format("2006-01-02"),
		IsCurrent: y.IsCurrent,
	}
}
