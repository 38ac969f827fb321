package repository

import (
	"context"

	"droseonline/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GroupRepository interface {
	DB() *gorm.DB // exposes the DB for transaction creation in service layer

	Create(ctx context.Context, tx *gorm.DB, g *model.Group) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	// FindBasic loads the group with its course only — used inside posting
	// transactions where the full roster preload is dead weight.
	FindBasic(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Group, error)
	List(ctx context.Context, onlyActive bool) ([]model.Group, error)
	// ListByTeacher returns active groups whose course is taught by teacherID,
	// schedule preloaded. Used by the conflict check and the today view.
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Group, error)
	Update(ctx context.Context, tx *gorm.DB, g *model.Group) error
	ReplaceSchedule(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, slots []model.ScheduleSlot) error

	// Enrollment — the group_students join table is the single source of truth.
	FindActiveEnrollment(ctx context.Context, groupID, studentID uuid.UUID) (*model.GroupStudent, error)
	CreateEnrollment(ctx context.Context, tx *gorm.DB, gs *model.GroupStudent) error
	UpdateEnrollment(ctx context.Context, tx *gorm.DB, gs *model.GroupStudent) error
	CountActiveEnrollments(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (int64, error)
	SetEnrollmentCount(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, count int64) error
	// ListStudentGroups is the derived "student's groups" view.
	ListStudentGroups(ctx context.Context, studentID uuid.UUID) ([]model.Group, error)

	// Aggregate counters — additive, applied exactly once per posted session.
	IncrementTotals(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, revenue decimal.Decimal, sessions int) error
	SetTotals(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, revenue decimal.Decimal, sessions int) error
}

type groupRepo struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) GroupRepository { return &groupRepo{db: db} }

func (r *groupRepo) DB() *gorm.DB { return r.db }

func (r *groupRepo) Create(ctx context.Context, tx *gorm.DB, g *model.Group) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(g).Error
}

func (r *groupRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).
		Preload("Course.Subject").
		Preload("Course.Teacher").
		Preload("Schedule").
		Preload("Students", "status = ?", model.EnrollmentActive).
		Preload("Students.Student").
		First(&g, "id = ?", id).Error
	return &g, err
}

func (r *groupRepo) FindBasic(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Group, error) {
	if tx == nil {
		tx = r.db
	}
	var g model.Group
	err := tx.WithContext(ctx).Preload("Course").First(&g, "id = ?", id).Error
	return &g, err
}

func (r *groupRepo) List(ctx context.Context, onlyActive bool) ([]model.Group, error) {
	q := r.db.WithContext(ctx).
		Preload("Course.Subject").
		Preload("Course.Teacher").
		Preload("Schedule")
	if onlyActive {
		q = q.Where("is_active = true")
	}
	var groups []model.Group
	err := q.Order("code").Find(&groups).Error
	return groups, err
}

func (r *groupRepo) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN courses ON courses.id = groups.course_id").
		Where("courses.teacher_id = ? AND groups.is_active = true", teacherID).
		Preload("Schedule").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) Update(ctx context.Context, tx *gorm.DB, g *model.Group) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Omit("Schedule", "Students", "Course").Save(g).Error
}

func (r *groupRepo) ReplaceSchedule(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, slots []model.ScheduleSlot) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(ctx).Where("group_id = ?", groupID).Delete(&model.ScheduleSlot{}).Error; err != nil {
		return err
	}
	for i := range slots {
		slots[i].GroupID = groupID
	}
	if len(slots) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&slots).Error
}

func (r *groupRepo) FindActiveEnrollment(ctx context.Context, groupID, studentID uuid.UUID) (*model.GroupStudent, error) {
	var gs model.GroupStudent
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND student_id = ? AND status = ?", groupID, studentID, model.EnrollmentActive).
		First(&gs).Error
	return &gs, err
}

func (r *groupRepo) CreateEnrollment(ctx context.Context, tx *gorm.DB, gs *model.GroupStudent) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(gs).Error
}

func (r *groupRepo) UpdateEnrollment(ctx context.Context, tx *gorm.DB, gs *model.GroupStudent) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Save(gs).Error
}

func (r *groupRepo) CountActiveEnrollments(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	var n int64
	err := tx.WithContext(ctx).Model(&model.GroupStudent{}).
		Where("group_id = ? AND status = ?", groupID, model.EnrollmentActive).
		Count(&n).Error
	return n, err
}

func (r *groupRepo) SetEnrollmentCount(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, count int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Model(&model.Group{}).
		Where("id = ?", groupID).
		Update("current_enrollment", count).Error
}

func (r *groupRepo) ListStudentGroups(ctx context.Context, studentID uuid.UUID) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_students gs ON gs.group_id = groups.id").
		Where("gs.student_id = ? AND gs.status = ?", studentID, model.EnrollmentActive).
		Preload("Course.Subject").
		Preload("Schedule").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) IncrementTotals(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, revenue decimal.Decimal, sessions int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Model(&model.Group{}).
		Where("id = ?", groupID).
		Updates(map[string]interface{}{
			"total_revenue":       gorm.Expr("total_revenue + ?", revenue),
			"total_sessions_held": gorm.Expr("total_sessions_held + ?", sessions),
		}).Error
}

func (r *groupRepo) SetTotals(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, revenue decimal.Decimal, sessions int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Model(&model.Group{}).
		Where("id = ?", groupID).
		Updates(map[string]interface{}{
			"total_revenue":       revenue,
			"total_sessions_held": sessions,
		}).Error
}
