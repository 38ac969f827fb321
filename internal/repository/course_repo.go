package repository

import (
	"context"

	"droseonline/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	List(ctx context.Context, onlyActive bool) ([]model.Course, error)
	Update(ctx context.Context, c *model.Course) error
	IncrementTotals(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, revenue decimal.Decimal, sessions int) error
	SetTotals(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, revenue decimal.Decimal, sessions int) error
}

type courseRepo struct{ db *gorm.DB }

func NewCourseRepository(db *gorm.DB) CourseRepository { return &courseRepo{db: db} }

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Course) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(c).Error
}

func (r *courseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Teacher").
		Preload("AcademicYear").
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *courseRepo) List(ctx context.Context, onlyActive bool) ([]model.Course, error) {
	q := r.db.WithContext(ctx).Preload("Subject").Preload("Teacher")
	if onlyActive {
		q = q.Where("is_active = true")
	}
	var courses []model.Course
	err := q.Order("code").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, c *model.Course) error {
	return r.db.WithContext(ctx).Omit("Subject", "Teacher", "AcademicYear").Save(c).Error
}

func (r *courseRepo) IncrementTotals(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, revenue decimal.Decimal, sessions int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"total_revenue":       gorm.Expr("total_revenue + ?", revenue),
			"total_sessions_held": gorm.Expr("total_sessions_held + ?", sessions),
		}).Error
}

func (r *courseRepo) SetTotals(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, revenue decimal.Decimal, sessions int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"total_revenue":       revenue,
			"total_sessions_held": sessions,
		}).Error
}
