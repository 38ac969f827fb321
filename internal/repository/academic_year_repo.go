package repository

import (
	"context"

	"droseonline/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AcademicYearRepository interface {
	Create(ctx context.Context, tx *gorm.DB, y *model.AcademicYear) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AcademicYear, error)
	List(ctx context.Context) ([]model.AcademicYear, error)
	// SetCurrent marks y current and clears the flag everywhere else, in one
	// transaction. At most one current year at a time.
	SetCurrent(ctx context.Context, id uuid.UUID) error
}

type academicYearRepo struct{ db *gorm.DB }

func NewAcademicYearRepository(db *gorm.DB) AcademicYearRepository { return &academicYearRepo{db: db} }

func (r *academicYearRepo) Create(ctx context.Context, tx *gorm.DB, y *model.AcademicYear) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(y).Error
}

func (r *academicYearRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AcademicYear, error) {
	var y model.AcademicYear
	err := r.db.WithContext(ctx).First(&y, "id = ?", id).Error
	return &y, err
}

func (r *academicYearRepo) List(ctx context.Context) ([]model.AcademicYear, error) {
	var years []model.AcademicYear
	err := r.db.WithContext(ctx).Order("start_date DESC").Find(&years).Error
	return years, err
}

func (r *academicYearRepo) SetCurrent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AcademicYear{}).Where("is_current = true").Update("is_current", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.AcademicYear{}).Where("id = ?", id).Update("is_current", true).Error
	})
}
