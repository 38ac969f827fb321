package repository

import (
	"context"

	"droseonline/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Subject) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Subject, error)
	List(ctx context.Context, onlyActive bool) ([]model.Subject, error)
	Update(ctx context.Context, s *model.Subject) error
}

type subjectRepo struct{ db *gorm.DB }

func NewSubjectRepository(db *gorm.DB) SubjectRepository { return &subjectRepo{db: db} }

func (r *subjectRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Subject) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(s).Error
}

func (r *subjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	var s model.Subject
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *subjectRepo) List(ctx context.Context, onlyActive bool) ([]model.Subject, error) {
	q := r.db.WithContext(ctx).Model(&model.Subject{})
	if onlyActive {
		q = q.Where("is_active = true")
	}
	var subjects []model.Subject
	err := q.Order("name").Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) Update(ctx context.Context, s *model.Subject) error {
	return r.db.WithContext(ctx).Save(s).Error
}
