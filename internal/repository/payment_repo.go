package repository

import (
	"context"

	"droseonline/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.StudentPayment) error
	List(ctx context.Context, groupID, studentID *uuid.UUID, page, limit int) ([]model.StudentPayment, int64, error)
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, tx *gorm.DB, p *model.StudentPayment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) List(ctx context.Context, groupID, studentID *uuid.UUID, page, limit int) ([]model.StudentPayment, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StudentPayment{})
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}
	if studentID != nil {
		q = q.Where("student_id = ?", *studentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.StudentPayment
	err := q.Preload("Student").Preload("Group").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&payments).Error
	return payments, total, err
}
