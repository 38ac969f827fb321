package repository

import (
	"context"

	"droseonline/internal/model"

	"gorm.io/gorm"
)

// CounterRepository hands out strictly increasing sequence numbers per entity
// kind. The upsert-returning statement is atomic at the storage layer, so
// concurrent callers can never observe a repeated value.
type CounterRepository interface {
	Next(ctx context.Context, tx *gorm.DB, name string) (int64, error)
	// NextCode is Next plus the canonical zero-padded formatting.
	NextCode(ctx context.Context, tx *gorm.DB, prefix string) (string, error)
}

type counterRepo struct{ db *gorm.DB }

func NewCounterRepository(db *gorm.DB) CounterRepository { return &counterRepo{db: db} }

func (r *counterRepo) Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	var value int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, name).Scan(&value).Error
	return value, err
}

func (r *counterRepo) NextCode(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	seq, err := r.Next(ctx, tx, prefix)
	if err != nil {
		return "", err
	}
	return model.FormatCode(prefix, seq), nil
}
