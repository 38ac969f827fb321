package repository

import (
	"context"

	"droseonline/internal/dto"
	"droseonline/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.FinancialTransaction) error
	FindByRelated(ctx context.Context, relatedType string, relatedID uuid.UUID) (*model.FinancialTransaction, error)
	List(ctx context.Context, filter dto.TransactionFilter) ([]model.FinancialTransaction, int64, error)
	// Sums returns total income and total expense over [from, to].
	Sums(ctx context.Context, from, to string) (income, expense decimal.Decimal, err error)
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository { return &transactionRepo{db: db} }

func (r *transactionRepo) Create(ctx context.Context, tx *gorm.DB, t *model.FinancialTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(t).Error
}

func (r *transactionRepo) FindByRelated(ctx context.Context, relatedType string, relatedID uuid.UUID) (*model.FinancialTransaction, error) {
	var t model.FinancialTransaction
	err := r.db.WithContext(ctx).
		Where("related_type = ? AND related_id = ?", relatedType, relatedID).
		First(&t).Error
	return &t, err
}

func (r *transactionRepo) List(ctx context.Context, filter dto.TransactionFilter) ([]model.FinancialTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.FinancialTransaction{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.From != "" {
		q = q.Where("transaction_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("transaction_date <= ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var txs []model.FinancialTransaction
	err := q.Order("transaction_date DESC").Offset(offset).Limit(filter.Limit).Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepo) Sums(ctx context.Context, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Type  string
		Total decimal.Decimal
	}
	q := r.db.WithContext(ctx).Model(&model.FinancialTransaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("status = 'completed'")
	if from != "" {
		q = q.Where("transaction_date >= ?", from)
	}
	if to != "" {
		q = q.Where("transaction_date <= ?", to)
	}
	var rows []row
	if err := q.Group("type").Scan(&rows).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	income, expense := decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch r.Type {
		case model.TxIncome:
			income = r.Total
		case model.TxExpense:
			expense = r.Total
		}
	}
	return income, expense, nil
}
