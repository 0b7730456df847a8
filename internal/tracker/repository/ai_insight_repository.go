package repository

import (
	"context"
	"errors"

	"golang-price-tracker/internal/entity"

	"gorm.io/gorm"
)

type AIInsightRepository interface {
	Create(ctx context.Context, insight *entity.AIInsight) error
	// GetLatest returns the most recent insight of the product, or nil when none exists.
	GetLatest(ctx context.Context, productID int64) (*entity.AIInsight, error)
}

type aiInsightRepository struct {
	db *gorm.DB
}

func NewAIInsightRepository(db *gorm.DB) AIInsightRepository {
	return &aiInsightRepository{db: db}
}

func (r *aiInsightRepository) Create(ctx context.Context, insight *entity.AIInsight) error {
	return translateError(r.db.WithContext(ctx).Create(insight).Error)
}

func (r *aiInsightRepository) GetLatest(ctx context.Context, productID int64) (*entity.AIInsight, error) {
	var insight entity.AIInsight
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		First(&insight).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &insight, nil
}
