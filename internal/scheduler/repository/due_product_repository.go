package repository

import (
	"context"
	"time"

	"golang-price-tracker/internal/entity"

	"gorm.io/gorm"
)

// DueProductRepository reads the products whose next fetch is due.
type DueProductRepository interface {
	FindDue(ctx context.Context, now time.Time, limit int) ([]entity.TrackedProduct, error)
}

// NewDueProductRepository creates a new GORM-based due product repository.
func NewDueProductRepository(db *gorm.DB) DueProductRepository {
	return &dueProductRepository{db: db}
}

type dueProductRepository struct {
	db *gorm.DB
}

// FindDue returns active products with next_run_at at or before now, oldest first.
func (r *dueProductRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]entity.TrackedProduct, error) {
	var products []entity.TrackedProduct
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND next_run_at IS NOT NULL AND next_run_at <= ?", true, now.UTC()).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
