package repository

import (
	"context"
	"time"

	"golang-price-tracker/internal/entity"

	"gorm.io/gorm"
)

type PriceSnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.PriceSnapshot) error
	// ListPricedSince returns snapshots with a non-null price fetched at or after since, oldest first.
	ListPricedSince(ctx context.Context, productID int64, since time.Time) ([]entity.PriceSnapshot, error)
}

type priceSnapshotRepository struct {
	db *gorm.DB
}

func NewPriceSnapshotRepository(db *gorm.DB) PriceSnapshotRepository {
	return &priceSnapshotRepository{db: db}
}

func (r *priceSnapshotRepository) Create(ctx context.Context, snapshot *entity.PriceSnapshot) error {
	return translateError(r.db.WithContext(ctx).Create(snapshot).Error)
}

func (r *priceSnapshotRepository) ListPricedSince(ctx context.Context, productID int64, since time.Time) ([]entity.PriceSnapshot, error) {
	var snapshots []entity.PriceSnapshot
	err := r.db.WithContext(ctx).
		Where("tracked_product_id = ? AND fetched_at >= ? AND price IS NOT NULL", productID, since.UTC()).
		Order("fetched_at ASC, id ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
