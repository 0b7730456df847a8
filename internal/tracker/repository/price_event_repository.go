package repository

import (
	"context"
	"time"

	"golang-price-tracker/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PriceEventRepository interface {
	Create(ctx context.Context, event *entity.PriceEvent) error
	FindByID(ctx context.Context, id int64) (*entity.PriceEvent, error)
	// FindArmed returns the product's untriggered alerts whose target is at or above price, row-locked.
	FindArmed(ctx context.Context, productID int64, price float64) ([]entity.PriceEvent, error)
	// MarkTriggered flips triggered exactly once; it reports false when the alert had already fired.
	MarkTriggered(ctx context.Context, id int64, at time.Time, message string) (bool, error)
	// ListPending returns triggered, unacknowledged alerts of the owner's products, newest first.
	ListPending(ctx context.Context, ownerID string, limit int) ([]entity.PriceEvent, error)
	Acknowledge(ctx context.Context, id int64, source string) error
}

type priceEventRepository struct {
	db *gorm.DB
}

func NewPriceEventRepository(db *gorm.DB) PriceEventRepository {
	return &priceEventRepository{db: db}
}

func (r *priceEventRepository) Create(ctx context.Context, event *entity.PriceEvent) error {
	return translateError(r.db.WithContext(ctx).Create(event).Error)
}

func (r *priceEventRepository) FindByID(ctx context.Context, id int64) (*entity.PriceEvent, error) {
	var event entity.PriceEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &event, nil
}

func (r *priceEventRepository) FindArmed(ctx context.Context, productID int64, price float64) ([]entity.PriceEvent, error) {
	var events []entity.PriceEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND triggered = ? AND target_price IS NOT NULL AND target_price >= ?", productID, false, price).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *priceEventRepository) MarkTriggered(ctx context.Context, id int64, at time.Time, message string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.PriceEvent{}).
		Where("id = ? AND triggered = ?", id, false).
		Updates(map[string]interface{}{
			"triggered":    true,
			"triggered_at": at.UTC(),
			"message":      message,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *priceEventRepository) ListPending(ctx context.Context, ownerID string, limit int) ([]entity.PriceEvent, error) {
	var events []entity.PriceEvent
	err := r.db.WithContext(ctx).
		Joins("JOIN tracked_products ON tracked_products.id = price_events.product_id").
		Where("tracked_products.owner_id = ? AND price_events.triggered = ? AND price_events.acknowledged = ?", ownerID, true, false).
		Order("price_events.triggered_at DESC, price_events.id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *priceEventRepository) Acknowledge(ctx context.Context, id int64, source string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.PriceEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"acknowledged": true,
			"ack_source":   source,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
