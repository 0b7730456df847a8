package repository

import (
	"context"
	"errors"

	"golang-price-tracker/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrackedProductRepository interface {
	// FindForOwner returns the owner's product whose canonical_url or url matches, or nil when absent.
	FindForOwner(ctx context.Context, ownerID, canonicalURL, url string) (*entity.TrackedProduct, error)
	FindByID(ctx context.Context, id int64) (*entity.TrackedProduct, error)
	// LockByID loads the product with a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, id int64) (*entity.TrackedProduct, error)
	Create(ctx context.Context, product *entity.TrackedProduct) error
	Update(ctx context.Context, product *entity.TrackedProduct) error
	Deactivate(ctx context.Context, id int64) error
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

type trackedProductRepository struct {
	db *gorm.DB
}

func NewTrackedProductRepository(db *gorm.DB) TrackedProductRepository {
	return &trackedProductRepository{db: db}
}

func (r *trackedProductRepository) FindForOwner(ctx context.Context, ownerID, canonicalURL, url string) (*entity.TrackedProduct, error) {
	var product entity.TrackedProduct
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND (canonical_url = ? OR url = ?)", ownerID, canonicalURL, url).
		Order("id ASC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *trackedProductRepository) FindByID(ctx context.Context, id int64) (*entity.TrackedProduct, error) {
	var product entity.TrackedProduct
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

func (r *trackedProductRepository) LockByID(ctx context.Context, id int64) (*entity.TrackedProduct, error) {
	var product entity.TrackedProduct
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

func (r *trackedProductRepository) Create(ctx context.Context, product *entity.TrackedProduct) error {
	return translateError(r.db.WithContext(ctx).Create(product).Error)
}

func (r *trackedProductRepository) Update(ctx context.Context, product *entity.TrackedProduct) error {
	return translateError(r.db.WithContext(ctx).Save(product).Error)
}

func (r *trackedProductRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&entity.TrackedProduct{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *trackedProductRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&entity.TrackedProduct{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
