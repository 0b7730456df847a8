package service

import (
	"context"
	"fmt"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/repository"
)

// loadOwnedProduct fetches a product and hides products of other owners behind ErrNotFound.
// An empty ownerID skips the ownership check (internal callers).
func loadOwnedProduct(ctx context.Context, products repository.TrackedProductRepository, ownerID string, id int64, lock bool) (*entity.TrackedProduct, error) {
	var (
		product *entity.TrackedProduct
		err     error
	)
	if lock {
		product, err = products.LockByID(ctx, id)
	} else {
		product, err = products.FindByID(ctx, id)
	}
	if err != nil {
		return nil, notFound("product", id, err)
	}
	if ownerID != "" && product.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return product, nil
}
