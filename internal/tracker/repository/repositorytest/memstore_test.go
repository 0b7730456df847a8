package repositorytest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/repository"
)

func TestMemStoreRollsBackFailedTransaction(t *testing.T) {
	ctx := context.Background()
	s := New()

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Products().Create(ctx, &entity.TrackedProduct{OwnerID: "u1", URL: "a", CanonicalURL: "A"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.ProductList())
}

func TestMemStoreSavepointKeepsOuterWrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithTransaction(ctx, func(tx repository.Store) error {
		p := &entity.TrackedProduct{OwnerID: "u1", URL: "a", CanonicalURL: "A"}
		require.NoError(t, tx.Products().Create(ctx, p))

		inner := tx.WithTransaction(ctx, func(tx repository.Store) error {
			require.NoError(t, tx.Insights().Create(ctx, &entity.AIInsight{ProductID: p.ID}))
			return errors.New("inner failure")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, s.ProductList(), 1)
	assert.Empty(t, s.InsightList())
}

func TestMemStoreUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	products := s.Products()

	require.NoError(t, products.Create(ctx, &entity.TrackedProduct{OwnerID: "u1", URL: "a", CanonicalURL: "A"}))
	assert.ErrorIs(t, products.Create(ctx, &entity.TrackedProduct{OwnerID: "u1", URL: "b", CanonicalURL: "A"}), repository.ErrDuplicateKey)
	assert.ErrorIs(t, products.Create(ctx, &entity.TrackedProduct{OwnerID: "u1", URL: "a", CanonicalURL: "B"}), repository.ErrDuplicateKey)
	assert.NoError(t, products.Create(ctx, &entity.TrackedProduct{OwnerID: "u2", URL: "a", CanonicalURL: "A"}))
}
