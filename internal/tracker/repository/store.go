package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the tracker repositories so they can share one transaction.
type Store interface {
	Products() TrackedProductRepository
	Snapshots() PriceSnapshotRepository
	Insights() AIInsightRepository
	Events() PriceEventRepository

	// WithTransaction runs fn in a transaction. Called on a Store that is already inside a transaction
	// it opens a savepoint, so an error from fn only rolls back fn's own writes.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed Store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Products() TrackedProductRepository { return NewTrackedProductRepository(s.db) }
func (s *store) Snapshots() PriceSnapshotRepository { return NewPriceSnapshotRepository(s.db) }
func (s *store) Insights() AIInsightRepository      { return NewAIInsightRepository(s.db) }
func (s *store) Events() PriceEventRepository       { return NewPriceEventRepository(s.db) }

func (s *store) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
