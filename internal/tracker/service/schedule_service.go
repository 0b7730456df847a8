package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/repository"
	"golang-price-tracker/internal/tracker/scheduling"
	"golang-price-tracker/pkg/logger"
	"golang-price-tracker/pkg/utils"
)

// ScheduleService changes how and whether products are re-fetched.
type ScheduleService interface {
	UpdateInterval(ctx context.Context, ownerID string, productID int64, hours int) (*entity.TrackedProduct, error)
	Deactivate(ctx context.Context, ownerID string, productID int64) error
}

type scheduleService struct {
	store repository.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewScheduleService(store repository.Store, log *logger.Logger) ScheduleService {
	return &scheduleService{store: store, log: log, now: utils.TimeNowUTC}
}

func (s *scheduleService) UpdateInterval(ctx context.Context, ownerID string, productID int64, hours int) (*entity.TrackedProduct, error) {
	if err := scheduling.ValidateInterval(hours); err != nil {
		return nil, newValidationError("hours", err.Error())
	}

	var updated *entity.TrackedProduct
	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		product, err := loadOwnedProduct(ctx, tx.Products(), ownerID, productID, true)
		if err != nil {
			return err
		}

		now := s.now()
		if err := scheduling.CheckIntervalChange(product.NextRunAt, now, hours); err != nil {
			if errors.Is(err, scheduling.ErrImminentRun) {
				return fmt.Errorf("%w: next run at %s is within %d hours", ErrIntervalConflict,
					product.NextRunAt.UTC().Format(time.RFC3339), hours)
			}
			return newValidationError("hours", err.Error())
		}

		scheduling.ApplyInterval(product, hours, now)
		if err := tx.Products().Update(ctx, product); err != nil {
			return fmt.Errorf("failed to update interval: %w", err)
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Update interval changed", logger.Field("product_id", productID), logger.IntField("hours", hours))
	return updated, nil
}

func (s *scheduleService) Deactivate(ctx context.Context, ownerID string, productID int64) error {
	return s.store.WithTransaction(ctx, func(tx repository.Store) error {
		if _, err := loadOwnedProduct(ctx, tx.Products(), ownerID, productID, true); err != nil {
			return err
		}
		if err := tx.Products().Deactivate(ctx, productID); err != nil {
			return notFound("product", productID, err)
		}
		return nil
	})
}
