package service

import (
	"context"
	"fmt"
	"time"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/repository"
	"golang-price-tracker/pkg/logger"
	"golang-price-tracker/pkg/utils"
)

const (
	defaultAckSource = "api"
	maxPendingAlerts = 200
)

type AlertService interface {
	Create(ctx context.Context, ownerID string, productID int64, req dto.CreateAlertRequest) (*entity.PriceEvent, error)
	Pending(ctx context.Context, ownerID string, limit int) ([]entity.PriceEvent, error)
	Acknowledge(ctx context.Context, ownerID string, alertID int64, source string) error
}

type alertService struct {
	store        repository.Store
	log          *logger.Logger
	defaultLimit int
}

func NewAlertService(store repository.Store, log *logger.Logger, defaultLimit int) AlertService {
	return &alertService{store: store, log: log, defaultLimit: defaultLimit}
}

func (s *alertService) Create(ctx context.Context, ownerID string, productID int64, req dto.CreateAlertRequest) (*entity.PriceEvent, error) {
	if req.TargetPrice <= 0 {
		return nil, newValidationError("target_price", "must be greater than zero")
	}

	product, err := loadOwnedProduct(ctx, s.store.Products(), ownerID, productID, false)
	if err != nil {
		return nil, err
	}

	event := &entity.PriceEvent{
		ProductID:   product.ID,
		URL:         product.URL,
		Marketplace: product.Marketplace,
		Title:       product.Title,
		TargetPrice: utils.ToPointer(req.TargetPrice),
		EventType:   entity.EventTypeTargetPrice,
	}
	if req.Message != "" {
		event.Message = utils.ToPointer(req.Message)
	}

	if err := s.store.Events().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.log.Info("Price alert armed", logger.Field("alert_id", event.ID), logger.Field("product_id", product.ID), logger.Field("target_price", req.TargetPrice))
	return event, nil
}

func (s *alertService) Pending(ctx context.Context, ownerID string, limit int) ([]entity.PriceEvent, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > maxPendingAlerts {
		limit = maxPendingAlerts
	}
	events, err := s.store.Events().ListPending(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending alerts: %w", err)
	}
	if events == nil {
		events = []entity.PriceEvent{}
	}
	return events, nil
}

func (s *alertService) Acknowledge(ctx context.Context, ownerID string, alertID int64, source string) error {
	if source == "" {
		source = defaultAckSource
	}
	return s.store.WithTransaction(ctx, func(tx repository.Store) error {
		event, err := tx.Events().FindByID(ctx, alertID)
		if err != nil {
			return notFound("alert", alertID, err)
		}
		if _, err := loadOwnedProduct(ctx, tx.Products(), ownerID, event.ProductID, false); err != nil {
			return fmt.Errorf("%w: alert %d", ErrNotFound, alertID)
		}
		if err := tx.Events().Acknowledge(ctx, alertID, source); err != nil {
			return notFound("alert", alertID, err)
		}
		return nil
	})
}

// EvaluateAlerts triggers every armed alert of the snapshot's product whose target is at or above
// the snapshot price. Alerts that already fired are never selected again.
func EvaluateAlerts(ctx context.Context, tx repository.Store, snapshot *entity.PriceSnapshot, now time.Time) ([]entity.PriceEvent, error) {
	if snapshot.Price == nil {
		return nil, nil
	}
	price := *snapshot.Price

	armed, err := tx.Events().FindArmed(ctx, snapshot.TrackedProductID, price)
	if err != nil {
		return nil, fmt.Errorf("failed to load armed alerts: %w", err)
	}

	triggered := make([]entity.PriceEvent, 0, len(armed))
	for _, event := range armed {
		message := utils.Deref(event.Message)
		if message == "" {
			message = fmt.Sprintf("Price dropped to %.2f %s (target %.2f)", price, snapshot.Currency, utils.Deref(event.TargetPrice))
		}

		ok, err := tx.Events().MarkTriggered(ctx, event.ID, now, message)
		if err != nil {
			return nil, fmt.Errorf("failed to trigger alert %d: %w", event.ID, err)
		}
		if !ok {
			continue
		}

		at := now
		event.Triggered = true
		event.TriggeredAt = &at
		event.Message = &message
		triggered = append(triggered, event)
	}
	return triggered, nil
}
