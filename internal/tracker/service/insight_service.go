package service

import (
	"context"
	"fmt"
	"time"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/insight"
	"golang-price-tracker/internal/tracker/repository"
	"golang-price-tracker/pkg/logger"
	"golang-price-tracker/pkg/metrics"
	"golang-price-tracker/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
)

type InsightService interface {
	// Compute loads the window of a product and computes an insight without persisting it.
	Compute(ctx context.Context, ownerID string, productID int64) (*insight.Result, error)
	// ComputeAndStore computes an insight and appends it to the product's insight history.
	ComputeAndStore(ctx context.Context, ownerID string, productID int64) (*entity.AIInsight, error)
	Latest(ctx context.Context, ownerID string, productID int64) (*entity.AIInsight, error)
	// RefreshAll recomputes every active product sequentially; one failure never stops the batch.
	RefreshAll(ctx context.Context) dto.RefreshResult
}

type insightService struct {
	store      repository.Store
	log        *logger.Logger
	windowDays int
	now        func() time.Time
}

func NewInsightService(store repository.Store, log *logger.Logger, windowDays int) InsightService {
	return &insightService{
		store:      store,
		log:        log,
		windowDays: windowDays,
		now:        utils.TimeNowUTC,
	}
}

func (s *insightService) Compute(ctx context.Context, ownerID string, productID int64) (*insight.Result, error) {
	if _, err := loadOwnedProduct(ctx, s.store.Products(), ownerID, productID, false); err != nil {
		return nil, err
	}
	result, err := computeInsight(ctx, s.store, productID, s.windowDays, s.now())
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *insightService) ComputeAndStore(ctx context.Context, ownerID string, productID int64) (*entity.AIInsight, error) {
	var saved *entity.AIInsight
	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		if _, err := loadOwnedProduct(ctx, tx.Products(), ownerID, productID, false); err != nil {
			return err
		}
		rec, err := recordInsight(ctx, tx, productID, s.windowDays, s.now())
		if err != nil {
			return err
		}
		saved = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *insightService) Latest(ctx context.Context, ownerID string, productID int64) (*entity.AIInsight, error) {
	if _, err := loadOwnedProduct(ctx, s.store.Products(), ownerID, productID, false); err != nil {
		return nil, err
	}
	latest, err := s.store.Insights().GetLatest(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest insight: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: no insight for product %d", ErrNotFound, productID)
	}
	return latest, nil
}

func (s *insightService) RefreshAll(ctx context.Context) dto.RefreshResult {
	result := dto.RefreshResult{Failed: []int64{}}

	ids, err := s.store.Products().ListActiveIDs(ctx)
	if err != nil {
		s.log.Error("Failed to list active products for insight refresh", logger.ErrorField(err))
		return result
	}
	result.Total = len(ids)

	for _, id := range ids {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		if _, err := s.ComputeAndStore(ctx, "", id); err != nil {
			s.log.Error("Failed to refresh insight", logger.ErrorField(err), logger.Field("product_id", id))
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Succeeded++
	}

	s.log.Info("Insight refresh completed",
		logger.IntField("total", result.Total),
		logger.IntField("succeeded", result.Succeeded),
		logger.IntField("failed", len(result.Failed)))
	return result
}

// computeInsight loads the priced snapshots of the window and runs the engine.
func computeInsight(ctx context.Context, store repository.Store, productID int64, windowDays int, now time.Time) (insight.Result, error) {
	timer := prometheus.NewTimer(metrics.InsightComputeDuration)
	defer timer.ObserveDuration()

	since := now.AddDate(0, 0, -windowDays)
	snapshots, err := store.Snapshots().ListPricedSince(ctx, productID, since)
	if err != nil {
		return insight.Result{}, fmt.Errorf("failed to load snapshot window: %w", err)
	}

	points := make([]insight.Point, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.Price == nil {
			continue
		}
		points = append(points, insight.Point{Price: *snap.Price, At: utils.EnsureUTC(snap.FetchedAt)})
	}

	return insight.Compute(points, now, windowDays), nil
}

// recordInsight computes and persists an insight using the given (possibly transactional) store.
func recordInsight(ctx context.Context, store repository.Store, productID int64, windowDays int, now time.Time) (*entity.AIInsight, error) {
	result, err := computeInsight(ctx, store, productID, windowDays, now)
	if err != nil {
		return nil, err
	}

	rec := toInsightEntity(productID, result, now)
	if err := store.Insights().Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save insight: %w", err)
	}
	return rec, nil
}

func toInsightEntity(productID int64, r insight.Result, now time.Time) *entity.AIInsight {
	return &entity.AIInsight{
		ProductID:           productID,
		SnapshotCount:       r.SnapshotCount,
		WindowDays:          r.WindowDays,
		LastPrice:           r.LastPrice,
		MinPrice:            r.MinPrice,
		MaxPrice:            r.MaxPrice,
		AvgPrice:            r.AvgPrice,
		Volatility:          r.Volatility,
		Slope:               r.Slope,
		PctChange7d:         r.PctChange7d,
		PctChange30d:        r.PctChange30d,
		Trend:               r.Trend,
		Anomaly:             r.Anomaly,
		Recommendation:      r.Recommendation,
		Confidence:          r.Confidence,
		SuggestedAlertPrice: r.SuggestedAlertPrice,
		Explanation:         r.Explanation,
		ExplanationFacts:    r.Facts,
		CreatedAt:           now,
	}
}
