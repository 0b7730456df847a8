package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/repository"
	"golang-price-tracker/internal/tracker/scheduling"
	"golang-price-tracker/pkg/common"
	"golang-price-tracker/pkg/fingerprint"
	"golang-price-tracker/pkg/logger"
	"golang-price-tracker/pkg/metrics"
	"golang-price-tracker/pkg/pricing"
	"golang-price-tracker/pkg/telegram"
	"golang-price-tracker/pkg/utils"

	"gorm.io/datatypes"
)

// Fingerprinter maps a product URL to its canonical identity.
type Fingerprinter interface {
	Canonicalize(rawURL string) string
}

// IngestService records price observations.
type IngestService interface {
	Ingest(ctx context.Context, obs dto.Observation) (*dto.IngestResult, error)
}

type ingestService struct {
	store         repository.Store
	fingerprinter Fingerprinter
	notifier      telegram.Notifier
	log           *logger.Logger
	windowDays    int
	now           func() time.Time
}

func NewIngestService(store repository.Store, fingerprinter Fingerprinter, notifier telegram.Notifier, log *logger.Logger, windowDays int) IngestService {
	if fingerprinter == nil {
		fingerprinter = fingerprint.New()
	}
	if notifier == nil {
		notifier = telegram.NewNopNotifier()
	}
	return &ingestService{
		store:         store,
		fingerprinter: fingerprinter,
		notifier:      notifier,
		log:           log,
		windowDays:    windowDays,
		now:           utils.TimeNowUTC,
	}
}

// ingestInput is a validated observation with its derived identity.
type ingestInput struct {
	obs         dto.Observation
	cleanedURL  string
	fingerprint string
	price       *float64
	currency    string
	rawPayload  datatypes.JSON
}

type ingestOutcome struct {
	result    *dto.IngestResult
	triggered []entity.PriceEvent
}

// Ingest upserts the tracked product, appends a snapshot, and refreshes the insight and alerts, all in
// one transaction. Losing a first-sight race to a concurrent ingestion is recovered by retrying once
// against the winner's row.
func (s *ingestService) Ingest(ctx context.Context, obs dto.Observation) (*dto.IngestResult, error) {
	in, err := s.prepare(obs)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	out, err := s.ingestOnce(ctx, in, false)
	if errors.Is(err, repository.ErrDuplicateKey) {
		metrics.IngestConflictRetries.Inc()
		s.log.Warn("Concurrent first sight of product, retrying as update",
			logger.StringField("fingerprint", in.fingerprint),
			logger.StringField("owner_id", in.obs.OwnerID),
			logger.ErrorField(err))
		out, err = s.ingestOnce(ctx, in, true)
	}
	if err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if out.result.Created {
		metrics.IngestTotal.WithLabelValues("created").Inc()
	} else {
		metrics.IngestTotal.WithLabelValues("updated").Inc()
	}
	if len(out.triggered) > 0 {
		metrics.AlertsTriggered.Add(float64(len(out.triggered)))
		s.notify(out.triggered)
	}

	s.log.Debug("Observation ingested",
		logger.Field("product_id", out.result.TrackedProductID),
		logger.Field("snapshot_id", out.result.SnapshotID),
		logger.StringField("availability", out.result.Availability),
		logger.Field("availability_changed", out.result.AvailabilityChanged))

	return out.result, nil
}

func (s *ingestService) prepare(obs dto.Observation) (ingestInput, error) {
	obs.URL = strings.TrimSpace(obs.URL)
	obs.Marketplace = strings.ToLower(strings.TrimSpace(obs.Marketplace))
	obs.Title = strings.TrimSpace(obs.Title)
	obs.ImageURL = strings.TrimSpace(obs.ImageURL)
	obs.PriceRaw = strings.TrimSpace(obs.PriceRaw)

	if obs.URL == "" {
		return ingestInput{}, newValidationError("url", "is required")
	}
	if obs.Marketplace == "" {
		return ingestInput{}, newValidationError("marketplace", "is required")
	}
	if obs.Availability == "" {
		obs.Availability = common.AvailabilityInStock
	}
	if obs.Source == "" {
		obs.Source = common.SourceExtension
	}
	switch obs.Source {
	case common.SourceExtension, common.SourceBackgroundJob, common.SourceMonitor:
	default:
		return ingestInput{}, newValidationError("source", fmt.Sprintf("unknown source %q", obs.Source))
	}

	in := ingestInput{
		obs:         obs,
		cleanedURL:  fingerprint.CleanURL(obs.URL),
		fingerprint: s.fingerprinter.Canonicalize(obs.URL),
	}

	if obs.PriceRaw != "" {
		in.currency = pricing.DetectCurrency(obs.PriceRaw)
	}

	if obs.Availability == common.AvailabilityInStock {
		if obs.PriceRaw == "" {
			return ingestInput{}, newValidationError("price_raw", "is required when the product is in stock")
		}
		value, ok := pricing.ParseValue(obs.PriceRaw)
		if !ok {
			return ingestInput{}, newValidationError("price_raw", fmt.Sprintf("no price found in %q", obs.PriceRaw))
		}
		in.price = &value
	}

	payload, err := json.Marshal(obs)
	if err != nil {
		return ingestInput{}, fmt.Errorf("failed to encode raw payload: %w", err)
	}
	in.rawPayload = payload

	return in, nil
}

// ingestOnce runs one transactional attempt. With mustExist the product is expected to have been
// created by a concurrent ingestion, so a missing row is an error instead of a create.
func (s *ingestService) ingestOnce(ctx context.Context, in ingestInput, mustExist bool) (*ingestOutcome, error) {
	var out *ingestOutcome

	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		now := s.now()

		product, err := tx.Products().FindForOwner(ctx, in.obs.OwnerID, in.fingerprint, in.cleanedURL)
		if err != nil {
			return fmt.Errorf("failed to look up tracked product: %w", err)
		}

		var previous *string
		created := false

		if product == nil {
			if mustExist {
				return fmt.Errorf("tracked product %s missing after uniqueness conflict", in.fingerprint)
			}
			product = s.newProduct(in, now)
			if err := tx.Products().Create(ctx, product); err != nil {
				return fmt.Errorf("failed to create tracked product: %w", err)
			}
			created = true
		} else {
			previous = product.LastAvailability
			s.refreshProduct(product, in, now)
			if err := tx.Products().Update(ctx, product); err != nil {
				return fmt.Errorf("failed to update tracked product: %w", err)
			}
		}

		snapshot := &entity.PriceSnapshot{
			TrackedProductID: product.ID,
			Price:            in.price,
			Currency:         product.Currency,
			Availability:     in.obs.Availability,
			Source:           in.obs.Source,
			RawPayload:       in.rawPayload,
			FetchedAt:        now,
		}
		if in.obs.PriceRaw != "" {
			snapshot.RawPriceText = utils.ToPointer(in.obs.PriceRaw)
		}
		if err := tx.Snapshots().Create(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to append snapshot: %w", err)
		}

		result := &dto.IngestResult{
			TrackedProductID:     product.ID,
			SnapshotID:           snapshot.ID,
			URL:                  product.URL,
			Title:                product.Title,
			Price:                in.price,
			Currency:             product.Currency,
			Availability:         in.obs.Availability,
			PreviousAvailability: previous,
			AvailabilityChanged:  previous != nil && *previous != in.obs.Availability,
			NextRunAt:            product.NextRunAt.UTC().Format(time.RFC3339),
			Created:              created,
		}

		if in.obs.Availability == common.AvailabilityInStock && in.price != nil {
			if rec := s.recordInsightSafely(ctx, tx, product.ID, now); rec != nil {
				result.Insight = &dto.InsightSummary{Recommendation: rec.Recommendation, Summary: rec.Explanation}
			}
		}

		out = &ingestOutcome{
			result:    result,
			triggered: s.evaluateAlertsSafely(ctx, tx, snapshot, now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ingestService) newProduct(in ingestInput, now time.Time) *entity.TrackedProduct {
	currency := in.currency
	if currency == "" {
		currency = common.DefaultCurrency
	}
	product := &entity.TrackedProduct{
		OwnerID:          in.obs.OwnerID,
		URL:              in.cleanedURL,
		CanonicalURL:     in.fingerprint,
		Marketplace:      in.obs.Marketplace,
		Title:            in.obs.Title,
		ImageURL:         in.obs.ImageURL,
		Currency:         currency,
		IsActive:         true,
		UpdateInterval:   common.DefaultUpdateIntervalHours,
		LastAvailability: utils.ToPointer(in.obs.Availability),
	}
	scheduling.MarkScraped(product, now)
	return product
}

func (s *ingestService) refreshProduct(product *entity.TrackedProduct, in ingestInput, now time.Time) {
	product.URL = in.cleanedURL
	if product.CanonicalURL == "" {
		product.CanonicalURL = in.fingerprint
	}
	if in.obs.Title != "" {
		product.Title = in.obs.Title
	}
	if in.obs.ImageURL != "" {
		product.ImageURL = in.obs.ImageURL
	}
	if in.currency != "" {
		product.Currency = in.currency
	}
	if product.Currency == "" {
		product.Currency = common.DefaultCurrency
	}
	product.Marketplace = in.obs.Marketplace
	// only the owner tracking the product again undoes a deactivation
	if in.obs.Source == common.SourceExtension {
		product.IsActive = true
	}
	product.LastAvailability = utils.ToPointer(in.obs.Availability)
	scheduling.MarkScraped(product, now)
}

// recordInsightSafely runs the insight step in a savepoint; a failure is logged and leaves the
// snapshot write intact.
func (s *ingestService) recordInsightSafely(ctx context.Context, tx repository.Store, productID int64, now time.Time) *entity.AIInsight {
	var rec *entity.AIInsight
	err := tx.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		rec, err = recordInsight(ctx, tx, productID, s.windowDays, now)
		return err
	})
	if err != nil {
		s.log.Error("Insight computation failed, snapshot kept", logger.ErrorField(err), logger.Field("product_id", productID))
		return nil
	}
	return rec
}

func (s *ingestService) evaluateAlertsSafely(ctx context.Context, tx repository.Store, snapshot *entity.PriceSnapshot, now time.Time) []entity.PriceEvent {
	var triggered []entity.PriceEvent
	err := tx.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		triggered, err = EvaluateAlerts(ctx, tx, snapshot, now)
		return err
	})
	if err != nil {
		s.log.Error("Alert evaluation failed, snapshot kept", logger.ErrorField(err), logger.Field("snapshot_id", snapshot.ID))
		return nil
	}
	return triggered
}

// notify sends triggered alerts after commit. Delivery is best effort; acknowledgement is up to the client.
func (s *ingestService) notify(events []entity.PriceEvent) {
	for _, msg := range telegram.FormatTriggeredAlertsForTelegram(events) {
		if err := s.notifier.SendMessage(msg); err != nil {
			s.log.Error("Failed to send alert notification", logger.ErrorField(err), logger.IntField("alerts", len(events)))
		}
	}
}
