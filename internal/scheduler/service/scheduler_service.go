package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/scheduler/config"
	"golang-price-tracker/internal/scheduler/dto"
	"golang-price-tracker/internal/scheduler/repository"
	"golang-price-tracker/internal/tracker/scheduling"
	"golang-price-tracker/pkg/logger"
	"golang-price-tracker/pkg/metrics"
	"golang-price-tracker/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService dispatches due products to the fetch workers.
type SchedulerService interface {
	Start(ctx context.Context) error
	ProcessDue(ctx context.Context) dto.DispatchResult
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(dueRepo repository.DueProductRepository, dispatcher Dispatcher, logger *logger.Logger, cfg *config.Config) SchedulerService {
	return &schedulerService{
		dueRepo:    dueRepo,
		dispatcher: dispatcher,
		logger:     logger,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		cfg:        cfg,
		now:        utils.TimeNowUTC,
	}
}

type schedulerService struct {
	dueRepo    repository.DueProductRepository
	dispatcher Dispatcher
	logger     *logger.Logger
	cronParser cron.Parser
	cfg        *config.Config
	now        func() time.Time

	// polls triggered by the timer and over HTTP never overlap
	mu sync.Mutex
}

// Start polls on the configured cron schedule until ctx is done.
func (s *schedulerService) Start(ctx context.Context) error {
	schedule, err := s.cronParser.Parse(s.cfg.Scheduler.PollSchedule)
	if err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", s.cfg.Scheduler.PollSchedule, err)
	}

	s.logger.Info("Scheduler service started", logger.StringField("poll_schedule", s.cfg.Scheduler.PollSchedule))
	for {
		now := time.Now()
		timer := time.NewTimer(schedule.Next(now).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scheduler service stopping")
			return nil
		case <-timer.C:
			s.ProcessDue(ctx)
		}
	}
}

// ProcessDue publishes a fetch task for every due product not already leased.
func (s *schedulerService) ProcessDue(ctx context.Context) dto.DispatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result dto.DispatchResult
	now := s.now()
	products, err := s.dueRepo.FindDue(ctx, now, s.cfg.Scheduler.BatchSize)
	if err != nil {
		s.logger.Error("Failed to find due products", logger.ErrorField(err))
		return result
	}

	for i := range products {
		if !scheduling.IsDue(&products[i], now) {
			continue
		}
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		result.Due++
		switch s.dispatch(ctx, products[i]) {
		case dispatchPublished:
			result.Published++
		case dispatchLeased:
			result.Leased++
		default:
			result.Failed++
		}
	}

	if result.Due > 0 {
		s.logger.Info("Due products dispatched",
			logger.IntField("due", result.Due),
			logger.IntField("published", result.Published),
			logger.IntField("leased", result.Leased),
			logger.IntField("failed", result.Failed))
	}
	return result
}

type dispatchOutcome string

const (
	dispatchPublished dispatchOutcome = "published"
	dispatchLeased    dispatchOutcome = "leased"
	dispatchError     dispatchOutcome = "error"
)

func (s *schedulerService) dispatch(ctx context.Context, product entity.TrackedProduct) dispatchOutcome {
	outcome := s.publish(ctx, product)
	metrics.SchedulerDispatched.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (s *schedulerService) publish(ctx context.Context, product entity.TrackedProduct) dispatchOutcome {
	acquired, err := s.dispatcher.Lease(ctx, product.ID, s.cfg.Scheduler.LeaseTTL)
	if err != nil {
		s.logger.Error("Failed to lease product", logger.ErrorField(err), logger.Field("product_id", product.ID))
		return dispatchError
	}
	if !acquired {
		s.logger.Debug("Product already dispatched", logger.Field("product_id", product.ID))
		return dispatchLeased
	}

	task := dto.FetchTask{
		TrackedProductID: product.ID,
		URL:              product.URL,
		Marketplace:      product.Marketplace,
		OwnerID:          product.OwnerID,
	}
	if err := s.dispatcher.Publish(ctx, task); err != nil {
		s.logger.Error("Failed to enqueue fetch task", logger.ErrorField(err), logger.Field("product_id", product.ID))
		if err := s.dispatcher.Release(ctx, product.ID); err != nil {
			s.logger.Error("Failed to release lease", logger.ErrorField(err), logger.Field("product_id", product.ID))
		}
		return dispatchError
	}

	s.logger.Debug("Fetch task published", logger.Field("product_id", product.ID))
	return dispatchPublished
}
