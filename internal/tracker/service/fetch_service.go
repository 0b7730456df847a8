package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-price-tracker/internal/tracker/config"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/strategy"
	"golang-price-tracker/pkg/common"
	"golang-price-tracker/pkg/logger"
	"golang-price-tracker/pkg/pricing"
	"golang-price-tracker/pkg/telegram"
	"golang-price-tracker/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FetchService consumes product fetch tasks, scrapes the page and ingests the observation.
type FetchService interface {
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
	Fetch(ctx context.Context, task dto.FetchTask) error
}

type fetchService struct {
	cfg          *config.Config
	log          *logger.Logger
	redisClient  *redis.Client
	registry     *strategy.Registry
	ingest       IngestService
	telegramBot  telegram.Notifier
	consumerName string
}

func NewFetchService(cfg *config.Config, log *logger.Logger,
	redisClient *redis.Client,
	registry *strategy.Registry,
	ingest IngestService,
	telegramBot telegram.Notifier) FetchService {
	if telegramBot == nil {
		telegramBot = telegram.NewNopNotifier()
	}
	return &fetchService{
		cfg:          cfg,
		log:          log,
		redisClient:  redisClient,
		registry:     registry,
		ingest:       ingest,
		telegramBot:  telegramBot,
		consumerName: common.RedisStreamConsumer + "-" + uuid.NewString()[:8],
	}
}

func (s *fetchService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: s.consumerName,
		Streams:  []string{common.RedisStreamProductFetch, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		// idle periods and shutdown are expected
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	task, err := decodeFetchTask(message)
	if err != nil {
		s.log.Error("Failed to decode fetch task", logger.ErrorField(err), logger.Field("message_id", message.ID))
		// a malformed payload will never succeed
		if err := s.AckNDel(ctx, message.ID); err != nil {
			s.log.Error("Failed to drop malformed fetch task", logger.ErrorField(err), logger.Field("message_id", message.ID))
		}
		return
	}

	if err := s.Fetch(ctx, task); err != nil {
		s.log.Error("Failed to process fetch task", logger.ErrorField(err), logger.Field("message_id", message.ID), logger.Field("product_id", task.TrackedProductID))
		return
	}

	if err := s.AckNDel(ctx, message.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete fetch task", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}
	s.log.Debug("Fetch task processed successfully", logger.Field("product_id", task.TrackedProductID))
}

// Fetch scrapes the product with bounded retries. When every attempt fails the product is still
// ingested with unknown availability, so it gets rescheduled.
func (s *fetchService) Fetch(ctx context.Context, task dto.FetchTask) error {
	obs := dto.Observation{
		URL:          task.URL,
		Marketplace:  task.Marketplace,
		Availability: common.AvailabilityUnknown,
		Source:       common.SourceBackgroundJob,
		OwnerID:      task.OwnerID,
	}

	fetched, err := s.fetchWithRetry(ctx, task)
	if err != nil {
		s.log.Warn("Fetch exhausted, recording unknown availability",
			logger.ErrorField(err),
			logger.Field("product_id", task.TrackedProductID),
			logger.StringField("url", task.URL))
	} else {
		obs.Title = fetched.Title
		obs.ImageURL = fetched.ImageURL
		obs.PriceRaw = fetched.PriceRaw
		obs.Availability = fetched.Availability
		if obs.Availability == common.AvailabilityInStock {
			if _, ok := pricing.ParseValue(obs.PriceRaw); !ok {
				obs.Availability = common.AvailabilityUnknown
			}
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	res, err := s.ingest.Ingest(ctx, obs)
	if err != nil {
		return fmt.Errorf("failed to ingest fetched observation: %w", err)
	}
	if res.TrackedProductID != task.TrackedProductID {
		s.log.Warn("Fetched observation resolved to a different product",
			logger.Field("task_product_id", task.TrackedProductID),
			logger.Field("ingested_product_id", res.TrackedProductID))
	}
	return nil
}

func (s *fetchService) fetchWithRetry(ctx context.Context, task dto.FetchTask) (*dto.FetchedProduct, error) {
	fetchStrategy, err := s.registry.Resolve(task.Marketplace, task.URL)
	if err != nil {
		return nil, err
	}

	retry := utils.RetryConfig{
		MaxAttempts: s.cfg.Scraper.MaxAttempts,
		BaseDelay:   s.cfg.Scraper.RetryBaseDelay,
		Logger:      s.log,
	}

	var fetched *dto.FetchedProduct
	err = retry.Do(ctx, "fetch "+fetchStrategy.Marketplace(), func(ctx context.Context) error {
		p, err := fetchStrategy.Fetch(ctx, task.URL)
		if err != nil {
			return err
		}
		fetched = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fetched, nil
}

func (s *fetchService) AckNDel(ctx context.Context, messageID string) error {
	if err := s.redisClient.XAck(ctx, common.RedisStreamProductFetch, common.RedisStreamGroup, messageID).Err(); err != nil {
		return err
	}
	return s.redisClient.XDel(ctx, common.RedisStreamProductFetch, messageID).Err()
}

// ProcessRetries claims a fetch task left pending by a failed or dead consumer and runs it again,
// dropping it once it exceeded the configured retry count.
func (s *fetchService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamProductFetch,
		Group:    common.RedisStreamGroup,
		Consumer: s.consumerName + "-retry",
		MinIdle:  s.cfg.Tracker.RedisStreamFetchMaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to claim fetch task on retry", logger.ErrorField(err))
		return
	}

	if len(msgs) == 0 {
		s.log.Debug("Retry no pending messages found", logger.StringField("stream", common.RedisStreamProductFetch))
		return
	}

	msg := msgs[0]
	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamProductFetch,
		Group:  common.RedisStreamGroup,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}
	if len(pendingInfo) == 0 {
		s.log.Warn("pending msg not found, but exist on xautoclaim",
			logger.StringField("stream", common.RedisStreamProductFetch),
			logger.StringField("message_id", msg.ID))
		return
	}

	task, err := decodeFetchTask(msg)
	if err != nil {
		s.log.Error("Failed to decode fetch task", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		if err := s.AckNDel(ctx, msg.ID); err != nil {
			s.log.Error("Failed to drop malformed fetch task", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		}
		return
	}

	maxRetry := s.cfg.Tracker.RedisStreamFetchMaxRetry
	if pendingInfo[0].RetryCount >= int64(maxRetry) {
		s.log.Error("pending msg retry count exceeded",
			logger.StringField("message_id", msg.ID),
			logger.Field("product_id", task.TrackedProductID),
			logger.IntField("retry_count", int(pendingInfo[0].RetryCount)),
			logger.IntField("max_retry", maxRetry))
		text := telegram.FormatErrorAlertMessage(utils.TimeNowUTC(), fmt.Sprintf("Fetch task for product %d (%s) dropped after %d retries", task.TrackedProductID, task.URL, maxRetry))
		if err := s.telegramBot.SendMessage(text); err != nil {
			s.log.Error("Failed to send telegram message retry exceeded", logger.ErrorField(err))
		}
		if err := s.AckNDel(ctx, msg.ID); err != nil {
			s.log.Error("Failed to acknowledge and delete fetch task", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		}
		return
	}

	if err := s.Fetch(ctx, task); err != nil {
		s.log.Error("Retry fetch task failed", logger.ErrorField(err), logger.Field("message_id", msg.ID), logger.Field("product_id", task.TrackedProductID))
		return
	}
	if err := s.AckNDel(ctx, msg.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete fetch task", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		return
	}
	s.log.Info("Retry fetch task processed successfully", logger.Field("product_id", task.TrackedProductID))
}

func decodeFetchTask(message redis.XMessage) (dto.FetchTask, error) {
	var task dto.FetchTask
	payload, ok := message.Values["payload"].(string)
	if !ok {
		return task, errors.New("field 'payload' not found or not a string in stream message")
	}
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return task, fmt.Errorf("failed to unmarshal fetch task: %w", err)
	}
	if task.URL == "" || task.OwnerID == "" {
		return task, errors.New("fetch task without url or owner")
	}
	return task, nil
}
