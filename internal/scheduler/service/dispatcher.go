package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-price-tracker/internal/scheduler/dto"
	"golang-price-tracker/pkg/common"

	"github.com/redis/go-redis/v9"
)

// Dispatcher hands fetch tasks to the tracker workers.
type Dispatcher interface {
	// Lease reserves the product for ttl; false means a previous dispatch still holds it.
	Lease(ctx context.Context, productID int64, ttl time.Duration) (bool, error)
	Release(ctx context.Context, productID int64) error
	Publish(ctx context.Context, task dto.FetchTask) error
}

type redisDispatcher struct {
	redisClient  *redis.Client
	streamMaxLen int64
}

// NewRedisDispatcher publishes on the product fetch stream and keeps leases as redis keys.
func NewRedisDispatcher(redisClient *redis.Client, streamMaxLen int64) Dispatcher {
	return &redisDispatcher{redisClient: redisClient, streamMaxLen: streamMaxLen}
}

func (d *redisDispatcher) Lease(ctx context.Context, productID int64, ttl time.Duration) (bool, error) {
	return d.redisClient.SetNX(ctx, fmt.Sprintf(common.RedisKeyFetchLease, productID), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (d *redisDispatcher) Release(ctx context.Context, productID int64) error {
	return d.redisClient.Del(ctx, fmt.Sprintf(common.RedisKeyFetchLease, productID)).Err()
}

func (d *redisDispatcher) Publish(ctx context.Context, task dto.FetchTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal fetch task: %w", err)
	}
	return d.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamProductFetch,
		Values: map[string]interface{}{"payload": string(payload)},
		MaxLen: d.streamMaxLen,
		Approx: true,
	}).Err()
}
