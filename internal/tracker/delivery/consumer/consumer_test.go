package consumer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"golang-price-tracker/internal/tracker/config"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type countingFetchService struct {
	tasks   atomic.Int32
	retries atomic.Int32
}

func (f *countingFetchService) ProcessTask(ctx context.Context) {
	f.tasks.Add(1)
	<-time.After(time.Millisecond)
}

func (f *countingFetchService) ProcessRetries(ctx context.Context) { f.retries.Add(1) }

func (f *countingFetchService) Fetch(ctx context.Context, task dto.FetchTask) error { return nil }

func TestRedisConsumer_RunsHandlersUntilStopped(t *testing.T) {
	cfg := &config.Config{Tracker: config.Tracker{
		RedisStreamFetchTimeout:       time.Second,
		RedisStreamFetchRetryInterval: 5 * time.Millisecond,
	}}
	fetch := &countingFetchService{}
	c := NewRedisConsumer(cfg, fetch, logger.NewNop())

	c.Start(context.Background())
	assert.Eventually(t, func() bool {
		return fetch.tasks.Load() > 1 && fetch.retries.Load() > 0
	}, time.Second, 5*time.Millisecond)

	c.Stop()
	seen := fetch.tasks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, seen, fetch.tasks.Load())

	// stopping twice is harmless
	c.Stop()
}

func TestRedisConsumer_StopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{Tracker: config.Tracker{
		RedisStreamFetchTimeout:       time.Second,
		RedisStreamFetchRetryInterval: time.Hour,
	}}
	c := NewRedisConsumer(cfg, &countingFetchService{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after context cancellation")
	}
}
