package utils

import (
	"context"
	"fmt"
	"time"

	"golang-price-tracker/pkg/logger"
)

// RetryConfig holds the parameters for a bounded exponential back-off.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *logger.Logger
}

// Do executes fn until it succeeds, MaxAttempts is reached or ctx is done.
func (r RetryConfig) Do(ctx context.Context, operationName string, fn func(ctx context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		if r.Logger != nil {
			r.Logger.Warn("Operation failed, retrying",
				logger.StringField("operation", operationName),
				logger.IntField("attempt", attempt),
				logger.IntField("max_attempts", attempts),
				logger.Field("delay", delay),
				logger.ErrorField(lastErr))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s aborted after %d attempts: %w", operationName, attempt, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}
