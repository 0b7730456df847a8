package utils

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"golang-price-tracker/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers from panics so a single task can't take the process down.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether ctx is still alive, logging when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context done, stop processing", logger.ErrorField(fmt.Errorf("%w", ctx.Err())))
		return false
	default:
		return true
	}
}
