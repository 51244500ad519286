// Package retry provides a generic exponential backoff helper.
package retry

import (
	"context"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// Once returns a config that retries a single time after delay.
func Once(delay time.Duration) Config {
	return Config{
		MaxAttempts:   2,
		InitialDelay:  delay,
		MaxDelay:      delay,
		BackoffFactor: 1,
	}
}

// Do executes fn with exponential backoff until it succeeds or attempts run out.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	return DoWithCheck(ctx, cfg, fn, func(error) bool { return true })
}

// DoWithCheck is Do with a caller-supplied decision on which errors are retryable.
func DoWithCheck[T any](
	ctx context.Context,
	cfg Config,
	fn func(ctx context.Context) (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.InitialDelay

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		if cfg.BackoffFactor > 1 {
			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		}
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}
