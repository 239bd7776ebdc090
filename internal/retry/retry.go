// Package retry provides fixed-interval retry logic for transient upstream
// errors, kept pure so the policy is testable without a network.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config controls the retry behaviour.
type Config struct {
	// Attempts is the total number of attempts, including the first.
	// Zero or negative values are treated as 1.
	Attempts int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// ShouldRetry classifies errors as retryable. When nil, every non-nil
	// error is retried.
	ShouldRetry func(err error) bool
}

// Do calls fn up to cfg.Attempts times, waiting cfg.Delay between attempts.
// It stops early when ctx is cancelled, fn succeeds, or ShouldRetry rejects
// the error. The error from the last attempt is returned.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(error) bool { return true }
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(lastErr, err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !shouldRetry(lastErr) {
			return lastErr
		}

		if attempt < attempts && cfg.Delay > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			case <-time.After(cfg.Delay):
			}
		}
	}
	return lastErr
}
