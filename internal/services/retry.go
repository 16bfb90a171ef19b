package services

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig controls the uniform retry policy applied to provider calls.
type RetryConfig struct {
	Attempts  int           // total attempt budget, not additional retries
	BaseDelay time.Duration // backoff is BaseDelay × 2^attempt
}

// DefaultRetryConfig returns the standard 3-attempt exponential backoff policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, BaseDelay: 500 * time.Millisecond}
}

// normalize clamps nonsensical values to the defaults.
func (c RetryConfig) normalize() RetryConfig {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	return c
}

// withRetry invokes fn up to cfg.Attempts times, sleeping BaseDelay × 2^attempt
// between failures. Intermediate failures are invisible to the caller; the
// final attempt's error is returned unchanged.
func withRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	cfg = cfg.normalize()

	var err error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			delay := cfg.BaseDelay * (1 << (attempt - 1))
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-timer.C:
			}
		}

		if err = fn(); err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return err
		}
	}

	return err
}
