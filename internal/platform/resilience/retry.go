package resilience

import (
	"context"
	"time"
)

// RetryConfig bounds how often a store commit may be attempted. MaxAttempts=1
// means a single attempt with no retry.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 1,
		Backoff:     2 * time.Second,
	}
}

func NormalizeRetryConfig(cfg RetryConfig) RetryConfig {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaults.Backoff
	}
	return cfg
}

// Retry runs fn up to cfg.MaxAttempts times, sleeping cfg.Backoff times the
// attempt number between tries. The final error is returned unwrapped so
// callers can inspect it with errors.Is.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg = NormalizeRetryConfig(cfg)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sleep(cfg.Backoff * time.Duration(attempt)):
		}
	}

	return lastErr
}

// sleep is swapped out in tests to avoid real waits.
var sleep = func(d time.Duration) <-chan time.Time {
	return time.After(d)
}
