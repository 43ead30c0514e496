package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls how often and how long to wait between attempts.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int

	// Schedule lists the wait before each retry. Attempt n waits
	// Schedule[n-1]; attempts past the end reuse the last entry. An empty
	// schedule retries immediately.
	Schedule []time.Duration

	// ShouldRetry decides whether an error is worth another attempt.
	// Defaults to IsTransient.
	ShouldRetry func(err error) bool

	// OnRetry is called before each wait with the attempt number that failed.
	OnRetry func(attempt int, err error)

	// Sleeper performs the wait. Defaults to RealSleeper.
	Sleeper Sleeper
}

// ScheduleRetryConfig returns a policy with a fixed list of waits.
func ScheduleRetryConfig(maxAttempts int, schedule ...time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts: maxAttempts,
		Schedule:    schedule,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or attempts
// run out. The last error is returned.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for functions that produce a value.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !cfg.ShouldRetry(err) {
			return zero, lastErr
		}
		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err)
		}
		if serr := cfg.Sleeper.Sleep(ctx, backoffFor(attempt, cfg)); serr != nil {
			return zero, lastErr
		}
	}

	return zero, lastErr
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = IsTransient
	}
	cfg.Sleeper = OrReal(cfg.Sleeper)
	return cfg
}

func backoffFor(attempt int, cfg RetryConfig) time.Duration {
	n := len(cfg.Schedule)
	switch {
	case n == 0:
		return 0
	case attempt >= n:
		return cfg.Schedule[n-1]
	default:
		return cfg.Schedule[attempt]
	}
}

// RetryLogger returns an OnRetry callback that logs each failed attempt.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
