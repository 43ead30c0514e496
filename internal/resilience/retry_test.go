package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	sleeper := &RecordingSleeper{}
	cfg := ScheduleRetryConfig(3, time.Second)
	cfg.Sleeper = sleeper

	var calls int
	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.Delays())
}

func TestDo_ScheduleWaitsBetweenAttempts(t *testing.T) {
	sleeper := &RecordingSleeper{}
	cfg := ScheduleRetryConfig(3, 5*time.Second, 15*time.Second, 30*time.Second)
	cfg.Sleeper = sleeper

	var calls int
	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return NewTransientError(errors.New("gateway timeout"), 504)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	// No wait after the final attempt.
	assert.Equal(t, []time.Duration{5 * time.Second, 15 * time.Second}, sleeper.Delays())
}

func TestDo_ScheduleReusesLastEntry(t *testing.T) {
	sleeper := &RecordingSleeper{}
	cfg := ScheduleRetryConfig(4, time.Second)
	cfg.Sleeper = sleeper

	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		return NewTransientError(errors.New("busy"), 429)
	})
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, sleeper.Delays())
}

func TestDo_SuccessAfterRetry(t *testing.T) {
	cfg := ScheduleRetryConfig(3, time.Millisecond)
	cfg.Sleeper = &RecordingSleeper{}

	var calls int
	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		if calls < 2 {
			return NewTransientError(errors.New("rate limited"), 429)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_NonTransientError_NoRetry(t *testing.T) {
	sleeper := &RecordingSleeper{}
	cfg := ScheduleRetryConfig(3, time.Second)
	cfg.Sleeper = sleeper

	var calls int
	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return errors.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.Delays())
}

func TestDo_ContextCancelled_StopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := ScheduleRetryConfig(5, time.Hour)

	var calls int
	err := Do(ctx, cfg, func(_ context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("temporary"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_CustomShouldRetry(t *testing.T) {
	retryable := errors.New("retry me")
	cfg := ScheduleRetryConfig(3, time.Millisecond)
	cfg.Sleeper = &RecordingSleeper{}
	cfg.ShouldRetry = func(err error) bool { return errors.Is(err, retryable) }

	var calls int
	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return retryable
	})
	assert.ErrorIs(t, err, retryable)
	assert.Equal(t, 3, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	cfg := ScheduleRetryConfig(3, time.Millisecond)
	cfg.Sleeper = &RecordingSleeper{}

	var attempts []int
	cfg.OnRetry = func(attempt int, _ error) { attempts = append(attempts, attempt) }

	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		return NewTransientError(errors.New("down"), 502)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoVal_ReturnsValueOnSuccess(t *testing.T) {
	cfg := ScheduleRetryConfig(3, time.Millisecond)
	cfg.Sleeper = &RecordingSleeper{}

	var calls int
	val, err := DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewTransientError(errors.New("busy"), 429)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
}

func TestDoVal_ReturnsZeroOnFailure(t *testing.T) {
	cfg := ScheduleRetryConfig(2, time.Millisecond)
	cfg.Sleeper = &RecordingSleeper{}

	val, err := DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		return 42, NewTransientError(errors.New("busy"), 429)
	})
	require.Error(t, err)
	assert.Zero(t, val)
}

func TestBackoffFor_EmptySchedule(t *testing.T) {
	assert.Zero(t, backoffFor(0, RetryConfig{}))
	assert.Zero(t, backoffFor(3, RetryConfig{}))
}

func TestFromSchedule(t *testing.T) {
	cfg := FromSchedule(0, []time.Duration{time.Second, 2 * time.Second})
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Len(t, cfg.Schedule, 2)

	cfg = FromSchedule(5, nil)
	assert.Equal(t, 5, cfg.MaxAttempts)
}

func TestRetryLogger(t *testing.T) {
	fn := RetryLogger("overpass", "fetch")
	assert.NotPanics(t, func() { fn(1, errors.New("boom")) })
}
