package resilience

import (
	"time"
)

// FromSchedule builds a fixed-schedule RetryConfig from config values.
// Non-positive attempt counts fall back to one attempt per schedule entry
// plus the initial try.
func FromSchedule(maxAttempts int, schedule []time.Duration) RetryConfig {
	if maxAttempts <= 0 {
		maxAttempts = len(schedule) + 1
	}
	return ScheduleRetryConfig(maxAttempts, schedule...)
}

// FromCircuitConfig converts config values to a CircuitBreakerConfig.
func FromCircuitConfig(failureThreshold int, resetTimeout time.Duration) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	if failureThreshold > 0 {
		cfg.FailureThreshold = failureThreshold
	}
	if resetTimeout > 0 {
		cfg.ResetTimeout = resetTimeout
	}
	return cfg
}
