package resilience

import (
	"context"
	"sync"
	"time"
)

// Sleeper pauses the caller. Every politeness delay and retry backoff goes
// through a Sleeper so tests can observe delays without waiting.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper waits on a timer and returns early with ctx.Err() on cancellation.
type RealSleeper struct{}

// Sleep implements Sleeper.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RecordingSleeper returns immediately and remembers every requested delay.
type RecordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

// Sleep implements Sleeper.
func (r *RecordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

// Delays returns a copy of the recorded delays in call order.
func (r *RecordingSleeper) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.delays))
	copy(out, r.delays)
	return out
}

// Total returns the sum of all recorded delays.
func (r *RecordingSleeper) Total() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum time.Duration
	for _, d := range r.delays {
		sum += d
	}
	return sum
}

// OrReal returns s, or RealSleeper when s is nil.
func OrReal(s Sleeper) Sleeper {
	if s == nil {
		return RealSleeper{}
	}
	return s
}
