package worker

import (
	"context"
	"time"
)

type RetryScheduler struct {
	MaxRetry  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Delay is the backoff before the attempt that follows attempt.
func (r *RetryScheduler) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return min(r.BaseDelay*time.Duration(1<<(attempt-1)), r.MaxDelay)
}

// ScheduleRetry runs fn after the backoff for attempt, unless attempt already
// reached MaxRetry or ctx ends first. It reports whether a retry was scheduled.
func (r *RetryScheduler) ScheduleRetry(ctx context.Context, attempt int, fn func()) bool {
	if attempt >= r.MaxRetry {
		return false
	}

	delay := r.Delay(attempt)

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-timer.C:
			fn()
		}
	}()

	return true
}
