package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/paywave-go/internal/application/worker"
)

func TestRetryScheduler_Delay_ShouldGrowExponentiallyUpToMax(t *testing.T) {
	r := &worker.RetryScheduler{MaxRetry: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	require.Equal(t, time.Second, r.Delay(1))
	require.Equal(t, 2*time.Second, r.Delay(2))
	require.Equal(t, 4*time.Second, r.Delay(3))
	require.Equal(t, 5*time.Second, r.Delay(4))
}

func TestRetryScheduler_WhenAttemptsExhausted_ShouldNotSchedule(t *testing.T) {
	r := &worker.RetryScheduler{MaxRetry: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	called := make(chan struct{}, 1)
	ok := r.ScheduleRetry(context.Background(), 3, func() { called <- struct{}{} })

	require.False(t, ok)
	select {
	case <-called:
		t.Fatalf("retry should not run after the last attempt")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRetryScheduler_ShouldRunAfterDelay(t *testing.T) {
	r := &worker.RetryScheduler{MaxRetry: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	called := make(chan struct{}, 1)
	require.True(t, r.ScheduleRetry(context.Background(), 1, func() { called <- struct{}{} }))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected retry to run")
	}
}
