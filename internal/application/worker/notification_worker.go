package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/metrics"
)

type Deliverer interface {
	Deliver(ctx context.Context, msg notify.Message, attempt int) error
}

type job struct {
	msg     notify.Message
	attempt int
}

// NotificationQueue moves email delivery off the webhook path. Failed
// deliveries are re-enqueued with the scheduler's backoff.
type NotificationQueue struct {
	Deliverer Deliverer
	Retry     *RetryScheduler
	Logger    logging.Logger
	Metrics   *metrics.Counters

	once sync.Once
	jobs chan job
	ctx  context.Context
	wg   sync.WaitGroup
}

func NewNotificationQueue(d Deliverer, retry *RetryScheduler, logger logging.Logger, m *metrics.Counters, size int) *NotificationQueue {
	if size < 1 {
		size = 1
	}
	return &NotificationQueue{
		Deliverer: d,
		Retry:     retry,
		Logger:    logger,
		Metrics:   m,
		jobs:      make(chan job, size),
	}
}

func (q *NotificationQueue) Start(ctx context.Context, workers int) {
	q.once.Do(func() {
		if q.jobs == nil {
			q.jobs = make(chan job, 64)
		}
		q.ctx = ctx
		if workers < 1 {
			workers = 1
		}
		for i := 0; i < workers; i++ {
			q.wg.Add(1)
			go q.run(ctx)
		}
	})
}

// Wait blocks until every worker has returned after ctx ended.
func (q *NotificationQueue) Wait() {
	q.wg.Wait()
}

// Notify enqueues msg without blocking. When the queue is not running or is
// full the message is delivered inline.
func (q *NotificationQueue) Notify(ctx context.Context, msg notify.Message) {
	if q.ctx != nil && q.ctx.Err() == nil {
		select {
		case q.jobs <- job{msg: msg, attempt: 1}:
			return
		default:
			q.Logger.Warn("notification queue full, delivering inline", map[string]any{
				"merchant-id": msg.MerchantID,
				"subject":     msg.Subject,
			})
		}
	}
	q.handle(ctx, job{msg: msg, attempt: 1})
}

func (q *NotificationQueue) run(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-q.jobs:
			q.handle(ctx, j)
		}
	}
}

func (q *NotificationQueue) handle(ctx context.Context, j job) {
	err := q.Deliverer.Deliver(ctx, j.msg, j.attempt)
	if err == nil {
		return
	}

	fields := map[string]any{
		"merchant-id": j.msg.MerchantID,
		"subject":     j.msg.Subject,
		"attempt":     j.attempt,
		"error":       err,
	}

	if !errors.Is(err, notify.ErrNoRecipient) && q.Retry != nil && q.ctx != nil {
		next := job{msg: j.msg, attempt: j.attempt + 1}
		scheduled := q.Retry.ScheduleRetry(q.ctx, j.attempt, func() {
			select {
			case q.jobs <- next:
			case <-q.ctx.Done():
			}
		})
		if scheduled {
			q.Logger.Warn("notification failed, retry scheduled", fields)
			return
		}
	}

	q.Metrics.IncNotificationFailure()
	q.Logger.Error("notification failed", fields)
}
