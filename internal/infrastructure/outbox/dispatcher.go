package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rcarvalho-pb/paywave-go/internal/application/contracts"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/metrics"
)

// Dispatcher polls the outbox and hands each unpublished event to the
// publisher. Failed events stay unpublished and are picked up next tick.
type Dispatcher struct {
	Repo         Repository
	Publisher    contracts.EventPublisher
	Logger       logging.Logger
	Metrics      *metrics.Counters
	PollInterval time.Duration
	BatchSize    int
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchOnce(ctx)
		}
	}
}

func (d *Dispatcher) DispatchOnce(ctx context.Context) int {
	events, err := d.Repo.FindUnpublished(ctx, d.BatchSize)
	if err != nil {
		d.Logger.Error("outbox poll failed", map[string]any{"error": err})
		return 0
	}

	published := 0
	for _, evt := range events {
		domainEvent := event.Event{
			Type:    evt.Type,
			Key:     evt.Key,
			Payload: json.RawMessage(evt.Payload),
		}

		if err := d.Publisher.Publish(ctx, domainEvent); err != nil {
			d.Logger.Warn("outbox publish failed", map[string]any{
				"outbox-id": evt.ID,
				"type":      string(evt.Type),
				"error":     err,
			})
			continue
		}

		if err := d.Repo.MarkPublished(ctx, evt.ID); err != nil {
			d.Logger.Error("outbox mark published failed", map[string]any{
				"outbox-id": evt.ID,
				"error":     err,
			})
			continue
		}

		d.Metrics.IncPublished()
		published++
	}

	return published
}
