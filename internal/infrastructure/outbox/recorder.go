package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
)

type Recorder struct {
	Repo Repository
}

// NewOutboxEvent encodes evt for storage.
func NewOutboxEvent(evt event.Event) (OutboxEvent, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("encode %s payload: %w", evt.Type, err)
	}

	return OutboxEvent{
		ID:        uuid.NewString(),
		Type:      evt.Type,
		Key:       evt.Key,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (r *Recorder) Record(ctx context.Context, evt event.Event) error {
	out, err := NewOutboxEvent(evt)
	if err != nil {
		return err
	}
	return r.Repo.Save(ctx, out)
}
