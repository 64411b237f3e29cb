package sqldb_test

import (
	"time"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/outbox"
)

func outboxEvent(id string) outbox.OutboxEvent {
	return outbox.OutboxEvent{
		ID:        id,
		Type:      event.SettlementApplied,
		Key:       "PYW-1",
		Payload:   []byte(`{"reference":"PYW-1"}`),
		CreatedAt: time.Now(),
	}
}
