package contracts

import (
	"context"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
)

type EventRecorder interface {
	Record(ctx context.Context, evt event.Event) error
}

type EventPublisher interface {
	Publish(ctx context.Context, evt event.Event) error
}

// Locker serializes work on a key. The returned func releases the lock and
// is safe to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
