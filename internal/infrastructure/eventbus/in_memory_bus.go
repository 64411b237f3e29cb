package eventbus

import (
	"context"
	"errors"
	"sync"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
)

type HandlerFunc func(context.Context, event.Event) error

// InMemoryBus fans an event out to every handler subscribed to its type.
// All handlers run; their errors are joined.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerFunc
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[event.Type][]HandlerFunc),
	}
}

func (b *InMemoryBus) Subscribe(eventType event.Type, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *InMemoryBus) Publish(ctx context.Context, evt event.Event) error {
	b.mu.RLock()
	handlers := append([]HandlerFunc(nil), b.handlers[evt.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
