package inmemory

import (
	"context"
	"sync"

	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
)

type DeliveryLog struct {
	mu         sync.RWMutex
	deliveries []notify.Delivery
}

func NewDeliveryLog() *DeliveryLog {
	return &DeliveryLog{}
}

func (l *DeliveryLog) Append(_ context.Context, d notify.Delivery) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.deliveries = append(l.deliveries, d)
	return nil
}

func (l *DeliveryLog) Deliveries() []notify.Delivery {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]notify.Delivery(nil), l.deliveries...)
}
