package outbox

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	events map[string]*OutboxEvent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: make(map[string]*OutboxEvent)}
}

func (r *MemoryRepository) Save(_ context.Context, evt OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[evt.ID] = &evt
	return nil
}

func (r *MemoryRepository) FindUnpublished(_ context.Context, limit int) ([]OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []OutboxEvent
	for _, evt := range r.events {
		if !evt.Published {
			events = append(events, *evt)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *MemoryRepository) MarkPublished(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt, ok := r.events[id]; ok {
		evt.Published = true
	}
	return nil
}
