package inmemory

import (
	"context"
	"sync"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
)

type MerchantRepository struct {
	mu            sync.RWMutex
	merchants     map[string]*merchant.Merchant
	history       map[string][]merchant.HistoryEntry
	notifications map[string][]merchant.Notification
}

func NewMerchantRepository() *MerchantRepository {
	return &MerchantRepository{
		mu:            sync.RWMutex{},
		merchants:     make(map[string]*merchant.Merchant),
		history:       make(map[string][]merchant.HistoryEntry),
		notifications: make(map[string][]merchant.Notification),
	}
}

func (r *MerchantRepository) Save(_ context.Context, m *merchant.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *MerchantRepository) FindByID(_ context.Context, id string) (*merchant.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.merchants[id]
	if !ok {
		return nil, merchant.ErrMerchantNotFound
	}

	cp := *m
	return &cp, nil
}

// History returns the newest entries first.
func (r *MerchantRepository) History(_ context.Context, merchantID string, page merchant.Page) ([]merchant.HistoryEntry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.merchants[merchantID]; !ok {
		return nil, 0, merchant.ErrMerchantNotFound
	}

	all := r.history[merchantID]
	return newestFirst(all, page), len(all), nil
}

func (r *MerchantRepository) Notifications(_ context.Context, merchantID string, page merchant.Page) ([]merchant.Notification, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.merchants[merchantID]; !ok {
		return nil, 0, merchant.ErrMerchantNotFound
	}

	all := r.notifications[merchantID]
	return newestFirst(all, page), len(all), nil
}

func newestFirst[T any](all []T, page merchant.Page) []T {
	out := []T{}
	for i := len(all) - 1 - page.Offset(); i >= 0 && len(out) < page.Limit; i-- {
		out = append(out, all[i])
	}
	return out
}
