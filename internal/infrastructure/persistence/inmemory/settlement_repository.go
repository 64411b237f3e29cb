package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/rcarvalho-pb/paywave-go/internal/application/contracts"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/ledger"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
)

// SettlementRepository commits against the merchant repository it was built
// with. Locks are always taken settlement first, merchant second.
type SettlementRepository struct {
	mu        sync.RWMutex
	records   map[string]*settlement.Record
	merchants *MerchantRepository
	recorder  contracts.EventRecorder
}

func NewSettlementRepository(merchants *MerchantRepository, recorder contracts.EventRecorder) *SettlementRepository {
	return &SettlementRepository{
		mu:        sync.RWMutex{},
		records:   make(map[string]*settlement.Record),
		merchants: merchants,
		recorder:  recorder,
	}
}

func (r *SettlementRepository) SaveIfNotExist(_ context.Context, rec *settlement.Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.Reference]; exists {
		return false, nil
	}

	cp := *rec
	r.records[rec.Reference] = &cp
	return true, nil
}

func (r *SettlementRepository) Find(_ context.Context, kind settlement.Kind, reference string) (*settlement.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[reference]
	if !ok || rec.Kind != kind {
		return nil, settlement.ErrRecordNotFound
	}

	cp := *rec
	return &cp, nil
}

func (r *SettlementRepository) Commit(ctx context.Context, s settlement.Settlement) (ledger.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[s.Reference]
	if !ok {
		return ledger.Receipt{}, settlement.ErrRecordNotFound
	}
	if rec.Status != s.From {
		return ledger.Receipt{}, settlement.ErrStatusConflict
	}

	r.merchants.mu.Lock()
	defer r.merchants.mu.Unlock()

	var (
		m       *merchant.Merchant
		updated merchant.Merchant
		receipt ledger.Receipt
	)

	if s.Entry != nil {
		m, ok = r.merchants.merchants[s.Entry.MerchantID]
		if !ok {
			return ledger.Receipt{}, merchant.ErrMerchantNotFound
		}

		var err error
		updated, receipt, err = ledger.Apply(*m, *s.Entry)
		if err != nil {
			return ledger.Receipt{}, err
		}
	}

	if r.recorder != nil {
		for _, evt := range s.Events {
			if err := r.recorder.Record(ctx, evt); err != nil {
				return ledger.Receipt{}, err
			}
		}
	}

	rec.Status = s.To
	rec.EventID = s.EventID
	rec.UpdatedAt = time.Now().UTC()

	if s.Entry != nil {
		*m = updated
		id := s.Entry.MerchantID
		r.merchants.history[id] = append(r.merchants.history[id], s.Entry.History)
		r.merchants.notifications[id] = append(r.merchants.notifications[id], s.Entry.Notification)
	}

	return receipt, nil
}
