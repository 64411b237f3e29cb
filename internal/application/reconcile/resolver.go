package reconcile

import (
	"context"
	"errors"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/webhook"
)

// lookupOrder is fixed: a charge reference is a checkout payment before it
// is a generic transaction, a transfer reference is a payout before it is a
// generic transaction.
var lookupOrder = map[webhook.Category][]settlement.Kind{
	webhook.CategoryCharge:   {settlement.KindPayment, settlement.KindTransaction},
	webhook.CategoryTransfer: {settlement.KindWithdrawal, settlement.KindTransaction},
}

type Resolver struct {
	Repo settlement.Repository
}

func (r *Resolver) Resolve(ctx context.Context, category webhook.Category, reference string) (*settlement.Record, error) {
	for _, kind := range lookupOrder[category] {
		rec, err := r.Repo.Find(ctx, kind, reference)
		if errors.Is(err, settlement.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, settlement.ErrRecordNotFound
}
