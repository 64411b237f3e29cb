package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/paywave-go/internal/application/contracts"
	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/webhook"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/metrics"
)

type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
}

// Processor is the webhook entry point: verify, lock the reference,
// resolve, guard, dispatch, unlock, then notify.
type Processor struct {
	Verifier   *webhook.Verifier
	Resolver   *Resolver
	Dispatcher *Dispatcher
	Merchants  merchant.Repository
	Locker     contracts.Locker
	Notifier   Notifier
	Logger     logging.Logger
	Metrics    *metrics.Counters
}

func LockKey(reference string) string {
	return "settlement:" + reference
}

func (p *Processor) Process(ctx context.Context, body []byte, signature string) (Result, error) {
	p.Metrics.IncReceived()

	if err := p.Verifier.Verify(body, signature); err != nil {
		p.Metrics.IncRejected()
		p.Logger.Warn("webhook rejected", map[string]any{"error": err})
		return Result{}, err
	}

	evt, err := webhook.Parse(body)
	if err != nil {
		p.Metrics.IncRejected()
		p.Logger.Warn("webhook rejected", map[string]any{"error": err})
		return Result{}, err
	}

	res := Result{Event: evt.Name, Reference: evt.Data.Reference, Outcome: OutcomeIgnored}

	if !evt.Name.Known() {
		p.Logger.Info("webhook event ignored", map[string]any{
			"event": string(evt.Name),
		})
		return res, nil
	}

	unlock, err := p.Locker.Lock(ctx, LockKey(evt.Data.Reference))
	if err != nil {
		return res, fmt.Errorf("lock %s: %w", evt.Data.Reference, err)
	}
	d, err := p.reconcile(ctx, evt)
	unlock()
	if err != nil {
		p.Logger.Error("webhook processing failed", map[string]any{
			"reference": evt.Data.Reference,
			"event":     string(evt.Name),
			"error":     err,
		})
		return res, err
	}

	res.Outcome = d.Outcome
	res.Balance = d.Receipt.Balance
	res.Withheld = d.Receipt.Withheld

	if d.Message != nil && p.Notifier != nil {
		p.Notifier.Notify(ctx, *d.Message)
	}

	return res, nil
}

func (p *Processor) reconcile(ctx context.Context, evt *webhook.Event) (dispatch, error) {
	ref := evt.Data.Reference

	rec, err := p.Resolver.Resolve(ctx, evt.Name.Category(), ref)
	if errors.Is(err, settlement.ErrRecordNotFound) {
		p.Metrics.IncNotFound()
		p.Logger.Warn("no record for webhook reference", map[string]any{
			"reference": ref,
			"event":     string(evt.Name),
		})
		return dispatch{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return dispatch{}, fmt.Errorf("resolve %s: %w", ref, err)
	}

	switch Check(rec, evt.Name.ImpliedStatus()) {
	case Duplicate:
		p.Metrics.IncDuplicate()
		p.Logger.Info("duplicate webhook delivery", map[string]any{
			"reference": ref,
			"event":     string(evt.Name),
			"status":    string(rec.Status),
		})
		return dispatch{Outcome: OutcomeDuplicate}, nil
	case Settled:
		p.Metrics.IncDuplicate()
		p.Logger.Info("record already settled", map[string]any{
			"reference": ref,
			"event":     string(evt.Name),
			"status":    string(rec.Status),
		})
		return dispatch{Outcome: OutcomeSettled}, nil
	}

	m, err := p.Merchants.FindByID(ctx, rec.MerchantID)
	if errors.Is(err, merchant.ErrMerchantNotFound) {
		p.Metrics.IncNotFound()
		p.Logger.Error("record references unknown merchant", map[string]any{
			"reference":   ref,
			"merchant-id": rec.MerchantID,
		})
		return dispatch{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return dispatch{}, fmt.Errorf("find merchant %s: %w", rec.MerchantID, err)
	}

	p.checkAmount(evt, rec)

	return p.Dispatcher.Dispatch(ctx, evt, rec, m)
}

// checkAmount logs a mismatch; the stored record amount is authoritative.
func (p *Processor) checkAmount(evt *webhook.Event, rec *settlement.Record) {
	if evt.Data.Amount.IsZero() || evt.Data.Amount.Equal(decimal.NewFromInt(rec.Amount)) {
		return
	}
	p.Logger.Warn("webhook amount differs from record", map[string]any{
		"reference":     rec.Reference,
		"event-amount":  evt.Data.Amount.String(),
		"record-amount": rec.Amount,
	})
}
