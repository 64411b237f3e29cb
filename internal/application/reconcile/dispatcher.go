package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/ledger"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/payout"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/webhook"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/metrics"
)

// Dispatcher runs the handler for one event type against a resolved record
// that passed the idempotency check. Callers hold the reference lock.
type Dispatcher struct {
	Repo    settlement.Repository
	Payouts payout.Invoker
	Logger  logging.Logger
	Metrics *metrics.Counters
	Now     func() time.Time
}

type dispatch struct {
	Outcome Outcome
	Receipt ledger.Receipt
	Message *notify.Message
}

func (d *Dispatcher) Dispatch(ctx context.Context, evt *webhook.Event, rec *settlement.Record, m *merchant.Merchant) (dispatch, error) {
	switch evt.Name {
	case webhook.ChargeSuccess:
		return d.chargeSuccess(ctx, evt, rec, m)
	case webhook.ChargeFailed:
		return d.settle(ctx, evt, rec, m, ledger.AppendOnly, notify.PaymentFailed)
	case webhook.TransferSuccess:
		return d.settle(ctx, evt, rec, m, ledger.Debit, notify.WithdrawalSuccessful)
	case webhook.TransferFailed:
		return d.settle(ctx, evt, rec, m, ledger.AppendOnly, notify.WithdrawalFailed)
	}
	return dispatch{Outcome: OutcomeIgnored}, nil
}

func (d *Dispatcher) chargeSuccess(ctx context.Context, evt *webhook.Event, rec *settlement.Record, m *merchant.Merchant) (dispatch, error) {
	req := payoutRequest(rec, m)

	res, err := d.Payouts.Disburse(ctx, req)
	if err == nil && res.Accepted() {
		d.Logger.Info("payout accepted", map[string]any{
			"reference":        rec.Reference,
			"payout-reference": req.Reference,
			"payout-status":    string(res.Status),
		})
		return d.settle(ctx, evt, rec, m, ledger.Credit, notify.PaymentSuccessful)
	}

	reason := res.Message
	if err != nil {
		reason = err.Error()
	} else if reason == "" {
		reason = "payout status " + string(res.Status)
	}

	d.Metrics.IncPayoutFailure()
	d.Logger.Error("payout failed", map[string]any{
		"reference":        rec.Reference,
		"payout-reference": req.Reference,
		"merchant-id":      m.ID,
		"amount":           rec.Amount,
		"reason":           reason,
	})

	_, err = d.Repo.Commit(ctx, settlement.Settlement{
		Reference: rec.Reference,
		From:      rec.Status,
		To:        settlement.StatusPayoutFailed,
		EventID:   eventID(evt),
		Events: []event.Event{{
			Type: event.PayoutFailed,
			Key:  rec.Reference,
			Payload: event.PayoutFailedPayload{
				Reference:       rec.Reference,
				PayoutReference: req.Reference,
				MerchantID:      m.ID,
				Amount:          rec.Amount,
				Reason:          reason,
			},
		}},
	})
	if errors.Is(err, settlement.ErrStatusConflict) {
		return d.conflict(rec)
	}
	if err != nil {
		return dispatch{}, fmt.Errorf("commit payout failure %s: %w", rec.Reference, err)
	}

	msg := notify.PayoutFailed(m.ID, recipient(rec, m), m.DisplayName(), rec.Amount, currencyOf(rec), rec.Reference)
	return dispatch{
		Outcome: OutcomePayoutFailed,
		Receipt: ledger.Receipt{Balance: m.Balance},
		Message: &msg,
	}, nil
}

func (d *Dispatcher) settle(ctx context.Context, evt *webhook.Event, rec *settlement.Record, m *merchant.Merchant, dir ledger.Direction, tmpl template) (dispatch, error) {
	entry := ledgerEntry(evt.Name, rec, dir, d.now())

	receipt, err := d.Repo.Commit(ctx, settlement.Settlement{
		Reference: rec.Reference,
		From:      rec.Status,
		To:        evt.Name.ImpliedStatus(),
		EventID:   eventID(evt),
		Entry:     entry,
		Events:    []event.Event{settlementEvent(evt.Name, rec, dir)},
	})
	if errors.Is(err, settlement.ErrStatusConflict) {
		return d.conflict(rec)
	}
	if err != nil {
		return dispatch{}, fmt.Errorf("commit %s %s: %w", evt.Name, rec.Reference, err)
	}

	d.Metrics.IncApplied()

	fields := map[string]any{
		"reference":   rec.Reference,
		"event":       string(evt.Name),
		"kind":        string(rec.Kind),
		"merchant-id": rec.MerchantID,
		"amount":      rec.Amount,
		"direction":   string(dir),
		"balance":     receipt.Balance,
	}
	if receipt.Withheld {
		d.Metrics.IncDebitWithheld()
		d.Logger.Warn("debit withheld: insufficient balance", fields)
	} else {
		d.Logger.Info("settlement applied", fields)
	}

	msg := tmpl(m.ID, recipient(rec, m), m.DisplayName(), rec.Amount, currencyOf(rec), rec.Reference)
	return dispatch{Outcome: OutcomeApplied, Receipt: receipt, Message: &msg}, nil
}

// conflict means another delivery committed between our read and write.
func (d *Dispatcher) conflict(rec *settlement.Record) (dispatch, error) {
	d.Metrics.IncDuplicate()
	d.Logger.Info("settlement committed concurrently", map[string]any{
		"reference": rec.Reference,
	})
	return dispatch{Outcome: OutcomeDuplicate}, nil
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func eventID(evt *webhook.Event) string {
	if evt.ID != "" {
		return evt.ID
	}
	return string(evt.Name) + ":" + evt.Data.Reference
}
