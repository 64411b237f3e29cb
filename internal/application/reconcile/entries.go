package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/ledger"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/payout"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/webhook"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

const (
	HistoryCharge     = "charge"
	HistoryWithdrawal = "withdrawal"
	HistoryTransfer   = "transfer"
)

type template func(merchantID, to, name string, amount int64, currency, reference string) notify.Message

func currencyOf(rec *settlement.Record) string {
	if rec.Currency == "" {
		return payout.DefaultCurrency
	}
	return rec.Currency
}

func historyType(name webhook.Name, rec *settlement.Record) string {
	if name.Category() == webhook.CategoryCharge {
		return HistoryCharge
	}
	if rec.Kind == settlement.KindWithdrawal {
		return HistoryWithdrawal
	}
	return HistoryTransfer
}

func notificationText(name webhook.Name, amount int64, currency, reference string) string {
	switch name {
	case webhook.ChargeSuccess:
		return fmt.Sprintf("You received a payment of %d %s. Reference: %s", amount, currency, reference)
	case webhook.ChargeFailed:
		return fmt.Sprintf("A payment of %d %s failed. Reference: %s", amount, currency, reference)
	case webhook.TransferSuccess:
		return fmt.Sprintf("Your withdrawal of %d %s was successful. Reference: %s", amount, currency, reference)
	}
	return fmt.Sprintf("Your withdrawal of %d %s failed. Reference: %s", amount, currency, reference)
}

func ledgerEntry(name webhook.Name, rec *settlement.Record, dir ledger.Direction, now time.Time) *ledger.Entry {
	currency := currencyOf(rec)
	date, clock := now.Format(DateLayout), now.Format(TimeLayout)

	return &ledger.Entry{
		MerchantID: rec.MerchantID,
		Direction:  dir,
		Amount:     rec.Amount,
		History: merchant.HistoryEntry{
			ID:         uuid.NewString(),
			MerchantID: rec.MerchantID,
			Reference:  rec.Reference,
			Amount:     rec.Amount,
			Status:     string(name.ImpliedStatus()),
			Type:       historyType(name, rec),
			Date:       date,
			Time:       clock,
			CreatedAt:  now,
		},
		Notification: merchant.Notification{
			ID:         uuid.NewString(),
			MerchantID: rec.MerchantID,
			Message:    notificationText(name, rec.Amount, currency, rec.Reference),
			Date:       date,
			Time:       clock,
			CreatedAt:  now,
		},
	}
}

func settlementEvent(name webhook.Name, rec *settlement.Record, dir ledger.Direction) event.Event {
	typ := event.SettlementApplied
	if name.ImpliedStatus() == settlement.StatusFailed {
		typ = event.SettlementFailed
	}
	return event.Event{
		Type: typ,
		Key:  rec.Reference,
		Payload: event.SettlementPayload{
			Reference:  rec.Reference,
			Kind:       string(rec.Kind),
			MerchantID: rec.MerchantID,
			Amount:     rec.Amount,
			Currency:   currencyOf(rec),
			Status:     string(name.ImpliedStatus()),
			Direction:  string(dir),
		},
	}
}

func payoutRequest(rec *settlement.Record, m *merchant.Merchant) payout.Request {
	currency := currencyOf(rec)
	return payout.Request{
		Reference:     PayoutReference(rec.Reference),
		Amount:        rec.Amount,
		Currency:      currency,
		Narration:     fmt.Sprintf("Disbursement of %d %s to %s", rec.Amount, currency, m.DisplayName()),
		Bank:          m.Bank,
		CustomerEmail: m.Email,
		Metadata: map[string]string{
			"reference":   rec.Reference,
			"merchant_id": m.ID,
		},
	}
}

// PayoutReference derives the provider idempotency reference for the
// disbursement that settles a charge.
func PayoutReference(reference string) string {
	return "PAYOUT_" + reference
}

func recipient(rec *settlement.Record, m *merchant.Merchant) string {
	if m.Email != "" {
		return m.Email
	}
	return rec.Email
}
