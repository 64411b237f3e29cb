package reconcile

import (
	"github.com/rcarvalho-pb/paywave-go/internal/domain/webhook"
)

type Outcome string

const (
	OutcomeApplied      Outcome = "applied"
	OutcomePayoutFailed Outcome = "payout_failed"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeSettled      Outcome = "already_settled"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeIgnored      Outcome = "ignored"
)

// Result describes what a delivered webhook did. Every outcome is an
// acknowledgment towards the provider; failures come back as errors.
type Result struct {
	Outcome   Outcome
	Event     webhook.Name
	Reference string
	Balance   int64
	Withheld  bool
}

func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeApplied:
		return "Webhook processed successfully"
	case OutcomePayoutFailed:
		return "Webhook processed, payout failed"
	case OutcomeDuplicate:
		return "Event already processed"
	case OutcomeSettled:
		return "Record already settled"
	case OutcomeNotFound:
		return "No matching record, event acknowledged"
	}
	return "Event ignored"
}
