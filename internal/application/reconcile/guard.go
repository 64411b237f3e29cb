package reconcile

import "github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"

type Verdict int

const (
	Proceed Verdict = iota
	// Duplicate: the record already carries the status the event implies.
	Duplicate
	// Settled: the record reached a different terminal status. Terminal
	// states never regress, so the event is acknowledged without effect.
	Settled
)

func Check(rec *settlement.Record, implied settlement.Status) Verdict {
	if rec.Status == implied {
		return Duplicate
	}
	if rec.Status.Terminal() {
		return Settled
	}
	return Proceed
}
