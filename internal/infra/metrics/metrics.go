package metrics

import "sync/atomic"

type Counters struct {
	WebhooksReceived     uint64
	WebhooksRejected     uint64
	SettlementsApplied   uint64
	DuplicatesSuppressed uint64
	RecordsNotFound      uint64
	PayoutFailures       uint64
	DebitsWithheld       uint64
	NotificationFailures uint64
	EventsPublished      uint64
}

func (c *Counters) IncReceived() {
	atomic.AddUint64(&c.WebhooksReceived, 1)
}

func (c *Counters) IncRejected() {
	atomic.AddUint64(&c.WebhooksRejected, 1)
}

func (c *Counters) IncApplied() {
	atomic.AddUint64(&c.SettlementsApplied, 1)
}

func (c *Counters) IncDuplicate() {
	atomic.AddUint64(&c.DuplicatesSuppressed, 1)
}

func (c *Counters) IncNotFound() {
	atomic.AddUint64(&c.RecordsNotFound, 1)
}

func (c *Counters) IncPayoutFailure() {
	atomic.AddUint64(&c.PayoutFailures, 1)
}

func (c *Counters) IncDebitWithheld() {
	atomic.AddUint64(&c.DebitsWithheld, 1)
}

func (c *Counters) IncNotificationFailure() {
	atomic.AddUint64(&c.NotificationFailures, 1)
}

func (c *Counters) IncPublished() {
	atomic.AddUint64(&c.EventsPublished, 1)
}

// Snapshot reads every counter atomically, one at a time.
func (c *Counters) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"webhooks_received":     atomic.LoadUint64(&c.WebhooksReceived),
		"webhooks_rejected":     atomic.LoadUint64(&c.WebhooksRejected),
		"settlements_applied":   atomic.LoadUint64(&c.SettlementsApplied),
		"duplicates_suppressed": atomic.LoadUint64(&c.DuplicatesSuppressed),
		"records_not_found":     atomic.LoadUint64(&c.RecordsNotFound),
		"payout_failures":       atomic.LoadUint64(&c.PayoutFailures),
		"debits_withheld":       atomic.LoadUint64(&c.DebitsWithheld),
		"notification_failures": atomic.LoadUint64(&c.NotificationFailures),
		"events_published":      atomic.LoadUint64(&c.EventsPublished),
	}
}
