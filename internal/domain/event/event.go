package event

type Type string

const (
	SettlementApplied Type = "SETTLEMENT_APPLIED"
	SettlementFailed  Type = "SETTLEMENT_FAILED"
	PayoutFailed      Type = "PAYOUT_FAILED"
)

// Event is a settlement fact recorded in the outbox alongside the commit
// that produced it. Key is the settlement reference.
type Event struct {
	Type    Type
	Key     string
	Payload any
}
