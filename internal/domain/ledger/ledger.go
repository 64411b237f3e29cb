// Package ledger holds the balance arithmetic applied to a merchant when a
// settlement commits. Stores apply the same rules atomically on their side;
// Apply is the reference behaviour they are tested against.
package ledger

import (
	"errors"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
)

var ErrNegativeAmount = errors.New("ledger amount must not be negative")

type Direction string

const (
	Credit     Direction = "credit"
	Debit      Direction = "debit"
	AppendOnly Direction = "append_only"
)

// Entry is one logical ledger update: an optional balance change plus
// exactly one history row and one notification row.
type Entry struct {
	MerchantID   string
	Direction    Direction
	Amount       int64
	History      merchant.HistoryEntry
	Notification merchant.Notification
}

type Receipt struct {
	Balance  int64
	Applied  bool
	Withheld bool
}

// Apply returns the merchant after the entry's balance change. A debit
// larger than the balance is withheld: the balance is left untouched and
// the receipt flags it, the bookkeeping rows are still written by callers.
func Apply(m merchant.Merchant, e Entry) (merchant.Merchant, Receipt, error) {
	if e.Amount < 0 {
		return m, Receipt{Balance: m.Balance}, ErrNegativeAmount
	}

	switch e.Direction {
	case Credit:
		m.Balance += e.Amount
		return m, Receipt{Balance: m.Balance, Applied: true}, nil
	case Debit:
		if m.Balance < e.Amount {
			return m, Receipt{Balance: m.Balance, Withheld: true}, nil
		}
		m.Balance -= e.Amount
		return m, Receipt{Balance: m.Balance, Applied: true}, nil
	}

	return m, Receipt{Balance: m.Balance}, nil
}
