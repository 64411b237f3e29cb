package settlement

import (
	"context"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/ledger"
)

// Settlement is the unit a repository commits atomically. The status
// change is conditional on the record still carrying From.
type Settlement struct {
	Reference string
	From      Status
	To        Status
	EventID   string
	Entry     *ledger.Entry
	Events    []event.Event
}

type Repository interface {
	SaveIfNotExist(ctx context.Context, r *Record) (bool, error)
	Find(ctx context.Context, kind Kind, reference string) (*Record, error)
	Commit(ctx context.Context, s Settlement) (ledger.Receipt, error)
}
