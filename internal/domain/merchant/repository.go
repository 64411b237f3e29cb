package merchant

import "context"

type Repository interface {
	Save(ctx context.Context, m *Merchant) error
	FindByID(ctx context.Context, id string) (*Merchant, error)
	History(ctx context.Context, merchantID string, page Page) ([]HistoryEntry, int, error)
	Notifications(ctx context.Context, merchantID string, page Page) ([]Notification, int, error)
}
