package sqldb

import (
	"context"

	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
)

type DeliveryLog struct {
	db *DB
}

func NewDeliveryLog(db *DB) *DeliveryLog {
	return &DeliveryLog{db: db}
}

func (l *DeliveryLog) Append(ctx context.Context, d notify.Delivery) error {
	_, err := l.db.ExecContext(ctx, l.db.Rebind(`
		INSERT INTO notification_deliveries (id, merchant_id, recipient, subject, body, status, error, attempt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		d.ID, d.MerchantID, d.Recipient, d.Subject, d.Body, string(d.Status), d.Error, d.Attempt, toNanos(d.CreatedAt),
	)
	return err
}
