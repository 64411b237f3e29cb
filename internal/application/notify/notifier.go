package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/metrics"
)

// Notifier sends a message and stores a delivery record for every attempt.
// Notify never returns an error: callers have already committed.
type Notifier struct {
	Mailer  Mailer
	Log     DeliveryLog
	Logger  logging.Logger
	Metrics *metrics.Counters
	Now     func() time.Time
}

func (n *Notifier) Deliver(ctx context.Context, msg Message, attempt int) error {
	if msg.Recipient == "" {
		return ErrNoRecipient
	}

	sendErr := n.Mailer.Send(ctx, msg)

	d := Delivery{
		ID:         uuid.NewString(),
		MerchantID: msg.MerchantID,
		Recipient:  msg.Recipient,
		Subject:    msg.Subject,
		Body:       msg.Body,
		Status:     DeliverySent,
		Attempt:    attempt,
		CreatedAt:  n.now(),
	}
	if sendErr != nil {
		d.Status = DeliveryFailed
		d.Error = sendErr.Error()
	}

	if n.Log != nil {
		if err := n.Log.Append(ctx, d); err != nil {
			n.Logger.Error("failed to store notification delivery", map[string]any{
				"merchant-id": msg.MerchantID,
				"subject":     msg.Subject,
				"error":       err,
			})
		}
	}

	return sendErr
}

func (n *Notifier) Notify(ctx context.Context, msg Message) {
	if err := n.Deliver(ctx, msg, 1); err != nil {
		n.Metrics.IncNotificationFailure()
		n.Logger.Error("notification failed", map[string]any{
			"merchant-id": msg.MerchantID,
			"recipient":   msg.Recipient,
			"subject":     msg.Subject,
			"error":       err,
		})
		return
	}

	n.Logger.Info("notification sent", map[string]any{
		"merchant-id": msg.MerchantID,
		"subject":     msg.Subject,
	})
}

func (n *Notifier) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now().UTC()
}
