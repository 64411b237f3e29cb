package mail

import (
	"context"

	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
)

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogMailer struct {
	Logger logging.Logger
}

func (m *LogMailer) Send(_ context.Context, msg notify.Message) error {
	m.Logger.Info("email", map[string]any{
		"recipient":   msg.Recipient,
		"subject":     msg.Subject,
		"merchant-id": msg.MerchantID,
	})
	return nil
}
