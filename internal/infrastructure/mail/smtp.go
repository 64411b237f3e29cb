package mail

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
)

type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	Sender Sender
	From   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Sender: gomail.NewDialer(host, port, username, password),
		From:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg notify.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Sender.DialAndSend(m.build(msg))
}

func (m *SMTPMailer) build(msg notify.Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.From)
	gm.SetHeader("To", msg.Recipient)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	return gm
}
