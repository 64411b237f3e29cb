package notify

import (
	"context"
	"errors"
	"time"
)

var ErrNoRecipient = errors.New("notification has no recipient")

type Message struct {
	MerchantID string
	Recipient  string
	Subject    string
	Body       string
}

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Delivery is the stored trace of one send attempt.
type Delivery struct {
	ID         string
	MerchantID string
	Recipient  string
	Subject    string
	Body       string
	Status     DeliveryStatus
	Error      string
	Attempt    int
	CreatedAt  time.Time
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type DeliveryLog interface {
	Append(ctx context.Context, d Delivery) error
}
