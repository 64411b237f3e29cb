package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

type Name string

const (
	ChargeSuccess   Name = "charge.success"
	ChargeFailed    Name = "charge.failed"
	TransferSuccess Name = "transfer.success"
	TransferFailed  Name = "transfer.failed"
)

type Category string

const (
	CategoryCharge   Category = "charge"
	CategoryTransfer Category = "transfer"
)

func (n Name) Known() bool {
	switch n {
	case ChargeSuccess, ChargeFailed, TransferSuccess, TransferFailed:
		return true
	}
	return false
}

func (n Name) Category() Category {
	switch n {
	case ChargeSuccess, ChargeFailed:
		return CategoryCharge
	case TransferSuccess, TransferFailed:
		return CategoryTransfer
	}
	return ""
}

// ImpliedStatus is the record status a fully applied event leaves behind.
func (n Name) ImpliedStatus() settlement.Status {
	if strings.HasSuffix(string(n), ".success") {
		return settlement.StatusSuccess
	}
	return settlement.StatusFailed
}

type Data struct {
	Reference         string          `json:"reference"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	Fee               decimal.Decimal `json:"fee"`
	Currency          string          `json:"currency"`
	PaymentReference  string          `json:"payment_reference,omitempty"`
	TransactionStatus string          `json:"transaction_status,omitempty"`
}

type Event struct {
	ID   string
	Name Name
	Data Data
}

type envelope struct {
	ID    string          `json:"id"`
	Event Name            `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RawData returns the undecoded data object of a webhook body.
func RawData(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}
	return env.Data, nil
}

func Parse(body []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}

	evt := &Event{ID: env.ID, Name: env.Event}
	if err := json.Unmarshal(env.Data, &evt.Data); err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrMalformedEvent, err)
	}

	evt.Data.Reference = strings.TrimSpace(evt.Data.Reference)
	if evt.Name.Known() && evt.Data.Reference == "" {
		return nil, fmt.Errorf("%w: missing reference", ErrMalformedEvent)
	}

	return evt, nil
}
