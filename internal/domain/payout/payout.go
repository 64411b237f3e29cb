package payout

import (
	"context"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
)

const DefaultCurrency = "NGN"

type Status string

const (
	StatusSuccess    Status = "success"
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
)

type Request struct {
	Reference     string
	Amount        int64
	Currency      string
	Narration     string
	Bank          merchant.BankAccount
	CustomerEmail string
	Metadata      map[string]string
}

type Result struct {
	Reference string
	Status    Status
	Message   string
}

// Accepted reports whether the provider took the disbursement.
func (r Result) Accepted() bool {
	return r.Status == StatusSuccess || r.Status == StatusProcessing
}

type Invoker interface {
	Disburse(ctx context.Context, req Request) (Result, error)
}
