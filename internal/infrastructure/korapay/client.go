package korapay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/payout"
)

const disbursePath = "/merchant/api/v1/transactions/disburse"

type bankAccount struct {
	Bank    string `json:"bank"`
	Account string `json:"account"`
}

type customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type destination struct {
	Type        string      `json:"type"`
	Amount      int64       `json:"amount"`
	Currency    string      `json:"currency"`
	Narration   string      `json:"narration"`
	BankAccount bankAccount `json:"bank_account"`
	Customer    customer    `json:"customer"`
}

type disburseRequest struct {
	Reference   string            `json:"reference"`
	Destination destination       `json:"destination"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type disburseResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    any    `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

type apiError struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// Client calls the provider's disbursement API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(secretKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{http: c}
}

// Disburse sends money to the request's bank account. A non-2xx answer is
// returned as an error; a 2xx answer carries the provider's status.
func (c *Client) Disburse(ctx context.Context, req payout.Request) (payout.Result, error) {
	currency := req.Currency
	if currency == "" {
		currency = payout.DefaultCurrency
	}

	body := disburseRequest{
		Reference: req.Reference,
		Destination: destination{
			Type:      "bank_account",
			Amount:    req.Amount,
			Currency:  currency,
			Narration: req.Narration,
			BankAccount: bankAccount{
				Bank:    req.Bank.BankCode,
				Account: req.Bank.AccountNumber,
			},
			Customer: customer{
				Name:  req.Bank.AccountName,
				Email: req.CustomerEmail,
			},
		},
		Metadata: req.Metadata,
	}

	var (
		ok  disburseResponse
		bad apiError
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&ok).
		SetError(&bad).
		Post(disbursePath)
	if err != nil {
		return payout.Result{}, fmt.Errorf("disburse %s: %w", req.Reference, err)
	}

	if resp.IsError() {
		msg := bad.Message
		if msg == "" {
			msg = resp.Status()
		}
		return payout.Result{}, fmt.Errorf("disburse %s: provider error: %s", req.Reference, msg)
	}

	ref := ok.Data.Reference
	if ref == "" {
		ref = req.Reference
	}

	return payout.Result{
		Reference: ref,
		Status:    payout.Status(strings.ToLower(ok.Data.Status)),
		Message:   ok.Message,
	}, nil
}
