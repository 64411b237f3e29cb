package merchant

import (
	"errors"
	"strings"
	"time"
)

var ErrMerchantNotFound = errors.New("merchant not found")

type BankAccount struct {
	AccountName   string
	AccountNumber string
	BankName      string
	BankCode      string
}

// Merchant is the single point of ledger truth. History and notifications
// live in their own append-only logs keyed by merchant ID.
type Merchant struct {
	ID           string
	MerchantCode string
	FirstName    string
	LastName     string
	BusinessName string
	Email        string
	Balance      int64
	Bank         BankAccount
	CreatedAt    time.Time
}

func (m *Merchant) DisplayName() string {
	if name := strings.TrimSpace(m.FirstName + " " + m.LastName); name != "" {
		return name
	}
	return m.BusinessName
}

type HistoryEntry struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"-"`
	Reference  string    `json:"reference"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Notification struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"-"`
	Message    string    `json:"message"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	CreatedAt  time.Time `json:"createdAt"`
}
