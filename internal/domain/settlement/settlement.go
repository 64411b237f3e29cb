package settlement

import (
	"errors"
	"time"
)

var (
	ErrRecordNotFound = errors.New("settlement record not found")
	ErrRecordExists   = errors.New("settlement record already exists")
	ErrStatusConflict = errors.New("settlement status changed concurrently")
)

// Kind tags which flow created a record. A reference belongs to exactly one kind.
type Kind string

const (
	KindPayment     Kind = "payment"
	KindTransaction Kind = "transaction"
	KindWithdrawal  Kind = "withdrawal"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusProcessing   Status = "processing"
	StatusSuccess      Status = "success"
	StatusFailed       Status = "failed"
	StatusDispute      Status = "dispute"
	StatusRefund       Status = "refund"
	StatusPayoutFailed Status = "payout_failed"
)

// Terminal statuses never change again.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusDispute, StatusRefund, StatusPayoutFailed:
		return true
	}
	return false
}

type Type string

const (
	TypeDynamic       Type = "dynamic"
	TypeStaticCustom  Type = "static_custom"
	TypeStaticDefined Type = "static_defined"
	TypeWithdrawal    Type = "withdrawal"
	TypeTransfer      Type = "Transfer"
	TypeDeposit       Type = "Deposit"
	TypeCard          Type = "Card"
)

type Record struct {
	Reference   string
	Kind        Kind
	MerchantID  string
	Email       string
	Amount      int64
	Currency    string
	Status      Status
	Type        Type
	CheckoutURL string
	ExpiresAt   *time.Time
	EventID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *Record) CanTransition(to Status) bool {
	return !r.Status.Terminal() && r.Status != to
}

func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}
