package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/payout"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
)

const MinimumAmount int64 = 1000

var (
	ErrAmountBelowMinimum  = fmt.Errorf("withdrawal amount must be at least %d", MinimumAmount)
	ErrInsufficientBalance = errors.New("insufficient account balance")
	ErrMissingBankAccount  = errors.New("missing destination bank account")
	ErrPayoutRejected      = errors.New("withdrawal rejected by provider")
)

type Request struct {
	Amount        int64
	BankCode      string
	AccountNumber string
	Email         string
}

// Service starts merchant withdrawals. The balance is not touched here: the
// record is left in processing and the provider's transfer webhook settles it.
type Service struct {
	Merchants   merchant.Repository
	Settlements settlement.Repository
	Payouts     payout.Invoker
	Logger      logging.Logger
}

func NewReference() string {
	return "PYW_wdwl_" + uuid.NewString()
}

func (s *Service) Request(ctx context.Context, merchantID string, req Request) (*settlement.Record, error) {
	if req.Amount < MinimumAmount {
		return nil, ErrAmountBelowMinimum
	}

	m, err := s.Merchants.FindByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if m.Balance < req.Amount {
		return nil, ErrInsufficientBalance
	}

	bank := m.Bank
	if req.BankCode != "" {
		bank.BankCode = req.BankCode
	}
	if req.AccountNumber != "" {
		bank.AccountNumber = req.AccountNumber
	}
	if bank.BankCode == "" || bank.AccountNumber == "" {
		return nil, ErrMissingBankAccount
	}

	email := req.Email
	if email == "" {
		email = m.Email
	}

	now := time.Now().UTC()
	rec := &settlement.Record{
		Reference:  NewReference(),
		Kind:       settlement.KindWithdrawal,
		MerchantID: m.ID,
		Email:      email,
		Amount:     req.Amount,
		Currency:   payout.DefaultCurrency,
		Status:     settlement.StatusProcessing,
		Type:       settlement.TypeWithdrawal,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// the record must exist before the provider can call back about it
	if _, err := s.Settlements.SaveIfNotExist(ctx, rec); err != nil {
		return nil, fmt.Errorf("save withdrawal: %w", err)
	}

	res, err := s.Payouts.Disburse(ctx, payout.Request{
		Reference:     rec.Reference,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		Narration:     fmt.Sprintf("Withdrawal of %d %s to %s", rec.Amount, rec.Currency, m.DisplayName()),
		Bank:          bank,
		CustomerEmail: email,
		Metadata: map[string]string{
			"merchant_id":   m.ID,
			"merchant_name": m.DisplayName(),
		},
	})
	if err == nil && res.Accepted() {
		s.Logger.Info("withdrawal initiated", map[string]any{
			"reference":     rec.Reference,
			"merchant-id":   m.ID,
			"amount":        rec.Amount,
			"payout-status": string(res.Status),
		})
		return rec, nil
	}

	reason := res.Message
	if err != nil {
		reason = err.Error()
	}
	s.Logger.Warn("withdrawal rejected", map[string]any{
		"reference":   rec.Reference,
		"merchant-id": m.ID,
		"reason":      reason,
	})

	if _, cerr := s.Settlements.Commit(ctx, settlement.Settlement{
		Reference: rec.Reference,
		From:      settlement.StatusProcessing,
		To:        settlement.StatusFailed,
		EventID:   "withdrawal:rejected",
	}); cerr != nil && !errors.Is(cerr, settlement.ErrStatusConflict) {
		return nil, fmt.Errorf("mark withdrawal failed: %w", cerr)
	}

	return nil, fmt.Errorf("%w: %s", ErrPayoutRejected, reason)
}
