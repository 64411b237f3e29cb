package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rcarvalho-pb/paywave-go/internal/application/withdrawal"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
)

type WithdrawalRequester interface {
	Request(ctx context.Context, merchantID string, req withdrawal.Request) (*settlement.Record, error)
}

type WithdrawalHandler struct {
	Service WithdrawalRequester
}

type CreateWithdrawalRequest struct {
	Amount        int64  `json:"amount"`
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email"`
}

type WithdrawalResponse struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	rec, err := h.Service.Request(r.Context(), MerchantID(r.Context()), withdrawal.Request{
		Amount:        req.Amount,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		Email:         req.Email,
	})
	switch {
	case err == nil:
		WriteSuccess(w, http.StatusOK, MessageResponse{
			Message: "Withdrawal processed successfully",
			Data: WithdrawalResponse{
				Reference: rec.Reference,
				Amount:    rec.Amount,
				Currency:  rec.Currency,
				Status:    string(rec.Status),
			},
		})
	case errors.Is(err, withdrawal.ErrAmountBelowMinimum),
		errors.Is(err, withdrawal.ErrInsufficientBalance),
		errors.Is(err, withdrawal.ErrMissingBankAccount):
		WriteError(w, http.StatusBadRequest, "invalid_withdrawal", err.Error())
	case errors.Is(err, withdrawal.ErrPayoutRejected):
		WriteError(w, http.StatusBadRequest, "withdrawal_failed", "Withdrawal failed")
	case errors.Is(err, merchant.ErrMerchantNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Merchant not found")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
