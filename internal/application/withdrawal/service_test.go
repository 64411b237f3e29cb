package withdrawal_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/paywave-go/internal/application/withdrawal"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/payout"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/persistence/inmemory"
)

type fakeInvoker struct {
	calls      []payout.Request
	disburseFn func(payout.Request) (payout.Result, error)
}

func (f *fakeInvoker) Disburse(_ context.Context, req payout.Request) (payout.Result, error) {
	f.calls = append(f.calls, req)
	return f.disburseFn(req)
}

func setup(t *testing.T, balance int64, invoker *fakeInvoker) (*withdrawal.Service, *inmemory.SettlementRepository, *inmemory.MerchantRepository) {
	t.Helper()

	merchants := inmemory.NewMerchantRepository()
	require.NoError(t, merchants.Save(context.Background(), &merchant.Merchant{
		ID:        "m-1",
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
		Balance:   balance,
		Bank:      merchant.BankAccount{AccountNumber: "0123456789", BankCode: "058"},
	}))
	settlements := inmemory.NewSettlementRepository(merchants, nil)

	return &withdrawal.Service{
		Merchants:   merchants,
		Settlements: settlements,
		Payouts:     invoker,
		Logger:      logging.Nop{},
	}, settlements, merchants
}

func accepted(status payout.Status) *fakeInvoker {
	return &fakeInvoker{disburseFn: func(req payout.Request) (payout.Result, error) {
		return payout.Result{Reference: req.Reference, Status: status}, nil
	}}
}

func TestService_Request_WhenAccepted_ShouldCreateProcessingRecord(t *testing.T) {
	invoker := accepted(payout.StatusProcessing)
	svc, settlements, merchants := setup(t, 5000, invoker)
	ctx := context.Background()

	rec, err := svc.Request(ctx, "m-1", withdrawal.Request{Amount: 3000})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(rec.Reference, "PYW_wdwl_"))
	require.Len(t, invoker.calls, 1)
	require.Equal(t, rec.Reference, invoker.calls[0].Reference)
	require.Equal(t, "058", invoker.calls[0].Bank.BankCode)
	require.Equal(t, "Withdrawal of 3000 NGN to Ada Obi", invoker.calls[0].Narration)

	stored, err := settlements.Find(ctx, settlement.KindWithdrawal, rec.Reference)
	require.NoError(t, err)
	require.Equal(t, settlement.StatusProcessing, stored.Status)

	m, _ := merchants.FindByID(ctx, "m-1")
	require.Equal(t, int64(5000), m.Balance, "balance moves only when the transfer webhook settles")
}

func TestService_Request_WhenBelowMinimum_ShouldFail(t *testing.T) {
	invoker := accepted(payout.StatusSuccess)
	svc, _, _ := setup(t, 5000, invoker)

	_, err := svc.Request(context.Background(), "m-1", withdrawal.Request{Amount: 999})
	require.ErrorIs(t, err, withdrawal.ErrAmountBelowMinimum)
	require.Empty(t, invoker.calls)
}

func TestService_Request_WhenBalanceInsufficient_ShouldFail(t *testing.T) {
	invoker := accepted(payout.StatusSuccess)
	svc, _, _ := setup(t, 1500, invoker)

	_, err := svc.Request(context.Background(), "m-1", withdrawal.Request{Amount: 2000})
	require.ErrorIs(t, err, withdrawal.ErrInsufficientBalance)
	require.Empty(t, invoker.calls)
}

func TestService_Request_WhenMerchantUnknown_ShouldFail(t *testing.T) {
	svc, _, _ := setup(t, 1500, accepted(payout.StatusSuccess))

	_, err := svc.Request(context.Background(), "ghost", withdrawal.Request{Amount: 2000})
	require.ErrorIs(t, err, merchant.ErrMerchantNotFound)
}

func TestService_Request_WhenProviderRejects_ShouldMarkRecordFailed(t *testing.T) {
	invoker := &fakeInvoker{disburseFn: func(req payout.Request) (payout.Result, error) {
		return payout.Result{}, errors.New("provider down")
	}}
	svc, settlements, _ := setup(t, 5000, invoker)
	ctx := context.Background()

	_, err := svc.Request(ctx, "m-1", withdrawal.Request{Amount: 2000})
	require.ErrorIs(t, err, withdrawal.ErrPayoutRejected)

	stored, err := settlements.Find(ctx, settlement.KindWithdrawal, invoker.calls[0].Reference)
	require.NoError(t, err)
	require.Equal(t, settlement.StatusFailed, stored.Status)
}
