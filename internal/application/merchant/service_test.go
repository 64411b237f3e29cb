package merchant_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/paywave-go/internal/application/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/ledger"
	domainMerchant "github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/persistence/inmemory"
)

func setup(t *testing.T, entries int) *merchant.Service {
	t.Helper()
	ctx := context.Background()

	merchants := inmemory.NewMerchantRepository()
	require.NoError(t, merchants.Save(ctx, &domainMerchant.Merchant{ID: "m-1", Balance: 0}))
	settlements := inmemory.NewSettlementRepository(merchants, nil)

	for i := 1; i <= entries; i++ {
		ref := fmt.Sprintf("PYW-%d", i)
		_, err := settlements.SaveIfNotExist(ctx, &settlement.Record{Reference: ref, Kind: settlement.KindPayment, MerchantID: "m-1", Amount: 100, Status: settlement.StatusPending})
		require.NoError(t, err)
		_, err = settlements.Commit(ctx, settlement.Settlement{
			Reference: ref,
			From:      settlement.StatusPending,
			To:        settlement.StatusSuccess,
			Entry: &ledger.Entry{
				MerchantID:   "m-1",
				Direction:    ledger.Credit,
				Amount:       100,
				History:      domainMerchant.HistoryEntry{Reference: ref, Amount: 100},
				Notification: domainMerchant.Notification{Message: ref},
			},
		})
		require.NoError(t, err)
	}

	return &merchant.Service{Repo: merchants}
}

func TestService_Balance(t *testing.T) {
	svc := setup(t, 3)

	b, err := svc.Balance(context.Background(), "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(300), b.Balance)
}

func TestService_History_ShouldApplyDefaultsAndPaginate(t *testing.T) {
	svc := setup(t, 12)

	page, err := svc.History(context.Background(), "m-1", 0, 0)
	require.NoError(t, err)

	require.Len(t, page.Data, 10)
	require.Equal(t, domainMerchant.Pagination{Total: 12, Page: 1, Limit: 10, TotalPages: 2}, page.Pagination)
	require.Equal(t, "PYW-12", page.Data[0].Reference)

	page, err = svc.History(context.Background(), "m-1", 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
}

func TestService_Notifications_WhenMerchantUnknown_ShouldFail(t *testing.T) {
	svc := setup(t, 0)

	_, err := svc.Notifications(context.Background(), "ghost", 1, 10)
	require.ErrorIs(t, err, domainMerchant.ErrMerchantNotFound)
}

func TestService_Notifications_WhenEmpty_ShouldReturnEmptyPage(t *testing.T) {
	svc := setup(t, 0)

	page, err := svc.Notifications(context.Background(), "m-1", 1, 10)
	require.NoError(t, err)
	require.Empty(t, page.Data)
	require.NotNil(t, page.Data)
	require.Equal(t, 0, page.Pagination.TotalPages)
}
