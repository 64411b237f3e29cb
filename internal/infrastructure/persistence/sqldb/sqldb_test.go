package sqldb_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/ledger"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/persistence/sqldb"
)

func setupTestDB(t *testing.T) *sqldb.DB {
	t.Helper()

	db, err := sqldb.Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := sqldb.RunMigrations(context.Background(), db); err != nil {
		t.Fatal(err)
	}

	return db
}

func seedMerchant(t *testing.T, db *sqldb.DB, balance int64) *sqldb.MerchantRepository {
	t.Helper()

	repo := sqldb.NewMerchantRepository(db)
	err := repo.Save(context.Background(), &merchant.Merchant{
		ID:        "m-1",
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
		Balance:   balance,
		Bank:      merchant.BankAccount{AccountNumber: "0123456789", BankCode: "058"},
	})
	require.NoError(t, err)
	return repo
}

func seedRecord(t *testing.T, repo *sqldb.SettlementRepository, ref string, kind settlement.Kind, status settlement.Status, amount int64) {
	t.Helper()

	created, err := repo.SaveIfNotExist(context.Background(), &settlement.Record{
		Reference:  ref,
		Kind:       kind,
		MerchantID: "m-1",
		Amount:     amount,
		Currency:   "NGN",
		Status:     status,
		Type:       settlement.TypeDynamic,
	})
	require.NoError(t, err)
	require.True(t, created)
}

func entry(ref string, dir ledger.Direction, amount int64, at time.Time) *ledger.Entry {
	return &ledger.Entry{
		MerchantID: "m-1",
		Direction:  dir,
		Amount:     amount,
		History: merchant.HistoryEntry{
			ID: "h-" + ref, Reference: ref, Amount: amount, Status: "success", Type: "charge",
			Date: at.Format("2006-01-02"), Time: at.Format("15:04:05"), CreatedAt: at,
		},
		Notification: merchant.Notification{
			ID: "n-" + ref, Message: "payment " + ref, Date: at.Format("2006-01-02"), Time: at.Format("15:04:05"), CreatedAt: at,
		},
	}
}

func TestRunMigrations_ShouldBeIdempotent(t *testing.T) {
	db := setupTestDB(t)

	applied, err := sqldb.RunMigrations(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, 0, applied)
}

func TestDialect_Rebind(t *testing.T) {
	require.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", sqldb.Postgres.Rebind("SELECT 1 WHERE a = ? AND b = ?"))
	require.Equal(t, "SELECT 1 WHERE a = ?", sqldb.SQLite.Rebind("SELECT 1 WHERE a = ?"))
}

func TestSettlementRepository_SaveIfNotExist_ShouldRejectSecondInsert(t *testing.T) {
	db := setupTestDB(t)
	repo := sqldb.NewSettlementRepository(db)
	seedRecord(t, repo, "PYW-1", settlement.KindPayment, settlement.StatusPending, 5000)

	created, err := repo.SaveIfNotExist(context.Background(), &settlement.Record{Reference: "PYW-1", Kind: settlement.KindWithdrawal, MerchantID: "m-1", Currency: "NGN", Status: settlement.StatusPending})
	require.NoError(t, err)
	require.False(t, created)
}

func TestSettlementRepository_Find_ShouldFilterByKind(t *testing.T) {
	db := setupTestDB(t)
	repo := sqldb.NewSettlementRepository(db)
	seedRecord(t, repo, "PYW-1", settlement.KindTransaction, settlement.StatusPending, 5000)

	_, err := repo.Find(context.Background(), settlement.KindPayment, "PYW-1")
	require.ErrorIs(t, err, settlement.ErrRecordNotFound)

	rec, err := repo.Find(context.Background(), settlement.KindTransaction, "PYW-1")
	require.NoError(t, err)
	require.Equal(t, int64(5000), rec.Amount)
	require.Equal(t, settlement.TypeDynamic, rec.Type)
	require.Nil(t, rec.ExpiresAt)
}

func TestSettlementRepository_Commit_WhenCredit_ShouldWriteLedgerAndOutbox(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	merchants := seedMerchant(t, db, 0)
	repo := sqldb.NewSettlementRepository(db)
	seedRecord(t, repo, "PYW-1", settlement.KindPayment, settlement.StatusPending, 5000)

	receipt, err := repo.Commit(ctx, settlement.Settlement{
		Reference: "PYW-1",
		From:      settlement.StatusPending,
		To:        settlement.StatusSuccess,
		EventID:   "evt-1",
		Entry:     entry("PYW-1", ledger.Credit, 5000, time.Now()),
		Events: []event.Event{{
			Type:    event.SettlementApplied,
			Key:     "PYW-1",
			Payload: event.SettlementPayload{Reference: "PYW-1", Amount: 5000},
		}},
	})
	require.NoError(t, err)
	require.True(t, receipt.Applied)
	require.Equal(t, int64(5000), receipt.Balance)

	m, err := merchants.FindByID(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(5000), m.Balance)

	history, total, err := merchants.History(ctx, "m-1", merchant.NewPage(1, 10))
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "charge", history[0].Type)
	require.Equal(t, "success", history[0].Status)

	rec, err := repo.Find(ctx, settlement.KindPayment, "PYW-1")
	require.NoError(t, err)
	require.Equal(t, settlement.StatusSuccess, rec.Status)
	require.Equal(t, "evt-1", rec.EventID)

	pending, err := sqldb.NewOutboxRepository(db).FindUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "PYW-1", pending[0].Key)
	require.JSONEq(t, `{"reference":"PYW-1","kind":"","merchant_id":"","amount":5000,"currency":"","status":"","direction":""}`, string(pending[0].Payload))
}

func TestSettlementRepository_Commit_WhenStatusChanged_ShouldRollBackEverything(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	merchants := seedMerchant(t, db, 0)
	repo := sqldb.NewSettlementRepository(db)
	seedRecord(t, repo, "PYW-1", settlement.KindPayment, settlement.StatusSuccess, 5000)

	_, err := repo.Commit(ctx, settlement.Settlement{
		Reference: "PYW-1",
		From:      settlement.StatusPending,
		To:        settlement.StatusSuccess,
		Entry:     entry("PYW-1", ledger.Credit, 5000, time.Now()),
		Events:    []event.Event{{Type: event.SettlementApplied, Key: "PYW-1"}},
	})
	require.ErrorIs(t, err, settlement.ErrStatusConflict)

	m, _ := merchants.FindByID(ctx, "m-1")
	require.Equal(t, int64(0), m.Balance)

	_, total, _ := merchants.History(ctx, "m-1", merchant.NewPage(1, 10))
	require.Equal(t, 0, total)

	pending, _ := sqldb.NewOutboxRepository(db).FindUnpublished(ctx, 10)
	require.Empty(t, pending)
}

func TestSettlementRepository_Commit_WhenReferenceUnknown_ShouldReturnNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqldb.NewSettlementRepository(db)

	_, err := repo.Commit(context.Background(), settlement.Settlement{Reference: "nope", From: settlement.StatusPending, To: settlement.StatusFailed})
	require.ErrorIs(t, err, settlement.ErrRecordNotFound)
}

func TestSettlementRepository_Commit_WhenMerchantMissing_ShouldLeaveStatusUntouched(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := sqldb.NewSettlementRepository(db)
	seedRecord(t, repo, "PYW-1", settlement.KindPayment, settlement.StatusPending, 5000)

	_, err := repo.Commit(ctx, settlement.Settlement{
		Reference: "PYW-1",
		From:      settlement.StatusPending,
		To:        settlement.StatusSuccess,
		Entry:     entry("PYW-1", ledger.Credit, 5000, time.Now()),
	})
	require.ErrorIs(t, err, merchant.ErrMerchantNotFound)

	rec, err := repo.Find(ctx, settlement.KindPayment, "PYW-1")
	require.NoError(t, err)
	require.Equal(t, settlement.StatusPending, rec.Status)
}

func TestSettlementRepository_Commit_WhenDebitExceedsBalance_ShouldWithhold(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	merchants := seedMerchant(t, db, 1000)
	repo := sqldb.NewSettlementRepository(db)
	seedRecord(t, repo, "PYW-WD-1", settlement.KindWithdrawal, settlement.StatusProcessing, 3000)

	receipt, err := repo.Commit(ctx, settlement.Settlement{
		Reference: "PYW-WD-1",
		From:      settlement.StatusProcessing,
		To:        settlement.StatusSuccess,
		Entry:     entry("PYW-WD-1", ledger.Debit, 3000, time.Now()),
	})
	require.NoError(t, err)
	require.True(t, receipt.Withheld)
	require.False(t, receipt.Applied)
	require.Equal(t, int64(1000), receipt.Balance)

	m, _ := merchants.FindByID(ctx, "m-1")
	require.Equal(t, int64(1000), m.Balance)

	_, total, _ := merchants.History(ctx, "m-1", merchant.NewPage(1, 10))
	require.Equal(t, 1, total)
}

func TestSettlementRepository_Commit_WhenDebitCovered_ShouldDecrement(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	merchants := seedMerchant(t, db, 5000)
	repo := sqldb.NewSettlementRepository(db)
	seedRecord(t, repo, "PYW-WD-1", settlement.KindWithdrawal, settlement.StatusProcessing, 3000)

	receipt, err := repo.Commit(ctx, settlement.Settlement{
		Reference: "PYW-WD-1",
		From:      settlement.StatusProcessing,
		To:        settlement.StatusSuccess,
		Entry:     entry("PYW-WD-1", ledger.Debit, 3000, time.Now()),
	})
	require.NoError(t, err)
	require.Equal(t, int64(2000), receipt.Balance)

	m, _ := merchants.FindByID(ctx, "m-1")
	require.Equal(t, int64(2000), m.Balance)
}

func TestSettlementRepository_ConcurrentCredits_ShouldNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	merchants := seedMerchant(t, db, 0)
	repo := sqldb.NewSettlementRepository(db)

	const n = 20
	for i := 0; i < n; i++ {
		seedRecord(t, repo, fmt.Sprintf("PYW-%d", i), settlement.KindPayment, settlement.StatusPending, 100)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	base := time.Now()

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref := fmt.Sprintf("PYW-%d", i)
			_, err := repo.Commit(ctx, settlement.Settlement{
				Reference: ref,
				From:      settlement.StatusPending,
				To:        settlement.StatusSuccess,
				Entry:     entry(ref, ledger.Credit, 100, base.Add(time.Duration(i)*time.Millisecond)),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	m, err := merchants.FindByID(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(n*100), m.Balance)
}

func TestMerchantRepository_History_ShouldPageNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	merchants := seedMerchant(t, db, 0)
	repo := sqldb.NewSettlementRepository(db)

	base := time.Now()
	for i := 1; i <= 3; i++ {
		ref := fmt.Sprintf("PYW-%d", i)
		seedRecord(t, repo, ref, settlement.KindPayment, settlement.StatusPending, 10)
		_, err := repo.Commit(ctx, settlement.Settlement{
			Reference: ref,
			From:      settlement.StatusPending,
			To:        settlement.StatusFailed,
			Entry:     entry(ref, ledger.AppendOnly, 10, base.Add(time.Duration(i)*time.Second)),
		})
		require.NoError(t, err)
	}

	page, total, err := merchants.History(ctx, "m-1", merchant.NewPage(1, 2))
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 2)
	require.Equal(t, "PYW-3", page[0].Reference)

	notes, total, err := merchants.Notifications(ctx, "m-1", merchant.NewPage(2, 2))
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, notes, 1)
	require.Equal(t, "payment PYW-1", notes[0].Message)

	m, _ := merchants.FindByID(ctx, "m-1")
	require.Equal(t, int64(0), m.Balance)
}

func TestMerchantRepository_Save_ShouldNotOverwriteBalance(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	merchants := seedMerchant(t, db, 700)

	require.NoError(t, merchants.Save(ctx, &merchant.Merchant{ID: "m-1", Email: "new@example.com", Balance: 0}))

	m, err := merchants.FindByID(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(700), m.Balance)
	require.Equal(t, "new@example.com", m.Email)
}

func TestOutboxRepository_ShouldPersistEvent_BeforePublish(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := sqldb.NewOutboxRepository(db)

	require.NoError(t, repo.Save(ctx, outboxEvent("evt-1")))

	events, err := repo.FindUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Published {
		t.Fatalf("expected event to be unpublished")
	}

	require.NoError(t, repo.MarkPublished(ctx, "evt-1"))

	events, err = repo.FindUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestDeliveryLog_Append(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	err := sqldb.NewDeliveryLog(db).Append(ctx, notify.Delivery{
		ID: "d-1", MerchantID: "m-1", Recipient: "ada@example.com", Subject: "Payment Successful",
		Body: "hi", Status: notify.DeliveryFailed, Error: "smtp down", Attempt: 2, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	var status string
	var attempt int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT status, attempt FROM notification_deliveries WHERE id = ?`, "d-1").Scan(&status, &attempt))
	require.Equal(t, "failed", status)
	require.Equal(t, 2, attempt)
}
