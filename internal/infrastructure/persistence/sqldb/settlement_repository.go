package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/ledger"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/settlement"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/outbox"
)

type SettlementRepository struct {
	db *DB
}

func NewSettlementRepository(db *DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

func (r *SettlementRepository) SaveIfNotExist(ctx context.Context, rec *settlement.Record) (bool, error) {
	var expires sql.NullInt64
	if rec.ExpiresAt != nil {
		expires = sql.NullInt64{Int64: rec.ExpiresAt.UnixNano(), Valid: true}
	}

	created := toNanos(rec.CreatedAt)
	updated := created
	if !rec.UpdatedAt.IsZero() {
		updated = rec.UpdatedAt.UnixNano()
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO settlement_records (
			reference, kind, merchant_id, email, amount, currency, status, type,
			checkout_url, expires_at, event_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (reference) DO NOTHING
	`),
		rec.Reference, string(rec.Kind), rec.MerchantID, rec.Email, rec.Amount, rec.Currency,
		string(rec.Status), string(rec.Type), rec.CheckoutURL, expires, rec.EventID, created, updated,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	// 0 rows: the reference is already taken
	return affected == 1, nil
}

func (r *SettlementRepository) Find(ctx context.Context, kind settlement.Kind, reference string) (*settlement.Record, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT reference, kind, merchant_id, email, amount, currency, status, type,
			checkout_url, expires_at, event_id, created_at, updated_at
		FROM settlement_records
		WHERE reference = ? AND kind = ?
	`), reference, string(kind))

	var (
		rec              settlement.Record
		kindStr, status  string
		typ              string
		expires          sql.NullInt64
		created, updated int64
	)
	if err := row.Scan(
		&rec.Reference, &kindStr, &rec.MerchantID, &rec.Email, &rec.Amount, &rec.Currency, &status, &typ,
		&rec.CheckoutURL, &expires, &rec.EventID, &created, &updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, settlement.ErrRecordNotFound
		}
		return nil, err
	}

	rec.Kind = settlement.Kind(kindStr)
	rec.Status = settlement.Status(status)
	rec.Type = settlement.Type(typ)
	rec.CreatedAt = fromNanos(created)
	rec.UpdatedAt = fromNanos(updated)
	if expires.Valid {
		t := fromNanos(expires.Int64)
		rec.ExpiresAt = &t
	}

	return &rec, nil
}

// Commit moves the record from s.From to s.To, applies the ledger entry and
// stores the outbox events in one transaction.
func (r *SettlementRepository) Commit(ctx context.Context, s settlement.Settlement) (receipt ledger.Receipt, err error) {
	if s.Entry != nil && s.Entry.Amount < 0 {
		return ledger.Receipt{}, ledger.ErrNegativeAmount
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Receipt{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC().UnixNano()

	res, err := tx.ExecContext(ctx, r.db.Rebind(`
		UPDATE settlement_records
		SET status = ?, event_id = ?, updated_at = ?
		WHERE reference = ? AND status = ?
	`), string(s.To), s.EventID, now, s.Reference, string(s.From))
	if err != nil {
		return ledger.Receipt{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return ledger.Receipt{}, err
	} else if n == 0 {
		return ledger.Receipt{}, r.missingOrConflict(ctx, tx, s.Reference)
	}

	if s.Entry != nil {
		receipt, err = r.applyEntry(ctx, tx, s.Entry)
		if err != nil {
			return ledger.Receipt{}, err
		}
	}

	for _, evt := range s.Events {
		out, err := outbox.NewOutboxEvent(evt)
		if err != nil {
			return ledger.Receipt{}, err
		}
		if err := insertOutbox(ctx, r.db, tx, out); err != nil {
			return ledger.Receipt{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ledger.Receipt{}, fmt.Errorf("commit settlement %s: %w", s.Reference, err)
	}
	return receipt, nil
}

func (r *SettlementRepository) missingOrConflict(ctx context.Context, tx *sql.Tx, reference string) error {
	var one int
	err := tx.QueryRowContext(ctx, r.db.Rebind(`SELECT 1 FROM settlement_records WHERE reference = ?`), reference).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return settlement.ErrRecordNotFound
	}
	if err != nil {
		return err
	}
	return settlement.ErrStatusConflict
}

func (r *SettlementRepository) applyEntry(ctx context.Context, tx *sql.Tx, e *ledger.Entry) (ledger.Receipt, error) {
	var receipt ledger.Receipt

	switch e.Direction {
	case ledger.Credit:
		res, err := tx.ExecContext(ctx, r.db.Rebind(`UPDATE merchants SET balance = balance + ? WHERE id = ?`), e.Amount, e.MerchantID)
		if err != nil {
			return receipt, err
		}
		if n, err := res.RowsAffected(); err != nil {
			return receipt, err
		} else if n == 0 {
			return receipt, merchant.ErrMerchantNotFound
		}
		receipt.Applied = true

	case ledger.Debit:
		res, err := tx.ExecContext(ctx, r.db.Rebind(`UPDATE merchants SET balance = balance - ? WHERE id = ? AND balance >= ?`), e.Amount, e.MerchantID, e.Amount)
		if err != nil {
			return receipt, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return receipt, err
		}
		receipt.Applied = n == 1
		receipt.Withheld = n == 0
	}

	err := tx.QueryRowContext(ctx, r.db.Rebind(`SELECT balance FROM merchants WHERE id = ?`), e.MerchantID).Scan(&receipt.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Receipt{}, merchant.ErrMerchantNotFound
	}
	if err != nil {
		return ledger.Receipt{}, err
	}

	h := e.History
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO ledger_history (id, merchant_id, reference, amount, status, type, entry_date, entry_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), h.ID, e.MerchantID, h.Reference, h.Amount, h.Status, h.Type, h.Date, h.Time, toNanos(h.CreatedAt)); err != nil {
		return ledger.Receipt{}, err
	}

	n := e.Notification
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO merchant_notifications (id, merchant_id, message, entry_date, entry_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), n.ID, e.MerchantID, n.Message, n.Date, n.Time, toNanos(n.CreatedAt)); err != nil {
		return ledger.Receipt{}, err
	}

	return receipt, nil
}
