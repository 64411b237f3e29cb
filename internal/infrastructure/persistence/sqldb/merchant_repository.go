package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
)

type MerchantRepository struct {
	db *DB
}

func NewMerchantRepository(db *DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// Save inserts the merchant or refreshes its profile. The balance is only
// ever written on insert; afterwards it moves through settlement commits.
func (r *MerchantRepository) Save(ctx context.Context, m *merchant.Merchant) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO merchants (
			id, merchant_code, first_name, last_name, business_name, email, balance,
			account_name, account_number, bank_name, bank_code, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			merchant_code = excluded.merchant_code,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			business_name = excluded.business_name,
			email = excluded.email,
			account_name = excluded.account_name,
			account_number = excluded.account_number,
			bank_name = excluded.bank_name,
			bank_code = excluded.bank_code
	`),
		m.ID, m.MerchantCode, m.FirstName, m.LastName, m.BusinessName, m.Email, m.Balance,
		m.Bank.AccountName, m.Bank.AccountNumber, m.Bank.BankName, m.Bank.BankCode, toNanos(m.CreatedAt),
	)
	return err
}

func (r *MerchantRepository) FindByID(ctx context.Context, id string) (*merchant.Merchant, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, merchant_code, first_name, last_name, business_name, email, balance,
			account_name, account_number, bank_name, bank_code, created_at
		FROM merchants
		WHERE id = ?
	`), id)

	var (
		m       merchant.Merchant
		created int64
	)
	if err := row.Scan(
		&m.ID, &m.MerchantCode, &m.FirstName, &m.LastName, &m.BusinessName, &m.Email, &m.Balance,
		&m.Bank.AccountName, &m.Bank.AccountNumber, &m.Bank.BankName, &m.Bank.BankCode, &created,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, merchant.ErrMerchantNotFound
		}
		return nil, err
	}

	m.CreatedAt = fromNanos(created)
	return &m, nil
}

func (r *MerchantRepository) History(ctx context.Context, merchantID string, page merchant.Page) ([]merchant.HistoryEntry, int, error) {
	total, err := r.count(ctx, `SELECT COUNT(*) FROM ledger_history WHERE merchant_id = ?`, merchantID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT id, merchant_id, reference, amount, status, type, entry_date, entry_time, created_at
		FROM ledger_history
		WHERE merchant_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), merchantID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []merchant.HistoryEntry{}
	for rows.Next() {
		var (
			e       merchant.HistoryEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.MerchantID, &e.Reference, &e.Amount, &e.Status, &e.Type, &e.Date, &e.Time, &created); err != nil {
			return nil, 0, err
		}
		e.CreatedAt = fromNanos(created)
		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}

func (r *MerchantRepository) Notifications(ctx context.Context, merchantID string, page merchant.Page) ([]merchant.Notification, int, error) {
	total, err := r.count(ctx, `SELECT COUNT(*) FROM merchant_notifications WHERE merchant_id = ?`, merchantID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT id, merchant_id, message, entry_date, entry_time, created_at
		FROM merchant_notifications
		WHERE merchant_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), merchantID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := []merchant.Notification{}
	for rows.Next() {
		var (
			n       merchant.Notification
			created int64
		)
		if err := rows.Scan(&n.ID, &n.MerchantID, &n.Message, &n.Date, &n.Time, &created); err != nil {
			return nil, 0, err
		}
		n.CreatedAt = fromNanos(created)
		notes = append(notes, n)
	}

	return notes, total, rows.Err()
}

func (r *MerchantRepository) count(ctx context.Context, query, merchantID string) (int, error) {
	if _, err := r.FindByID(ctx, merchantID); err != nil {
		return 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(query), merchantID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
