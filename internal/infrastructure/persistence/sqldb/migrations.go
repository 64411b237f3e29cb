package sqldb

import (
	"context"
	"fmt"
	"time"
)

type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS merchants (
				id TEXT PRIMARY KEY,
				merchant_code TEXT NOT NULL DEFAULT '',
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				business_name TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
				account_name TEXT NOT NULL DEFAULT '',
				account_number TEXT NOT NULL DEFAULT '',
				bank_name TEXT NOT NULL DEFAULT '',
				bank_code TEXT NOT NULL DEFAULT '',
				created_at BIGINT NOT NULL
			)`,

			`CREATE TABLE IF NOT EXISTS settlement_records (
				reference TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				merchant_id TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				amount BIGINT NOT NULL,
				currency TEXT NOT NULL,
				status TEXT NOT NULL,
				type TEXT NOT NULL DEFAULT '',
				checkout_url TEXT NOT NULL DEFAULT '',
				expires_at BIGINT,
				event_id TEXT NOT NULL DEFAULT '',
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL
			)`,

			`CREATE INDEX IF NOT EXISTS idx_settlement_records_merchant
				ON settlement_records (merchant_id)`,

			`CREATE TABLE IF NOT EXISTS ledger_history (
				id TEXT PRIMARY KEY,
				merchant_id TEXT NOT NULL,
				reference TEXT NOT NULL,
				amount BIGINT NOT NULL,
				status TEXT NOT NULL,
				type TEXT NOT NULL,
				entry_date TEXT NOT NULL,
				entry_time TEXT NOT NULL,
				created_at BIGINT NOT NULL
			)`,

			`CREATE INDEX IF NOT EXISTS idx_ledger_history_merchant
				ON ledger_history (merchant_id, created_at)`,

			`CREATE TABLE IF NOT EXISTS merchant_notifications (
				id TEXT PRIMARY KEY,
				merchant_id TEXT NOT NULL,
				message TEXT NOT NULL,
				entry_date TEXT NOT NULL,
				entry_time TEXT NOT NULL,
				created_at BIGINT NOT NULL
			)`,

			`CREATE INDEX IF NOT EXISTS idx_merchant_notifications_merchant
				ON merchant_notifications (merchant_id, created_at)`,

			`CREATE TABLE IF NOT EXISTS outbox_events (
				id TEXT PRIMARY KEY,
				event_type TEXT NOT NULL,
				event_key TEXT NOT NULL DEFAULT '',
				payload TEXT NOT NULL,
				published INTEGER NOT NULL DEFAULT 0,
				created_at BIGINT NOT NULL
			)`,

			`CREATE INDEX IF NOT EXISTS idx_outbox_events_pending
				ON outbox_events (published, created_at)`,
		},
	},
	{
		version: 2,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS notification_deliveries (
				id TEXT PRIMARY KEY,
				merchant_id TEXT NOT NULL DEFAULT '',
				recipient TEXT NOT NULL,
				subject TEXT NOT NULL,
				body TEXT NOT NULL,
				status TEXT NOT NULL,
				error TEXT NOT NULL DEFAULT '',
				attempt INTEGER NOT NULL,
				created_at BIGINT NOT NULL
			)`,
		},
	},
}

// RunMigrations applies every migration newer than the recorded schema
// version, each in its own transaction. It returns how many were applied.
func RunMigrations(ctx context.Context, db *DB) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at BIGINT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, err
		}

		for _, stmt := range m.stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return applied, fmt.Errorf("migration %d: %w", m.version, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			db.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
			m.version, time.Now().UTC().UnixNano(),
		); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration %d: %w", m.version, err)
		}
		applied++
	}

	return applied, nil
}
