package sqldb

import (
	"context"
	"database/sql"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/outbox"
)

type OutboxRepository struct {
	db *DB
}

func NewOutboxRepository(db *DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOutbox(ctx context.Context, db *DB, ex execer, evt outbox.OutboxEvent) error {
	_, err := ex.ExecContext(ctx, db.Rebind(`
		INSERT INTO outbox_events (id, event_type, event_key, payload, published, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`),
		evt.ID,
		string(evt.Type),
		evt.Key,
		string(evt.Payload),
		0,
		toNanos(evt.CreatedAt),
	)
	return err
}

func (r *OutboxRepository) Save(ctx context.Context, evt outbox.OutboxEvent) error {
	return insertOutbox(ctx, r.db, r.db, evt)
}

func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]outbox.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT id, event_type, event_key, payload, published, created_at
		FROM outbox_events
		WHERE published = 0
		ORDER BY created_at
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []outbox.OutboxEvent

	for rows.Next() {
		var (
			evt       outbox.OutboxEvent
			typ       string
			payload   string
			published int
			created   int64
		)

		if err := rows.Scan(&evt.ID, &typ, &evt.Key, &payload, &published, &created); err != nil {
			return nil, err
		}

		evt.Type = event.Type(typ)
		evt.Payload = []byte(payload)
		evt.Published = published == 1
		evt.CreatedAt = fromNanos(created)
		events = append(events, evt)
	}

	return events, rows.Err()
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE outbox_events
		SET published = 1
		WHERE id = ?
	`), id)

	return err
}
