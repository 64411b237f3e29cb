package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func DialectFor(driver string) Dialect {
	if driver == "postgres" {
		return Postgres
	}
	return SQLite
}

// Rebind rewrites ? placeholders into $n for Postgres.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type DB struct {
	*sql.DB
	Dialect Dialect
}

func (db *DB) Rebind(query string) string {
	return db.Dialect.Rebind(query)
}

// Open connects and waits for the database to answer, retrying the ping a
// few times so the server can start alongside its database.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	dialect := DialectFor(driver)
	if dialect == SQLite {
		conn.SetMaxOpenConns(1)
	}

	for i := 0; i < 5; i++ {
		if err = conn.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			conn.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return &DB{DB: conn, Dialect: dialect}, nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UTC().UnixNano()
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
