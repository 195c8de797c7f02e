// Package remote implements the RemoteStore contract on top of a
// libSQL server (Turso or self-hosted sqld). Each collection is a
// two-column table: id TEXT PRIMARY KEY, json_data TEXT.
package remote

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tilemaster/internal/store"

	_ "github.com/tursodatabase/go-libsql"
)

// opTimeout bounds every store round trip. Timeouts belong at this
// boundary; the sync engine above never retries or cancels.
const opTimeout = 10 * time.Second

// SetupSQL provisions the three collection tables. It is printed by
// the setup flow so an operator can run it against a store we can only
// read from.
const SetupSQL = `CREATE TABLE IF NOT EXISTS tiles (
  id TEXT PRIMARY KEY,
  json_data TEXT
);

CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  json_data TEXT
);

CREATE TABLE IF NOT EXISTS employees (
  id TEXT PRIMARY KEY,
  json_data TEXT
);`

// Client is a thin wrapper around the remote database connection.
type Client struct {
	conn *sql.DB
}

// Open connects to a remote libSQL database URL, e.g.
// libsql://shop.turso.io. The auth token, if any, is passed as a query
// parameter per the driver's convention.
//
// The caller MUST call Close() when done.
func Open(rawURL, authToken string) (*Client, error) {
	dsn := rawURL
	if authToken != "" {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		dsn = rawURL + sep + "authToken=" + url.QueryEscape(authToken)
	}

	conn, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote store: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetConnMaxIdleTime(2 * time.Minute)

	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection. This is how provisioning
// tools and tests run the client against an embedded database.
func NewClient(conn *sql.DB) *Client {
	return &Client{conn: conn}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close remote store: %w", err)
	}
	c.conn = nil
	return nil
}

// InitSchema creates the collection tables if they don't exist.
// Idempotent.
func (c *Client) InitSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := c.conn.ExecContext(ctx, SetupSQL); err != nil {
		return fmt.Errorf("failed to initialize remote schema: %w", err)
	}
	return nil
}

// Select implements store.RemoteStore.Select.
func (c *Client) Select(ctx context.Context, collection string, limit int) ([]store.Row, error) {
	if !store.ValidCollection(collection) {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidCollection, collection)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT id, json_data FROM %s", collection)
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", collection, err)
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var r store.Row
		var payload sql.NullString
		if err := rows.Scan(&r.ID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", collection, err)
		}
		if payload.Valid {
			r.Payload = []byte(payload.String)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", collection, err)
	}

	return out, nil
}

// Upsert implements store.RemoteStore.Upsert. All rows go in one
// multi-values statement, not per-record round trips.
func (c *Client) Upsert(ctx context.Context, collection string, rows []store.Row) error {
	if !store.ValidCollection(collection) {
		return fmt.Errorf("%w: %q", store.ErrInvalidCollection, collection)
	}
	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (id, json_data) VALUES ", collection)
	args := make([]interface{}, 0, len(rows)*2)
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?)")
		args = append(args, r.ID, string(r.Payload))
	}
	sb.WriteString(" ON CONFLICT(id) DO UPDATE SET json_data = excluded.json_data")

	if _, err := c.conn.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to upsert %d rows into %s: %w", len(rows), collection, err)
	}
	return nil
}

// DeleteWhere implements store.RemoteStore.DeleteWhere.
func (c *Client) DeleteWhere(ctx context.Context, collection string, keep []string) error {
	if !store.ValidCollection(collection) {
		return fmt.Errorf("%w: %q", store.ErrInvalidCollection, collection)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if len(keep) == 0 {
		if _, err := c.conn.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", collection)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", collection, err)
		}
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keep)), ", ")
	query := fmt.Sprintf("DELETE FROM %s WHERE id NOT IN (%s)", collection, placeholders)
	args := make([]interface{}, len(keep))
	for i, id := range keep {
		args[i] = id
	}

	if _, err := c.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to prune %s: %w", collection, err)
	}
	return nil
}
