// Package store defines the narrow contract between the sync engine
// and the backing stores: a remote document-style store holding one
// {id, json_data} table per collection, and a local key-value fallback
// used when no remote store is configured.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Collection names are a fixed set; there is no dynamic schema and no
// migration system.
const (
	CollectionTiles     = "tiles"
	CollectionCustomers = "customers"
	CollectionEmployees = "employees"
)

// Collections returns the fixed collection set.
func Collections() []string {
	return []string{CollectionTiles, CollectionCustomers, CollectionEmployees}
}

// ValidCollection reports whether name is one of the fixed collections.
// Collection names are interpolated into SQL, so everything that
// reaches a store implementation must pass this check.
func ValidCollection(name string) bool {
	switch name {
	case CollectionTiles, CollectionCustomers, CollectionEmployees:
		return true
	}
	return false
}

// Row is the wire shape of a stored record: the id column is the
// reconciliation key, and the payload holds the entire record
// (including a redundant copy of the id; the id column wins on read).
type Row struct {
	ID      string
	Payload json.RawMessage
}

// RemoteStore is the remote document-store contract consumed by the
// sync engine. Implementations apply their own network timeouts; the
// engine never retries.
type RemoteStore interface {
	// Select reads up to limit rows from a collection (limit <= 0
	// means all rows). Errors caused by a missing table must satisfy
	// IsMissingRelation.
	Select(ctx context.Context, collection string, limit int) ([]Row, error)

	// Upsert writes all rows in a single batched statement, replacing
	// any existing row with the same id.
	Upsert(ctx context.Context, collection string, rows []Row) error

	// DeleteWhere removes every row whose id is NOT in keep. An empty
	// keep set deletes all rows in the collection.
	DeleteWhere(ctx context.Context, collection string, keep []string) error
}

// FallbackStore is the local blob store used when no remote store is
// configured. Single-process access only.
type FallbackStore interface {
	// Get returns the blob stored under key, or ok=false if absent.
	Get(key string) (blob []byte, ok bool, err error)

	// Set overwrites the blob stored under key.
	Set(key string, blob []byte) error
}

// ErrMissingRelation marks errors caused by the expected table not
// existing in the remote store. Implementations wrap it where they can
// detect the condition structurally; IsMissingRelation additionally
// matches by message for drivers that only surface text.
var ErrMissingRelation = errors.New("relation does not exist")

// ErrInvalidCollection is returned when an operation names a
// collection outside the fixed set.
var ErrInvalidCollection = errors.New("invalid collection name")

// missingRelationMarkers are the error-message fragments that identify
// a missing table across the backends we have seen: SQLite ("no such
// table"), Postgres ("relation ... does not exist", code 42P01), and
// PostgREST ("could not find the table").
var missingRelationMarkers = []string{
	"no such table",
	"does not exist",
	"could not find the table",
	"42p01",
}

// IsMissingRelation reports whether err indicates that the target
// table is missing, as opposed to the store being unreachable.
func IsMissingRelation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingRelation) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range missingRelationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
