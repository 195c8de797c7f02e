package sync

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"tilemaster/internal/schema"
	"tilemaster/internal/store"
)

// Local fallback blob keys, one per collection. The version suffix is
// part of the on-disk contract; bump it only with a migration path.
const (
	keyTiles     = "tilemaster_db_tiles_v1"
	keyCustomers = "tilemaster_db_customers_v1"
	keyEmployees = "tilemaster_db_employees_v1"
)

// Engine orchestrates health checking, initial load, and write-back
// for the three entity collections. The collections share no state and
// never block on one another.
type Engine struct {
	remote store.RemoteStore   // nil when no remote store is configured
	local  store.FallbackStore // used only when remote is nil
	logger *log.Logger
	queues map[string]*saveQueue
}

// New creates an Engine. Pass remote=nil to run against the local
// fallback store instead; the two are mutually exclusive per run, and
// at least one must be non-nil.
//
// If logger is nil, a default logger writing to stderr is used.
func New(remote store.RemoteStore, local store.FallbackStore, logger *log.Logger) *Engine {
	if remote == nil && local == nil {
		panic("sync: New needs a remote or a local store")
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Engine{
		remote: remote,
		local:  local,
		logger: logger,
		queues: map[string]*saveQueue{
			store.CollectionTiles:     newSaveQueue(),
			store.CollectionCustomers: newSaveQueue(),
			store.CollectionEmployees: newSaveQueue(),
		},
	}
}

// RemoteConfigured reports whether the engine writes to a remote store
// rather than the local fallback.
func (e *Engine) RemoteConfigured() bool {
	return e.remote != nil
}

// LoadStock loads the inventory collection, returning seed when the
// store is empty or unreadable. Read-only.
func (e *Engine) LoadStock(ctx context.Context, seed []schema.StockItem) []schema.StockItem {
	return loadCollection(e, ctx, store.CollectionTiles, keyTiles, seed,
		func(s *schema.StockItem, id string) { s.ID = id })
}

// LoadCustomers loads the customer collection.
func (e *Engine) LoadCustomers(ctx context.Context, seed []schema.CustomerRecord) []schema.CustomerRecord {
	return loadCollection(e, ctx, store.CollectionCustomers, keyCustomers, seed,
		func(c *schema.CustomerRecord, id string) { c.ID = id })
}

// LoadStaff loads the employee roster. Records written before the
// privilege field existed get it derived from the role text.
func (e *Engine) LoadStaff(ctx context.Context, seed []schema.StaffRecord) []schema.StaffRecord {
	out := loadCollection(e, ctx, store.CollectionEmployees, keyEmployees, seed,
		func(s *schema.StaffRecord, id string) { s.ID = id })
	for i := range out {
		out[i].SetDefaults()
	}
	return out
}

// SaveStock schedules a reconcile of the inventory collection against
// the given snapshot. Fire-and-forget: failures are logged, never
// returned, and the caller's in-memory state stays usable.
func (e *Engine) SaveStock(items []schema.StockItem) {
	snapshot := make([]schema.StockItem, len(items))
	copy(snapshot, items)
	e.queues[store.CollectionTiles].enqueue(func() {
		saveCollection(e, context.Background(), store.CollectionTiles, keyTiles, snapshot,
			func(s schema.StockItem) string { return s.ID })
	})
}

// SaveCustomers schedules a reconcile of the customer collection.
func (e *Engine) SaveCustomers(items []schema.CustomerRecord) {
	snapshot := make([]schema.CustomerRecord, len(items))
	copy(snapshot, items)
	e.queues[store.CollectionCustomers].enqueue(func() {
		saveCollection(e, context.Background(), store.CollectionCustomers, keyCustomers, snapshot,
			func(c schema.CustomerRecord) string { return c.ID })
	})
}

// SaveStaff schedules a reconcile of the employee roster. Records are
// cloned, not struct-copied; the queued marshal must never share an
// inbox slice with the live roster.
func (e *Engine) SaveStaff(items []schema.StaffRecord) {
	snapshot := make([]schema.StaffRecord, len(items))
	for i := range items {
		snapshot[i] = items[i].Clone()
	}
	e.queues[store.CollectionEmployees].enqueue(func() {
		saveCollection(e, context.Background(), store.CollectionEmployees, keyEmployees, snapshot,
			func(s schema.StaffRecord) string { return s.ID })
	})
}

// Flush blocks until every queued save has completed. Call before
// process exit so the last edits reach the store.
func (e *Engine) Flush() {
	for _, q := range e.queues {
		q.wait()
	}
}

// loadCollection implements the load-with-default contract for one
// collection.
//
// Remote configured: full read; any error or an empty result yields
// the seed. The store's id column is authoritative over the id inside
// the decoded payload. Remote unconfigured: the local blob wins if it
// exists and parses, otherwise the seed.
//
// An empty store and a deliberately emptied store are
// indistinguishable here; loading always reintroduces the seed when
// the remote store reports zero rows.
func loadCollection[T any](e *Engine, ctx context.Context, collection, key string, seed []T, setID func(*T, string)) []T {
	if e.remote != nil {
		rows, err := e.remote.Select(ctx, collection, 0)
		if err != nil {
			// Missing tables already surfaced by the health check.
			if !store.IsMissingRelation(err) {
				e.logger.Printf("load %s: remote read failed: %v", collection, err)
			}
			return seed
		}
		if len(rows) == 0 {
			return seed
		}

		out := make([]T, 0, len(rows))
		for _, row := range rows {
			var rec T
			if err := json.Unmarshal(row.Payload, &rec); err != nil {
				e.logger.Printf("load %s: skipping undecodable row %s: %v", collection, row.ID, err)
				continue
			}
			setID(&rec, row.ID)
			out = append(out, rec)
		}
		return out
	}

	blob, ok, err := e.local.Get(key)
	if err != nil {
		e.logger.Printf("load %s: local read failed: %v", collection, err)
		return seed
	}
	if !ok {
		return seed
	}
	var out []T
	if err := json.Unmarshal(blob, &out); err != nil {
		e.logger.Printf("load %s: local blob corrupt: %v", collection, err)
		return seed
	}
	return out
}

// saveCollection reconciles one collection against a snapshot: upsert
// every record, then prune rows absent from the snapshot. An empty
// snapshot degrades to "delete all rows". The steps are sequential,
// not atomic; an interrupted save leaves stale rows until the next
// successful one.
func saveCollection[T any](e *Engine, ctx context.Context, collection, key string, items []T, getID func(T) string) {
	if e.remote == nil {
		if items == nil {
			items = []T{} // an emptied collection must serialize as [], not null
		}
		blob, err := json.Marshal(items)
		if err != nil {
			e.logger.Printf("save %s: encode failed: %v", collection, err)
			return
		}
		if err := e.local.Set(key, blob); err != nil {
			e.logger.Printf("save %s: local write failed: %v", collection, err)
		}
		return
	}

	if len(items) > 0 {
		rows := make([]store.Row, 0, len(items))
		for _, item := range items {
			payload, err := json.Marshal(item)
			if err != nil {
				e.logger.Printf("save %s: encode of record %s failed: %v", collection, getID(item), err)
				return
			}
			rows = append(rows, store.Row{ID: getID(item), Payload: payload})
		}

		if err := e.remote.Upsert(ctx, collection, rows); err != nil {
			if !store.IsMissingRelation(err) {
				e.logger.Printf("save %s: upsert of %d rows failed: %v", collection, len(rows), err)
			}
			return
		}
	}

	keep := make([]string, 0, len(items))
	for _, item := range items {
		keep = append(keep, getID(item))
	}
	if err := e.remote.DeleteWhere(ctx, collection, keep); err != nil {
		if !store.IsMissingRelation(err) {
			e.logger.Printf("save %s: prune failed: %v", collection, err)
		}
	}
}
