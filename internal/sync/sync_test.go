package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	stdsync "sync"
	"testing"

	"tilemaster/internal/schema"
	"tilemaster/internal/store"
)

// fakeRemote is an in-memory RemoteStore with injectable failures.
type fakeRemote struct {
	mu          stdsync.Mutex
	rows        map[string]map[string][]byte // collection -> id -> payload
	selectErr   error
	upsertErr   error
	deleteErr   error
	upsertCalls int
	deleteCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: map[string]map[string][]byte{
		store.CollectionTiles:     {},
		store.CollectionCustomers: {},
		store.CollectionEmployees: {},
	}}
}

func (f *fakeRemote) Select(_ context.Context, collection string, limit int) ([]store.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	var out []store.Row
	for id, payload := range f.rows[collection] {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, store.Row{ID: id, Payload: payload})
	}
	return out, nil
}

func (f *fakeRemote) Upsert(_ context.Context, collection string, rows []store.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, r := range rows {
		f.rows[collection][r.ID] = r.Payload
	}
	return nil
}

func (f *fakeRemote) DeleteWhere(_ context.Context, collection string, keep []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	keepSet := map[string]bool{}
	for _, id := range keep {
		keepSet[id] = true
	}
	for id := range f.rows[collection] {
		if !keepSet[id] {
			delete(f.rows[collection], id)
		}
	}
	return nil
}

func (f *fakeRemote) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[collection])
}

// fakeLocal is an in-memory FallbackStore.
type fakeLocal struct {
	mu     stdsync.Mutex
	m      map[string][]byte
	getErr error
	setErr error
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{m: map[string][]byte{}}
}

func (f *fakeLocal) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	blob, ok := f.m[key]
	return blob, ok, nil
}

func (f *fakeLocal) Set(key string, blob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.m[key] = blob
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testSeed() []schema.StockItem {
	return []schema.StockItem{{
		ID:            "seed-1",
		Name:          "Carrara White",
		Type:          schema.MaterialMarble,
		Size:          "60x60cm",
		Price:         48.50,
		StockQuantity: 120,
	}}
}

func TestCheckHealth(t *testing.T) {
	ctx := context.Background()

	t.Run("no remote configured", func(t *testing.T) {
		e := New(nil, newFakeLocal(), quietLogger())
		if got := e.CheckHealth(ctx); got != HealthUnavailable {
			t.Errorf("health = %v, want unavailable", got)
		}
	})

	t.Run("reachable with tables", func(t *testing.T) {
		e := New(newFakeRemote(), nil, quietLogger())
		if got := e.CheckHealth(ctx); got != HealthOK {
			t.Errorf("health = %v, want ok", got)
		}
	})

	t.Run("empty table is still ok", func(t *testing.T) {
		remote := newFakeRemote()
		e := New(remote, nil, quietLogger())
		if remote.count(store.CollectionTiles) != 0 {
			t.Fatal("fake not empty")
		}
		if got := e.CheckHealth(ctx); got != HealthOK {
			t.Errorf("health = %v, want ok", got)
		}
	})

	t.Run("missing tables", func(t *testing.T) {
		remote := newFakeRemote()
		remote.selectErr = fmt.Errorf("probe: %w", store.ErrMissingRelation)
		e := New(remote, nil, quietLogger())
		if got := e.CheckHealth(ctx); got != HealthMissingTables {
			t.Errorf("health = %v, want missing tables", got)
		}
	})

	t.Run("missing tables by message", func(t *testing.T) {
		remote := newFakeRemote()
		remote.selectErr = errors.New("no such table: tiles")
		e := New(remote, nil, quietLogger())
		if got := e.CheckHealth(ctx); got != HealthMissingTables {
			t.Errorf("health = %v, want missing tables", got)
		}
	})

	t.Run("connection error", func(t *testing.T) {
		remote := newFakeRemote()
		remote.selectErr = errors.New("dial tcp: connection refused")
		e := New(remote, nil, quietLogger())
		if got := e.CheckHealth(ctx); got != HealthConnectionError {
			t.Errorf("health = %v, want connection error", got)
		}
	})
}

func TestLoadReturnsSeedWhenEmpty(t *testing.T) {
	remote := newFakeRemote()
	e := New(remote, nil, quietLogger())
	got := e.LoadStock(context.Background(), testSeed())
	if len(got) != 1 || got[0].Name != "Carrara White" {
		t.Errorf("load from empty store = %+v, want seed", got)
	}

	// Loading is read-only: a second load without a save in between
	// sees the same empty store and the same seed.
	if remote.count(store.CollectionTiles) != 0 {
		t.Error("load wrote to the store")
	}
	again := e.LoadStock(context.Background(), testSeed())
	if len(again) != 1 || again[0].ID != "seed-1" {
		t.Errorf("second load = %+v, want seed", again)
	}
}

func TestLoadReturnsSeedOnError(t *testing.T) {
	remote := newFakeRemote()
	remote.selectErr = errors.New("dial tcp: connection refused")
	e := New(remote, nil, quietLogger())
	got := e.LoadStock(context.Background(), testSeed())
	if len(got) != 1 || got[0].ID != "seed-1" {
		t.Errorf("load on error = %+v, want seed", got)
	}
}

func TestLoadIDColumnWins(t *testing.T) {
	remote := newFakeRemote()
	// Payload carries a stale embedded id; the store column is the
	// reconciliation key and must win.
	remote.rows[store.CollectionTiles]["row-7"] = []byte(
		`{"id":"stale","name":"Terra Cotta","type":"Ceramic","price":12.9,"stockQuantity":10}`)
	e := New(remote, nil, quietLogger())

	got := e.LoadStock(context.Background(), nil)
	if len(got) != 1 {
		t.Fatalf("loaded %d items, want 1", len(got))
	}
	if got[0].ID != "row-7" {
		t.Errorf("id = %q, want row-7 (store column authoritative)", got[0].ID)
	}
}

func TestLoadSkipsUndecodableRows(t *testing.T) {
	remote := newFakeRemote()
	remote.rows[store.CollectionTiles]["good"] = []byte(`{"name":"Good"}`)
	remote.rows[store.CollectionTiles]["bad"] = []byte(`{not json`)
	e := New(remote, nil, quietLogger())

	got := e.LoadStock(context.Background(), nil)
	if len(got) != 1 || got[0].ID != "good" {
		t.Errorf("loaded %+v, want only the decodable row", got)
	}
}

func TestLoadStaffDerivesPrivilege(t *testing.T) {
	remote := newFakeRemote()
	remote.rows[store.CollectionEmployees]["e1"] = []byte(
		`{"name":"Jo","role":"Store Manager","status":"Active"}`)
	e := New(remote, nil, quietLogger())

	got := e.LoadStaff(context.Background(), nil)
	if len(got) != 1 {
		t.Fatalf("loaded %d staff", len(got))
	}
	if got[0].Privilege != schema.PrivilegeManager {
		t.Errorf("privilege = %q, want manager", got[0].Privilege)
	}
}

func TestSaveReconciles(t *testing.T) {
	remote := newFakeRemote()
	e := New(remote, nil, quietLogger())

	items := []schema.StockItem{
		{ID: "a", Name: "A", Type: schema.MaterialCeramic},
		{ID: "b", Name: "B", Type: schema.MaterialMarble},
	}
	e.SaveStock(items)
	e.Flush()

	if got := remote.count(store.CollectionTiles); got != 2 {
		t.Fatalf("rows after save = %d, want 2", got)
	}

	// Dropping an item from the snapshot prunes its row.
	e.SaveStock(items[:1])
	e.Flush()

	if got := remote.count(store.CollectionTiles); got != 1 {
		t.Errorf("rows after prune = %d, want 1", got)
	}
	remote.mu.Lock()
	_, ok := remote.rows[store.CollectionTiles]["a"]
	remote.mu.Unlock()
	if !ok {
		t.Error("surviving row is not the one kept in the snapshot")
	}
}

func TestSaveEmptyClearsCollection(t *testing.T) {
	remote := newFakeRemote()
	e := New(remote, nil, quietLogger())

	e.SaveStock([]schema.StockItem{{ID: "a", Name: "A", Type: schema.MaterialCeramic}})
	e.Flush()
	e.SaveStock(nil)
	e.Flush()

	if got := remote.count(store.CollectionTiles); got != 0 {
		t.Errorf("rows after empty save = %d, want 0", got)
	}
}

func TestUpsertFailureSkipsPrune(t *testing.T) {
	remote := newFakeRemote()
	remote.rows[store.CollectionTiles]["old"] = []byte(`{"name":"Old"}`)
	remote.upsertErr = errors.New("dial tcp: connection refused")
	e := New(remote, nil, quietLogger())

	e.SaveStock([]schema.StockItem{{ID: "new", Name: "New", Type: schema.MaterialCeramic}})
	e.Flush()

	remote.mu.Lock()
	deletes := remote.deleteCalls
	remote.mu.Unlock()
	if deletes != 0 {
		t.Error("prune ran after a failed upsert; stale rows beat lost rows")
	}
	if got := remote.count(store.CollectionTiles); got != 1 {
		t.Errorf("rows = %d, want the old row untouched", got)
	}
}

func TestSaveFailureIsSilent(t *testing.T) {
	remote := newFakeRemote()
	remote.upsertErr = errors.New("boom")
	e := New(remote, nil, quietLogger())

	// Must not panic or block; failures are logged and dropped.
	e.SaveStock([]schema.StockItem{{ID: "a", Name: "A", Type: schema.MaterialCeramic}})
	e.Flush()
}

func TestLocalRoundtrip(t *testing.T) {
	local := newFakeLocal()
	e := New(nil, local, quietLogger())
	ctx := context.Background()

	// Empty store: seed.
	got := e.LoadStock(ctx, testSeed())
	if len(got) != 1 || got[0].ID != "seed-1" {
		t.Fatalf("initial load = %+v, want seed", got)
	}

	e.SaveStock([]schema.StockItem{{ID: "x", Name: "X", Type: schema.MaterialMosaic}})
	e.Flush()

	got = e.LoadStock(ctx, testSeed())
	if len(got) != 1 || got[0].ID != "x" {
		t.Errorf("load after save = %+v", got)
	}
}

func TestLocalEmptyBlobStaysEmpty(t *testing.T) {
	local := newFakeLocal()
	e := New(nil, local, quietLogger())
	ctx := context.Background()

	// Deliberately emptied collection: the blob exists and holds [],
	// so the seed must NOT come back.
	e.SaveStock(nil)
	e.Flush()

	blob, ok, _ := local.Get("tilemaster_db_tiles_v1")
	if !ok || string(blob) != "[]" {
		t.Fatalf("empty save wrote %q (ok=%v), want []", blob, ok)
	}

	got := e.LoadStock(ctx, testSeed())
	if len(got) != 0 {
		t.Errorf("load after clearing = %+v, want empty", got)
	}
}

func TestLocalCorruptBlobFallsBackToSeed(t *testing.T) {
	local := newFakeLocal()
	local.m["tilemaster_db_tiles_v1"] = []byte(`{truncated`)
	e := New(nil, local, quietLogger())

	got := e.LoadStock(context.Background(), testSeed())
	if len(got) != 1 || got[0].ID != "seed-1" {
		t.Errorf("load of corrupt blob = %+v, want seed", got)
	}
}

func TestCollectionsAreIndependent(t *testing.T) {
	remote := newFakeRemote()
	e := New(remote, nil, quietLogger())

	e.SaveStock([]schema.StockItem{{ID: "t1", Name: "T", Type: schema.MaterialCeramic}})
	e.SaveCustomers([]schema.CustomerRecord{{ID: "c1", Name: "Acme"}})
	e.SaveStaff([]schema.StaffRecord{{ID: "s1", Name: "Jo", Status: schema.StatusActive}})
	e.Flush()

	if remote.count(store.CollectionTiles) != 1 ||
		remote.count(store.CollectionCustomers) != 1 ||
		remote.count(store.CollectionEmployees) != 1 {
		t.Error("collections did not save independently")
	}
}

// TestRemoteLifecycle walks the full first-run story: seed on empty
// store, write-back, edit, prune, wipe, and reseed on the next load.
func TestRemoteLifecycle(t *testing.T) {
	remote := newFakeRemote()
	e := New(remote, nil, quietLogger())
	ctx := context.Background()

	items := e.LoadStock(ctx, testSeed())
	if len(items) != 1 {
		t.Fatal("expected seeded inventory")
	}

	e.SaveStock(items)
	e.Flush()
	if remote.count(store.CollectionTiles) != 1 {
		t.Fatal("seed not written back")
	}

	items = append(items, schema.StockItem{
		ID: "n1", Name: "Nordic Oak Plank", Type: schema.MaterialWoodLook,
	})
	e.SaveStock(items)
	e.Flush()

	loaded := e.LoadStock(ctx, testSeed())
	if len(loaded) != 2 {
		t.Fatalf("after add, loaded %d items", len(loaded))
	}

	e.SaveStock(nil)
	e.Flush()
	if remote.count(store.CollectionTiles) != 0 {
		t.Fatal("wipe did not clear the store")
	}

	// Zero rows and never-provisioned are indistinguishable, so the
	// seed comes back after a wipe.
	reseeded := e.LoadStock(ctx, testSeed())
	if len(reseeded) != 1 || reseeded[0].ID != "seed-1" {
		t.Errorf("load after wipe = %+v, want seed", reseeded)
	}
}

func TestNewRejectsNilStores(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New accepted nil remote and nil local")
		}
	}()
	New(nil, nil, quietLogger())
}

func TestSnapshotIsolation(t *testing.T) {
	remote := newFakeRemote()
	e := New(remote, nil, quietLogger())

	items := []schema.StockItem{{ID: "a", Name: "A", Type: schema.MaterialCeramic}}
	e.SaveStock(items)
	// Mutating the caller's slice after scheduling must not affect the
	// queued snapshot.
	items[0].Name = "MUTATED"
	e.Flush()

	var got schema.StockItem
	remote.mu.Lock()
	_ = json.Unmarshal(remote.rows[store.CollectionTiles]["a"], &got)
	remote.mu.Unlock()
	if got.Name != "A" {
		t.Errorf("saved name = %q, want the snapshot value", got.Name)
	}
}

// A struct copy of a StaffRecord still shares the Notifications
// backing array. The save snapshot must clone it, or an inbox edit
// made after scheduling leaks into the marshaled payload.
func TestStaffSnapshotClonesInbox(t *testing.T) {
	remote := newFakeRemote()
	e := New(remote, nil, quietLogger())

	// Hold the queue so the marshal happens after the mutation below.
	gate := make(chan struct{})
	e.queues[store.CollectionEmployees].enqueue(func() { <-gate })

	staff := []schema.StaffRecord{{
		ID: "s1", Name: "Jo", Status: schema.StatusActive,
		Notifications: []schema.Notification{{ID: "n1", Message: "shipment arrived"}},
	}}
	e.SaveStaff(staff)
	staff[0].Notifications[0].IsRead = true
	close(gate)
	e.Flush()

	var got schema.StaffRecord
	remote.mu.Lock()
	_ = json.Unmarshal(remote.rows[store.CollectionEmployees]["s1"], &got)
	remote.mu.Unlock()
	if len(got.Notifications) != 1 {
		t.Fatalf("saved %d notifications, want 1", len(got.Notifications))
	}
	if got.Notifications[0].IsRead {
		t.Error("inbox edit after scheduling leaked into the saved payload")
	}
}
