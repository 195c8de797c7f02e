package remote

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"tilemaster/internal/store"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// openTestClient backs the client with an embedded SQLite database.
// The SQL the client speaks is the libSQL dialect, which SQLite
// accepts unchanged.
func openTestClient(t *testing.T) *Client {
	t.Helper()
	conn, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "remote.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	c := NewClient(conn)
	if err := c.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return c
}

func TestSelectMissingTable(t *testing.T) {
	conn, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	c := NewClient(conn)
	_, err = c.Select(context.Background(), store.CollectionTiles, 1)
	if err == nil {
		t.Fatal("expected error selecting from unprovisioned store")
	}
	if !store.IsMissingRelation(err) {
		t.Errorf("missing table not classified as such: %v", err)
	}
}

func TestInvalidCollectionRejected(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	if _, err := c.Select(ctx, "orders", 0); err == nil {
		t.Error("Select accepted unknown collection")
	}
	if err := c.Upsert(ctx, "orders", []store.Row{{ID: "a"}}); err == nil {
		t.Error("Upsert accepted unknown collection")
	}
	if err := c.DeleteWhere(ctx, "orders", nil); err == nil {
		t.Error("DeleteWhere accepted unknown collection")
	}
}

func TestUpsertInsertsAndOverwrites(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	rows := []store.Row{
		{ID: "a", Payload: []byte(`{"id":"a","name":"first"}`)},
		{ID: "b", Payload: []byte(`{"id":"b","name":"second"}`)},
	}
	if err := c.Upsert(ctx, store.CollectionTiles, rows); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := c.Select(ctx, store.CollectionTiles, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("row count = %d, want 2", len(got))
	}

	// Same id again replaces the payload, no duplicate row.
	if err := c.Upsert(ctx, store.CollectionTiles, []store.Row{
		{ID: "a", Payload: []byte(`{"id":"a","name":"renamed"}`)},
	}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	got, err = c.Select(ctx, store.CollectionTiles, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("row count after overwrite = %d, want 2", len(got))
	}
	for _, r := range got {
		if r.ID == "a" && string(r.Payload) != `{"id":"a","name":"renamed"}` {
			t.Errorf("payload not overwritten: %s", r.Payload)
		}
	}
}

func TestSelectLimit(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	if err := c.Upsert(ctx, store.CollectionTiles, []store.Row{
		{ID: "a", Payload: []byte(`{}`)},
		{ID: "b", Payload: []byte(`{}`)},
		{ID: "c", Payload: []byte(`{}`)},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := c.Select(ctx, store.CollectionTiles, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("limit 1 returned %d rows", len(got))
	}
}

func TestDeleteWherePrunes(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	if err := c.Upsert(ctx, store.CollectionCustomers, []store.Row{
		{ID: "a", Payload: []byte(`{}`)},
		{ID: "b", Payload: []byte(`{}`)},
		{ID: "c", Payload: []byte(`{}`)},
	}); err != nil {
		t.Fatal(err)
	}

	if err := c.DeleteWhere(ctx, store.CollectionCustomers, []string{"a", "c"}); err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}

	got, err := c.Select(ctx, store.CollectionCustomers, 0)
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]bool{}
	for _, r := range got {
		ids[r.ID] = true
	}
	if len(ids) != 2 || !ids["a"] || !ids["c"] {
		t.Errorf("surviving ids = %v, want {a, c}", ids)
	}
}

func TestDeleteWhereEmptyKeepClearsAll(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	if err := c.Upsert(ctx, store.CollectionEmployees, []store.Row{
		{ID: "a", Payload: []byte(`{}`)},
	}); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteWhere(ctx, store.CollectionEmployees, nil); err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}
	got, err := c.Select(ctx, store.CollectionEmployees, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("%d rows survived a clear", len(got))
	}
}
