package records_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"dupscore/internal/records"
)

func openSQLite(t *testing.T) *records.SQLiteStore {
	t.Helper()
	store, err := records.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db.db"), "soundrecording")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecords() []records.Record {
	return []records.Record{
		{ID: "1", Title: records.Text("Imagine"), Artists: records.Text("John Lennon"), ISRCs: records.Text("GBUM71029601")},
		{ID: "2", Title: records.Text("Imagine"), Artists: records.Text("John Lennon"), Contributors: records.Text("Yoko Ono"), ISRCs: records.Text("GBUM71029601")},
		{ID: "3", Title: records.Text("Bohemian Rhapsody"), Artists: records.Text("Queen")},
	}
}

func TestSQLiteFetchPair(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	if err := store.Put(ctx, sampleRecords()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	recs, err := store.FetchPair(ctx, "1", "3")
	if err != nil {
		t.Fatalf("FetchPair: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	if recs[0].Title.String != "Imagine" || recs[1].Artists.String != "Queen" {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if recs[0].Contributors.Valid {
		t.Fatalf("expected NULL contributors, got %q", recs[0].Contributors.String)
	}
	if recs[1].ISRCs.Valid {
		t.Fatalf("expected NULL isrcs for record 3")
	}
}

func TestSQLiteFetchPairMissingAndSelf(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	if err := store.Put(ctx, sampleRecords()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	recs, err := store.FetchPair(ctx, "1", "404")
	if err != nil {
		t.Fatalf("FetchPair: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "1" {
		t.Fatalf("expected only record 1, got %+v", recs)
	}

	recs, err = store.FetchPair(ctx, "2", "2")
	if err != nil {
		t.Fatalf("FetchPair self: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("self comparison should return one row, got %d", len(recs))
	}
}

func TestSQLiteIdentifiersAreNotInterpolated(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	if err := store.Put(ctx, sampleRecords()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	recs, err := store.FetchPair(ctx, "1') OR ('1'='1", "x")
	if err != nil {
		t.Fatalf("FetchPair: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("injection payload matched %d rows", len(recs))
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}
}

func TestSQLitePutReplaces(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	if err := store.Put(ctx, sampleRecords()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	updated := records.Record{ID: "3", Title: records.Text("Radio Ga Ga")}
	if err := store.Put(ctx, []records.Record{updated}); err != nil {
		t.Fatalf("Put update: %v", err)
	}

	rec, err := records.Lookup(ctx, store, "3")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.Title.String != "Radio Ga Ga" || rec.Artists.Valid {
		t.Fatalf("record not replaced: %+v", rec)
	}

	if _, err := records.Lookup(ctx, store, "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenSQLiteRejectsBadTable(t *testing.T) {
	_, err := records.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db.db"), "sound; DROP TABLE x")
	if err == nil {
		t.Fatal("expected table name validation error")
	}
}
