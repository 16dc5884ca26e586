package testsupport

import (
	"context"
	"testing"

	"dupscore/internal/config"
	"dupscore/internal/records"
)

// Recordings is the catalogue seeded by MustOpenStore.
//
//	1, 2: the same recording of Imagine under two ids
//	3: an unrelated recording with a different ISRC
//	4: Imagine without an ISRC
func Recordings() []records.Record {
	return []records.Record{
		{ID: "1", Title: records.Text("Imagine"), Artists: records.Text("John Lennon"), ISRCs: records.Text("GBUM71029601")},
		{ID: "2", Title: records.Text("Imagine"), Artists: records.Text("John Lennon"), ISRCs: records.Text("GBUM71029601")},
		{ID: "3", Title: records.Text("Bohemian Rhapsody"), Artists: records.Text("Queen"), Contributors: records.Text("Freddie Mercury"), ISRCs: records.Text("GBUM71029604")},
		{ID: "4", Title: records.Text("Imagine - Remastered 2010"), Artists: records.Text("John Lennon; Plastic Ono Band")},
	}
}

// MustOpenStore opens the configured record store for tests, seeds it with
// Recordings, and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) records.Store {
	t.Helper()

	store, err := records.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	if err := store.Put(context.Background(), Recordings()); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}
