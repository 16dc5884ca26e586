package features_test

import (
	"errors"
	"reflect"
	"testing"

	"dupscore/internal/features"
	"dupscore/internal/records"
)

func imagine(id string) records.Record {
	return records.Record{
		ID:      id,
		Title:   records.Text("Imagine"),
		Artists: records.Text("John Lennon"),
		ISRCs:   records.Text("GBUM71029601"),
	}
}

func TestNamesOrder(t *testing.T) {
	want := []string{
		"artists_partial_ratio", "artists_partial_token_set_ratio", "artists_partial_token_sort_ratio",
		"artists_ratio", "artists_token_set_ratio", "artists_token_sort_ratio",
		"contributors_partial_ratio", "contributors_partial_token_set_ratio", "contributors_partial_token_sort_ratio",
		"contributors_ratio", "contributors_token_set_ratio", "contributors_token_sort_ratio",
		"title_partial_ratio", "title_partial_token_set_ratio", "title_partial_token_sort_ratio",
		"title_ratio", "title_token_set_ratio", "title_token_sort_ratio",
		"isrcs_coincidence",
	}
	if got := features.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v", got)
	}
	if features.Size != 19 {
		t.Fatalf("Size = %d, want 19", features.Size)
	}
}

func TestBuildIdenticalRecords(t *testing.T) {
	vec, err := features.FromRecords("1", "2", []records.Record{imagine("1"), imagine("2")})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if !reflect.DeepEqual(vec.Names(), features.Names()) {
		t.Fatalf("vector order mismatch: %v", vec.Names())
	}
	for _, f := range vec {
		if f.Value != 100 && f.Name != features.IsrcsCoincidence {
			t.Fatalf("%s = %v, want 100", f.Name, f.Value)
		}
	}
	if v, _ := vec.Get(features.IsrcsCoincidence); v != 1 {
		t.Fatalf("isrcs_coincidence = %v, want 1", v)
	}
}

func TestBuildSelfComparison(t *testing.T) {
	rec := imagine("9")
	rec.Contributors = records.Text("Yoko Ono")
	vec, err := features.FromRecords("9", "9", []records.Record{rec})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	for _, f := range vec {
		want := 100.0
		if f.Name == features.IsrcsCoincidence {
			want = 1
		}
		if f.Value != want {
			t.Fatalf("%s = %v, want %v", f.Name, f.Value, want)
		}
	}
}

func TestBuildDisjointRecords(t *testing.T) {
	other := records.Record{
		ID:      "2",
		Title:   records.Text("Bohemian Rhapsody"),
		Artists: records.Text("Queen"),
		ISRCs:   records.Text("GBUM71029604"),
	}
	vec, err := features.FromRecords("1", "2", []records.Record{imagine("1"), other})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if len(vec) != 19 {
		t.Fatalf("expected 19 features, got %d", len(vec))
	}
	m := vec.Map()
	if m["title_ratio"] > 40 || m["artists_token_set_ratio"] > 40 {
		t.Fatalf("disjoint strings scored high: %v", m)
	}
	if m[features.IsrcsCoincidence] != 0 {
		t.Fatalf("isrcs_coincidence = %v, want 0", m[features.IsrcsCoincidence])
	}
	for _, f := range vec {
		if f.Value < 0 || f.Value > 100 {
			t.Fatalf("%s out of range: %v", f.Name, f.Value)
		}
	}
}

func TestNullISRCsNeverCoincide(t *testing.T) {
	a, b := imagine("1"), imagine("2")
	a.ISRCs, b.ISRCs = records.Record{}.ISRCs, records.Record{}.ISRCs
	vec, err := features.FromRecords("1", "2", []records.Record{a, b})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if v, _ := vec.Get(features.IsrcsCoincidence); v != 0 {
		t.Fatalf("isrcs_coincidence = %v, want 0", v)
	}
	if v, _ := vec.Get("contributors_ratio"); v != 100 {
		t.Fatalf("two NULL contributors should compare as equal empty strings, got %v", v)
	}
}

func TestJoinMissingRecord(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		match   string
		missing string
	}{
		{name: "match missing", query: "1", match: "404", missing: "404"},
		{name: "query missing", query: "404", match: "1", missing: "404"},
		{name: "both missing", query: "a", match: "b", missing: "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := features.Join(tc.query, tc.match, []records.Record{imagine("1")})
			var missing *features.MissingRecordError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingRecordError, got %v", err)
			}
			if missing.ID != tc.missing {
				t.Fatalf("missing ID = %q, want %q", missing.ID, tc.missing)
			}
			if missing.Error() != "record "+tc.missing+" not found" {
				t.Fatalf("unexpected message %q", missing.Error())
			}
		})
	}
}

func TestBuildSchemaError(t *testing.T) {
	row, err := features.Join("1", "2", []records.Record{imagine("1"), imagine("2")})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	delete(row.Columns, "contributors_m")

	_, err = features.Build(row)
	var schema *features.SchemaError
	if !errors.As(err, &schema) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schema.Column != "contributors_m" || schema.Error() != "missing column contributors_m" {
		t.Fatalf("unexpected schema error: %v", schema)
	}
	if schema.ErrorKind() != "schema" {
		t.Fatalf("unexpected kind %q", schema.ErrorKind())
	}
}

func TestJoinRenamesColumns(t *testing.T) {
	other := imagine("2")
	other.Title = records.Text("Imagine (Remastered)")
	row, err := features.Join("1", "2", []records.Record{other, imagine("1")})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if row.QSourceID != "1" || row.MSourceID != "2" {
		t.Fatalf("unexpected ids: %+v", row)
	}
	if q, _ := row.Value("title_q"); q.String != "Imagine" {
		t.Fatalf("title_q = %q", q.String)
	}
	if m, _ := row.Value("title_m"); m.String != "Imagine (Remastered)" {
		t.Fatalf("title_m = %q", m.String)
	}
}
