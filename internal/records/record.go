package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Column names shared by every backend.
const (
	ColumnID           = "sr_id"
	ColumnTitle        = "title"
	ColumnArtists      = "artists"
	ColumnContributors = "contributors"
	ColumnISRCs        = "isrcs"
)

// Columns lists the comparable record columns in storage order.
var Columns = []string{ColumnTitle, ColumnArtists, ColumnISRCs, ColumnContributors}

// ErrNotFound indicates that no record exists for an identifier.
var ErrNotFound = errors.New("record not found")

// Record is one stored sound recording.
type Record struct {
	ID           string
	Title        sql.NullString
	Artists      sql.NullString
	Contributors sql.NullString
	ISRCs        sql.NullString
}

// Field returns the named comparable column. The boolean is false for names
// that are not record columns.
func (r Record) Field(name string) (sql.NullString, bool) {
	switch name {
	case ColumnTitle:
		return r.Title, true
	case ColumnArtists:
		return r.Artists, true
	case ColumnContributors:
		return r.Contributors, true
	case ColumnISRCs:
		return r.ISRCs, true
	default:
		return sql.NullString{}, false
	}
}

// SetField assigns the named comparable column.
func (r *Record) SetField(name string, value sql.NullString) error {
	switch name {
	case ColumnTitle:
		r.Title = value
	case ColumnArtists:
		r.Artists = value
	case ColumnContributors:
		r.Contributors = value
	case ColumnISRCs:
		r.ISRCs = value
	default:
		return fmt.Errorf("unknown record column %q", name)
	}
	return nil
}

// Fetcher retrieves the records for a query/match identifier pair.
type Fetcher interface {
	// Name identifies the backend in logs and health output.
	Name() string
	// FetchPair returns the records whose sr_id is queryID or matchID. Missing
	// identifiers are simply absent from the result; at most two records are
	// returned and their order is unspecified.
	FetchPair(ctx context.Context, queryID, matchID string) ([]Record, error)
	Close() error
}

// Writer persists records, replacing any existing record with the same ID.
type Writer interface {
	Put(ctx context.Context, recs []Record) error
}

// Store is a backend that can both read and write records.
type Store interface {
	Fetcher
	Writer
}

// Lookup returns the record for id or ErrNotFound.
func Lookup(ctx context.Context, f Fetcher, id string) (*Record, error) {
	recs, err := f.FetchPair(ctx, id, id)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].ID == id {
			return &recs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Text returns a valid NullString holding s.
func Text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
