package features

import (
	"database/sql"

	"dupscore/internal/records"
)

// Column suffixes for the query and match side of a Row.
const (
	QuerySuffix = "_q"
	MatchSuffix = "_m"
)

// Row is the joined comparison row for one query/match pair.
type Row struct {
	QSourceID string
	MSourceID string
	Columns   map[string]sql.NullString
}

// Value returns the named column and whether the row carries it.
func (r Row) Value(column string) (sql.NullString, bool) {
	v, ok := r.Columns[column]
	return v, ok
}

// Join aligns the fetched records with the query and match identifiers. The
// two identifiers may be equal, in which case the record is compared with
// itself.
func Join(queryID, matchID string, recs []records.Record) (Row, error) {
	query, ok := find(recs, queryID)
	if !ok {
		return Row{}, &MissingRecordError{ID: queryID}
	}
	match, ok := find(recs, matchID)
	if !ok {
		return Row{}, &MissingRecordError{ID: matchID}
	}

	row := Row{
		QSourceID: queryID,
		MSourceID: matchID,
		Columns:   make(map[string]sql.NullString, 2*len(records.Columns)),
	}
	for _, column := range records.Columns {
		row.Columns[column+QuerySuffix], _ = query.Field(column)
		row.Columns[column+MatchSuffix], _ = match.Field(column)
	}
	return row, nil
}

func find(recs []records.Record, id string) (records.Record, bool) {
	for _, rec := range recs {
		if rec.ID == id {
			return rec, true
		}
	}
	return records.Record{}, false
}
