package features

import (
	"database/sql"

	"dupscore/internal/fuzzy"
	"dupscore/internal/records"
)

// IsrcsCoincidence is the name of the exact ISRC match flag.
const IsrcsCoincidence = "isrcs_coincidence"

// Function pairs a feature suffix with the metric that computes it.
type Function struct {
	Name string
	Fn   fuzzy.Func
}

// Fields are the compared text columns, in vector order.
var Fields = []string{records.ColumnArtists, records.ColumnContributors, records.ColumnTitle}

// Functions are the similarity metrics applied to every field, in vector order.
var Functions = []Function{
	{Name: "partial_ratio", Fn: fuzzy.PartialRatio},
	{Name: "partial_token_set_ratio", Fn: fuzzy.PartialTokenSetRatio},
	{Name: "partial_token_sort_ratio", Fn: fuzzy.PartialTokenSortRatio},
	{Name: "ratio", Fn: fuzzy.Ratio},
	{Name: "token_set_ratio", Fn: fuzzy.TokenSetRatio},
	{Name: "token_sort_ratio", Fn: fuzzy.TokenSortRatio},
}

// Size is the length of every vector Build produces.
var Size = len(Fields)*len(Functions) + 1

// Names returns the vector layout: <field>_<function> for every field and
// function, then isrcs_coincidence.
func Names() []string {
	names := make([]string, 0, Size)
	for _, field := range Fields {
		for _, fn := range Functions {
			names = append(names, field+"_"+fn.Name)
		}
	}
	return append(names, IsrcsCoincidence)
}

// Build scores a joined row. NULL text compares as the empty string; a NULL
// ISRC never coincides.
func Build(row Row) (Vector, error) {
	vec := make(Vector, 0, Size)
	for _, field := range Fields {
		q, m, err := pair(row, field)
		if err != nil {
			return nil, err
		}
		for _, fn := range Functions {
			vec = append(vec, Feature{
				Name:  field + "_" + fn.Name,
				Value: float64(fn.Fn(q.String, m.String)),
			})
		}
	}

	q, m, err := pair(row, records.ColumnISRCs)
	if err != nil {
		return nil, err
	}
	coincide := 0.0
	if q.Valid && m.Valid && q.String == m.String {
		coincide = 1
	}
	return append(vec, Feature{Name: IsrcsCoincidence, Value: coincide}), nil
}

func pair(row Row, field string) (q, m sql.NullString, err error) {
	var ok bool
	if q, ok = row.Value(field + QuerySuffix); !ok {
		return q, m, &SchemaError{Column: field + QuerySuffix}
	}
	if m, ok = row.Value(field + MatchSuffix); !ok {
		return q, m, &SchemaError{Column: field + MatchSuffix}
	}
	return q, m, nil
}

// FromRecords joins recs for the pair and builds the vector.
func FromRecords(queryID, matchID string, recs []records.Record) (Vector, error) {
	row, err := Join(queryID, matchID, recs)
	if err != nil {
		return nil, err
	}
	return Build(row)
}
