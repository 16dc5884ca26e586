// Package features turns a pair of fetched records into the ordered numeric
// vector the duplicate classifier consumes.
//
// Join aligns the query and match records into a Row whose columns carry _q
// and _m suffixes. Build then scores artists, contributors, and title
// with each fuzzy metric in Functions, in that field-major order, and appends
// isrcs_coincidence. The names and order are part of the model contract.
package features
