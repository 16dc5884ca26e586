// Package records reads music-recording metadata from the configured
// datastore.
//
// A Record carries the identifier (sr_id) and the comparable text columns
// title, artists, contributors, and isrcs. Columns may be NULL in the store;
// they surface as invalid sql.NullString values so callers can tell missing
// data from empty strings.
//
// Two backends implement Fetcher. SQLiteStore reads the soundrecording table
// with a single parameterized IN (?, ?) query; RedisStore reads one hash per
// record. Both also implement Writer so ImportCSV can seed them. Open selects
// the backend from configuration; the returned store is safe for concurrent
// use and is meant to live for the whole process.
package records
