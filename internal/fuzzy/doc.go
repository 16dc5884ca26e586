// Package fuzzy implements the string similarity metrics used to compare
// recording metadata.
//
// Every metric takes two strings and returns an integer score between 0 and
// 100. Ratio is the sequence-matcher ratio 2*M/T where M is the number of
// characters covered by matching blocks and T the combined length. The
// Partial variants score the shorter string against the best aligned window of
// the longer one. The Token variants first run the default processor
// (lowercase, non-alphanumerics folded to spaces) and then compare sorted
// tokens (Sort) or the intersection and differences of the token sets (Set).
//
// Identical inputs always score 100. An empty input scored against a
// non-empty one scores 0.
package fuzzy
