// Package index implements the in-memory vector index over embedded profile chunks.
//
// An Index is built once from parallel sequences of chunks and vectors and is
// read-only afterwards, so a single handle can serve concurrent searches.
// Search is exact: every entry is scored against the query and the k nearest
// are returned nearest-first. Entries at equal distance keep build order.
//
// Two metrics are supported:
//
//   - MetricL2: squared Euclidean distance
//   - MetricCosine: 1 - cosine similarity
//
// The metric is fixed at build time and recorded with the persisted index so
// that a loaded index searches exactly like the one that was saved.
package index
