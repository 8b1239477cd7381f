package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/poiesic/expertfind/core"
)

// Hit is one search result.
type Hit struct {
	Chunk    core.DocumentChunk
	Distance float32
	// Position is the entry's offset in build order.
	Position int
}

// Index is an immutable collection of embedded chunks.
type Index struct {
	metric    Metric
	dimension int
	entries   []core.IndexEntry
}

// Build creates an index from chunks and their vectors.
// chunks[i] is embedded as vectors[i].
// Returns core.ErrEmptyInput if chunks is empty.
func Build(chunks []core.DocumentChunk, vectors [][]float32, metric Metric) (*Index, error) {
	if len(chunks) == 0 {
		return nil, core.ErrEmptyInput
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%d chunks but %d vectors", len(chunks), len(vectors))
	}

	entries := make([]core.IndexEntry, len(chunks))
	for i := range chunks {
		entries[i] = core.IndexEntry{Chunk: chunks[i], Vector: vectors[i]}
	}
	return FromEntries(entries, metric)
}

// FromEntries creates an index from prepared entries, validating each one.
// All vectors must share the dimension of the first entry.
// The index takes ownership of entries.
func FromEntries(entries []core.IndexEntry, metric Metric) (*Index, error) {
	if len(entries) == 0 {
		return nil, core.ErrEmptyInput
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	dim := len(entries[0].Vector)
	for i := range entries {
		if err := core.ValidateEntry(&entries[i], dim); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return &Index{
		metric:    metric,
		dimension: dim,
		entries:   entries,
	}, nil
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Dimension returns the vector dimension shared by all entries.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// Metric returns the distance metric the index was built with.
func (ix *Index) Metric() Metric {
	return ix.metric
}

// Entry returns the entry at position i in build order.
func (ix *Index) Entry(i int) core.IndexEntry {
	return ix.entries[i]
}

// Search returns the k entries nearest to query, nearest first.
// A k larger than the index returns every entry. Entries at equal
// distance are returned in build order.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has %d, index has %d",
			core.ErrDimensionMismatch, len(query), ix.dimension)
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, len(ix.entries))
	for i := range ix.entries {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = Hit{
			Chunk:    ix.entries[i].Chunk,
			Distance: ix.metric.Distance(query, ix.entries[i].Vector),
			Position: i,
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Similarity maps a distance under m onto [0, 1], higher meaning closer.
func (m Metric) Similarity(distance float32) float64 {
	if m == MetricCosine {
		s := 1 - float64(distance)
		if s < 0 {
			return 0
		}
		if s > 1 {
			return 1
		}
		return s
	}
	return 1 / (1 + float64(distance))
}
