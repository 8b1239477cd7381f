package storage

import (
	"context"
	"time"

	"github.com/poiesic/expertfind/index"
)

// FormatVersion is the current persisted index layout.
const FormatVersion = 2

// Manifest describes a persisted index.
type Manifest struct {
	Version        int          `json:"version"`
	Metric         index.Metric `json:"metric"`
	Dimension      int          `json:"dimension"`
	Count          int          `json:"count"`
	EmbeddingModel string       `json:"embedding_model"`
	ChunkSize      int          `json:"chunk_size"`
	ChunkOverlap   int          `json:"chunk_overlap"`
	Splitter       string       `json:"splitter"`
	BuiltAt        time.Time    `json:"built_at"`
}

// NewManifest describes ix as built with the given embedding model and chunking.
func NewManifest(ix *index.Index, embeddingModel string, chunkSize, chunkOverlap int) Manifest {
	return Manifest{
		Version:        FormatVersion,
		Metric:         ix.Metric(),
		Dimension:      ix.Dimension(),
		Count:          ix.Len(),
		EmbeddingModel: embeddingModel,
		ChunkSize:      chunkSize,
		ChunkOverlap:   chunkOverlap,
		BuiltAt:        time.Now().UTC(),
	}
}

// IndexRepository persists a single vector index.
// Implementations must be thread-safe and support concurrent access.
type IndexRepository interface {
	// Save replaces any previously stored index with ix.
	// manifest.Count, Dimension and Metric are taken from ix.
	Save(ctx context.Context, ix *index.Index, manifest Manifest) error

	// Load restores the stored index.
	// Returns an error wrapping core.ErrIndexNotFound if nothing is stored,
	// or core.ErrCorruptIndex if the stored records do not form a valid index.
	Load(ctx context.Context) (*index.Index, Manifest, error)

	// Manifest returns the stored manifest without loading entries.
	// Returns an error wrapping core.ErrIndexNotFound if nothing is stored.
	Manifest(ctx context.Context) (Manifest, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
