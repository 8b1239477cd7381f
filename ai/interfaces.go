package ai

import (
	"context"

	"github.com/poiesic/expertfind/core"
)

// Embedder generates vector embeddings from text for similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// For a given model the result is deterministic and has the same
	// dimensionality on every call.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CriteriaExtractor turns a free-text query into structured search criteria.
// Implementations must be thread-safe for concurrent use.
type CriteriaExtractor interface {
	// ExtractCriteria asks a language model for the filters implied by text.
	// Fields the query does not mention are left empty.
	// Returns an error wrapping core.ErrExtractionFailure if the model is
	// unreachable or its output cannot be parsed into SearchCriteria.
	ExtractCriteria(ctx context.Context, text string) (core.SearchCriteria, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and CriteriaExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// CriteriaExtractor returns the criteria extraction service.
	// The returned CriteriaExtractor is safe for concurrent use.
	CriteriaExtractor() CriteriaExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
