package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/core"
)

// BatchProcessor embeds batches of chunk texts.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	normalize      bool
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts per batch
// retryBaseDelay: base delay for exponential backoff
// normalize: scale vectors to unit length
func NewBatchProcessor(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration, normalize bool) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		normalize:      normalize,
	}
}

// Process returns one vector per chunk, in chunk order.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []core.DocumentChunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		if errors.Is(err, core.ErrDimensionMismatch) || errors.Is(err, core.ErrEmptyVector) {
			// a wrong-sized vector is not transient
			return Permanent(err)
		}
		if err == nil && len(embeddings) != len(texts) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
		}
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}

	if bp.normalize {
		for i := range embeddings {
			embeddings[i] = NormalizeVector(embeddings[i])
		}
	}
	return embeddings, nil
}
