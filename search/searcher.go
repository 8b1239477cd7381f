package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/index"
	"github.com/poiesic/expertfind/match"
	"github.com/poiesic/expertfind/stats"
)

// Index is the read-only view of the vector index a Searcher needs.
// *index.Index implements it.
type Index interface {
	Search(ctx context.Context, query []float32, k int) ([]index.Hit, error)
	Metric() index.Metric
}

var _ Index = (*index.Index)(nil)

// Searcher runs queries against one vector index.
// It is safe for concurrent use.
type Searcher struct {
	index             Index
	embedder          ai.Embedder
	extractor         ai.CriteriaExtractor
	pool              *ants.Pool
	mode              SimilarityMode
	baseline          float64
	defaultK          int
	embeddingTimeout  time.Duration
	extractionTimeout time.Duration
	dedupe            bool
	monitor           SearchMonitor
	logger            *slog.Logger
}

// NewSearcher creates a new searcher.
func NewSearcher(ix Index, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if ix == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		index:     ix,
		embedder:  provider.Embedder(),
		extractor: provider.CriteriaExtractor(),
		mode:      ModeBaseline,
		baseline:  DefaultBaseline,
		defaultK:  DefaultK,
		monitor:   &noopMonitor{},
		logger:    slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	if s.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}
	if s.monitor == nil {
		s.monitor = &noopMonitor{}
	}

	return s, nil
}

// Release releases the worker pool.
// The searcher should not be used after calling Release.
func (s *Searcher) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Query finds experts for rawQuery among the k nearest index entries.
// k <= 0 uses the default. Errors are scoped to this query:
// core.ErrEmbeddingUnavailable when the query or a hit cannot be embedded,
// ErrEmptyQuery for blank input, or the context's error.
func (s *Searcher) Query(ctx context.Context, rawQuery string, k int) (*core.SearchResponse, error) {
	return s.QueryWithMonitor(ctx, rawQuery, k, s.monitor)
}

// QueryWithMonitor is Query with a per-call monitor.
func (s *Searcher) QueryWithMonitor(ctx context.Context, rawQuery string, k int, monitor SearchMonitor) (resp *core.SearchResponse, err error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(rawQuery)
	defer func() { monitor.Finish(resp, err) }()

	if strings.TrimSpace(rawQuery) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = s.defaultK
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	extracted := s.startExtraction(ctx, rawQuery)

	results, err := s.retrieve(ctx, rawQuery, k, monitor)
	if err != nil {
		s.logger.Error("retrieval failed", "err", err)
		return nil, err
	}

	var extraction ai.Extraction
	select {
	case extraction = <-extracted:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	monitor.AfterExtraction(extraction)

	exact, recommended := match.Classify(results, extraction.Criteria)
	monitor.AfterClassification(exact, recommended, len(results)-len(exact)-len(recommended))

	s.logger.Debug("query answered",
		"retrieved", len(results), "exact", len(exact), "recommended", len(recommended),
		"criteria_parsed", extraction.Parsed())

	return &core.SearchResponse{
		ExactMatches:       core.ResultBucket{Results: exact, Metrics: stats.Summarize(exact)},
		RecommendedMatches: core.ResultBucket{Results: recommended, Metrics: stats.Summarize(recommended)},
		SearchCriteria:     extraction.Criteria,
	}, nil
}

// startExtraction runs criteria extraction on the pool. The returned
// channel always receives exactly one value.
func (s *Searcher) startExtraction(ctx context.Context, rawQuery string) <-chan ai.Extraction {
	out := make(chan ai.Extraction, 1)
	task := func() {
		out <- ai.ExtractOrEmpty(ctx, s.extractor, rawQuery, s.extractionTimeout, s.logger)
	}
	if err := s.pool.Submit(task); err != nil {
		s.logger.Warn("extraction pool unavailable, running inline", "err", err)
		go task()
	}
	return out
}

// retrieve embeds the query, searches the index and annotates each hit.
func (s *Searcher) retrieve(ctx context.Context, rawQuery string, k int, monitor SearchMonitor) ([]core.RetrievedResult, error) {
	queryVec, err := s.embedQuery(ctx, rawQuery)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, queryVec, k)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, core.ErrDimensionMismatch) {
			// the embedding model no longer matches the index
			return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingUnavailable, err)
		}
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if s.dedupe {
		hits = dedupeHits(hits)
	}
	monitor.AfterRetrieval(hits)

	if len(hits) == 0 {
		return []core.RetrievedResult{}, nil
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Chunk.Text
	}
	hitVecs, err := s.embedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	metric := s.index.Metric()
	results := make([]core.RetrievedResult, len(hits))
	for i, h := range hits {
		r := core.ResultFromMetadata(h.Chunk.Metadata)
		r.CosineSimilarity = index.CosineSimilarity(queryVec, hitVecs[i])
		if s.mode == ModeDistance {
			r.SimilarityScore = metric.Similarity(h.Distance)
		} else {
			r.SimilarityScore = s.baseline
		}
		results[i] = r
	}
	return results, nil
}

func (s *Searcher) embedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := s.withEmbeddingTimeout(ctx)
	defer cancel()

	vec, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, s.embeddingError(ctx, "embedding query", err)
	}
	return vec, nil
}

func (s *Searcher) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := s.withEmbeddingTimeout(ctx)
	defer cancel()

	vecs, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, s.embeddingError(ctx, "embedding results", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", core.ErrEmbeddingUnavailable, len(texts), len(vecs))
	}
	return vecs, nil
}

func (s *Searcher) withEmbeddingTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.embeddingTimeout > 0 {
		return context.WithTimeout(ctx, s.embeddingTimeout)
	}
	return context.WithCancel(ctx)
}

// embeddingError maps a failed embedding call onto core.ErrEmbeddingUnavailable.
// Cancellation by the caller is passed through unchanged.
func (s *Searcher) embeddingError(ctx context.Context, what string, err error) error {
	if errors.Is(err, core.ErrEmbeddingUnavailable) {
		return fmt.Errorf("%s: %w", what, err)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", core.ErrEmbeddingUnavailable, what, err)
}

// dedupeHits keeps the first (nearest) hit for each profile.
func dedupeHits(hits []index.Hit) []index.Hit {
	seen := make(map[string]bool, len(hits))
	out := make([]index.Hit, 0, len(hits))
	for _, h := range hits {
		key := h.Chunk.Metadata[core.MetaUserID]
		if key == "" {
			key = fmt.Sprintf("chunk:%d", h.Chunk.Id)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}
