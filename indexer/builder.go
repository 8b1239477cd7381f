// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/chunker"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/index"
	"github.com/poiesic/expertfind/profiles"
	"github.com/poiesic/expertfind/storage"
)

// Config holds configuration for the build phase.
type Config struct {
	// BatchSize is the number of chunks sent in each embedding call
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Workers is the number of batches embedded concurrently
	Workers int

	// Metric is the distance metric of built indexes
	Metric index.Metric

	// Normalize scales vectors to unit length before indexing
	Normalize bool

	// EmbeddingModel is recorded in the manifest; a persisted index built
	// with a different model is rebuilt
	EmbeddingModel string

	// ChunkSize and ChunkOverlap are recorded in the manifest; a persisted
	// index built with different chunking is rebuilt
	ChunkSize    int
	ChunkOverlap int

	// Splitter names the chunker kind; it is recorded in the manifest
	// alongside the chunk sizes
	Splitter string

	// LoadTimeout bounds loading a persisted index; zero means no limit
	LoadTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		BatchSize:      32,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Workers:        workers,
		Metric:         index.MetricL2,
		ChunkSize:      chunker.DefaultChunkSize,
		ChunkOverlap:   chunker.DefaultChunkOverlap,
		Splitter:       chunker.KindWindow,
		LoadTimeout:    30 * time.Second,
	}
}

// ProfileSource yields every profile to index.
// *profiles.Store implements it.
type ProfileSource interface {
	FetchAll(ctx context.Context) ([]core.ProfileRecord, error)
}

var _ ProfileSource = (*profiles.Store)(nil)

// Builder builds, saves and loads the vector index.
type Builder struct {
	source    ProfileSource
	splitter  chunker.Splitter
	repo      storage.IndexRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger.With("component", "indexer")
		return nil
	}
}

// WithProgress sets where progress lines are written.
// Default discards them.
func WithProgress(w io.Writer) Option {
	return func(b *Builder) error {
		b.progress = w
		return nil
	}
}

// WithSplitter overrides the chunker built from the config.
func WithSplitter(s chunker.Splitter) Option {
	return func(b *Builder) error {
		b.splitter = s
		return nil
	}
}

// NewBuilder creates a new builder.
// A nil config uses DefaultConfig.
func NewBuilder(source ProfileSource, embedder ai.Embedder, repo storage.IndexRepository, config *Config, opts ...Option) (*Builder, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", config.BatchSize)
	}
	if !config.Metric.Valid() {
		return nil, fmt.Errorf("unknown metric %q", config.Metric)
	}

	b := &Builder{
		source:   source,
		repo:     repo,
		config:   config,
		progress: io.Discard,
		logger:   slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.splitter == nil {
		splitter, err := chunker.New(config.Splitter, config.ChunkSize, config.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		b.splitter = splitter
	}

	pool, err := ants.NewPool(max(config.Workers, 1))
	if err != nil {
		return nil, err
	}
	b.pool = pool
	b.processor = NewBatchProcessor(embedder, config.MaxRetries, config.RetryDelay, config.Normalize)

	return b, nil
}

// Release releases the worker pool.
// The builder should not be used after calling Release.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// Build reads every profile, embeds it and saves a fresh index.
//
// Errors:
//   - core.ErrStoreUnavailable: the store could not be reached
//   - ErrNothingToIndex: the query failed or returned no usable profiles
//   - core.ErrEmbeddingUnavailable: a batch failed after all retries
func (b *Builder) Build(ctx context.Context) (*index.Index, storage.Manifest, error) {
	records, err := b.source.FetchAll(ctx)
	if err != nil {
		if errors.Is(err, core.ErrStoreQuery) {
			return nil, storage.Manifest{}, fmt.Errorf("%w: %w", ErrNothingToIndex, err)
		}
		return nil, storage.Manifest{}, err
	}

	valid := make([]core.ProfileRecord, 0, len(records))
	for i := range records {
		if err := core.ValidateProfile(&records[i]); err != nil {
			b.logger.Warn("skipping profile", "user_id", records[i].ID, "err", err)
			continue
		}
		valid = append(valid, records[i])
	}
	if len(valid) == 0 {
		return nil, storage.Manifest{}, fmt.Errorf("%w: store returned %d profiles", ErrNothingToIndex, len(records))
	}

	chunks, err := chunker.SplitAll(b.splitter, profiles.ToDocuments(valid))
	if err != nil {
		return nil, storage.Manifest{}, fmt.Errorf("chunking profiles: %w", err)
	}
	b.logger.Info("profiles chunked", "profiles", len(valid), "chunks", len(chunks))

	vectors, err := b.embedAll(ctx, chunks)
	if err != nil {
		return nil, storage.Manifest{}, err
	}

	ix, err := index.Build(chunks, vectors, b.config.Metric)
	if err != nil {
		return nil, storage.Manifest{}, fmt.Errorf("building index: %w", err)
	}

	manifest := storage.NewManifest(ix, b.config.EmbeddingModel, b.config.ChunkSize, b.config.ChunkOverlap)
	manifest.Splitter = splitterKind(b.config.Splitter)
	if err := b.repo.Save(ctx, ix, manifest); err != nil {
		return nil, storage.Manifest{}, fmt.Errorf("saving index: %w", err)
	}
	return ix, manifest, nil
}

// embedAll embeds chunks in batches on the worker pool.
// The first failing batch cancels the rest.
func (b *Builder) embedAll(parent context.Context, chunks []core.DocumentChunk) ([][]float32, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	vectors := make([][]float32, len(chunks))
	tracker := NewProgressTracker(b.progress, "chunks", len(chunks), b.config.ReportInterval)
	tracker.Start()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(chunks); start += b.config.BatchSize {
		end := min(start+b.config.BatchSize, len(chunks))
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			batch, err := b.processor.Process(ctx, chunks[start:end])
			if err != nil {
				fail(fmt.Errorf("batch %d-%d: %w", start, end, err))
				return
			}
			copy(vectors[start:end], batch)
			tracker.Increment(end - start)
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()
	tracker.Finish()

	if firstErr != nil {
		if err := parent.Err(); err != nil {
			return nil, err
		}
		if !errors.Is(firstErr, core.ErrEmbeddingUnavailable) {
			firstErr = fmt.Errorf("%w: %w", core.ErrEmbeddingUnavailable, firstErr)
		}
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// LoadOrBuild returns the persisted index if it is usable, otherwise builds
// and saves a new one. force skips loading.
// A missing, corrupt, stale or slow-to-load index triggers a rebuild.
func (b *Builder) LoadOrBuild(ctx context.Context, force bool) (*index.Index, storage.Manifest, error) {
	if !force {
		ix, manifest, err := b.load(ctx)
		if err == nil {
			if reason := b.staleReason(manifest); reason != "" {
				b.logger.Info("persisted index is stale, rebuilding", "reason", reason)
			} else {
				b.logger.Info("loaded persisted index", "entries", ix.Len(), "built_at", manifest.BuiltAt)
				return ix, manifest, nil
			}
		} else if isRecoverableLoadError(err) && ctx.Err() == nil {
			b.logger.Warn("persisted index unusable, rebuilding", "err", err)
		} else {
			return nil, storage.Manifest{}, fmt.Errorf("loading index: %w", err)
		}
	}

	start := time.Now()
	ix, manifest, err := b.Build(ctx)
	if err != nil {
		return nil, storage.Manifest{}, err
	}
	b.logger.Info("index built", "entries", ix.Len(), "dimension", ix.Dimension(), "elapsed", time.Since(start).Round(time.Millisecond))
	return ix, manifest, nil
}

func (b *Builder) load(ctx context.Context) (*index.Index, storage.Manifest, error) {
	if b.config.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.LoadTimeout)
		defer cancel()
	}
	return b.repo.Load(ctx)
}

func (b *Builder) staleReason(m storage.Manifest) string {
	switch {
	case b.config.EmbeddingModel != "" && m.EmbeddingModel != b.config.EmbeddingModel:
		return fmt.Sprintf("embedding model %q, want %q", m.EmbeddingModel, b.config.EmbeddingModel)
	case m.Metric != b.config.Metric:
		return fmt.Sprintf("metric %q, want %q", m.Metric, b.config.Metric)
	case m.ChunkSize != b.config.ChunkSize || m.ChunkOverlap != b.config.ChunkOverlap:
		return fmt.Sprintf("chunking %d/%d, want %d/%d", m.ChunkSize, m.ChunkOverlap, b.config.ChunkSize, b.config.ChunkOverlap)
	case splitterKind(m.Splitter) != splitterKind(b.config.Splitter):
		return fmt.Sprintf("splitter %q, want %q", m.Splitter, splitterKind(b.config.Splitter))
	}
	return ""
}

func splitterKind(kind string) string {
	if kind == "" {
		return chunker.KindWindow
	}
	return kind
}

func isRecoverableLoadError(err error) bool {
	return errors.Is(err, core.ErrIndexNotFound) ||
		errors.Is(err, core.ErrCorruptIndex) ||
		errors.Is(err, context.DeadlineExceeded)
}
