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


// Package expertfind answers natural-language queries over expert profiles
// with a persisted vector index and criteria-based ranking.
package expertfind

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/ai/openai"
	"github.com/poiesic/expertfind/config"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/index"
	"github.com/poiesic/expertfind/indexer"
	"github.com/poiesic/expertfind/profiles"
	"github.com/poiesic/expertfind/search"
	"github.com/poiesic/expertfind/storage"
	"github.com/poiesic/expertfind/storage/badger"
	"github.com/poiesic/expertfind/telemetry"
)

// Engine answers expert queries against a loaded index.
// It is safe for concurrent use.
type Engine struct {
	index    *index.Index
	manifest storage.Manifest
	provider ai.AIProvider
	searcher *search.Searcher
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// EngineOption configures Open.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider ai.AIProvider
	source   indexer.ProfileSource
	repo     storage.IndexRepository
	metrics  *telemetry.Metrics
	progress io.Writer
	force    bool
	logger   *slog.Logger
}

// WithProvider uses provider instead of connecting to the configured
// OpenAI-compatible hosts. The engine closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithProfileSource reads profiles from source instead of MySQL.
func WithProfileSource(source indexer.ProfileSource) EngineOption {
	return func(o *engineOptions) {
		o.source = source
	}
}

// WithRepository persists the index in repo instead of the configured
// directory. The caller keeps ownership of repo.
func WithRepository(repo storage.IndexRepository) EngineOption {
	return func(o *engineOptions) {
		o.repo = repo
	}
}

// WithMetrics records embedding, query and index metrics.
func WithMetrics(metrics *telemetry.Metrics) EngineOption {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithProgress writes build progress to w.
func WithProgress(w io.Writer) EngineOption {
	return func(o *engineOptions) {
		o.progress = w
	}
}

// WithForceRebuild rebuilds the index even if a usable one is persisted.
func WithForceRebuild(force bool) EngineOption {
	return func(o *engineOptions) {
		o.force = force
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// Open loads the persisted index, or builds it from the profile store, and
// returns an engine ready to query.
func Open(ctx context.Context, cfg config.Config, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(cfg.AIConfig())
		if err != nil {
			return nil, err
		}
	}
	if options.metrics != nil {
		provider = telemetry.InstrumentProvider(provider, options.metrics)
	}

	ix, manifest, err := loadIndex(ctx, cfg, provider, options)
	if err != nil {
		provider.Close()
		return nil, err
	}

	searchOpts, err := cfg.SearchOptions()
	if err != nil {
		provider.Close()
		return nil, err
	}
	searchOpts = append(searchOpts, search.WithLogger(options.logger))

	searcher, err := search.NewSearcher(ix, provider, searchOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	if options.metrics != nil {
		options.metrics.IndexEntries.Set(float64(ix.Len()))
	}

	return &Engine{
		index:    ix,
		manifest: manifest,
		provider: provider,
		searcher: searcher,
		metrics:  options.metrics,
		logger:   options.logger,
	}, nil
}

// loadIndex opens the repository only for the duration of load or build,
// so the index directory is not held open while serving.
func loadIndex(ctx context.Context, cfg config.Config, provider ai.AIProvider, options *engineOptions) (*index.Index, storage.Manifest, error) {
	repo := options.repo
	if repo == nil {
		var err error
		repo, err = badger.NewIndexRepository(cfg.Index.Path)
		if err != nil {
			return nil, storage.Manifest{}, err
		}
		defer repo.Close()
	}

	source := options.source
	if source == nil {
		source = &storeSource{config: cfg.ProfilesConfig()}
	}

	splitter, err := cfg.Splitter()
	if err != nil {
		return nil, storage.Manifest{}, err
	}

	builderOpts := []indexer.Option{
		indexer.WithLogger(options.logger),
		indexer.WithSplitter(splitter),
	}
	if options.progress != nil {
		builderOpts = append(builderOpts, indexer.WithProgress(options.progress))
	}

	builder, err := indexer.NewBuilder(source, provider.Embedder(), repo, cfg.IndexerConfig(), builderOpts...)
	if err != nil {
		return nil, storage.Manifest{}, err
	}
	defer builder.Release()

	return builder.LoadOrBuild(ctx, options.force)
}

// Search runs one query. k <= 0 uses the configured top_k.
func (e *Engine) Search(ctx context.Context, query string, k int) (*core.SearchResponse, error) {
	if e.metrics != nil {
		return e.searcher.QueryWithMonitor(ctx, query, k, e.metrics.NewQueryMonitor())
	}
	return e.searcher.Query(ctx, query, k)
}

// Manifest describes the loaded index.
func (e *Engine) Manifest() storage.Manifest {
	return e.manifest
}

// Len returns the number of indexed chunks.
func (e *Engine) Len() int {
	return e.index.Len()
}

func (e *Engine) Close() error {
	e.searcher.Release()
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}

// ReadManifest returns the manifest of the index persisted at path without
// loading its entries.
func ReadManifest(ctx context.Context, path string) (storage.Manifest, error) {
	if !badger.Exists(path) {
		return storage.Manifest{}, fmt.Errorf("%w: %s", core.ErrIndexNotFound, path)
	}
	repo, err := badger.NewIndexRepository(path)
	if err != nil {
		return storage.Manifest{}, err
	}
	defer repo.Close()
	return repo.Manifest(ctx)
}

// storeSource connects to MySQL only when the index has to be built.
type storeSource struct {
	config profiles.Config
}

func (s *storeSource) FetchAll(ctx context.Context) ([]core.ProfileRecord, error) {
	store, err := profiles.Open(ctx, s.config)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.FetchAll(ctx)
}
