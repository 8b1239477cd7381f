package expertfind

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/expertfind/ai/mock"
	"github.com/poiesic/expertfind/config"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/storage"
	"github.com/poiesic/expertfind/storage/badger"
	"github.com/poiesic/expertfind/telemetry"
)

type staticSource struct {
	records []core.ProfileRecord
	err     error
	calls   atomic.Int32
}

func (s *staticSource) FetchAll(context.Context) ([]core.ProfileRecord, error) {
	s.calls.Add(1)
	return s.records, s.err
}

func experts() *staticSource {
	return &staticSource{records: []core.ProfileRecord{
		{ID: 1, FirstName: "Grace", LastName: "Hopper", Expertise: "Search infrastructure", YearsOfExperience: "8", Organization: "Google"},
		{ID: 2, FirstName: "Mads", LastName: "Torgersen", Expertise: "Compilers", YearsOfExperience: "15", Organization: "Microsoft"},
	}}
}

func memoryRepo(t *testing.T) storage.IndexRepository {
	t.Helper()
	repo, err := badger.NewMemoryIndexRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestOpenAndSearch(t *testing.T) {
	ctx := context.Background()
	source := experts()
	metrics := telemetry.NewMetrics()

	engine, err := Open(ctx, config.Default(),
		WithProvider(mock.NewMockProvider()),
		WithProfileSource(source),
		WithRepository(memoryRepo(t)),
		WithMetrics(metrics),
	)
	require.NoError(t, err)
	defer engine.Close()

	assert.Equal(t, 2, engine.Len())
	assert.Equal(t, 2, engine.Manifest().Count)
	assert.Equal(t, "all-minilm", engine.Manifest().EmbeddingModel)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.IndexEntries))

	resp, err := engine.Search(ctx, "Find experts who worked at Google", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Google"}, resp.SearchCriteria.Organization)
	require.Len(t, resp.ExactMatches.Results, 1)
	assert.Equal(t, "Grace Hopper", resp.ExactMatches.Results[0].Expert)
	assert.Equal(t, 0.8, resp.ExactMatches.Results[0].SimilarityScore)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SearchesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClassifiedResultsTotal.WithLabelValues("exact")))
	assert.Positive(t, testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("batch", "ok")))

	_, err = engine.Search(ctx, "   ", 0)
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SearchesTotal.WithLabelValues("error")))
}

func TestOpenLogging(t *testing.T) {
	ctx := context.Background()

	t.Run("component tagged once", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		engine, err := Open(ctx, config.Default(),
			WithProvider(mock.NewMockProvider()),
			WithProfileSource(experts()),
			WithRepository(memoryRepo(t)),
			WithLogger(logger),
		)
		require.NoError(t, err)
		defer engine.Close()
		_, err = engine.Search(ctx, "Find experts who worked at Google", 0)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "component=indexer")
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			assert.LessOrEqual(t, strings.Count(line, "component="), 1, line)
		}
	})

	t.Run("nil logger", func(t *testing.T) {
		engine, err := Open(ctx, config.Default(),
			WithProvider(mock.NewMockProvider()),
			WithProfileSource(experts()),
			WithRepository(memoryRepo(t)),
			WithLogger(nil),
		)
		require.NoError(t, err)
		require.NoError(t, engine.Close())
	})
}

func TestOpenReusesPersistedIndex(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Index.Path = filepath.Join(t.TempDir(), "index")
	source := experts()

	open := func(opts ...EngineOption) *Engine {
		t.Helper()
		opts = append(opts, WithProvider(mock.NewMockProvider()), WithProfileSource(source))
		engine, err := Open(ctx, cfg, opts...)
		require.NoError(t, err)
		require.NoError(t, engine.Close())
		return engine
	}

	first := open()
	assert.Equal(t, int32(1), source.calls.Load())

	manifest, err := ReadManifest(ctx, cfg.Index.Path)
	require.NoError(t, err)
	assert.Equal(t, first.Manifest().Count, manifest.Count)
	assert.Equal(t, first.Manifest().Dimension, manifest.Dimension)

	open()
	assert.Equal(t, int32(1), source.calls.Load(), "second open loads from disk")

	open(WithForceRebuild(true))
	assert.Equal(t, int32(2), source.calls.Load())

	cfg.AI.EmbeddingModel = "nomic-embed-text"
	open()
	assert.Equal(t, int32(3), source.calls.Load(), "model change rebuilds")
}

func TestOpenFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("store unavailable", func(t *testing.T) {
		provider := mock.NewMockProvider()
		source := &staticSource{err: core.ErrStoreUnavailable}

		_, err := Open(ctx, config.Default(), WithProvider(provider), WithProfileSource(source), WithRepository(memoryRepo(t)))
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
		assert.True(t, provider.(*mock.MockProvider).Closed())
	})

	t.Run("embedding down", func(t *testing.T) {
		provider := mock.NewMockProvider()
		emb := provider.(*mock.MockProvider).GetMockEmbedder()
		emb.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return nil, errors.New("connection refused")
		}
		cfg := config.Default()
		cfg.Index.MaxRetries = 1

		_, err := Open(ctx, cfg, WithProvider(provider), WithProfileSource(experts()), WithRepository(memoryRepo(t)))
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable)
	})

	t.Run("invalid search options", func(t *testing.T) {
		cfg := config.Default()
		cfg.Search.SimilarityMode = "fuzzy"

		_, err := Open(ctx, cfg, WithProvider(mock.NewMockProvider()), WithProfileSource(experts()), WithRepository(memoryRepo(t)))
		assert.Error(t, err)
	})
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, core.ErrIndexNotFound)
}

func TestClose(t *testing.T) {
	provider := mock.NewMockProvider()
	engine, err := Open(context.Background(), config.Default(),
		WithProvider(provider), WithProfileSource(experts()), WithRepository(memoryRepo(t)))
	require.NoError(t, err)

	require.NoError(t, engine.Close())
	assert.True(t, provider.(*mock.MockProvider).Closed())
}
