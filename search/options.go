package search

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
)

// SimilarityMode selects how similarity_score is computed.
type SimilarityMode string

const (
	// ModeBaseline reports a constant score for every result.
	ModeBaseline SimilarityMode = "baseline"
	// ModeDistance derives the score from the index distance.
	ModeDistance SimilarityMode = "distance"
)

// DefaultBaseline is the constant score reported in ModeBaseline.
const DefaultBaseline = 0.8

// DefaultK is the number of neighbours retrieved when a query does not say.
const DefaultK = 5

// ParseSimilarityMode converts a configuration value into a SimilarityMode.
// An empty string selects ModeBaseline.
func ParseSimilarityMode(s string) (SimilarityMode, error) {
	switch SimilarityMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBaseline:
		return ModeBaseline, nil
	case ModeDistance:
		return ModeDistance, nil
	default:
		return "", fmt.Errorf("unknown similarity mode %q", s)
	}
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "searcher")
		return nil
	}
}

// WithPoolSize sets the worker pool size used for criteria extraction.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithSimilarityMode selects how similarity_score is computed.
func WithSimilarityMode(mode SimilarityMode) Option {
	return func(s *Searcher) error {
		if mode != ModeBaseline && mode != ModeDistance {
			return fmt.Errorf("unknown similarity mode %q", mode)
		}
		s.mode = mode
		return nil
	}
}

// WithBaseline sets the constant score used in ModeBaseline.
func WithBaseline(score float64) Option {
	return func(s *Searcher) error {
		if score < 0 || score > 1 {
			return fmt.Errorf("baseline must be in [0, 1], got %v", score)
		}
		s.baseline = score
		return nil
	}
}

// WithDefaultK sets how many neighbours are retrieved when k <= 0.
func WithDefaultK(k int) Option {
	return func(s *Searcher) error {
		if k < 1 {
			return fmt.Errorf("default k must be positive, got %d", k)
		}
		s.defaultK = k
		return nil
	}
}

// WithEmbeddingTimeout bounds each embedding call made for a query.
// Zero means no limit beyond the caller's context.
func WithEmbeddingTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		s.embeddingTimeout = d
		return nil
	}
}

// WithExtractionTimeout bounds criteria extraction. On timeout the query
// continues with empty criteria.
func WithExtractionTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		s.extractionTimeout = d
		return nil
	}
}

// WithDedupe keeps only the nearest chunk of each profile.
// By default every retrieved chunk becomes a result.
func WithDedupe(enabled bool) Option {
	return func(s *Searcher) error {
		s.dedupe = enabled
		return nil
	}
}

// WithMonitor sets the monitor used by Query.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		s.monitor = monitor
		return nil
	}
}
