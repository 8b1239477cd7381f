package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/expertfind/core"
)

// Extraction is the outcome of fail-open criteria extraction.
// Either Criteria was parsed from the model (Cause is nil), or Criteria is
// empty and Cause records why.
type Extraction struct {
	Criteria core.SearchCriteria
	Cause    error
}

// Parsed reports whether the criteria came from the model.
func (e Extraction) Parsed() bool {
	return e.Cause == nil
}

// ExtractOrEmpty runs the extractor under timeout and never fails.
// Any error, including a timeout, yields empty criteria with the cause logged.
// A non-positive timeout disables the deadline.
func ExtractOrEmpty(ctx context.Context, extractor CriteriaExtractor, text string, timeout time.Duration, logger *slog.Logger) Extraction {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	criteria, err := extractor.ExtractCriteria(ctx, text)
	if err != nil {
		logger.Warn("criteria extraction failed, continuing without filters", "err", err)
		return Extraction{Criteria: core.SearchCriteria{}, Cause: err}
	}
	return Extraction{Criteria: criteria}
}
