package telemetry

import (
	"context"
	"time"

	"github.com/poiesic/expertfind/ai"
)

// InstrumentedEmbedder records request counts and latency for an ai.Embedder.
type InstrumentedEmbedder struct {
	next    ai.Embedder
	metrics *Metrics
}

var _ ai.Embedder = (*InstrumentedEmbedder)(nil)

// InstrumentEmbedder wraps next.
func InstrumentEmbedder(next ai.Embedder, metrics *Metrics) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{next: next, metrics: metrics}
}

// EmbedText delegates to the wrapped embedder.
func (e *InstrumentedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	v, err := e.next.EmbedText(ctx, text)
	e.observe("single", start, err)
	return v, err
}

// EmbedTexts delegates to the wrapped embedder.
func (e *InstrumentedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	v, err := e.next.EmbedTexts(ctx, texts)
	e.observe("batch", start, err)
	return v, err
}

func (e *InstrumentedEmbedder) observe(op string, start time.Time, err error) {
	e.metrics.EmbeddingRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	e.metrics.EmbeddingRequestsTotal.WithLabelValues(op, status(err)).Inc()
}

// instrumentedProvider swaps the provider's embedder for an instrumented one.
type instrumentedProvider struct {
	ai.AIProvider
	embedder *InstrumentedEmbedder
}

// InstrumentProvider returns a provider whose embedder is instrumented.
// Close is passed through to the wrapped provider.
func InstrumentProvider(p ai.AIProvider, metrics *Metrics) ai.AIProvider {
	return &instrumentedProvider{
		AIProvider: p,
		embedder:   InstrumentEmbedder(p.Embedder(), metrics),
	}
}

func (p *instrumentedProvider) Embedder() ai.Embedder {
	return p.embedder
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
