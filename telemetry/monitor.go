package telemetry

import (
	"time"

	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/index"
	"github.com/poiesic/expertfind/search"
)

// QueryMonitor records one query. Use a fresh one per query.
type QueryMonitor struct {
	metrics *Metrics
	start   time.Time
}

var _ search.SearchMonitor = (*QueryMonitor)(nil)

// NewQueryMonitor returns a monitor for a single query.
func (m *Metrics) NewQueryMonitor() *QueryMonitor {
	return &QueryMonitor{metrics: m}
}

func (q *QueryMonitor) Start(_ string) {
	q.start = time.Now()
}

func (q *QueryMonitor) AfterRetrieval(_ []index.Hit) {}

func (q *QueryMonitor) AfterExtraction(e ai.Extraction) {
	if !e.Parsed() {
		q.metrics.ExtractionFallbacksTotal.Inc()
	}
}

func (q *QueryMonitor) AfterClassification(exact, recommended []core.RetrievedResult, dropped int) {
	q.metrics.ClassifiedResultsTotal.WithLabelValues("exact").Add(float64(len(exact)))
	q.metrics.ClassifiedResultsTotal.WithLabelValues("recommended").Add(float64(len(recommended)))
	q.metrics.ClassifiedResultsTotal.WithLabelValues("dropped").Add(float64(dropped))
}

func (q *QueryMonitor) Finish(_ *core.SearchResponse, err error) {
	q.metrics.SearchDuration.Observe(time.Since(q.start).Seconds())
	q.metrics.SearchesTotal.WithLabelValues(status(err)).Inc()
}
