package search

import (
	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/index"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// Hooks may be called from different goroutines but never concurrently for one query.
type SearchMonitor interface {
	Start(query string)
	AfterRetrieval(hits []index.Hit)
	AfterExtraction(extraction ai.Extraction)
	AfterClassification(exact, recommended []core.RetrievedResult, dropped int)
	Finish(response *core.SearchResponse, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                         {}
func (n *noopMonitor) AfterRetrieval(_ []index.Hit)                           {}
func (n *noopMonitor) AfterExtraction(_ ai.Extraction)                        {}
func (n *noopMonitor) AfterClassification(_, _ []core.RetrievedResult, _ int) {}
func (n *noopMonitor) Finish(_ *core.SearchResponse, _ error)                 {}
