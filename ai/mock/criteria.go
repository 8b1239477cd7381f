package mock

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/poiesic/expertfind/core"
)

// MockCriteriaExtractor is a test double for ai.CriteriaExtractor.
// It allows custom behavior injection via function fields.
type MockCriteriaExtractor struct {
	// ExtractCriteriaFunc is called by ExtractCriteria if set.
	// If nil, uses a small keyword heuristic.
	ExtractCriteriaFunc func(ctx context.Context, text string) (core.SearchCriteria, error)

	callCount atomic.Int64
}

var (
	yearsPattern = regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)`)
	atPattern    = regexp.MustCompile(`\b[Aa]t\s+([A-Z][\w.&-]*(?:\s+[A-Z][\w.&-]*)*)`)
	inPattern    = regexp.MustCompile(`\b[Ee]xperts?\s+in\s+([A-Z][\w-]*(?:\s+[A-Z][\w-]*)*)`)
)

// NewMockCriteriaExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockCriteriaExtractor() *MockCriteriaExtractor {
	return &MockCriteriaExtractor{}
}

// ExtractCriteria returns scripted criteria, or a heuristic reading of text.
// Default behavior: "N years" sets the minimum, "at Org" sets organization,
// "experts in Topic" sets expertise. Capitalized words delimit names.
func (m *MockCriteriaExtractor) ExtractCriteria(ctx context.Context, text string) (core.SearchCriteria, error) {
	m.callCount.Add(1)

	if m.ExtractCriteriaFunc != nil {
		return m.ExtractCriteriaFunc(ctx, text)
	}

	var criteria core.SearchCriteria
	if match := yearsPattern.FindStringSubmatch(strings.ToLower(text)); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			criteria.YearsOfExperience = &n
		}
	}
	if match := atPattern.FindStringSubmatch(text); match != nil {
		criteria.Organization = []string{match[1]}
	}
	if match := inPattern.FindStringSubmatch(text); match != nil {
		criteria.Expertise = []string{match[1]}
	}
	return criteria, nil
}

// CallCount returns the number of times ExtractCriteria was called.
func (m *MockCriteriaExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockCriteriaExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractCriteriaFunc = nil
}
