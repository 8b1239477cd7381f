package index

import (
	"fmt"
	"math"
	"strings"
)

// Metric names the distance function used by an index.
type Metric string

const (
	// MetricL2 is squared Euclidean distance.
	MetricL2 Metric = "l2"
	// MetricCosine is one minus cosine similarity.
	MetricCosine Metric = "cosine"
)

// ParseMetric converts a configuration value into a Metric.
// An empty string selects MetricL2.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case "", MetricL2:
		return MetricL2, nil
	case MetricCosine:
		return MetricCosine, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Valid reports whether m is a supported metric.
func (m Metric) Valid() bool {
	return m == MetricL2 || m == MetricCosine
}

// Distance returns the distance between a and b under m.
// Vectors must have equal length.
func (m Metric) Distance(a, b []float32) float32 {
	if m == MetricCosine {
		return float32(1 - CosineSimilarity(a, b))
	}
	return SquaredL2(a, b)
}

// SquaredL2 returns the squared Euclidean distance between a and b.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// CosineSimilarity returns the cosine of the angle between a and b.
// It returns 0 when either vector has zero magnitude or lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// rounding can push identical vectors slightly past 1
	return math.Max(-1, math.Min(1, sim))
}
