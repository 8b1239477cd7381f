// Package stats summarizes the similarity scores of a result bucket.
package stats

import (
	"math"

	"github.com/poiesic/expertfind/core"
)

const (
	// HighScore is the lower bound of the high histogram bin.
	HighScore = 0.8
	// MediumScore is the lower bound of the medium histogram bin.
	MediumScore = 0.5

	// epsilon keeps the entropy log finite for zero scores.
	epsilon = 1e-10
)

// Summarize computes descriptive statistics over results.
// Empty input yields an all-zero summary.
func Summarize(results []core.RetrievedResult) core.MetricsSummary {
	if len(results) == 0 {
		return core.MetricsSummary{}
	}

	scores := make([]float64, len(results))
	var cosineSum float64
	for i, r := range results {
		scores[i] = r.SimilarityScore
		cosineSum += r.CosineSimilarity
	}

	mean := Mean(scores)
	summary := core.MetricsSummary{
		TotalResults:            len(results),
		AverageScore:            mean,
		MaxScore:                scores[0],
		MinScore:                scores[0],
		ScoreStd:                stdDev(scores, mean),
		Perplexity:              Perplexity(scores),
		AverageCosineSimilarity: cosineSum / float64(len(results)),
	}

	for _, s := range scores {
		summary.MaxScore = math.Max(summary.MaxScore, s)
		summary.MinScore = math.Min(summary.MinScore, s)
		switch {
		case s >= HighScore:
			summary.ScoreDistribution.High++
		case s >= MediumScore:
			summary.ScoreDistribution.Medium++
		default:
			summary.ScoreDistribution.Low++
		}
	}
	return summary
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64, mean float64) float64 {
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// Perplexity treats scores as a distribution (each score over their sum)
// and returns exp of its entropy. n equal scores give n.
// It returns 0 for no scores or a non-positive sum.
func Perplexity(scores []float64) float64 {
	var total float64
	for _, s := range scores {
		total += s
	}
	if len(scores) == 0 || total <= 0 {
		return 0
	}

	var entropy float64
	for _, s := range scores {
		p := s / total
		entropy -= p * math.Log(p+epsilon)
	}
	return math.Exp(entropy)
}
