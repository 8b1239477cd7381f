package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/expertfind/core"
)

// writeReport prints a response for a terminal.
func writeReport(w io.Writer, query string, resp *core.SearchResponse, err error) {
	fmt.Fprintf(w, "\nQuery: %s\n", query)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintln(w, "\nExtracted Search Criteria:")
	c := resp.SearchCriteria
	if c.IsEmpty() {
		fmt.Fprintln(w, "(none)")
	}
	if len(c.Expertise) > 0 {
		fmt.Fprintf(w, "Expertise: %s\n", strings.Join(c.Expertise, ", "))
	}
	if n := c.MinYears(); n > 0 {
		fmt.Fprintf(w, "Years of Experience: %d+\n", n)
	}
	if len(c.Organization) > 0 {
		fmt.Fprintf(w, "Organizations: %s\n", strings.Join(c.Organization, ", "))
	}
	if len(c.FieldOfInterest) > 0 {
		fmt.Fprintf(w, "Fields of Interest: %s\n", strings.Join(c.FieldOfInterest, ", "))
	}
	if len(c.Requirements) > 0 {
		fmt.Fprintf(w, "Requirements: %s\n", strings.Join(c.Requirements, ", "))
	}

	writeBucket(w, "Exact", resp.ExactMatches, false)
	writeBucket(w, "Recommended", resp.RecommendedMatches, true)
}

func writeBucket(w io.Writer, name string, b core.ResultBucket, showMatch bool) {
	fmt.Fprintf(w, "\n=== %s Matches ===\n", name)
	fmt.Fprintf(w, "Total %s Matches: %d\n", name, b.Metrics.TotalResults)
	if len(b.Results) == 0 {
		fmt.Fprintf(w, "No %s matches found.\n", strings.ToLower(name))
		return
	}

	m := b.Metrics
	fmt.Fprintf(w, "\n%s Match Metrics:\n", name)
	fmt.Fprintf(w, "Average Similarity Score: %.3f\n", m.AverageScore)
	fmt.Fprintf(w, "Average Cosine Similarity: %.3f\n", m.AverageCosineSimilarity)
	fmt.Fprintf(w, "Perplexity Score: %.3f\n", m.Perplexity)
	fmt.Fprintf(w, "Score Distribution: high %d, medium %d, low %d\n",
		m.ScoreDistribution.High, m.ScoreDistribution.Medium, m.ScoreDistribution.Low)

	fmt.Fprintf(w, "\n%s Experts:\n", name)
	for i, r := range b.Results {
		fmt.Fprintf(w, "\n%d. Expert: %s\n", i+1, r.Expert)
		if showMatch {
			fmt.Fprintf(w, "   Match Percentage: %.1f%%\n", r.MatchPercentage*100)
		}
		fmt.Fprintf(w, "   Similarity Score: %.3f\n", r.SimilarityScore)
		fmt.Fprintf(w, "   Cosine Similarity: %.3f\n", r.CosineSimilarity)
		fmt.Fprintf(w, "   Expertise: %s\n", r.Expertise)
		fmt.Fprintf(w, "   Years of Experience: %s\n", r.YearsOfExperience)
		fmt.Fprintf(w, "   Organization: %s\n", r.Organization)
		fmt.Fprintf(w, "   Field of Interest: %s\n", r.FieldOfInterest)
		fmt.Fprintf(w, "   Requirements: %s\n", r.Requirements)
	}
}
