// Package match scores retrieved experts against extracted search criteria
// and sorts them into exact and recommended buckets.
//
// A criterion applies to a result only when the criterion has a value and
// the result's corresponding field is non-empty. Inapplicable criteria count
// neither for nor against a result. The match percentage is the share of
// applicable criteria that are satisfied:
//
//   - 1.0 is an exact match
//   - at least RecommendedThreshold is a recommended match
//   - anything lower, including results with no applicable criteria, is dropped
//
// Criteria are checked in a fixed order: years of experience, expertise,
// organization, field of interest, requirements.
package match

import (
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/expertfind/core"
)

// RecommendedThreshold is the lowest match percentage kept as a recommendation.
const RecommendedThreshold = 0.5

// Score counts the applicable criteria for r and how many of them r satisfies.
func Score(r core.RetrievedResult, c core.SearchCriteria) (matched, applicable int) {
	check := func(ok bool) {
		applicable++
		if ok {
			matched++
		}
	}

	if minYears := c.MinYears(); minYears > 0 && r.YearsOfExperience != "" {
		check(satisfiesYears(r.YearsOfExperience, minYears))
	}

	fields := []struct {
		want []string
		have string
	}{
		{c.Expertise, r.Expertise},
		{c.Organization, r.Organization},
		{c.FieldOfInterest, r.FieldOfInterest},
		{c.Requirements, r.Requirements},
	}
	for _, f := range fields {
		if f.have == "" || !hasValue(f.want) {
			continue
		}
		check(containsAny(f.have, f.want))
	}
	return matched, applicable
}

// Percentage returns the share of applicable criteria r satisfies,
// or 0 when none apply.
func Percentage(r core.RetrievedResult, c core.SearchCriteria) float64 {
	matched, applicable := Score(r, c)
	if applicable == 0 {
		return 0
	}
	return float64(matched) / float64(applicable)
}

// Classify splits results into exact and recommended matches, setting
// MatchPercentage on each returned result. The input is not modified.
// Exact matches keep retrieval order. Recommended matches are sorted by
// match percentage, highest first, with ties in retrieval order.
func Classify(results []core.RetrievedResult, c core.SearchCriteria) (exact, recommended []core.RetrievedResult) {
	exact = []core.RetrievedResult{}
	recommended = []core.RetrievedResult{}

	for _, r := range results {
		matched, applicable := Score(r, c)
		if applicable == 0 {
			continue
		}
		r.MatchPercentage = float64(matched) / float64(applicable)

		switch {
		case matched == applicable:
			r.MatchPercentage = 1
			exact = append(exact, r)
		case r.MatchPercentage >= RecommendedThreshold:
			recommended = append(recommended, r)
		}
	}

	slices.SortStableFunc(recommended, func(a, b core.RetrievedResult) int {
		switch {
		case a.MatchPercentage > b.MatchPercentage:
			return -1
		case a.MatchPercentage < b.MatchPercentage:
			return 1
		}
		return 0
	})
	return exact, recommended
}

// satisfiesYears parses years as a whole number. Anything else fails the
// criterion without error.
func satisfiesYears(years string, minYears int) bool {
	n, err := strconv.Atoi(strings.TrimSpace(years))
	return err == nil && n >= minYears
}

func hasValue(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// containsAny reports whether any non-blank value occurs in field, ignoring case.
func containsAny(field string, values []string) bool {
	field = strings.ToLower(field)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && strings.Contains(field, strings.ToLower(v)) {
			return true
		}
	}
	return false
}
