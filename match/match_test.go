package match

import (
	"testing"

	"github.com/poiesic/expertfind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func years(n int) *int { return &n }

func names(results []core.RetrievedResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Expert
	}
	return out
}

func TestScore(t *testing.T) {
	r := core.RetrievedResult{
		Expert:            "Ada Lovelace",
		Expertise:         "Cloud Computing, Kubernetes",
		YearsOfExperience: "12",
		Organization:      "AppGenius Inc.",
		FieldOfInterest:   "Distributed systems",
		Requirements:      "",
	}

	tests := []struct {
		name           string
		criteria       core.SearchCriteria
		wantMatched    int
		wantApplicable int
	}{
		{name: "empty", criteria: core.SearchCriteria{}},
		{name: "years satisfied", criteria: core.SearchCriteria{YearsOfExperience: years(10)}, wantMatched: 1, wantApplicable: 1},
		{name: "years boundary", criteria: core.SearchCriteria{YearsOfExperience: years(12)}, wantMatched: 1, wantApplicable: 1},
		{name: "years short", criteria: core.SearchCriteria{YearsOfExperience: years(13)}, wantApplicable: 1},
		{name: "years zero is no filter", criteria: core.SearchCriteria{YearsOfExperience: years(0)}},
		{name: "case-insensitive substring", criteria: core.SearchCriteria{Organization: []string{"appgenius"}}, wantMatched: 1, wantApplicable: 1},
		{name: "any value matches", criteria: core.SearchCriteria{Expertise: []string{"Rust", "kubernetes"}}, wantMatched: 1, wantApplicable: 1},
		{name: "no value matches", criteria: core.SearchCriteria{Expertise: []string{"Rust"}}, wantApplicable: 1},
		{name: "result field empty is inapplicable", criteria: core.SearchCriteria{Requirements: []string{"mentor"}}},
		{name: "blank values are inapplicable", criteria: core.SearchCriteria{Organization: []string{"  "}}},
		{
			name: "all fields",
			criteria: core.SearchCriteria{
				YearsOfExperience: years(5),
				Expertise:         []string{"cloud"},
				Organization:      []string{"Google"},
				FieldOfInterest:   []string{"systems"},
				Requirements:      []string{"funding"},
			},
			wantMatched:    3,
			wantApplicable: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, applicable := Score(r, tt.criteria)
			assert.Equal(t, tt.wantMatched, matched)
			assert.Equal(t, tt.wantApplicable, applicable)
		})
	}
}

func TestScore_NonNumericYears(t *testing.T) {
	c := core.SearchCriteria{YearsOfExperience: years(3)}

	for _, y := range []string{"five", "5+", "4.5", "about 10"} {
		matched, applicable := Score(core.RetrievedResult{YearsOfExperience: y}, c)
		assert.Equal(t, 0, matched, y)
		assert.Equal(t, 1, applicable, y)
	}

	matched, _ := Score(core.RetrievedResult{YearsOfExperience: " 7 "}, c)
	assert.Equal(t, 1, matched)
}

func TestPercentage(t *testing.T) {
	r := core.RetrievedResult{Expertise: "Go", Organization: "Acme"}
	assert.Equal(t, 0.0, Percentage(r, core.SearchCriteria{}))
	assert.Equal(t, 0.5, Percentage(r, core.SearchCriteria{Expertise: []string{"go"}, Organization: []string{"Initech"}}))
	assert.Equal(t, 1.0, Percentage(r, core.SearchCriteria{Expertise: []string{"go"}}))
}

func TestClassify_EmptyCriteriaDropsEverything(t *testing.T) {
	results := []core.RetrievedResult{
		{Expert: "A", Expertise: "Go", Organization: "Acme", YearsOfExperience: "10"},
		{Expert: "B", Expertise: "Rust"},
	}

	exact, recommended := Classify(results, core.SearchCriteria{})
	assert.Empty(t, exact)
	assert.Empty(t, recommended)
	assert.NotNil(t, exact)
	assert.NotNil(t, recommended)
}

func TestClassify_GoogleScenario(t *testing.T) {
	results := []core.RetrievedResult{
		{Expert: "Googler", Organization: "Google Inc."},
		{Expert: "Softie", Organization: "Microsoft"},
	}
	criteria := core.SearchCriteria{Organization: []string{"Google"}}

	exact, recommended := Classify(results, criteria)
	require.Len(t, exact, 1)
	assert.Equal(t, "Googler", exact[0].Expert)
	assert.Equal(t, 1.0, exact[0].MatchPercentage)
	assert.Empty(t, recommended)
}

func TestClassify_Buckets(t *testing.T) {
	criteria := core.SearchCriteria{
		YearsOfExperience: years(5),
		Expertise:         []string{"cloud"},
		Organization:      []string{"acme"},
		FieldOfInterest:   []string{"ai"},
	}

	results := []core.RetrievedResult{
		// 2/4
		{Expert: "half", YearsOfExperience: "6", Expertise: "Cloud", Organization: "Other", FieldOfInterest: "Biology"},
		// 4/4
		{Expert: "all", YearsOfExperience: "9", Expertise: "cloud ops", Organization: "ACME corp", FieldOfInterest: "AI"},
		// 1/4
		{Expert: "quarter", YearsOfExperience: "1", Expertise: "cloud", Organization: "Other", FieldOfInterest: "Bio"},
		// 3/4
		{Expert: "three", YearsOfExperience: "5", Expertise: "cloud", Organization: "acme", FieldOfInterest: "Bio"},
		// 2/3, organization inapplicable
		{Expert: "twothirds", YearsOfExperience: "2", Expertise: "Cloud", FieldOfInterest: "AI"},
		// 2/4, ties with "half" and must stay behind it
		{Expert: "half2", YearsOfExperience: "10", Expertise: "nope", Organization: "acme", FieldOfInterest: "Bio"},
		// 1/1, only years applicable
		{Expert: "yearsonly", YearsOfExperience: "30"},
	}

	exact, recommended := Classify(results, criteria)

	assert.Equal(t, []string{"all", "yearsonly"}, names(exact))
	for _, r := range exact {
		assert.Equal(t, 1.0, r.MatchPercentage)
	}

	assert.Equal(t, []string{"three", "twothirds", "half", "half2"}, names(recommended))
	for i, r := range recommended {
		assert.GreaterOrEqual(t, r.MatchPercentage, RecommendedThreshold)
		assert.Less(t, r.MatchPercentage, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, r.MatchPercentage, recommended[i-1].MatchPercentage)
		}
	}

	// input untouched
	for _, r := range results {
		assert.Zero(t, r.MatchPercentage)
	}
}

func TestClassify_ExactNeverRecommended(t *testing.T) {
	criteria := core.SearchCriteria{Expertise: []string{"x"}, Organization: []string{"y"}}
	results := []core.RetrievedResult{
		{Expert: "a", Expertise: "X", Organization: "Y"},
		{Expert: "b", Expertise: "xx"},
		{Expert: "c", Organization: "yy"},
	}

	exact, recommended := Classify(results, criteria)
	assert.Equal(t, []string{"a", "b", "c"}, names(exact))
	assert.Empty(t, recommended)
}
