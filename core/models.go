package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed chunks.
// It is derived from chunk content so rebuilding an unchanged table yields the same IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Metadata keys carried by every document and chunk.
const (
	MetaUserID            = "user_id"
	MetaFirstName         = "first_name"
	MetaLastName          = "last_name"
	MetaExpertise         = "expertise"
	MetaYearsOfExperience = "years_of_experience"
	MetaOrganization      = "organization_detail"
	MetaFieldOfInterest   = "field_of_interest"
	MetaRequirements      = "requirements"
)

// ProfileRecord is one row of the expert profile table.
type ProfileRecord struct {
	ID                int64
	FirstName         string
	LastName          string
	Expertise         string
	YearsOfExperience string
	Organization      string
	FieldOfInterest   string
	Requirements      string
}

// SemanticDocument is the embeddable form of a profile: readable body text plus
// every original field kept verbatim in Metadata.
type SemanticDocument struct {
	Body     string
	Metadata map[string]string
}

// DocumentChunk is a bounded slice of a document body.
// Metadata is the complete attribute set of the source document, never a subset.
type DocumentChunk struct {
	Id       ID
	Ordinal  int // position of the chunk within its document
	Text     string
	Metadata map[string]string
}

// IndexEntry pairs a chunk with its embedding.
type IndexEntry struct {
	Chunk  DocumentChunk
	Vector []float32
}

// SearchCriteria holds the structured filters extracted from a query.
// A nil or zero YearsOfExperience means no minimum was requested.
type SearchCriteria struct {
	Expertise         []string `json:"expertise"`
	YearsOfExperience *int     `json:"years_of_experience"`
	Organization      []string `json:"organization"`
	FieldOfInterest   []string `json:"field_of_interest"`
	Requirements      []string `json:"requirements"`
}

// IsEmpty reports whether no criterion could ever apply.
func (c SearchCriteria) IsEmpty() bool {
	return c.MinYears() == 0 &&
		len(c.Expertise) == 0 &&
		len(c.Organization) == 0 &&
		len(c.FieldOfInterest) == 0 &&
		len(c.Requirements) == 0
}

// MinYears returns the requested minimum years of experience, or 0 if none.
func (c SearchCriteria) MinYears() int {
	if c.YearsOfExperience == nil {
		return 0
	}
	return *c.YearsOfExperience
}

// RetrievedResult is one candidate expert produced by a query.
type RetrievedResult struct {
	Expert            string  `json:"expert"`
	Expertise         string  `json:"expertise"`
	YearsOfExperience string  `json:"years_of_experience"`
	Organization      string  `json:"organization"`
	FieldOfInterest   string  `json:"field_of_interest"`
	Requirements      string  `json:"requirements"`
	SimilarityScore   float64 `json:"similarity_score"`
	CosineSimilarity  float64 `json:"cosine_similarity"`
	MatchPercentage   float64 `json:"match_percentage"`
}

// ResultFromMetadata builds a result from chunk metadata.
func ResultFromMetadata(meta map[string]string) RetrievedResult {
	return RetrievedResult{
		Expert:            ExpertName(meta[MetaFirstName], meta[MetaLastName]),
		Expertise:         meta[MetaExpertise],
		YearsOfExperience: meta[MetaYearsOfExperience],
		Organization:      meta[MetaOrganization],
		FieldOfInterest:   meta[MetaFieldOfInterest],
		Requirements:      meta[MetaRequirements],
	}
}

// ExpertName joins first and last name for display.
func ExpertName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// ScoreDistribution is a three-bin histogram of similarity scores.
type ScoreDistribution struct {
	High   int `json:"high"`   // score >= 0.8
	Medium int `json:"medium"` // 0.5 <= score < 0.8
	Low    int `json:"low"`    // score < 0.5
}

// MetricsSummary describes the scores of one result bucket.
type MetricsSummary struct {
	TotalResults            int               `json:"total_results"`
	AverageScore            float64           `json:"average_score"`
	MaxScore                float64           `json:"max_score"`
	MinScore                float64           `json:"min_score"`
	ScoreStd                float64           `json:"score_std"`
	Perplexity              float64           `json:"perplexity"`
	AverageCosineSimilarity float64           `json:"average_cosine_similarity"`
	ScoreDistribution       ScoreDistribution `json:"score_distribution"`
}

// ResultBucket is an ordered group of results with its summary.
type ResultBucket struct {
	Results []RetrievedResult `json:"results"`
	Metrics MetricsSummary    `json:"metrics"`
}

// SearchResponse is the successful outcome of a query.
type SearchResponse struct {
	ExactMatches       ResultBucket   `json:"exact_matches"`
	RecommendedMatches ResultBucket   `json:"recommended_matches"`
	SearchCriteria     SearchCriteria `json:"search_criteria"`
}
