package profiles

import (
	"testing"

	"github.com/poiesic/expertfind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDocument(t *testing.T) {
	record := core.ProfileRecord{
		ID:                42,
		FirstName:         "Grace",
		LastName:          "Hopper",
		Expertise:         "Compilers",
		YearsOfExperience: "30",
		Organization:      "US Navy",
		FieldOfInterest:   "Programming languages",
		Requirements:      "On-site",
	}

	doc := ToDocument(record)

	assert.Equal(t,
		"Expertise: Compilers\nYears of Experience: 30\nOrganization: US Navy\nField of Interest: Programming languages\nRequirements: On-site",
		doc.Body)

	assert.Equal(t, map[string]string{
		"user_id":             "42",
		"first_name":          "Grace",
		"last_name":           "Hopper",
		"expertise":           "Compilers",
		"years_of_experience": "30",
		"organization_detail": "US Navy",
		"field_of_interest":   "Programming languages",
		"requirements":        "On-site",
	}, doc.Metadata)
}

func TestToDocuments(t *testing.T) {
	records := []core.ProfileRecord{
		{ID: 1, FirstName: "A"},
		{ID: 2, FirstName: "B"},
	}

	docs := ToDocuments(records)
	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].Metadata[core.MetaUserID])
	assert.Equal(t, "2", docs[1].Metadata[core.MetaUserID])

	assert.Empty(t, ToDocuments(nil))
}
