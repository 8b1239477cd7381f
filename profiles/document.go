package profiles

import (
	"fmt"
	"strconv"

	"github.com/poiesic/expertfind/core"
)

const bodyTemplate = "Expertise: %s\nYears of Experience: %s\nOrganization: %s\nField of Interest: %s\nRequirements: %s"

// ToDocument renders a profile as a semantic document.
// Metadata carries every field verbatim for result reconstruction.
func ToDocument(record core.ProfileRecord) core.SemanticDocument {
	return core.SemanticDocument{
		Body: fmt.Sprintf(bodyTemplate,
			record.Expertise,
			record.YearsOfExperience,
			record.Organization,
			record.FieldOfInterest,
			record.Requirements),
		Metadata: map[string]string{
			core.MetaUserID:            strconv.FormatInt(record.ID, 10),
			core.MetaFirstName:         record.FirstName,
			core.MetaLastName:          record.LastName,
			core.MetaExpertise:         record.Expertise,
			core.MetaYearsOfExperience: record.YearsOfExperience,
			core.MetaOrganization:      record.Organization,
			core.MetaFieldOfInterest:   record.FieldOfInterest,
			core.MetaRequirements:      record.Requirements,
		},
	}
}

// ToDocuments converts records in order.
func ToDocuments(records []core.ProfileRecord) []core.SemanticDocument {
	docs := make([]core.SemanticDocument, len(records))
	for i, record := range records {
		docs[i] = ToDocument(record)
	}
	return docs
}
