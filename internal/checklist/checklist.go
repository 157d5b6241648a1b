// Package checklist resolves the document requirement template for a visa
// type and destination region. The template is keyword driven and generic;
// it stands in for a per-country rules database and is not authoritative.
package checklist

import (
	"strings"

	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// RequiredDocuments returns the ordered, de-duplicated list of document types
// expected for the given visa type and destination region. Matching is
// case-insensitive substring matching on both inputs.
func RequiredDocuments(visaType, destinationRegion string) []models.DocumentType {
	v := strings.ToLower(normalize.Text(visaType))
	d := strings.ToLower(normalize.Text(destinationRegion))

	base := []models.DocumentType{
		models.DocPassport,
		models.DocPhoto,
	}

	if strings.Contains(d, "schengen") || strings.Contains(d, "europe") {
		base = append(base,
			models.DocBankStatement,
			models.DocTravelInsurance,
			models.DocItinerary,
			models.DocAccommodationPlan,
		)
	}
	if strings.Contains(d, "uk") || strings.Contains(d, "royaume") {
		base = append(base,
			models.DocBankStatement,
			models.DocItinerary,
			models.DocAccommodationPlan,
		)
	}
	if strings.Contains(d, "us") || strings.Contains(d, "usa") {
		base = append(base, models.DocBankStatement)
	}
	if strings.Contains(v, "study") || strings.Contains(v, "étud") {
		base = append(base,
			models.DocEnrollmentLetter,
			models.DocStudentCertificate,
		)
	}
	if strings.Contains(v, "business") || strings.Contains(v, "affair") {
		base = append(base, models.DocInvitationLetter)
	}
	if strings.Contains(v, "family") || strings.Contains(v, "famill") {
		base = append(base,
			models.DocInvitationLetter,
			models.DocCivilStatus,
		)
	}

	seen := make(map[models.DocumentType]struct{}, len(base))
	out := make([]models.DocumentType, 0, len(base))
	for _, t := range base {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
