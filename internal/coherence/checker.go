// Package coherence runs the document completeness and cross-document
// consistency checks on a dossier. Rules are independent functions over a
// shared context; each contributes issues keyed by a stable code. The rule
// order is fixed so results are deterministic for a given input and date.
package coherence

import (
	"time"

	"github.com/visado/visado/internal/checklist"
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

var disclaimers = []string{
	"These checks are generic: the official document list depends on the country, the visa, the nationality and the context.",
	"No falsification: when something is missing or weak, the answer is to improve the dossier, never to fabricate documents.",
	"Date and budget checks are heuristics: they detect inconsistencies, they do not replace official requirements.",
}

var rules = []func(*checkContext){
	checkPassport,
	checkBank,
	checkInsurance,
	checkInvitation,
	checkAccommodation,
	checkItinerary,
	checkEmployment,
	checkSponsor,
	checkTripWindow,
	checkPayslips,
	checkCivilStatus,
	checkAddresses,
}

// CheckDocuments runs the full rule set against today's date.
func CheckDocuments(documents []models.Document, visaType, destinationRegion string) *models.DocumentCheckResult {
	return CheckDocumentsAt(documents, visaType, destinationRegion, time.Now())
}

// CheckDocumentsAt runs the full rule set against an explicit reference
// date. The date is read once; every rule sees the same "today".
func CheckDocumentsAt(documents []models.Document, visaType, destinationRegion string, today time.Time) *models.DocumentCheckResult {
	ctx := newCheckContext(documents, visaType, destinationRegion, today)

	required := checklist.RequiredDocuments(visaType, destinationRegion)
	// Empty slices, not nil: both fields serialize as [] on the wire.
	missing := make([]models.DocumentType, 0, len(required))
	for _, t := range required {
		if len(ctx.byType[t]) == 0 {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		evidence := make([]models.DocumentEvidence, 0, len(missing))
		for _, t := range missing {
			evidence = append(evidence, models.DocumentEvidence{
				DocType:      string(t),
				ExtractedKey: "document",
				Present:      false,
				Note:         "Document absent (template).",
			})
		}
		ctx.addIssue(models.DocumentIssue{
			Severity: models.SeverityRisk,
			Code:     "MISSING_REQUIRED_DOCS",
			Message:  "Potentially required documents missing (generic template).",
			Why: []string{
				"Refusals often come from missing or incomplete documents.",
				"This template is generic: the official list depends on country, visa and nationality.",
			},
			SuggestedFix: []string{"Check the official checklist (embassy or government) and complete the dossier before submitting."},
			Evidence:     evidence,
		})
	}

	for _, rule := range rules {
		rule(ctx)
	}

	issues := ctx.issues
	if issues == nil {
		issues = []models.DocumentIssue{}
	}
	return &models.DocumentCheckResult{
		MissingDocumentTypes: missing,
		Issues:               issues,
		Assumptions:          normalize.Dedup(ctx.assumptions),
		Disclaimers:          disclaimers,
	}
}
