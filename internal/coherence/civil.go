package coherence

import (
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkCivilStatus flags a missing civil-status document when the invitation
// states a family relationship.
func checkCivilStatus(ctx *checkContext) {
	inv := ctx.firstOf(models.DocInvitationLetter)
	if inv == nil {
		return
	}
	rel := normalize.Text(inv.Field("relationship"))
	if !relationshipImpliesFamily(rel) || len(ctx.byType[models.DocCivilStatus]) > 0 {
		return
	}
	ctx.addIssue(models.DocumentIssue{
		Severity:     models.SeverityWarning,
		Code:         "CIVIL_STATUS_MISSING_FOR_FAMILY_CASE",
		Message:      "Civil status document possibly required (family relationship stated in the invitation).",
		Why:          []string{"A family relationship may require proof such as a marriage or birth certificate."},
		SuggestedFix: []string{"Add a relevant civil status document (marriage certificate, birth certificate, family record)."},
		Evidence: []models.DocumentEvidence{
			{
				DocType:      string(models.DocCivilStatus),
				ExtractedKey: "document",
				Present:      false,
				Note:         "Civil status document missing (heuristic).",
			},
			{
				DocID:        inv.DocID,
				DocType:      string(inv.DocType),
				ExtractedKey: "relationship",
				Value:        rel,
				Present:      rel != "",
				Note:         "Relationship extracted from the invitation letter.",
			},
		},
	})
}

// checkAddresses compares the invitation host address against the
// accommodation address when both are present.
func checkAddresses(ctx *checkContext) {
	inv := ctx.firstOf(models.DocInvitationLetter)
	acc := ctx.firstOf(models.DocAccommodationPlan)
	if inv == nil || acc == nil {
		return
	}
	invAddr := addressLike(inv)
	accAddr := addressLike(acc)
	if invAddr == "" || accAddr == "" || normalize.Key(invAddr) == normalize.Key(accAddr) {
		return
	}
	ctx.addIssue(models.DocumentIssue{
		Severity:     models.SeverityInfo,
		Code:         "ADDRESS_MISMATCH_INVITATION_ACCOMMODATION",
		Message:      "Address: invitation and accommodation differ (to confirm).",
		Why:          []string{"Not necessarily a problem (hotel vs home), but any gap should be explainable."},
		SuggestedFix: []string{"Check the exact address and clarify, e.g. booked hotel vs host's home."},
		Evidence: []models.DocumentEvidence{
			{
				DocID:        inv.DocID,
				DocType:      string(inv.DocType),
				ExtractedKey: "host_address",
				Value:        invAddr,
				Present:      true,
				Note:         "Address extracted from the invitation.",
			},
			{
				DocID:        acc.DocID,
				DocType:      string(acc.DocType),
				ExtractedKey: "accommodation_address",
				Value:        accAddr,
				Present:      true,
				Note:         "Address extracted from the accommodation.",
			},
		},
	})
}
