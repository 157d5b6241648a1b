package coherence

import (
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkAccommodation compares the guest name on the first accommodation plan
// against the passport name.
func checkAccommodation(ctx *checkContext) {
	acc := ctx.firstOf(models.DocAccommodationPlan)
	if acc == nil || ctx.passport == nil {
		return
	}

	guest := normalize.Text(acc.FirstField("guest_name", "traveler_name", "full_name"))
	passportName := normalize.Text(ctx.passport.Field("full_name"))
	if guest == "" || passportName == "" || normalize.NamesLike(passportName, guest) {
		return
	}

	ctx.addIssue(models.DocumentIssue{
		Severity:     models.SeverityWarning,
		Code:         "NAME_MISMATCH_PASSPORT_ACCOMMODATION",
		Message:      "Name mismatch between passport and accommodation plan.",
		SuggestedFix: []string{"Check that the traveler name matches exactly, or explain the transliteration."},
		Evidence: []models.DocumentEvidence{
			{
				DocID:        ctx.passport.DocID,
				DocType:      string(ctx.passport.DocType),
				ExtractedKey: "full_name",
				Value:        passportName,
				Present:      true,
				Note:         "Passport name.",
			},
			{
				DocID:        acc.DocID,
				DocType:      string(acc.DocType),
				ExtractedKey: "guest_name",
				Value:        guest,
				Present:      true,
				Note:         "Traveler or guest name from the accommodation.",
			},
		},
	})
}
