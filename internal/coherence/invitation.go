package coherence

import (
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkInvitation validates the first invitation letter: presence of the
// core fields and invitee-name consistency with the passport.
func checkInvitation(ctx *checkContext) {
	inv := ctx.firstOf(models.DocInvitationLetter)
	if inv == nil {
		return
	}

	invitee := normalize.Text(inv.FirstField("invitee_name", "guest_name"))
	fields := []struct {
		key   string
		value string
	}{
		{"invitee_name", invitee},
		{"host_name", normalize.Text(inv.Field("host_name"))},
		{"relationship", normalize.Text(inv.Field("relationship"))},
		{"host_address", normalize.Text(inv.Field("host_address"))},
	}

	var missing []models.DocumentEvidence
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, models.DocumentEvidence{
				DocID:        inv.DocID,
				DocType:      string(inv.DocType),
				ExtractedKey: f.key,
				Value:        inv.Field(f.key),
				Present:      false,
				Note:         "Field expected in an invitation letter.",
			})
		}
	}
	if len(missing) > 0 {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "INVITATION_MISSING_CORE_FIELDS",
			Message:      "Invitation letter incomplete (core fields missing).",
			Why:          []string{"An incomplete or vague invitation can trigger a request for additional proof."},
			SuggestedFix: []string{"Fill in the missing fields (invitee, host, relationship, address) or provide a more detailed letter."},
			Evidence:     missing,
		})
	}

	if ctx.passport != nil && invitee != "" {
		passportName := normalize.Text(ctx.passport.Field("full_name"))
		if passportName != "" && !normalize.NamesLike(passportName, invitee) {
			ctx.addIssue(models.DocumentIssue{
				Severity:     models.SeverityWarning,
				Code:         "NAME_MISMATCH_PASSPORT_INVITATION",
				Message:      "Name mismatch between passport and invitation letter.",
				Why:          []string{"Identity inconsistencies often need clarification: spelling, name order, transliteration."},
				SuggestedFix: []string{"Correct the letter or add an explanation (transliteration or alias) if needed."},
				Evidence: []models.DocumentEvidence{
					{
						DocID:        ctx.passport.DocID,
						DocType:      string(ctx.passport.DocType),
						ExtractedKey: "full_name",
						Value:        passportName,
						Present:      true,
						Note:         "Name extracted from the passport.",
					},
					{
						DocID:        inv.DocID,
						DocType:      string(inv.DocType),
						ExtractedKey: "invitee_name",
						Value:        invitee,
						Present:      true,
						Note:         "Invitee name extracted from the letter.",
					},
				},
			})
		}
	}
}
