package coherence

import (
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

func sponsorAmount(sp *models.Document) *float64 {
	return normalize.ParseNumber(sp.FirstField("sponsor_amount_usd", "amount_usd"))
}

// checkSponsor validates the first sponsor letter: sponsor name, pledge
// amount presence, and beneficiary-name consistency with the passport. The
// pledge amount is compared against the trip estimate by the trip rule.
func checkSponsor(ctx *checkContext) {
	sp := ctx.firstOf(models.DocSponsorLetter)
	if sp == nil {
		return
	}

	sponsorName := normalize.Text(sp.FirstField("sponsor_name", "host_name"))
	beneficiary := normalize.Text(sp.FirstField("beneficiary_name", "invitee_name", "full_name"))

	if sponsorName == "" {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "SPONSOR_NAME_MISSING",
			Message:      "Sponsor letter: sponsor name missing or unreadable.",
			SuggestedFix: []string{"Fill in sponsor_name or provide a more explicit letter."},
			Evidence: []models.DocumentEvidence{{
				DocID:        sp.DocID,
				DocType:      string(sp.DocType),
				ExtractedKey: "sponsor_name",
				Value:        sp.FirstField("sponsor_name", "host_name"),
				Present:      false,
				Note:         "Sponsor name expected on the letter.",
			}},
		})
	}

	if sponsorAmount(sp) == nil {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityInfo,
			Code:         "SPONSOR_AMOUNT_UNKNOWN",
			Message:      "Sponsor letter: pledged amount not provided; budget and duration coherence is hard to assess.",
			Why:          []string{"A sponsor usually has to prove financial capacity and state the level of support."},
			SuggestedFix: []string{"Fill in sponsor_amount_usd (USD) and attach the sponsor's financial proof where required."},
			Evidence: []models.DocumentEvidence{{
				DocID:        sp.DocID,
				DocType:      string(sp.DocType),
				ExtractedKey: "sponsor_amount_usd",
				Value:        sp.FirstField("sponsor_amount_usd", "amount_usd"),
				Present:      false,
				Note:         "Pledged support amount (USD).",
			}},
		})
	}

	if ctx.passport != nil && beneficiary != "" {
		passportName := normalize.Text(ctx.passport.Field("full_name"))
		if passportName != "" && !normalize.NamesLike(passportName, beneficiary) {
			ctx.addIssue(models.DocumentIssue{
				Severity:     models.SeverityWarning,
				Code:         "NAME_MISMATCH_PASSPORT_SPONSOR",
				Message:      "Name mismatch between passport and sponsor letter.",
				SuggestedFix: []string{"Correct the letter or explain the gap (transliteration or alias)."},
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
						DocID:        sp.DocID,
						DocType:      string(sp.DocType),
						ExtractedKey: "beneficiary_name",
						Value:        beneficiary,
						Present:      true,
						Note:         "Beneficiary name on the letter.",
					},
				},
			})
		}
	}
}
