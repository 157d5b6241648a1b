package coherence

import (
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkPassport validates the most relevant passport (latest expiry): expiry
// presence and horizon, plus the identity fields other rules compare against.
func checkPassport(ctx *checkContext) {
	if ctx.passport == nil {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityRisk,
			Code:         "NO_PASSPORT",
			Message:      "No passport provided.",
			Why:          []string{"The passport is the central piece of the dossier."},
			SuggestedFix: []string{"Add a clear scan of the passport identity page."},
			Evidence: []models.DocumentEvidence{{
				DocType:      string(models.DocPassport),
				ExtractedKey: "document",
				Present:      false,
				Note:         "Passport absent.",
			}},
		})
		return
	}

	p := ctx.passport
	exp := documentExpiry(p)
	switch {
	case exp == nil:
		ctx.assume("Passport expiry date unknown.")
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityRisk,
			Code:         "PASSPORT_EXPIRY_UNKNOWN",
			Message:      "Passport expiry date not provided; validity cannot be verified.",
			SuggestedFix: []string{"Add the expiry date (or re-scan) and check the official validity rules."},
			Evidence: []models.DocumentEvidence{{
				DocID:        p.DocID,
				DocType:      string(p.DocType),
				ExtractedKey: "expires_date",
				Value:        p.Field("expires_date"),
				Present:      false,
				Note:         "Field required to verify passport validity.",
			}},
		})
	case !exp.After(ctx.today):
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityRisk,
			Code:         "PASSPORT_EXPIRED",
			Message:      "Passport is expired.",
			Why:          []string{"An expired passport makes the application inadmissible in most cases."},
			SuggestedFix: []string{"Renew the passport before any visa step."},
			Evidence: []models.DocumentEvidence{{
				DocID:        p.DocID,
				DocType:      string(p.DocType),
				ExtractedKey: "expires_date",
				Value:        exp.Format("2006-01-02"),
				Present:      true,
				Note:         "Expiry date used for the check.",
			}},
		})
	case daysBetween(ctx.today, *exp) < passportExpirySoonDays:
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "PASSPORT_EXPIRY_SOON",
			Message:      "Passport close to expiry (under 6 months).",
			Why:          []string{"Many countries require 3 to 6 months of validity after return."},
			SuggestedFix: []string{"Check the official requirement; consider renewing early."},
			Evidence: []models.DocumentEvidence{{
				DocID:        p.DocID,
				DocType:      string(p.DocType),
				ExtractedKey: "expires_date",
				Value:        exp.Format("2006-01-02"),
				Present:      true,
				Note:         "Expiry date used for the check.",
			}},
		})
	}

	if normalize.Text(p.Field("full_name")) == "" {
		ctx.assume("Full name not extracted from the passport.")
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "PASSPORT_NAME_MISSING",
			Message:      "Full name not extracted from the passport.",
			Why:          []string{"The name is used to cross-check bookings, invitations, statements and forms."},
			SuggestedFix: []string{"Fill in full_name (or re-scan) from the identity page."},
			Evidence: []models.DocumentEvidence{{
				DocID:        p.DocID,
				DocType:      string(p.DocType),
				ExtractedKey: "full_name",
				Value:        p.Field("full_name"),
				Present:      false,
				Note:         "Field used to detect inconsistencies between documents.",
			}},
		})
	}
	if normalize.Text(p.Field("passport_number")) == "" {
		ctx.assume("Passport number not extracted.")
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "PASSPORT_NUMBER_MISSING",
			Message:      "Passport number not extracted.",
			Why:          []string{"Often required on forms, insurance policies and invitation letters."},
			SuggestedFix: []string{"Fill in passport_number (or re-scan) from the identity page."},
			Evidence: []models.DocumentEvidence{{
				DocID:        p.DocID,
				DocType:      string(p.DocType),
				ExtractedKey: "passport_number",
				Value:        p.Field("passport_number"),
				Present:      false,
				Note:         "Field commonly requested in other documents and forms.",
			}},
		})
	}
}
