package coherence

import (
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkEmployment validates the first employment letter: employee name
// presence and consistency, and letter freshness.
func checkEmployment(ctx *checkContext) {
	el := ctx.firstOf(models.DocEmploymentLetter)
	if el == nil {
		return
	}

	empName := normalize.Text(el.FirstField("employee_name", "full_name"))
	letterDate := normalize.ParseISODate(el.FirstField("letter_date", "issued_date"))

	if empName == "" {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "EMPLOYMENT_LETTER_NAME_MISSING",
			Message:      "Employment letter: employee name missing or unreadable.",
			SuggestedFix: []string{"Fill in employee_name or provide a cleaner letter."},
			Evidence: []models.DocumentEvidence{{
				DocID:        el.DocID,
				DocType:      string(el.DocType),
				ExtractedKey: "employee_name",
				Value:        el.Field("employee_name"),
				Present:      false,
				Note:         "Employee name expected on the letter.",
			}},
		})
	}

	if ctx.passport != nil && empName != "" {
		passportName := normalize.Text(ctx.passport.Field("full_name"))
		if passportName != "" && !normalize.NamesLike(passportName, empName) {
			ctx.addIssue(models.DocumentIssue{
				Severity:     models.SeverityWarning,
				Code:         "NAME_MISMATCH_PASSPORT_EMPLOYMENT",
				Message:      "Name mismatch between passport and employment letter.",
				SuggestedFix: []string{"Check the spelling and add an explanation if needed."},
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
						DocID:        el.DocID,
						DocType:      string(el.DocType),
						ExtractedKey: "employee_name",
						Value:        empName,
						Present:      true,
						Note:         "Employee name on the letter.",
					},
				},
			})
		}
	}

	if letterDate == nil {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "EMPLOYMENT_LETTER_DATE_MISSING",
			Message:      "Employment letter: date missing or unreadable; freshness cannot be verified.",
			SuggestedFix: []string{"Fill in letter_date (YYYY-MM-DD) or provide a recent letter."},
			Evidence: []models.DocumentEvidence{{
				DocID:        el.DocID,
				DocType:      string(el.DocType),
				ExtractedKey: "letter_date",
				Value:        el.FirstField("letter_date", "issued_date"),
				Present:      false,
				Note:         "The date is used to verify that the letter is recent.",
			}},
		})
	} else if daysBetween(*letterDate, ctx.today) > statementStaleDays {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "EMPLOYMENT_LETTER_OLD",
			Message:      "Employment letter is old (over 4 months).",
			Why:          []string{"Proof of employment usually has to be recent."},
			SuggestedFix: []string{"Request a more recent letter consistent with the travel period."},
			Evidence: []models.DocumentEvidence{{
				DocID:        el.DocID,
				DocType:      string(el.DocType),
				ExtractedKey: "letter_date",
				Value:        letterDate.Format("2006-01-02"),
				Present:      true,
				Note:         "Date used to verify freshness.",
			}},
		})
	}
}
