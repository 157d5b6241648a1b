package coherence

import (
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkBank validates the freshest bank statement: issue-date presence and
// recency, ending balance signals, and holder-name consistency with the
// passport.
func checkBank(ctx *checkContext) {
	b := ctx.freshestBank
	if b == nil {
		return
	}

	issued := documentIssued(b)
	if issued == nil {
		ctx.assume("Bank statement issue date unknown.")
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "BANK_STATEMENT_ISSUED_UNKNOWN",
			Message:      "Bank statement issue date missing; freshness cannot be assessed.",
			Why:          []string{"Consulates often ask for recent statements, commonly the last 3 months."},
			SuggestedFix: []string{"Fill in issued_date (or re-scan) and provide recent statements."},
			Evidence: []models.DocumentEvidence{{
				DocID:        b.DocID,
				DocType:      string(b.DocType),
				ExtractedKey: "issued_date",
				Value:        b.Field("issued_date"),
				Present:      false,
				Note:         "Field required to assess statement age.",
			}},
		})
	} else if daysBetween(*issued, ctx.today) > statementStaleDays {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "BANK_STATEMENT_OLD",
			Message:      "Bank statement is old (over 4 months).",
			Why:          []string{"Consulates often ask for recent statements, commonly the last 3 months."},
			SuggestedFix: []string{"Provide more recent statements per the official rule."},
			Evidence: []models.DocumentEvidence{{
				DocID:        b.DocID,
				DocType:      string(b.DocType),
				ExtractedKey: "issued_date",
				Value:        issued.Format("2006-01-02"),
				Present:      true,
				Note:         "Issue date used to compute statement age.",
			}},
		})
	}

	if raw := b.Field("ending_balance_usd"); raw != nil {
		bal := normalize.ParseNumber(raw)
		switch {
		case bal == nil:
			ctx.assume("Ending balance on bank statement not interpretable.")
			ctx.addIssue(models.DocumentIssue{
				Severity:     models.SeverityWarning,
				Code:         "BANK_BALANCE_UNPARSABLE",
				Message:      "Ending balance on the statement cannot be interpreted.",
				Why:          []string{"An unreadable field can prevent a correct assessment of financial capacity."},
				SuggestedFix: []string{"Correct ending_balance_usd to a number, or provide a cleaner statement."},
				Evidence: []models.DocumentEvidence{{
					DocID:        b.DocID,
					DocType:      string(b.DocType),
					ExtractedKey: "ending_balance_usd",
					Value:        raw,
					Present:      true,
					Note:         "Value must be a number, e.g. 2500.",
				}},
			})
		case *bal < 0:
			ctx.addIssue(models.DocumentIssue{
				Severity:     models.SeverityWarning,
				Code:         "BANK_NEGATIVE_BALANCE",
				Message:      "Negative balance detected on a statement.",
				SuggestedFix: []string{"Clarify the financial situation; avoid budget/duration inconsistencies."},
				Evidence: []models.DocumentEvidence{{
					DocID:        b.DocID,
					DocType:      string(b.DocType),
					ExtractedKey: "ending_balance_usd",
					Value:        raw,
					Present:      true,
					Note:         "Ending balance found on the statement.",
				}},
			})
		}
	}

	if ctx.passport != nil {
		passportName := normalize.Text(ctx.passport.Field("full_name"))
		acctName := normalize.Text(b.Field("account_holder_name"))
		if passportName != "" && acctName != "" && !normalize.NamesLike(passportName, acctName) {
			ctx.addIssue(models.DocumentIssue{
				Severity:     models.SeverityWarning,
				Code:         "NAME_MISMATCH_PASSPORT_BANK",
				Message:      "Name mismatch between passport and bank statement.",
				Why:          []string{"Even minor inconsistencies can trigger a clarification request."},
				SuggestedFix: []string{"Check spelling and name order, and add an explanation if needed."},
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
						DocID:        b.DocID,
						DocType:      string(b.DocType),
						ExtractedKey: "account_holder_name",
						Value:        acctName,
						Present:      true,
						Note:         "Holder name extracted from the statement.",
					},
				},
			})
		}
	}
}
