package coherence

import (
	"math"
	"time"

	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkPayslips validates payslip count and recency, then cross-checks the
// declared net salary against the bank statement's monthly inflow.
func checkPayslips(ctx *checkContext) {
	slips := ctx.byType[models.DocPayslips]
	if len(slips) == 0 {
		return
	}

	type datedSlip struct {
		doc  *models.Document
		date *time.Time
	}
	slipDates := make([]datedSlip, 0, len(slips))
	var dated []datedSlip
	for i := range slips {
		d := normalize.ParseISODate(slips[i].FirstField("issued_date", "pay_date", "month_date"))
		slipDates = append(slipDates, datedSlip{doc: &slips[i], date: d})
		if d != nil {
			dated = append(dated, datedSlip{doc: &slips[i], date: d})
		}
	}

	if len(dated) < minPayslipCount {
		evidence := make([]models.DocumentEvidence, 0, 5)
		for _, s := range slipDates {
			if len(evidence) == 5 {
				break
			}
			evidence = append(evidence, models.DocumentEvidence{
				DocID:        s.doc.DocID,
				DocType:      string(s.doc.DocType),
				ExtractedKey: "issued_date",
				Value:        s.doc.FirstField("issued_date", "pay_date", "month_date"),
				Present:      s.date != nil,
				Note:         "Pay or issue date, used to check recency.",
			})
		}
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "PAYSLIPS_INSUFFICIENT_COUNT",
			Message:      "Payslips: insufficient count (usually the last 3 months).",
			Why:          []string{"Consulates frequently request the last 3 payslips or an equivalent."},
			SuggestedFix: []string{"Add recent payslips (3 months) or an alternative proof such as a contract or letter."},
			Evidence:     evidence,
		})
	} else {
		mostRecent := dated[0].date
		for _, s := range dated[1:] {
			if s.date.After(*mostRecent) {
				mostRecent = s.date
			}
		}
		if daysBetween(*mostRecent, ctx.today) > statementStaleDays {
			ctx.addIssue(models.DocumentIssue{
				Severity:     models.SeverityWarning,
				Code:         "PAYSLIPS_OLD",
				Message:      "Payslips are old (over 4 months).",
				SuggestedFix: []string{"Provide the most recent payslips (last 3 months)."},
				Evidence: []models.DocumentEvidence{{
					DocID:        dated[0].doc.DocID,
					DocType:      string(dated[0].doc.DocType),
					ExtractedKey: "issued_date",
					Value:        mostRecent.Format("2006-01-02"),
					Present:      true,
					Note:         "Most recent date found.",
				}},
			})
		}
	}

	// Salary coherence, in document insertion order, capped at 3 slips.
	type amountSlip struct {
		doc    *models.Document
		amount float64
	}
	var amounts []amountSlip
	for i := range slips {
		if a := normalize.ParseNumber(slips[i].FirstField("net_salary_usd", "salary_usd", "net_salary")); a != nil {
			amounts = append(amounts, amountSlip{doc: &slips[i], amount: *a})
		}
	}
	if ctx.freshestBank == nil || len(amounts) == 0 {
		return
	}
	inflow := normalize.ParseNumber(ctx.freshestBank.FirstField("average_monthly_inflow_usd", "monthly_income_usd"))
	if inflow == nil || *inflow <= 0 {
		return
	}
	n := len(amounts)
	if n > 3 {
		n = 3
	}
	var sum float64
	for _, a := range amounts[:n] {
		sum += a.amount
	}
	avg := sum / float64(n)
	if math.Abs(*inflow-avg)/(*inflow) <= incomeMismatchRatio {
		return
	}
	ctx.addIssue(models.DocumentIssue{
		Severity:     models.SeverityWarning,
		Code:         "INCOME_MISMATCH_PAYSLIPS_BANK",
		Message:      "Possible inconsistency: payslip income vs monthly bank inflow.",
		Why:          []string{"Consulates look for coherence between declared income, payslips and bank statements."},
		SuggestedFix: []string{"Check the amounts and currency, and explain any gap (bonuses, cash, another account)."},
		Evidence: []models.DocumentEvidence{
			{
				DocID:        ctx.freshestBank.DocID,
				DocType:      string(ctx.freshestBank.DocType),
				ExtractedKey: "average_monthly_inflow_usd",
				Value:        *inflow,
				Present:      true,
				Note:         "Average monthly inflow (USD).",
			},
			{
				DocID:        amounts[0].doc.DocID,
				DocType:      string(amounts[0].doc.DocType),
				ExtractedKey: "net_salary_usd",
				Value:        math.Round(avg*100) / 100,
				Present:      true,
				Note:         "Average net salary (USD) across payslips.",
			},
		},
	})
}
