package coherence

import (
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkInsurance validates the first travel insurance document: expiry
// presence, expiry against today, and for Schengen destinations the minimum
// medical coverage amount.
func checkInsurance(ctx *checkContext) {
	ins := ctx.firstOf(models.DocTravelInsurance)
	if ins == nil {
		return
	}

	exp := documentExpiry(ins)
	if exp == nil {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "INSURANCE_EXPIRY_UNKNOWN",
			Message:      "Travel insurance expiry date missing; coverage cannot be verified.",
			Why:          []string{"Where required, insurance must cover the exact trip dates."},
			SuggestedFix: []string{"Fill in expires_date (or re-scan) and check the official requirements."},
			Evidence: []models.DocumentEvidence{{
				DocID:        ins.DocID,
				DocType:      string(ins.DocType),
				ExtractedKey: "expires_date",
				Value:        ins.Field("expires_date"),
				Present:      false,
				Note:         "Field required to verify validity and coverage.",
			}},
		})
	} else if !exp.After(ctx.today) {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "INSURANCE_EXPIRED",
			Message:      "Travel insurance is expired.",
			Why:          []string{"Insurance must cover the exact trip dates where it is required."},
			SuggestedFix: []string{"Update the insurance to the trip dates, avoiding irreversible payments before the visa."},
			Evidence: []models.DocumentEvidence{{
				DocID:        ins.DocID,
				DocType:      string(ins.DocType),
				ExtractedKey: "expires_date",
				Value:        exp.Format("2006-01-02"),
				Present:      true,
				Note:         "Expiry date used to verify coverage.",
			}},
		})
	}

	if !isSchengen(ctx.destinationRegion) {
		return
	}

	rawCov := ins.FirstField("coverage_amount_eur", "medical_coverage_eur")
	cov := normalize.ParseNumber(rawCov)
	if cov == nil {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityInfo,
			Code:         "INSURANCE_COVERAGE_AMOUNT_UNKNOWN_SCHENGEN",
			Message:      "Insurance (Schengen): medical coverage amount not provided; the threshold cannot be verified.",
			Why:          []string{"Schengen typically requires a minimum coverage, often 30,000 EUR; confirm with the official source."},
			SuggestedFix: []string{"Fill in coverage_amount_eur (or medical_coverage_eur) or check the policy."},
			Evidence: []models.DocumentEvidence{{
				DocID:        ins.DocID,
				DocType:      string(ins.DocType),
				ExtractedKey: "coverage_amount_eur",
				Value:        rawCov,
				Present:      false,
				Note:         "Medical coverage amount (EUR).",
			}},
		})
	} else if *cov < schengenMinCoverageEUR {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityRisk,
			Code:         "INSURANCE_COVERAGE_AMOUNT_LOW_SCHENGEN",
			Message:      "Insurance (Schengen): medical coverage possibly insufficient (under 30,000 EUR).",
			Why:          []string{"The exact threshold depends on the country and the policy; 30,000 EUR is a common Schengen standard."},
			SuggestedFix: []string{"Pick or update an insurance that meets the official requirements and the trip dates."},
			Evidence: []models.DocumentEvidence{{
				DocID:        ins.DocID,
				DocType:      string(ins.DocType),
				ExtractedKey: "coverage_amount_eur",
				Value:        *cov,
				Present:      true,
				Note:         "Medical coverage amount (EUR) used for the check.",
			}},
		})
	}
}
