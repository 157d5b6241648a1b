package coherence

import (
	"fmt"

	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkTripWindow covers every rule that needs the trip dates: date sanity,
// passport validity relative to the trip, insurance coverage of the trip,
// and budget estimates for the bank balance and the sponsor pledge.
func checkTripWindow(ctx *checkContext) {
	if ctx.tripStart == nil || ctx.tripEnd == nil {
		hasTripDocs := len(ctx.byType[models.DocItinerary]) > 0 || len(ctx.byType[models.DocAccommodationPlan]) > 0
		if hasTripDocs {
			ctx.addIssue(models.DocumentIssue{
				Severity: models.SeverityWarning,
				Code:     "TRIP_DATES_UNKNOWN",
				Message:  "Trip dates missing or unreadable on itinerary/accommodation; coherence cannot be verified.",
				Why: []string{
					"Dates drive several requirements: insurance, passport validity, budget coherence.",
					"Inconsistent dates often trigger a clarification request.",
				},
				SuggestedFix: []string{"Fill in start_date/end_date (or travel_start_date/travel_end_date) on the itinerary or accommodation."},
				Evidence:     ctx.tripEvidence,
			})
		}
		return
	}

	if ctx.tripEnd.Before(*ctx.tripStart) {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityRisk,
			Code:         "TRIP_DATES_INVALID",
			Message:      "Trip dates inconsistent: the end is before the start.",
			SuggestedFix: []string{"Correct the dates on the itinerary or accommodation and re-run the check."},
			Evidence:     ctx.tripEvidence,
		})
		return
	}

	checkPassportAgainstTrip(ctx)
	checkInsuranceAgainstTrip(ctx)
	checkFundsAgainstTrip(ctx)
	checkSponsorAgainstTrip(ctx)
}

func checkPassportAgainstTrip(ctx *checkContext) {
	if ctx.passport == nil {
		return
	}
	exp := documentExpiry(ctx.passport)
	if exp == nil {
		return
	}
	passportEvidence := models.DocumentEvidence{
		DocID:        ctx.passport.DocID,
		DocType:      string(ctx.passport.DocType),
		ExtractedKey: "expires_date",
		Value:        exp.Format("2006-01-02"),
		Present:      true,
		Note:         "Passport expiry.",
	}
	if !exp.After(*ctx.tripEnd) {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityRisk,
			Code:         "TRIP_AFTER_PASSPORT_EXPIRES",
			Message:      "The trip ends after the passport expires.",
			Why:          []string{"An application is generally inadmissible if the passport expires before or during the stay."},
			SuggestedFix: []string{"Renew the passport or adjust the travel dates before submitting."},
			Evidence:     append([]models.DocumentEvidence{passportEvidence}, ctx.tripEvidence...),
		})
		return
	}
	buffer := minPassportValidityAfterTripDays(ctx.destinationRegion)
	if daysBetween(*ctx.tripEnd, *exp) < buffer {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "PASSPORT_VALIDITY_AFTER_TRIP_SHORT",
			Message:      fmt.Sprintf("Passport validity after the trip possibly insufficient (under %d days).", buffer),
			Why:          []string{"Many countries require a validity margin after return, typically 3 to 6 months."},
			SuggestedFix: []string{"Check the official requirement; consider renewing early."},
			Evidence:     append([]models.DocumentEvidence{passportEvidence}, ctx.tripEvidence...),
		})
	}
}

func checkInsuranceAgainstTrip(ctx *checkContext) {
	ins := ctx.firstOf(models.DocTravelInsurance)
	if ins == nil {
		return
	}
	covStart := normalize.ParseISODate(ins.FirstField("coverage_start_date", "start_date"))
	covEnd := normalize.ParseISODate(ins.FirstField("coverage_end_date", "end_date", "expires_date"))
	if covEnd == nil {
		covEnd = ins.ExpiresDate
	}

	if covStart == nil || covEnd == nil {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityWarning,
			Code:         "INSURANCE_COVERAGE_DATES_MISSING",
			Message:      "Insurance coverage dates missing; cannot verify it covers the whole stay.",
			SuggestedFix: []string{"Fill in coverage_start_date and coverage_end_date (or equivalents) and re-run."},
			Evidence: append([]models.DocumentEvidence{
				{
					DocID:        ins.DocID,
					DocType:      string(ins.DocType),
					ExtractedKey: "coverage_start_date",
					Value:        ins.Field("coverage_start_date"),
					Present:      covStart != nil,
					Note:         "Coverage start.",
				},
				{
					DocID:        ins.DocID,
					DocType:      string(ins.DocType),
					ExtractedKey: "coverage_end_date",
					Value:        ins.FirstField("coverage_end_date", "end_date", "expires_date"),
					Present:      covEnd != nil,
					Note:         "Coverage end.",
				},
			}, ctx.tripEvidence...),
		})
		return
	}

	if covStart.After(*ctx.tripStart) || covEnd.Before(*ctx.tripEnd) {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityRisk,
			Code:         "INSURANCE_NOT_COVERING_TRIP",
			Message:      "Travel insurance does not cover the whole trip window.",
			Why:          []string{"Where required, insurance must cover every day of the trip, sometimes with minimum guarantees."},
			SuggestedFix: []string{"Adjust the insurance to the exact dates, avoiding irreversible payments before the visa."},
			Evidence: append([]models.DocumentEvidence{
				{
					DocID:        ins.DocID,
					DocType:      string(ins.DocType),
					ExtractedKey: "coverage_start_date",
					Value:        covStart.Format("2006-01-02"),
					Present:      true,
					Note:         "Coverage start.",
				},
				{
					DocID:        ins.DocID,
					DocType:      string(ins.DocType),
					ExtractedKey: "coverage_end_date",
					Value:        covEnd.Format("2006-01-02"),
					Present:      true,
					Note:         "Coverage end.",
				},
			}, ctx.tripEvidence...),
		})
	}
}

// tripBudgetEstimateUSD derives the rough spend requirement for the trip.
func tripBudgetEstimateUSD(ctx *checkContext) (estimate float64, durationDays int) {
	durationDays = daysBetween(*ctx.tripStart, *ctx.tripEnd) + 1
	if durationDays < 1 {
		durationDays = 1
	}
	rate := dailyBudgetUSD(ctx.destinationRegion)
	return rate*float64(durationDays) + tripBudgetBufferUSD, durationDays
}

func checkFundsAgainstTrip(ctx *checkContext) {
	b := ctx.freshestBank
	if b == nil {
		return
	}
	bal := normalize.ParseNumber(b.Field("ending_balance_usd"))
	if bal == nil {
		return
	}
	required, duration := tripBudgetEstimateUSD(ctx)
	if *bal >= required {
		return
	}
	severity := models.SeverityRisk
	if *bal >= fundsWarningRatio*required {
		severity = models.SeverityWarning
	}
	ctx.addIssue(models.DocumentIssue{
		Severity: severity,
		Code:     "FUNDS_ESTIMATE_LOW",
		Message:  "Financial capacity possibly insufficient for the estimated trip duration (heuristic).",
		Why: []string{
			"Consulates often compare duration, budget and resources, looking for coherence.",
			"This calculation is an estimate; check official thresholds where published.",
		},
		SuggestedFix: []string{"Provide stronger or more recent statements consistent with the duration, or explain sponsorship."},
		Evidence: append([]models.DocumentEvidence{{
			DocID:        b.DocID,
			DocType:      string(b.DocType),
			ExtractedKey: "ending_balance_usd",
			Value:        *bal,
			Present:      true,
			Note:         fmt.Sprintf("Balance used (USD). Estimated requirement ~ %.0f USD for %d days.", required, duration),
		}}, ctx.tripEvidence...),
	})
}

func checkSponsorAgainstTrip(ctx *checkContext) {
	sp := ctx.firstOf(models.DocSponsorLetter)
	if sp == nil {
		return
	}
	amount := sponsorAmount(sp)
	if amount == nil {
		return
	}
	required, duration := tripBudgetEstimateUSD(ctx)
	if *amount >= required {
		return
	}
	severity := models.SeverityRisk
	if *amount >= fundsWarningRatio*required {
		severity = models.SeverityWarning
	}
	ctx.addIssue(models.DocumentIssue{
		Severity:     severity,
		Code:         "SPONSOR_AMOUNT_LOW_FOR_TRIP",
		Message:      "Sponsor: pledged amount possibly insufficient for the estimated trip duration (heuristic).",
		SuggestedFix: []string{"Increase the support, shorten the trip, or provide complementary proof such as covered accommodation."},
		Evidence: append([]models.DocumentEvidence{{
			DocID:        sp.DocID,
			DocType:      string(sp.DocType),
			ExtractedKey: "sponsor_amount_usd",
			Value:        *amount,
			Present:      true,
			Note:         fmt.Sprintf("Amount used (USD). Estimated requirement ~ %.0f USD for %d days.", required, duration),
		}}, ctx.tripEvidence...),
	})
}
