// Package diagnostic scores an applicant profile before any document is
// collected: refusal-risk heuristics, readiness, and explainable
// recommendations for regions and visa types. Scores prioritize risks; they
// are not decisions and not probabilities of any official outcome.
package diagnostic

import (
	"math"

	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

const (
	baseRisk = 0.45
	minRisk  = 0.05
	maxRisk  = 0.98
)

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func confidence(score float64) float64 {
	return clamp(score, 0.05, 0.95)
}

var antiScamWarnings = []string{
	"Never pay on a non-official site: check the domain and follow links from the embassy or government site.",
	"Beware of agents promising guaranteed approval: no third party can guarantee a consular decision.",
	"Do not share official portal credentials; use this tool as a guide only.",
}

var disclaimers = []string{
	"This diagnostic is an aid: it is not legal advice.",
	"Requirements and fees change: always check the official source (embassy or government).",
	"Scores are heuristics used to prioritize risks; they do not predict a decision.",
}

// Run evaluates a profile and returns the structured diagnostic. A nil
// profile is an anonymous applicant: every field reads as missing.
func Run(profile *models.UserProfile) *models.DiagnosticResult {
	if profile == nil {
		profile = &models.UserProfile{}
	}
	var assumptions, keyRisks, nextActions []string

	if profile.Age < 0 {
		assumptions = append(assumptions, "Invalid age provided; treated as 0.")
	}
	if profile.TravelHistoryTrips5y < 0 {
		assumptions = append(assumptions, "Negative travel history; treated as 0.")
	}
	if profile.PriorVisaRefusals < 0 {
		assumptions = append(assumptions, "Negative refusal count; treated as 0.")
	}
	age := max(0, profile.Age)
	trips := max(0, profile.TravelHistoryTrips5y)
	refusals := max(0, profile.PriorVisaRefusals)

	nationality := normalize.Text(profile.Nationality)
	profession := normalize.Text(profile.Profession)

	if nationality == "" {
		assumptions = append(assumptions, "Nationality missing; the diagnostic is very limited.")
		keyRisks = append(keyRisks, "Nationality not specified: real per-country eligibility cannot be assessed.")
		nextActions = append(nextActions, "Fill in the exact nationality (passport) to verify the official rules.")
	}
	if profession == "" {
		assumptions = append(assumptions, "Profession missing; socio-professional coherence to confirm.")
		keyRisks = append(keyRisks, "Profession not specified: risk of an incoherent dossier (ties, justification).")
		nextActions = append(nextActions, "Add the profession and status (employed, self-employed, student...) with supporting documents.")
	}

	risk := baseRisk

	if refusals > 0 {
		risk += 0.18 + 0.08*float64(min(refusals, 3))
		keyRisks = append(keyRisks, "Prior refusals: consulates often expect a clear correction of the previous causes.")
		nextActions = append(nextActions, "Retrieve and analyze the official refusal letter; prepare a documented response.")
	}

	switch {
	case trips == 0:
		risk += 0.14
		keyRisks = append(keyRisks, "No recent travel history: credibility of return is sometimes harder to demonstrate.")
		nextActions = append(nextActions, "Strengthen ties (employment, studies, family, assets) and the coherence of the travel plan.")
	case trips <= 2:
		risk += 0.06
	case trips >= 6:
		risk -= 0.05
	}

	if age < 23 && (profile.TravelPurpose == models.PurposeTourism || profile.TravelPurpose == models.PurposeOther) {
		risk += 0.07
		keyRisks = append(keyRisks, "Young profile with tourism: some posts require stronger proof of ties.")
		nextActions = append(nextActions, "Add proof of ties (school or employment), a credible schedule and a coherent budget.")
	}
	if age > 65 && profile.TravelPurpose == models.PurposeStudy {
		risk += 0.10
		keyRisks = append(keyRisks, "Study with an atypical age: risk of perceived incoherence if the project is not well justified.")
		nextActions = append(nextActions, "Document the study project clearly (admission, relevance, funding, return).")
	}

	switch profile.EmploymentStatus {
	case models.EmploymentUnemployed, models.EmploymentOther:
		risk += 0.08
		keyRisks = append(keyRisks, "Weak or undefined professional status: ties to the country of residence can be harder to prove.")
		nextActions = append(nextActions, "Stabilize or clarify the status (contract, registry, school) and provide official proof.")
	case models.EmploymentEmployed, models.EmploymentStudent:
		risk -= 0.03
	}

	fp := profile.FinancialProfile
	if fp == nil {
		assumptions = append(assumptions, "Financial profile not provided; budget and duration not assessed.")
		nextActions = append(nextActions, "Add an estimated budget (savings, income, sponsor) to verify coherence.")
	} else if fp.MonthlyIncomeUSD == nil && fp.SavingsUSD == nil && fp.SponsorAvailable == nil {
		assumptions = append(assumptions, "Empty financial profile; treated as not provided.")
		nextActions = append(nextActions, "Complete the financial information (income, savings, sponsor) if possible.")
	} else {
		if fp.SavingsUSD != nil && *fp.SavingsUSD < 0 {
			assumptions = append(assumptions, "Negative savings; ignored.")
		}
		if fp.MonthlyIncomeUSD != nil && *fp.MonthlyIncomeUSD < 0 {
			assumptions = append(assumptions, "Negative income; ignored.")
		}
		var savings, income *float64
		if fp.SavingsUSD != nil && *fp.SavingsUSD > 0 {
			savings = fp.SavingsUSD
		}
		if fp.MonthlyIncomeUSD != nil && *fp.MonthlyIncomeUSD > 0 {
			income = fp.MonthlyIncomeUSD
		}
		sponsored := fp.SponsorAvailable != nil && *fp.SponsorAvailable

		switch {
		case savings == nil && income == nil && !sponsored:
			risk += 0.14
			keyRisks = append(keyRisks, "Finances insufficiently demonstrated: risk of refusal for lack of means of support.")
			nextActions = append(nextActions, "Prepare bank statements, proof of income, or an official sponsor with documentation.")
		case savings != nil && *savings < 800:
			risk += 0.06
			keyRisks = append(keyRisks, "Low savings: watch the coherence with the duration and the targeted standard of living.")
			nextActions = append(nextActions, "Shorten or scale down the trip, or strengthen the proof of funding.")
		case sponsored:
			risk -= 0.03
		}
	}

	switch profile.TravelPurpose {
	case models.PurposeStudy:
		nextActions = append(nextActions, "Check admission, schedule, proof of payment or funding, and return conditions.")
	case models.PurposeBusiness:
		nextActions = append(nextActions, "Prepare the invitation letter, professional agenda, and proof of employment or business.")
	case models.PurposeTourism:
		nextActions = append(nextActions, "Prepare a realistic itinerary, coherent accommodation, and proof of ties and return.")
	}

	refusalRisk := clamp(risk, minRisk, maxRisk)

	var difficulty models.DifficultyLevel
	switch {
	case refusalRisk < 0.35:
		difficulty = models.DifficultyLow
	case refusalRisk < 0.62:
		difficulty = models.DifficultyMedium
	default:
		difficulty = models.DifficultyHigh
	}

	completeness := 0.0
	if nationality != "" {
		completeness += 0.25
	}
	if profession != "" {
		completeness += 0.20
	}
	if profile.EmploymentStatus != models.EmploymentOther {
		completeness += 0.15
	}
	if profile.TravelPurpose != models.PurposeOther {
		completeness += 0.15
	}
	if fp != nil {
		completeness += 0.25
	}
	completeness = clamp(completeness, 0, 1)
	readiness := clamp((1.0-refusalRisk)*70.0+completeness*30.0, 0, 100)

	regions, regionAssumptions := recommendRegions(profile)
	assumptions = append(assumptions, regionAssumptions...)

	visaTypes, vtAssumptions, vtActions := recommendVisaTypes(profile)
	assumptions = append(assumptions, vtAssumptions...)
	nextActions = append(nextActions, vtActions...)

	return &models.DiagnosticResult{
		EligibleRegions:      regions,
		RecommendedVisaTypes: visaTypes,
		DifficultyLevel:      difficulty,
		RefusalRiskScore:     math.Round(refusalRisk*1000) / 1000,
		ReadinessScore:       math.Round(readiness*10) / 10,
		KeyRisks:             normalize.Dedup(keyRisks),
		NextBestActions:      normalize.Dedup(nextActions),
		AntiScamWarnings:     antiScamWarnings,
		Assumptions:          normalize.Dedup(assumptions),
		Disclaimers:          disclaimers,
	}
}

func recommendRegions(profile *models.UserProfile) (regions []models.Recommendation, assumptions []string) {
	hint := normalize.Text(profile.DestinationRegionHint)
	if hint != "" {
		return []models.Recommendation{{
			Label:      hint,
			Confidence: 0.75,
			Why: []string{
				"You set a target destination; the analysis focuses on that zone.",
				"Exact requirements depend on nationality and the official rules in force.",
			},
		}}, nil
	}
	assumptions = append(assumptions, "No target destination; generic suggestions, to confirm against official rules.")
	regions = []models.Recommendation{
		{
			Label:      "Schengen area (to confirm)",
			Confidence: 0.40,
			Why: []string{
				"Frequent destination for tourism and business.",
				"Requires strict verification of the official rules per nationality.",
			},
		},
		{
			Label:      "United Kingdom (to confirm)",
			Confidence: 0.35,
			Why: []string{
				"Structured process, usually heavily documented.",
				"Criteria vary strongly with profile and history.",
			},
		},
		{
			Label:      "Turkey / e-visa (to confirm)",
			Confidence: 0.30,
			Why: []string{
				"For some nationalities the process can be simpler.",
				"Always verify the official portal (anti-scam).",
			},
		},
	}
	return regions, assumptions
}

func recommendVisaTypes(profile *models.UserProfile) (vt []models.Recommendation, assumptions, actions []string) {
	switch profile.TravelPurpose {
	case models.PurposeTourism:
		vt = append(vt, models.Recommendation{
			Label:      "Visitor / tourism visa",
			Confidence: confidence(0.80),
			Why:        []string{"Matches the declared purpose (tourism).", "The dossier must prove budget, itinerary and ties."},
		})
	case models.PurposeBusiness:
		vt = append(vt, models.Recommendation{
			Label:      "Business visitor visa",
			Confidence: confidence(0.80),
			Why:        []string{"Matches the declared purpose (business).", "Invitation, agenda and proof of activity are critical."},
		})
	case models.PurposeStudy:
		vt = append(vt, models.Recommendation{
			Label:      "Student visa",
			Confidence: confidence(0.85),
			Why:        []string{"Matches the declared purpose (study).", "Admission, funding and a coherent project are decisive."},
		})
	case models.PurposeFamily:
		vt = append(vt, models.Recommendation{
			Label:      "Family visit / reunification visa (per country)",
			Confidence: confidence(0.70),
			Why:        []string{"Matches the declared purpose (family).", "Proof of the relationship and the host's status are essential."},
		})
	case models.PurposeTransit:
		vt = append(vt, models.Recommendation{
			Label:      "Transit visa (if required)",
			Confidence: confidence(0.60),
			Why: []string{
				"Matches the declared purpose (transit).",
				"Some nationalities need a visa even without leaving the airport zone.",
			},
		})
	case models.PurposeMedical:
		vt = append(vt, models.Recommendation{
			Label:      "Medical / treatment visa",
			Confidence: confidence(0.75),
			Why:        []string{"Matches the declared purpose (medical).", "The medical file and financial coverage must be clear."},
		})
	default:
		assumptions = append(assumptions, "Purpose not specified; visa type not optimized.")
		vt = append(vt, models.Recommendation{
			Label:      "Visa type to clarify",
			Confidence: 0.30,
			Why: []string{
				"The visa type depends strictly on the purpose of the trip.",
				"A wrong category strongly increases the risk of refusal.",
			},
		})
		actions = append(actions, "Clarify the purpose (tourism, business, study, family...) before starting any form.")
	}
	return vt, assumptions, actions
}
