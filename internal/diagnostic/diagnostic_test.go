package diagnostic

import (
	"testing"

	"github.com/visado/visado/internal/models"
)

func baseProfile() *models.UserProfile {
	return &models.UserProfile{
		Nationality:          "FR",
		Age:                  35,
		Profession:           "engineer",
		EmploymentStatus:     models.EmploymentEmployed,
		TravelPurpose:        models.PurposeTourism,
		TravelHistoryTrips5y: 4,
	}
}

func TestRunBaseline(t *testing.T) {
	res := Run(baseProfile())
	if res.RefusalRiskScore < 0.05 || res.RefusalRiskScore > 0.98 {
		t.Errorf("refusal risk out of bounds: %v", res.RefusalRiskScore)
	}
	if res.ReadinessScore < 0 || res.ReadinessScore > 100 {
		t.Errorf("readiness out of bounds: %v", res.ReadinessScore)
	}
	if len(res.AntiScamWarnings) == 0 || len(res.Disclaimers) == 0 {
		t.Error("anti-scam warnings and disclaimers must always be present")
	}
	if len(res.RecommendedVisaTypes) == 0 {
		t.Error("expected at least one visa type recommendation")
	}
}

func TestRefusalsRaiseRisk(t *testing.T) {
	clean := Run(baseProfile())
	withRefusal := baseProfile()
	withRefusal.PriorVisaRefusals = 2
	refused := Run(withRefusal)
	if refused.RefusalRiskScore <= clean.RefusalRiskScore {
		t.Errorf("refusals should raise risk: %v vs %v", refused.RefusalRiskScore, clean.RefusalRiskScore)
	}
}

func TestNoTravelHistoryRaisesRisk(t *testing.T) {
	seasoned := Run(baseProfile())
	p := baseProfile()
	p.TravelHistoryTrips5y = 0
	fresh := Run(p)
	if fresh.RefusalRiskScore <= seasoned.RefusalRiskScore {
		t.Errorf("no history should raise risk: %v vs %v", fresh.RefusalRiskScore, seasoned.RefusalRiskScore)
	}
}

func TestDifficultyTiers(t *testing.T) {
	// Frequent traveler, employed, sponsored: low band.
	sponsor := true
	easy := baseProfile()
	easy.TravelHistoryTrips5y = 8
	easy.FinancialProfile = &models.FinancialProfile{SponsorAvailable: &sponsor}
	if res := Run(easy); res.DifficultyLevel != models.DifficultyLow {
		t.Errorf("easy profile difficulty = %s, want low", res.DifficultyLevel)
	}

	// Refusals, no history, no job, no finances: high band.
	hard := &models.UserProfile{
		Age:               20,
		EmploymentStatus:  models.EmploymentUnemployed,
		TravelPurpose:     models.PurposeTourism,
		PriorVisaRefusals: 3,
	}
	if res := Run(hard); res.DifficultyLevel != models.DifficultyHigh {
		t.Errorf("hard profile difficulty = %s, want high", res.DifficultyLevel)
	}
}

func TestMissingFieldsRecorded(t *testing.T) {
	res := Run(&models.UserProfile{Age: 30, EmploymentStatus: models.EmploymentOther, TravelPurpose: models.PurposeOther})
	if len(res.Assumptions) == 0 {
		t.Error("expected assumptions for missing nationality, profession and finances")
	}
	if len(res.KeyRisks) == 0 {
		t.Error("expected key risks for an empty profile")
	}
}

func TestNilProfileIsAnonymous(t *testing.T) {
	res := Run(nil)
	if res == nil {
		t.Fatal("nil profile must still yield a diagnostic")
	}
	if res.RefusalRiskScore < 0.05 || res.RefusalRiskScore > 0.98 {
		t.Errorf("refusal risk out of bounds: %v", res.RefusalRiskScore)
	}
	if len(res.Assumptions) == 0 {
		t.Error("expected assumptions for an anonymous applicant")
	}
}

func TestNegativeInputsClamped(t *testing.T) {
	p := baseProfile()
	p.Age = -5
	p.TravelHistoryTrips5y = -1
	p.PriorVisaRefusals = -2
	res := Run(p)
	if res.RefusalRiskScore < 0.05 || res.RefusalRiskScore > 0.98 {
		t.Errorf("risk out of bounds after clamping: %v", res.RefusalRiskScore)
	}
	if len(res.Assumptions) < 3 {
		t.Errorf("expected assumptions for each negative input, got %v", res.Assumptions)
	}
}

func TestDestinationHintDrivesRegions(t *testing.T) {
	p := baseProfile()
	p.DestinationRegionHint = "Schengen"
	res := Run(p)
	if len(res.EligibleRegions) != 1 || res.EligibleRegions[0].Label != "Schengen" {
		t.Errorf("expected single hinted region, got %v", res.EligibleRegions)
	}

	p.DestinationRegionHint = ""
	res = Run(p)
	if len(res.EligibleRegions) < 3 {
		t.Errorf("expected generic suggestions without a hint, got %d", len(res.EligibleRegions))
	}
}

func TestVisaTypePerPurpose(t *testing.T) {
	tests := []struct {
		purpose models.TravelPurpose
		label   string
	}{
		{models.PurposeTourism, "Visitor / tourism visa"},
		{models.PurposeBusiness, "Business visitor visa"},
		{models.PurposeStudy, "Student visa"},
		{models.PurposeFamily, "Family visit / reunification visa (per country)"},
		{models.PurposeTransit, "Transit visa (if required)"},
		{models.PurposeMedical, "Medical / treatment visa"},
		{models.PurposeOther, "Visa type to clarify"},
	}
	for _, tt := range tests {
		t.Run(string(tt.purpose), func(t *testing.T) {
			p := baseProfile()
			p.TravelPurpose = tt.purpose
			res := Run(p)
			if len(res.RecommendedVisaTypes) != 1 || res.RecommendedVisaTypes[0].Label != tt.label {
				t.Errorf("got %v, want label %q", res.RecommendedVisaTypes, tt.label)
			}
			c := res.RecommendedVisaTypes[0].Confidence
			if c < 0.05 || c > 0.95 {
				t.Errorf("confidence out of bounds: %v", c)
			}
		})
	}
}
