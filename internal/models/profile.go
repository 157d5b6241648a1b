package models

// TravelPurpose is the declared purpose of the trip.
type TravelPurpose string

const (
	PurposeTourism  TravelPurpose = "tourism"
	PurposeBusiness TravelPurpose = "business"
	PurposeStudy    TravelPurpose = "study"
	PurposeFamily   TravelPurpose = "family"
	PurposeTransit  TravelPurpose = "transit"
	PurposeMedical  TravelPurpose = "medical"
	PurposeOther    TravelPurpose = "other"
)

// EmploymentStatus is the applicant's declared professional situation.
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentRetired      EmploymentStatus = "retired"
	EmploymentOther        EmploymentStatus = "other"
)

// FinancialProfile is an optional, minimal financial picture. It is used only
// to detect coherence risks (budget vs. duration), never to suggest
// falsifying anything.
type FinancialProfile struct {
	MonthlyIncomeUSD *float64 `json:"monthly_income_usd,omitempty"`
	SavingsUSD       *float64 `json:"savings_usd,omitempty"`
	SponsorAvailable *bool    `json:"sponsor_available,omitempty"`
}

// UserProfile is the minimal applicant profile for a diagnostic.
type UserProfile struct {
	Nationality           string            `json:"nationality"`
	Age                   int               `json:"age"`
	Profession            string            `json:"profession"`
	EmploymentStatus      EmploymentStatus  `json:"employment_status,omitempty"`
	TravelPurpose         TravelPurpose     `json:"travel_purpose,omitempty"`
	TravelHistoryTrips5y  int               `json:"travel_history_trips_last_5y,omitempty"`
	PriorVisaRefusals     int               `json:"prior_visa_refusals,omitempty"`
	DestinationRegionHint string            `json:"destination_region_hint,omitempty"`
	FinancialProfile      *FinancialProfile `json:"financial_profile,omitempty"`
	Notes                 string            `json:"notes,omitempty"`
}

// Recommendation is an explainable suggestion with a 0..1 confidence.
type Recommendation struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Why        []string `json:"why,omitempty"`
}

// DifficultyLevel is the diagnostic's coarse difficulty tier.
type DifficultyLevel string

const (
	DifficultyLow    DifficultyLevel = "low"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHigh   DifficultyLevel = "high"
)

// DiagnosticResult is the profile-risk module's structured output. The
// dossier verifier only depends on its shape, not on how it was computed.
type DiagnosticResult struct {
	EligibleRegions      []Recommendation `json:"eligible_countries_or_regions"`
	RecommendedVisaTypes []Recommendation `json:"recommended_visa_types"`
	DifficultyLevel      DifficultyLevel  `json:"difficulty_level"`
	RefusalRiskScore     float64          `json:"refusal_risk_score"`
	ReadinessScore       float64          `json:"readiness_score"`
	KeyRisks             []string         `json:"key_risks"`
	NextBestActions      []string         `json:"next_best_actions"`
	AntiScamWarnings     []string         `json:"anti_scam_warnings"`
	Assumptions          []string         `json:"assumptions"`
	Disclaimers          []string         `json:"disclaimers"`
}
