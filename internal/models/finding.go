package models

// RiskLevel grades a finding for the final pre-submission report.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// FindingStatus tracks whether the user has already addressed a finding.
type FindingStatus string

const (
	StatusPending       FindingStatus = "Pending"
	StatusCompleted     FindingStatus = "Completed"
	StatusNotApplicable FindingStatus = "Not Applicable"
)

// ReadinessStatus is the final gate outcome.
type ReadinessStatus string

const (
	ReadinessBlocked        ReadinessStatus = "Blocked"
	ReadinessNeedsAttention ReadinessStatus = "Needs Attention"
	ReadinessOK             ReadinessStatus = "Ready"
)

// UIAction is a routing hint for the presentation layer.
type UIAction struct {
	ActionKey string         `json:"action_key"`
	Params    map[string]any `json:"params,omitempty"`
}

// Finding is one actionable item in the final pre-submission report. ID is
// stable for a given triggering condition so callers can mark it completed
// across runs.
type Finding struct {
	ID              string        `json:"id"`
	Issue           string        `json:"issue"`
	Description     string        `json:"description"`
	RiskLevel       RiskLevel     `json:"risk_level"`
	Priority        RiskLevel     `json:"priority"`
	SuggestedAction string        `json:"suggested_action"`
	Status          FindingStatus `json:"status"`
	Action          *UIAction     `json:"action,omitempty"`
}

// FinalCheckResult is the prioritized, gated output of the final verifier.
type FinalCheckResult struct {
	TotalChecks      int               `json:"total_checks"`
	Counts           map[RiskLevel]int `json:"counts"`
	ReadinessStatus  ReadinessStatus   `json:"readiness_status"`
	Findings         []Finding         `json:"findings"`
	NextStepsReady   []string          `json:"next_steps_ready"`
	NextStepsBlocked []string          `json:"next_steps_blocked"`
	FinalUserPrompt  string            `json:"final_user_prompt"`
}

// FindingByID returns the finding with the given id, or nil.
func (r *FinalCheckResult) FindingByID(id string) *Finding {
	for i := range r.Findings {
		if r.Findings[i].ID == id {
			return &r.Findings[i]
		}
	}
	return nil
}
