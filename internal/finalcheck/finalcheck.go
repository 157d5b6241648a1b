// Package finalcheck produces the prioritized pre-submission report: every
// dossier issue becomes an actionable finding with a stable id, a risk
// grade, a suggested action and a UI routing hint, folded together with the
// travel, cost and timeline signals the rest of the application tracks.
package finalcheck

import (
	"fmt"
	"strings"
	"time"

	"github.com/visado/visado/internal/dossier"
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// TravelSignals summarizes itinerary planning state.
type TravelSignals struct {
	TravelPlanReady bool `json:"travel_plan_ready"`
	TravelHighRisks int  `json:"travel_high_risks"`
}

// CostSignals summarizes fee and payment planning state.
type CostSignals struct {
	CostsReady         bool `json:"costs_ready"`
	SuspiciousFeesHigh int  `json:"suspicious_fees_high"`
	UnknownCount       int  `json:"unknown_count"`
}

// TimelineSignals summarizes appointment and deadline state.
type TimelineSignals struct {
	AppointmentReady bool `json:"appointment_ready"`
	OverlapConflicts int  `json:"overlap_conflicts"`
}

// Input carries everything the final verifier needs for one run.
type Input struct {
	Profile           *models.UserProfile
	VisaType          string
	DestinationRegion string
	Documents         []models.Document
	Travel            *TravelSignals
	Costs             *CostSignals
	Timeline          *TimelineSignals
	CompletedFindings []string
}

const finalUserPrompt = "Your final verification is complete. Would you like to:\n" +
	"1) Fix the High-risk items first, now?\n" +
	"2) Review the Medium/Low checks?\n" +
	"3) Generate a submission readiness report?"

const maxNextSteps = 8

// Run executes the final verification against today's date.
func Run(in Input) *models.FinalCheckResult {
	return RunAt(in, time.Now())
}

// RunAt executes the final verification against an explicit reference date.
func RunAt(in Input, today time.Time) *models.FinalCheckResult {
	dest := normalize.Text(in.DestinationRegion)
	vt := normalize.Text(in.VisaType)

	completed := make(map[string]struct{}, len(in.CompletedFindings))
	for _, id := range in.CompletedFindings {
		if s := strings.ToLower(normalize.Text(id)); s != "" {
			completed[s] = struct{}{}
		}
	}
	status := func(id string) models.FindingStatus {
		if _, ok := completed[strings.ToLower(id)]; ok {
			return models.StatusCompleted
		}
		return models.StatusPending
	}

	res := dossier.NewVerifier().VerifyAt(in.Profile, in.Documents, vt, dest, today)
	var findings []models.Finding

	for _, t := range res.DocumentCheck.MissingDocumentTypes {
		id := fmt.Sprintf("missing_%s", t)
		risk := models.RiskMedium
		if t == models.DocPassport || t == models.DocBankStatement {
			risk = models.RiskHigh
		}
		findings = append(findings, models.Finding{
			ID:              id,
			Issue:           fmt.Sprintf("Missing document: %s", t),
			Description:     "Document expected by the checklist template not found in the vault.",
			RiskLevel:       risk,
			Priority:        risk,
			SuggestedAction: "Add this document in Documents (readable scan, recent version if applicable).",
			Status:          status(id),
			Action: &models.UIAction{
				ActionKey: "open_documents",
				Params:    map[string]any{"doc_type": string(t)},
			},
		})
	}

	for _, issue := range res.DocumentCheck.Issues {
		id := fmt.Sprintf("doc_issue_%s", strings.ToLower(normalize.Text(issue.Code)))
		risk := riskFromSeverity(issue.Severity)
		action := &models.UIAction{ActionKey: "open_dossier"}
		if len(issue.Evidence) > 0 {
			e := issue.Evidence[0]
			if normalize.Text(e.DocID) != "" {
				action = &models.UIAction{
					ActionKey: "open_document_edit",
					Params:    map[string]any{"id": e.DocID, "focus": e.ExtractedKey},
				}
			} else {
				action = &models.UIAction{
					ActionKey: "open_document_add",
					Params:    map[string]any{"doc_type": e.DocType},
				}
			}
		}

		description := "Inconsistency detected by dossier analysis."
		if why := joinWhy(issue.Why); why != "" {
			description = why
		}
		suggested := "Correct the document or value and re-run the verification."
		if len(issue.SuggestedFix) > 0 && normalize.Text(issue.SuggestedFix[0]) != "" {
			suggested = normalize.Text(issue.SuggestedFix[0])
		}

		findings = append(findings, models.Finding{
			ID:              id,
			Issue:           issue.Message,
			Description:     description,
			RiskLevel:       risk,
			Priority:        risk,
			SuggestedAction: suggested,
			Status:          status(id),
			Action:          action,
		})
	}

	findings = append(findings, travelFindings(in.Travel, status)...)
	findings = append(findings, costFindings(in.Costs, status)...)
	findings = append(findings, timelineFindings(in.Timeline, status)...)

	if in.Profile != nil && in.Profile.PriorVisaRefusals >= 1 {
		id := "prior_refusals_review"
		findings = append(findings, models.Finding{
			ID:              id,
			Issue:           "Prior refusal: documented response recommended",
			Description:     "A previous refusal raises the level of scrutiny. A clear answer to the refusal reasons helps coherence.",
			RiskLevel:       models.RiskMedium,
			Priority:        models.RiskHigh,
			SuggestedAction: "Analyze the refusal and prepare a factual explanatory letter with corrected proof.",
			Status:          status(id),
			Action:          &models.UIAction{ActionKey: "open_refusal_review"},
		})
	}

	counts := map[models.RiskLevel]int{models.RiskHigh: 0, models.RiskMedium: 0, models.RiskLow: 0}
	for _, f := range findings {
		if f.Status == models.StatusPending {
			counts[f.RiskLevel]++
		}
	}

	var readiness models.ReadinessStatus
	switch {
	case counts[models.RiskHigh] > 0:
		readiness = models.ReadinessBlocked
	case counts[models.RiskMedium] > 0:
		readiness = models.ReadinessNeedsAttention
	default:
		readiness = models.ReadinessOK
	}

	var actNow, canWait []string
	for _, f := range findings {
		if f.Status != models.StatusPending {
			continue
		}
		if f.RiskLevel == models.RiskHigh || f.RiskLevel == models.RiskMedium {
			if len(actNow) < maxNextSteps {
				actNow = append(actNow, fmt.Sprintf("%s: %s", f.Issue, f.SuggestedAction))
			}
		} else if len(canWait) < maxNextSteps {
			canWait = append(canWait, fmt.Sprintf("%s (can wait)", f.Issue))
		}
	}

	return &models.FinalCheckResult{
		TotalChecks:      len(findings),
		Counts:           counts,
		ReadinessStatus:  readiness,
		Findings:         findings,
		NextStepsReady:   actNow,
		NextStepsBlocked: canWait,
		FinalUserPrompt:  finalUserPrompt,
	}
}

func riskFromSeverity(s models.Severity) models.RiskLevel {
	switch s {
	case models.SeverityRisk:
		return models.RiskHigh
	case models.SeverityWarning:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// joinWhy condenses the first two rationale lines into one description.
func joinWhy(why []string) string {
	var parts []string
	for _, w := range why {
		if s := normalize.Text(w); s != "" {
			parts = append(parts, s)
		}
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, "; ")
}

func travelFindings(ts *TravelSignals, status func(string) models.FindingStatus) []models.Finding {
	if ts == nil {
		ts = &TravelSignals{}
	}
	if !ts.TravelPlanReady {
		id := "travel_missing"
		return []models.Finding{{
			ID:              id,
			Issue:           "Itinerary not finalized",
			Description:     "No itinerary or export detected. Without a coherent plan the dossier may be judged weak.",
			RiskLevel:       models.RiskMedium,
			Priority:        models.RiskHigh,
			SuggestedAction: "Build a compliant itinerary and export the key dates into the timeline.",
			Status:          status(id),
			Action:          &models.UIAction{ActionKey: "open_travel"},
		}}
	}
	if ts.TravelHighRisks > 0 {
		id := "travel_high_alerts"
		return []models.Finding{{
			ID:              id,
			Issue:           "High-risk itinerary alerts",
			Description:     "The itinerary carries High alerts (duration, budget, compliance) to resolve before submitting.",
			RiskLevel:       models.RiskHigh,
			Priority:        models.RiskHigh,
			SuggestedAction: "Open the travel planner, resolve the High alerts, then re-export the timeline.",
			Status:          status(id),
			Action:          &models.UIAction{ActionKey: "open_travel"},
		}}
	}
	return nil
}

func costFindings(cs *CostSignals, status func(string) models.FindingStatus) []models.Finding {
	if cs == nil {
		cs = &CostSignals{}
	}
	var out []models.Finding
	if !cs.CostsReady {
		id := "costs_missing"
		out = append(out, models.Finding{
			ID:              id,
			Issue:           "Cost estimate missing",
			Description:     "No fee or payment estimate detected. Risk of surprises or unofficial fees.",
			RiskLevel:       models.RiskMedium,
			Priority:        models.RiskMedium,
			SuggestedAction: "Record the official fees and review the suspicious-fee alerts.",
			Status:          status(id),
			Action:          &models.UIAction{ActionKey: "open_costs"},
		})
	}
	if cs.SuspiciousFeesHigh > 0 {
		id := "costs_suspicious"
		out = append(out, models.Finding{
			ID:              id,
			Issue:           "Suspicious fees detected",
			Description:     "Some fees look inflated, unofficial or duplicated.",
			RiskLevel:       models.RiskHigh,
			Priority:        models.RiskHigh,
			SuggestedAction: "Check the official fee schedule and remove or justify unofficial fees before paying.",
			Status:          status(id),
			Action:          &models.UIAction{ActionKey: "open_costs"},
		})
	}
	if cs.UnknownCount > 0 {
		id := "costs_unknown"
		out = append(out, models.Finding{
			ID:              id,
			Issue:           "Unknown fee amounts",
			Description:     "Some amounts are empty: the total is provisional.",
			RiskLevel:       models.RiskLow,
			Priority:        models.RiskLow,
			SuggestedAction: "Fill in the missing amounts where possible (official fees, biometrics, service).",
			Status:          status(id),
			Action:          &models.UIAction{ActionKey: "open_costs"},
		})
	}
	return out
}

func timelineFindings(tl *TimelineSignals, status func(string) models.FindingStatus) []models.Finding {
	if tl == nil {
		tl = &TimelineSignals{}
	}
	var out []models.Finding
	if !tl.AppointmentReady {
		id := "appointment_missing"
		out = append(out, models.Finding{
			ID:              id,
			Issue:           "Appointment or biometrics not scheduled",
			Description:     "No appointment or biometrics event detected in the timeline.",
			RiskLevel:       models.RiskMedium,
			Priority:        models.RiskMedium,
			SuggestedAction: "Open the official portal or approved center, book the appointment, then record the date in the timeline.",
			Status:          status(id),
			Action:          &models.UIAction{ActionKey: "open_appointments"},
		})
	}
	if tl.OverlapConflicts > 0 {
		id := "timeline_overlap"
		out = append(out, models.Finding{
			ID:              id,
			Issue:           "Date conflicts detected",
			Description:     "Possible overlap between travel dates, obligations and appointments.",
			RiskLevel:       models.RiskMedium,
			Priority:        models.RiskHigh,
			SuggestedAction: "Review the timeline and adjust dates or events before submitting.",
			Status:          status(id),
			Action:          &models.UIAction{ActionKey: "open_appointments"},
		})
	}
	return out
}
