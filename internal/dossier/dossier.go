// Package dossier combines the profile diagnostic and the document coherence
// check into one readiness verdict. The goal is prevention: surface
// inconsistencies and weak documents before submission, never automate a
// submission.
package dossier

import (
	"fmt"
	"math"
	"time"

	"github.com/visado/visado/internal/coherence"
	"github.com/visado/visado/internal/diagnostic"
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// Scoring weights. The coherence score starts high and takes penalties per
// issue; readiness blends the diagnostic and the coherence result so neither
// side is double counted too harshly.
const (
	baseCoherence      = 92.0
	riskPenalty        = 18.0
	warningPenalty     = 8.0
	infoPenalty        = 2.0
	missingDocPenalty  = 6.0
	diagnosticWeight   = 0.55
	coherenceWeight    = 0.45
	readyThreshold     = 75.0
	almostThreshold    = 55.0
	readyMaxRefusalRsk = 0.55
)

// DiagnosticFunc produces a profile diagnostic. Injectable so callers can
// substitute a precomputed or stubbed diagnostic.
type DiagnosticFunc func(*models.UserProfile) *models.DiagnosticResult

// Verifier runs full dossier verifications.
type Verifier struct {
	diagnose DiagnosticFunc
}

// NewVerifier returns a Verifier backed by the standard profile diagnostic.
func NewVerifier() *Verifier {
	return &Verifier{diagnose: diagnostic.Run}
}

// WithDiagnostic overrides the diagnostic function.
func (v *Verifier) WithDiagnostic(fn DiagnosticFunc) *Verifier {
	v.diagnose = fn
	return v
}

// Verify checks the dossier against today's date.
func (v *Verifier) Verify(profile *models.UserProfile, documents []models.Document, visaType, destinationRegion string) *models.DossierVerificationResult {
	return v.VerifyAt(profile, documents, visaType, destinationRegion, time.Now())
}

// VerifyAt checks the dossier against an explicit reference date.
func (v *Verifier) VerifyAt(profile *models.UserProfile, documents []models.Document, visaType, destinationRegion string, today time.Time) *models.DossierVerificationResult {
	diag := v.diagnose(profile)
	docCheck := coherence.CheckDocumentsAt(documents, visaType, destinationRegion, today)

	coherenceScore := baseCoherence
	for _, issue := range docCheck.Issues {
		coherenceScore -= issuePenalty(issue.Severity)
	}
	coherenceScore -= missingDocPenalty * float64(len(docCheck.MissingDocumentTypes))
	coherenceScore = clamp(coherenceScore, 0, 100)

	readiness := clamp(diagnosticWeight*diag.ReadinessScore+coherenceWeight*coherenceScore, 0, 100)

	var level models.ReadinessLevel
	switch {
	case readiness >= readyThreshold && diag.RefusalRiskScore <= readyMaxRefusalRsk && len(docCheck.MissingDocumentTypes) == 0:
		level = models.ReadinessReady
	case readiness >= almostThreshold:
		level = models.ReadinessAlmostReady
	default:
		level = models.ReadinessNotReady
	}

	risks := append([]string{}, diag.KeyRisks...)
	actions := append([]string{}, diag.NextBestActions...)
	for _, t := range docCheck.MissingDocumentTypes {
		risks = append(risks, fmt.Sprintf("Missing document (template): %s", t))
		actions = append(actions, "Complete the official checklist and add the corresponding document.")
	}
	for _, issue := range docCheck.Issues {
		if issue.Severity == models.SeverityRisk || issue.Severity == models.SeverityWarning {
			risks = append(risks, issue.Message)
			actions = append(actions, issue.SuggestedFix...)
		}
	}

	disclaimers := make([]string, 0, len(diag.Disclaimers)+len(docCheck.Disclaimers)+1)
	disclaimers = append(disclaimers, diag.Disclaimers...)
	disclaimers = append(disclaimers, docCheck.Disclaimers...)
	disclaimers = append(disclaimers, "This dossier score is a decision aid to prioritize risks. It does not guarantee an outcome.")

	return &models.DossierVerificationResult{
		VisaType:          visaType,
		DestinationRegion: destinationRegion,
		Diagnostic:        *diag,
		DocumentCheck:     *docCheck,
		CoherenceScore:    round1(coherenceScore),
		ReadinessScore:    round1(readiness),
		ReadinessLevel:    level,
		KeyRisks:          normalize.Dedup(risks),
		NextBestActions:   normalize.Dedup(actions),
		Disclaimers:       normalize.Dedup(disclaimers),
	}
}

func issuePenalty(s models.Severity) float64 {
	switch s {
	case models.SeverityRisk:
		return riskPenalty
	case models.SeverityWarning:
		return warningPenalty
	default:
		return infoPenalty
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
