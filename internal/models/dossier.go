package models

import "time"

// ReadinessLevel is the blended submit-readiness tier.
type ReadinessLevel string

const (
	ReadinessNotReady    ReadinessLevel = "not_ready"
	ReadinessAlmostReady ReadinessLevel = "almost_ready"
	ReadinessReady       ReadinessLevel = "ready"
)

// DossierVerificationResult combines the profile diagnostic with the document
// coherence check into one explainable readiness picture.
type DossierVerificationResult struct {
	VisaType          string              `json:"visa_type"`
	DestinationRegion string              `json:"destination_region"`
	Diagnostic        DiagnosticResult    `json:"diagnostic"`
	DocumentCheck     DocumentCheckResult `json:"document_check"`
	CoherenceScore    float64             `json:"coherence_score"`
	ReadinessScore    float64             `json:"readiness_score"`
	ReadinessLevel    ReadinessLevel      `json:"readiness_level"`
	KeyRisks          []string            `json:"key_risks"`
	NextBestActions   []string            `json:"next_best_actions"`
	Disclaimers       []string            `json:"disclaimers"`
}

// VerificationSnapshot is a stored run of the dossier verifier, kept so a
// user can compare readiness over time as documents are fixed.
type VerificationSnapshot struct {
	ID                string                    `json:"id"`
	VisaType          string                    `json:"visa_type"`
	DestinationRegion string                    `json:"destination_region"`
	Result            DossierVerificationResult `json:"result"`
	CreatedAt         time.Time                 `json:"created_at"`
}
