// Package cli provides output writers for the Visado command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/visado/visado/internal/models"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one finding per line, grep-friendly.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value onto an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "compact":
		return OutputCompact, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCheckResult writes a document coherence result in the given format.
func WriteCheckResult(w io.Writer, result *models.DocumentCheckResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, result)
	case OutputCompact:
		for _, t := range result.MissingDocumentTypes {
			fmt.Fprintf(w, "missing\t%s\n", t)
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "%s\t%s\t%s\n", issue.Severity, issue.Code, issue.Message)
		}
		return nil
	default:
		writeCheckResultText(w, result)
		return nil
	}
}

func writeCheckResultText(w io.Writer, result *models.DocumentCheckResult) {
	fmt.Fprintf(w, "\n%d issue(s), %d missing document type(s)\n\n",
		len(result.Issues), len(result.MissingDocumentTypes))
	if len(result.MissingDocumentTypes) > 0 {
		fmt.Fprintln(w, "Missing documents:")
		for _, t := range result.MissingDocumentTypes {
			fmt.Fprintf(w, "  - %s\n", t)
		}
		fmt.Fprintln(w)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(issue.Severity)), issue.Code)
		fmt.Fprintf(w, "%s\n", issue.Message)
		for _, why := range issue.Why {
			fmt.Fprintf(w, "  why: %s\n", why)
		}
		for _, fix := range issue.SuggestedFix {
			fmt.Fprintf(w, "  fix: %s\n", fix)
		}
	}
	if len(result.Assumptions) > 0 {
		fmt.Fprintln(w, "\nAssumptions:")
		for _, a := range result.Assumptions {
			fmt.Fprintf(w, "  - %s\n", a)
		}
	}
	fmt.Fprintln(w)
	for _, d := range result.Disclaimers {
		fmt.Fprintf(w, "%s\n", d)
	}
}

// WriteVerifyResult writes a dossier verification result in the given format.
func WriteVerifyResult(w io.Writer, result *models.DossierVerificationResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, result)
	case OutputCompact:
		fmt.Fprintf(w, "readiness\t%s\t%.1f\n", result.ReadinessLevel, result.ReadinessScore)
		fmt.Fprintf(w, "coherence\t%.1f\n", result.CoherenceScore)
		fmt.Fprintf(w, "refusal_risk\t%.3f\n", result.Diagnostic.RefusalRiskScore)
		for _, r := range result.KeyRisks {
			fmt.Fprintf(w, "risk\t%s\n", r)
		}
		return nil
	default:
		writeVerifyResultText(w, result)
		return nil
	}
}

func writeVerifyResultText(w io.Writer, result *models.DossierVerificationResult) {
	fmt.Fprintf(w, "\nDossier: %s visa, destination %s\n",
		result.VisaType, result.DestinationRegion)
	fmt.Fprintf(w, "Readiness:     %.1f/100 (%s)\n", result.ReadinessScore, result.ReadinessLevel)
	fmt.Fprintf(w, "Coherence:     %.1f/100\n", result.CoherenceScore)
	fmt.Fprintf(w, "Refusal risk:  %.3f (difficulty %s)\n",
		result.Diagnostic.RefusalRiskScore, result.Diagnostic.DifficultyLevel)
	if len(result.KeyRisks) > 0 {
		fmt.Fprintln(w, "\nKey risks:")
		for _, r := range result.KeyRisks {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	if len(result.NextBestActions) > 0 {
		fmt.Fprintln(w, "\nNext best actions:")
		for _, a := range result.NextBestActions {
			fmt.Fprintf(w, "  - %s\n", a)
		}
	}
	fmt.Fprintln(w)
	for _, d := range result.Disclaimers {
		fmt.Fprintf(w, "%s\n", d)
	}
}

// WriteFinalResult writes a final verification report in the given format.
func WriteFinalResult(w io.Writer, result *models.FinalCheckResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, result)
	case OutputCompact:
		fmt.Fprintf(w, "status\t%s\n", result.ReadinessStatus)
		for _, f := range result.Findings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.RiskLevel, f.Status, f.ID, f.Issue)
		}
		return nil
	default:
		writeFinalResultText(w, result)
		return nil
	}
}

func writeFinalResultText(w io.Writer, result *models.FinalCheckResult) {
	fmt.Fprintf(w, "\nFinal verification: %s\n", result.ReadinessStatus)
	fmt.Fprintf(w, "Checks: %d total | High: %d  Medium: %d  Low: %d\n\n",
		result.TotalChecks,
		result.Counts[models.RiskHigh],
		result.Counts[models.RiskMedium],
		result.Counts[models.RiskLow])
	for _, f := range result.Findings {
		marker := " "
		if f.Status == models.StatusCompleted {
			marker = "x"
		}
		fmt.Fprintf(w, "[%s] %-6s %s: %s\n", marker, f.RiskLevel, f.Issue, Truncate(f.Description, 100))
	}
	if len(result.NextStepsBlocked) > 0 {
		fmt.Fprintln(w, "\nAct now:")
		for _, s := range result.NextStepsBlocked {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if len(result.NextStepsReady) > 0 {
		fmt.Fprintln(w, "\nCan wait:")
		for _, s := range result.NextStepsReady {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	fmt.Fprintf(w, "\n%s\n", result.FinalUserPrompt)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
