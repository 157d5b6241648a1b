package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/visado/visado/internal/models"
)

func sampleCheckResult() *models.DocumentCheckResult {
	return &models.DocumentCheckResult{
		MissingDocumentTypes: []models.DocumentType{models.DocBankStatement},
		Issues: []models.DocumentIssue{
			{
				Severity:     models.SeverityRisk,
				Code:         "PASSPORT_EXPIRED",
				Message:      "Passport expired on 2020-01-01.",
				Why:          []string{"An expired passport cannot support any visa application."},
				SuggestedFix: []string{"Renew the passport before anything else."},
			},
		},
		Assumptions: []string{"Destination region assumed: schengen."},
		Disclaimers: []string{"This tool does not provide legal advice."},
	}
}

func TestWriteCheckResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCheckResult(&buf, sampleCheckResult(), OutputJSON); err != nil {
		t.Fatalf("WriteCheckResult(json): %v", err)
	}
	var decoded models.DocumentCheckResult
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded.Issues) != 1 || decoded.Issues[0].Code != "PASSPORT_EXPIRED" {
		t.Errorf("decoded issues: want one PASSPORT_EXPIRED, got %+v", decoded.Issues)
	}
	if len(decoded.MissingDocumentTypes) != 1 {
		t.Errorf("decoded missing_document_types: want 1, got %+v", decoded.MissingDocumentTypes)
	}
}

func TestWriteCheckResult_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCheckResult(&buf, sampleCheckResult(), OutputText); err != nil {
		t.Fatalf("WriteCheckResult(text): %v", err)
	}
	out := buf.String()
	for _, want := range []string{"PASSPORT_EXPIRED", "bank_statement", "Missing documents:", "legal advice"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCheckResult_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCheckResult(&buf, sampleCheckResult(), OutputCompact); err != nil {
		t.Fatalf("WriteCheckResult(compact): %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("compact output: want 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "missing\t") {
		t.Errorf("first compact line should be the missing type, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "PASSPORT_EXPIRED") {
		t.Errorf("second compact line should carry the issue code, got %q", lines[1])
	}
}

func TestWriteVerifyResult_Text(t *testing.T) {
	result := &models.DossierVerificationResult{
		VisaType:          "tourist",
		DestinationRegion: "schengen",
		Diagnostic: models.DiagnosticResult{
			RefusalRiskScore: 0.42,
			DifficultyLevel:  models.DifficultyMedium,
		},
		CoherenceScore:  71.5,
		ReadinessScore:  68.2,
		ReadinessLevel:  models.ReadinessAlmostReady,
		KeyRisks:        []string{"Bank statement is missing."},
		NextBestActions: []string{"Add a recent bank statement."},
		Disclaimers:     []string{"This tool does not provide legal advice."},
	}
	var buf bytes.Buffer
	if err := WriteVerifyResult(&buf, result, OutputText); err != nil {
		t.Fatalf("WriteVerifyResult(text): %v", err)
	}
	out := buf.String()
	for _, want := range []string{"68.2", "almost_ready", "0.420", "Key risks:", "Next best actions:"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteFinalResult_Text(t *testing.T) {
	result := &models.FinalCheckResult{
		TotalChecks:     2,
		Counts:          map[models.RiskLevel]int{models.RiskHigh: 1, models.RiskLow: 1},
		ReadinessStatus: models.ReadinessBlocked,
		Findings: []models.Finding{
			{
				ID:          "missing_passport",
				Issue:       "Passport is missing",
				Description: "No passport was found in the dossier.",
				RiskLevel:   models.RiskHigh,
				Status:      models.StatusPending,
			},
			{
				ID:          "doc_issue_funds_low",
				Issue:       "Funds look low",
				Description: "The stated balance may not cover the trip.",
				RiskLevel:   models.RiskLow,
				Status:      models.StatusCompleted,
			},
		},
		NextStepsBlocked: []string{"Obtain or locate your passport."},
		FinalUserPrompt:  "Resolve the blocking items before submitting.",
	}
	var buf bytes.Buffer
	if err := WriteFinalResult(&buf, result, OutputText); err != nil {
		t.Fatalf("WriteFinalResult(text): %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Blocked") {
		t.Errorf("text output missing readiness status:\n%s", out)
	}
	if !strings.Contains(out, "[x]") {
		t.Errorf("completed finding should render with an x marker:\n%s", out)
	}
	if !strings.Contains(out, "Act now:") {
		t.Errorf("blocked next steps should render under Act now:\n%s", out)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"compact", OutputCompact, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): want error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short: got %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate long: got %q", got)
	}
	if got := Truncate("hello", 0); got != "hello" {
		t.Errorf("Truncate zero maxLen: got %q", got)
	}
}
