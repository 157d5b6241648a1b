// Package integration provides end-to-end tests (requires real storage).
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/visado/visado/internal/coherence"
	"github.com/visado/visado/internal/dossier"
	"github.com/visado/visado/internal/extract"
	"github.com/visado/visado/internal/fileid"
	"github.com/visado/visado/internal/finalcheck"
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
	"github.com/visado/visado/internal/storage"
)

func writeVaultFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func extractToDocument(t *testing.T, extractor *extract.Extractor, path string) models.Document {
	t.Helper()
	result, err := extractor.ExtractFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return models.Document{
		DocID:       fileid.DocID(path),
		DocType:     extract.GuessDocType(path),
		Filename:    filepath.Base(path),
		IssuedDate:  normalize.ParseISODate(result.Extracted["issued_date"]),
		ExpiresDate: normalize.ParseISODate(result.Extracted["expires_date"]),
		Extracted:   result.Extracted,
	}
}

func TestIntegration_DossierFlow(t *testing.T) {
	dir := t.TempDir()
	passportPath := writeVaultFile(t, dir, "passport.txt",
		"Passport No: X1234567\nFull name: JOHN SMITH\nDate of issue: 2022-06-01\nDate of expiry: 2032-06-01\n")
	bankPath := writeVaultFile(t, dir, "bank_statement.txt",
		"Account holder: JOHN SMITH\nEnding balance: 5,400.00 USD\n")
	insurancePath := writeVaultFile(t, dir, "travel_insurance.txt",
		"Travel insurance certificate\nCoverage: EUR 45,000\nValid until 2027-01-31\n")

	extractor := extract.NewExtractor()
	docs := []models.Document{
		extractToDocument(t, extractor, passportPath),
		extractToDocument(t, extractor, bankPath),
		extractToDocument(t, extractor, insurancePath),
	}
	if docs[0].DocType != models.DocPassport {
		t.Fatalf("passport file typed as %q", docs[0].DocType)
	}
	if docs[0].ExpiresDate == nil {
		t.Fatal("passport expiry not mined from text")
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db", "dossier.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()
	for i := range docs {
		if err := store.UpsertDocument(ctx, &docs[i]); err != nil {
			t.Fatal(err)
		}
	}
	stored, err := store.ListDocuments(ctx, 0, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 3 {
		t.Fatalf("stored documents = %d, want 3", len(stored))
	}

	checkResult := coherence.CheckDocuments(docs, "tourist", "schengen")
	if checkResult.HasIssue("PASSPORT_EXPIRED") {
		t.Error("valid passport flagged as expired")
	}
	foundMissingPhoto := false
	for _, m := range checkResult.MissingDocumentTypes {
		if m == models.DocPassport || m == models.DocBankStatement || m == models.DocTravelInsurance {
			t.Errorf("supplied document type reported missing: %s", m)
		}
		if m == models.DocPhoto {
			foundMissingPhoto = true
		}
	}
	if !foundMissingPhoto {
		t.Error("photo should be reported missing for a tourist dossier")
	}

	profile := &models.UserProfile{
		Nationality:          "FR",
		Age:                  34,
		Profession:           "engineer",
		EmploymentStatus:     models.EmploymentEmployed,
		TravelPurpose:        models.PurposeTourism,
		TravelHistoryTrips5y: 4,
	}
	verifyResult := dossier.NewVerifier().Verify(profile, docs, "tourist", "schengen")
	if verifyResult.ReadinessScore < 0 || verifyResult.ReadinessScore > 100 {
		t.Errorf("readiness score out of range: %f", verifyResult.ReadinessScore)
	}
	if verifyResult.ReadinessLevel == "" {
		t.Error("readiness level not set")
	}
	if err := store.SaveVerification(ctx, &models.VerificationSnapshot{
		ID:                "run-1",
		VisaType:          "tourist",
		DestinationRegion: "schengen",
		Result:            *verifyResult,
	}); err != nil {
		t.Fatal(err)
	}

	finalResult := finalcheck.Run(finalcheck.Input{
		Profile:           profile,
		VisaType:          "tourist",
		DestinationRegion: "schengen",
		Documents:         docs,
	})
	if finalResult.TotalChecks == 0 {
		t.Fatal("final verification produced no checks")
	}
	if finalResult.FindingByID("missing_photo") == nil {
		t.Error("missing photo should surface as a finding")
	}
	switch finalResult.ReadinessStatus {
	case models.ReadinessBlocked, models.ReadinessNeedsAttention, models.ReadinessOK:
	default:
		t.Errorf("unexpected readiness status %q", finalResult.ReadinessStatus)
	}
}

func TestIntegration_ReadinessImprovesAsDossierFills(t *testing.T) {
	profile := &models.UserProfile{
		Nationality:          "FR",
		Age:                  34,
		Profession:           "engineer",
		EmploymentStatus:     models.EmploymentEmployed,
		TravelPurpose:        models.PurposeTourism,
		TravelHistoryTrips5y: 4,
	}
	verifier := dossier.NewVerifier()

	sparse := verifier.Verify(profile, nil, "tourist", "schengen")

	dir := t.TempDir()
	passportPath := writeVaultFile(t, dir, "passport.txt",
		"Passport No: X1234567\nFull name: JOHN SMITH\nDate of expiry: 2032-06-01\n")
	extractor := extract.NewExtractor()
	fuller := verifier.Verify(profile, []models.Document{
		extractToDocument(t, extractor, passportPath),
	}, "tourist", "schengen")

	if fuller.CoherenceScore <= sparse.CoherenceScore {
		t.Errorf("coherence should improve when a passport is added: %f -> %f",
			sparse.CoherenceScore, fuller.CoherenceScore)
	}
	if fuller.ReadinessScore < sparse.ReadinessScore {
		t.Errorf("readiness should not drop when a passport is added: %f -> %f",
			sparse.ReadinessScore, fuller.ReadinessScore)
	}
}

func TestIntegration_StorageSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "dossier.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	doc := models.Document{
		DocID:     "file:abc123",
		DocType:   models.DocPassport,
		Filename:  "passport.txt",
		Extracted: map[string]any{"passport_number": "X1234567"},
	}
	ctx := context.Background()
	if err := store.UpsertDocument(ctx, &doc); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.GetDocument(ctx, "file:abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got.DocType != models.DocPassport || got.Extracted["passport_number"] != "X1234567" {
		t.Errorf("reloaded document mismatch: %+v", got)
	}
}
