package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/visado/visado/internal/config"
	"github.com/visado/visado/internal/extract"
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/offices"
	"github.com/visado/visado/internal/storage"
	"github.com/visado/visado/internal/watcher"
)

func newTestServer(t *testing.T) (*Server, *storage.SQLiteStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	officeIdx, err := offices.NewIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = officeIdx.Close() })
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	srv := NewServer(store, officeIdx, extract.NewExtractor(), cfg, zap.NewNop())
	return srv, store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHandleCheckDocuments(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	body := map[string]any{
		"visa_type":          "tourist",
		"destination_region": "schengen",
		"documents": []map[string]any{
			{
				"doc_id":       "p1",
				"doc_type":     "passport",
				"expires_date": "2020-01-01",
				"extracted":    map[string]any{"full_name": "JOHN SMITH", "passport_number": "X1234567"},
			},
		},
	}
	w := postJSON(t, router, "/api/v1/check-documents", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	result := decodeBody[models.DocumentCheckResult](t, w)
	if !result.HasIssue("PASSPORT_EXPIRED") {
		t.Errorf("expected PASSPORT_EXPIRED, got %+v", result.Issues)
	}
	if len(result.MissingDocumentTypes) == 0 {
		t.Error("expected missing documents for a passport-only dossier")
	}
}

func TestHandleCheckDocuments_malformedBody(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/check-documents", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleCheckDocuments_badFieldDataDoesNotError(t *testing.T) {
	srv, _ := newTestServer(t)

	// Garbage field values become findings, never a 500.
	body := map[string]any{
		"documents": []map[string]any{
			{
				"doc_id":   "b1",
				"doc_type": "bank_statement",
				"extracted": map[string]any{
					"ending_balance_usd": "not a number",
					"issued_date":        "meaningless",
				},
			},
		},
	}
	w := postJSON(t, srv.Router(), "/api/v1/check-documents", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	result := decodeBody[models.DocumentCheckResult](t, w)
	if !result.HasIssue("BANK_BALANCE_UNPARSABLE") {
		t.Errorf("expected BANK_BALANCE_UNPARSABLE, got %+v", result.Issues)
	}
}

func TestHandleVerifyDossier(t *testing.T) {
	srv, store := newTestServer(t)

	body := map[string]any{
		"visa_type":          "tourist",
		"destination_region": "japan",
		"profile": models.UserProfile{
			Nationality:          "FR",
			Age:                  34,
			Profession:           "engineer",
			EmploymentStatus:     models.EmploymentEmployed,
			TravelPurpose:        models.PurposeTourism,
			TravelHistoryTrips5y: 4,
		},
		"documents": []map[string]any{},
	}
	w := postJSON(t, srv.Router(), "/api/v1/verify-dossier", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	result := decodeBody[models.DossierVerificationResult](t, w)
	if result.ReadinessScore < 0 || result.ReadinessScore > 100 {
		t.Errorf("readiness score out of range: %v", result.ReadinessScore)
	}
	if result.ReadinessLevel == "" {
		t.Error("readiness level should be set")
	}

	// Each verify run is stored as a snapshot.
	n, err := store.CountVerifications(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored snapshot, got %d", n)
	}
}

func TestHandleVerifyDossier_noProfile(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{
		"visa_type":          "tourist",
		"destination_region": "schengen",
		"documents":          []map[string]any{},
	}
	w := postJSON(t, srv.Router(), "/api/v1/verify-dossier", body)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous verify should succeed, status = %d, body %s", w.Code, w.Body.String())
	}
	result := decodeBody[models.DossierVerificationResult](t, w)
	if result.ReadinessLevel == "" {
		t.Error("readiness level should be set")
	}
}

func TestHandleFinalCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{
		"visa_type":          "tourist",
		"destination_region": "schengen",
		"documents":          []map[string]any{},
		"travel_signals":     map[string]any{"travel_plan_ready": true},
		"cost_signals":       map[string]any{"costs_ready": true},
		"timeline_signals":   map[string]any{"appointment_ready": true},
	}
	w := postJSON(t, srv.Router(), "/api/v1/final-check", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	result := decodeBody[models.FinalCheckResult](t, w)
	if result.ReadinessStatus != models.ReadinessBlocked {
		t.Errorf("empty dossier should be blocked, got %s", result.ReadinessStatus)
	}
	if result.TotalChecks == 0 {
		t.Error("expected findings for an empty dossier")
	}
}

func TestDocumentsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	content := "Passport No: X1234567\nFull name: JOHN SMITH\nDate of expiry: 2031-04-01"
	body := map[string]any{
		"doc_type":       "passport",
		"filename":       "passport.txt",
		"content_base64": base64.StdEncoding.EncodeToString([]byte(content)),
	}
	w := postJSON(t, router, "/api/v1/documents", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	created := decodeBody[models.Document](t, w)
	if created.DocID == "" {
		t.Fatal("doc_id should be generated")
	}
	if created.Extracted["passport_number"] != "X1234567" {
		t.Errorf("extracted fields missing: %v", created.Extracted)
	}
	if created.ExpiresDate == nil {
		t.Error("expires_date should be derived from mined fields")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocID, nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("get status = %d", w2.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req)
	if w3.Code != http.StatusOK {
		t.Fatalf("list status = %d", w3.Code)
	}
	list := decodeBody[struct {
		Count int `json:"count"`
	}](t, w3)
	if list.Count != 1 {
		t.Errorf("list count = %d, want 1", list.Count)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+created.DocID, nil)
	w4 := httptest.NewRecorder()
	router.ServeHTTP(w4, req)
	if w4.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w4.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocID, nil)
	w5 := httptest.NewRecorder()
	router.ServeHTTP(w5, req)
	if w5.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w5.Code)
	}
}

func TestHandleGetDocument_notFound(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/nope", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleOfficesSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/offices/search?q=london&limit=5", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeBody[struct {
		Count int `json:"count"`
	}](t, w)
	if resp.Count == 0 {
		t.Error("expected office hits for london")
	}
}

func TestHandleStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeBody[map[string]any](t, w)
	if _, ok := resp["documents"]; !ok {
		t.Error("status should report document count")
	}
	if _, ok := resp["offices"]; !ok {
		t.Error("status should report office count")
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestVaultEndpoints_notEnabled(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vault/directories", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
}

func TestVaultEndpoints_addListRemove(t *testing.T) {
	srv, _ := newTestServer(t)
	vault := watcher.New(nil, []string{".txt"}, true, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := vault.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer vault.Stop()
	srv.WithVault(vault, "")
	router := srv.Router()

	dir := t.TempDir()
	w := postJSON(t, router, "/api/v1/vault/directories", map[string]any{"path": dir, "sync": false})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vault/directories", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	resp := decodeBody[struct {
		Directories []string `json:"directories"`
	}](t, w2)
	if len(resp.Directories) != 1 {
		t.Fatalf("directories = %v", resp.Directories)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/vault/directories?path="+dir, nil)
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req)
	if w3.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w3.Code)
	}
	if len(vault.Directories()) != 0 {
		t.Errorf("directories after remove: %v", vault.Directories())
	}
}
