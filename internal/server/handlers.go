package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visado/visado/internal/coherence"
	"github.com/visado/visado/internal/config"
	"github.com/visado/visado/internal/dossier"
	"github.com/visado/visado/internal/extract"
	"github.com/visado/visado/internal/finalcheck"
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
	"github.com/visado/visado/internal/storage"
)

// apiDocument is the wire form of a document. Dates arrive as strings so
// callers can send plain ISO dates instead of full RFC 3339 timestamps.
type apiDocument struct {
	DocID       string         `json:"doc_id"`
	DocType     string         `json:"doc_type"`
	Filename    string         `json:"filename"`
	IssuedDate  string         `json:"issued_date"`
	ExpiresDate string         `json:"expires_date"`
	Extracted   map[string]any `json:"extracted"`
	Notes       string         `json:"notes"`
}

func (a *apiDocument) toModel() models.Document {
	return models.Document{
		DocID:       a.DocID,
		DocType:     models.ParseDocumentType(normalize.Text(a.DocType)),
		Filename:    a.Filename,
		IssuedDate:  normalize.ParseISODate(a.IssuedDate),
		ExpiresDate: normalize.ParseISODate(a.ExpiresDate),
		Extracted:   a.Extracted,
		Notes:       a.Notes,
	}
}

func toModelDocuments(in []apiDocument) []models.Document {
	out := make([]models.Document, 0, len(in))
	for i := range in {
		out = append(out, in[i].toModel())
	}
	return out
}

type checkRequest struct {
	Documents         []apiDocument `json:"documents"`
	VisaType          string        `json:"visa_type"`
	DestinationRegion string        `json:"destination_region"`
}

// dossierParams fills in the configured defaults when a request leaves the
// visa type or destination empty.
func (s *Server) dossierParams(visaType, region string) (string, string) {
	if normalize.Text(visaType) == "" {
		visaType = s.config.Dossier.VisaType
	}
	if normalize.Text(region) == "" {
		region = s.config.Dossier.DestinationRegion
	}
	return visaType, region
}

func (s *Server) handleCheckDocuments(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	visaType, region := s.dossierParams(req.VisaType, req.DestinationRegion)
	s.logger.Debug("check documents request",
		zap.Int("documents", len(req.Documents)),
		zap.String("visa_type", visaType),
		zap.String("destination_region", region))
	result := coherence.CheckDocuments(toModelDocuments(req.Documents), visaType, region)
	s.respondJSON(w, http.StatusOK, result)
}

type verifyRequest struct {
	checkRequest
	Profile *models.UserProfile `json:"profile"`
}

func (s *Server) handleVerifyDossier(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	visaType, region := s.dossierParams(req.VisaType, req.DestinationRegion)
	result := dossier.NewVerifier().Verify(req.Profile, toModelDocuments(req.Documents), visaType, region)

	snap := &models.VerificationSnapshot{
		ID:                uuid.NewString(),
		VisaType:          visaType,
		DestinationRegion: region,
		Result:            *result,
	}
	if err := s.storage.SaveVerification(r.Context(), snap); err != nil {
		s.logger.Warn("failed to store verification snapshot", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, result)
}

type finalCheckRequest struct {
	verifyRequest
	Travel              *finalcheck.TravelSignals   `json:"travel_signals"`
	Costs               *finalcheck.CostSignals     `json:"cost_signals"`
	Timeline            *finalcheck.TimelineSignals `json:"timeline_signals"`
	CompletedFindingIDs []string                    `json:"completed_finding_ids"`
}

func (s *Server) handleFinalCheck(w http.ResponseWriter, r *http.Request) {
	var req finalCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	visaType, region := s.dossierParams(req.VisaType, req.DestinationRegion)
	result := finalcheck.Run(finalcheck.Input{
		Profile:           req.Profile,
		VisaType:          visaType,
		DestinationRegion: region,
		Documents:         toModelDocuments(req.Documents),
		Travel:            req.Travel,
		Costs:             req.Costs,
		Timeline:          req.Timeline,
		CompletedFindings: req.CompletedFindingIDs,
	})
	s.respondJSON(w, http.StatusOK, result)
}

type addDocumentRequest struct {
	apiDocument
	ContentBase64 string `json:"content_base64"`
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	doc := req.toModel()
	if doc.DocID == "" {
		doc.DocID = uuid.NewString()
	}

	if req.ContentBase64 != "" {
		content, err := base64.StdEncoding.DecodeString(req.ContentBase64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid content_base64")
			return
		}
		ext := filepath.Ext(doc.Filename)
		text, err := s.extractor.ExtractBytes(content, ext)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "could not extract document content")
			return
		}
		mined := extractFieldsInto(doc.Extracted, text)
		doc.Extracted = mined
		// Typed dates come from the mined fields when the caller sent none.
		if doc.IssuedDate == nil {
			doc.IssuedDate = normalize.ParseISODate(mined["issued_date"])
		}
		if doc.ExpiresDate == nil {
			doc.ExpiresDate = normalize.ParseISODate(mined["expires_date"])
		}
	}

	if err := s.storage.UpsertDocument(r.Context(), &doc); err != nil {
		s.logger.Error("store document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetDocument(r.Context(), id); err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err := s.storage.DeleteDocument(r.Context(), id); err != nil {
		s.logger.Error("delete document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	docs, err := s.storage.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

func (s *Server) handleOfficesSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	region := r.URL.Query().Get("region")
	limit := queryInt(r, "limit", 10)
	results, err := s.offices.Search(r.Context(), query, region, limit)
	if err != nil {
		s.logger.Error("office search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"region":  region,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	verifCount, err := s.storage.CountVerifications(ctx)
	if err != nil {
		s.logger.Error("status: count verifications failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]any{
		"documents":     docCount,
		"verifications": verifCount,
		"offices":       s.offices.Count(),
	}
	configInfo := map[string]any{
		"database_path":              s.config.Storage.DatabasePath,
		"offices_index_path":         s.config.Storage.OfficesIndexPath,
		"default_visa_type":          s.config.Dossier.VisaType,
		"default_destination_region": s.config.Dossier.DestinationRegion,
	}
	if diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.OfficesIndexPath,
	); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVaultDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.vault == nil {
		s.respondError(w, http.StatusNotImplemented, "vault watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"directories": s.vault.Directories()})
}

type vaultAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleVaultDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.vault == nil {
		s.respondError(w, http.StatusNotImplemented, "vault watch not enabled")
		return
	}
	var req vaultAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	if err := s.vault.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("vault add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistVaultDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleVaultDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.vault == nil {
		s.respondError(w, http.StatusNotImplemented, "vault watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err := s.vault.RemoveDirectory(abs); err != nil {
		s.logger.Error("vault remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistVaultDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistVaultDirectories() {
	if s.configPath == "" {
		return
	}
	s.configMu.Lock()
	s.config.Vault.Directories = s.vault.Directories()
	err := config.Save(s.configPath, s.config)
	s.configMu.Unlock()
	if err != nil {
		s.logger.Warn("failed to persist vault config", zap.Error(err))
	}
}

// extractFieldsInto mines fields from extracted text; values the caller sent
// explicitly win over mined ones.
func extractFieldsInto(explicit map[string]any, text string) map[string]any {
	mined := extract.Fields(text)
	for k, v := range explicit {
		mined[k] = v
	}
	return mined
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
