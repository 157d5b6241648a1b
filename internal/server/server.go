// Package server provides the HTTP API for Visado.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/visado/visado/internal/config"
	"github.com/visado/visado/internal/extract"
	"github.com/visado/visado/internal/offices"
	"github.com/visado/visado/internal/storage"
	"github.com/visado/visado/internal/watcher"
)

// Server is the HTTP server for the Visado API.
type Server struct {
	storage   storage.Storage
	offices   *offices.Index
	extractor *extract.Extractor
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server

	vault      *watcher.Watcher
	configPath string
	configMu   sync.Mutex
}

// NewServer creates a server with the given dependencies.
func NewServer(
	store storage.Storage,
	officeIndex *offices.Index,
	extractor *extract.Extractor,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		storage:   store,
		offices:   officeIndex,
		extractor: extractor,
		config:    cfg,
		logger:    logger,
	}
}

// WithVault attaches a vault watcher and the config path used to persist
// directory changes made through the API.
func (s *Server) WithVault(w *watcher.Watcher, configPath string) *Server {
	s.vault = w
	s.configPath = configPath
	return s
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/check-documents", s.handleCheckDocuments)
	r.Post("/api/v1/verify-dossier", s.handleVerifyDossier)
	r.Post("/api/v1/final-check", s.handleFinalCheck)
	r.Post("/api/v1/documents", s.handleAddDocument)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Get("/api/v1/offices/search", s.handleOfficesSearch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/vault/directories", s.handleVaultDirectoriesList)
	r.Post("/api/v1/vault/directories", s.handleVaultDirectoriesAdd)
	r.Delete("/api/v1/vault/directories", s.handleVaultDirectoriesRemove)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
