// Package main is the Visado CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visado/visado/internal/cli"
	"github.com/visado/visado/internal/coherence"
	"github.com/visado/visado/internal/config"
	"github.com/visado/visado/internal/dossier"
	"github.com/visado/visado/internal/extract"
	"github.com/visado/visado/internal/fileid"
	"github.com/visado/visado/internal/finalcheck"
	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
	"github.com/visado/visado/internal/offices"
	"github.com/visado/visado/internal/server"
	"github.com/visado/visado/internal/storage"
	"github.com/visado/visado/internal/watcher"
	"github.com/visado/visado/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/visado/config.yaml"

const defaultServerURL = "http://localhost:8090"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "visado server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "check":
		runCheck()
	case "verify":
		runVerify()
	case "final":
		runFinal()
	case "extract":
		runExtract()
	case "offices":
		runOffices()
	case "add":
		runAdd()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "vault":
		runVault()
	case "version", "--version", "-v":
		fmt.Printf("visado version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (vault changes, extraction, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	store := components.Storage
	vaultOpts := []watcher.Option{}
	if debugMode {
		vaultOpts = append(vaultOpts, watcher.WithLogger(logger))
	}
	vault := watcher.New(
		cfg.Vault.Directories,
		cfg.Vault.Extensions,
		cfg.Vault.RecursiveOrDefault(),
		func(path string) {
			doc, err := documentFromFile(components.Extractor, path)
			if err != nil {
				logger.Warn("vault extract failed", zap.String("path", path), zap.Error(err))
				return
			}
			if err := store.UpsertDocument(context.Background(), &doc); err != nil {
				logger.Warn("vault store failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			abs, _ := filepath.Abs(path)
			if err := store.DeleteDocument(context.Background(), fileid.DocID(abs)); err != nil {
				logger.Debug("vault delete by path skipped", zap.String("path", path), zap.Error(err))
			}
		},
		vaultOpts...,
	)
	vaultCtx, vaultCancel := context.WithCancel(context.Background())
	defer vaultCancel()
	if err := vault.Start(vaultCtx); err != nil {
		logger.Fatal("Failed to start vault watcher", zap.Error(err))
	}
	vault.SyncExistingFiles()

	srv := server.NewServer(
		components.Storage,
		components.Offices,
		components.Extractor,
		cfg,
		logger,
	).WithVault(vault, resolvedConfigPath)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	vault.Stop()
	vaultCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves any flags (and their values) that appear after positional
// arguments to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so "visado check passport.pdf
// -visa student" would otherwise leave -visa unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// configPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func configPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// dossierDefaultsFromConfig loads config at path and returns the default visa
// type and destination region. On load failure it returns tourist/schengen.
func dossierDefaultsFromConfig(path string) (visaType, region string) {
	visaType, region = "tourist", "schengen"
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil {
		return visaType, region
	}
	return cfg.Dossier.VisaType, cfg.Dossier.DestinationRegion
}

// parseCompleted splits a comma-separated list of finding ids, dropping blanks.
func parseCompleted(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// documentFromFile extracts a vault file into a typed document. The document
// id is derived from the absolute path so re-extracting the same file updates
// the same record.
func documentFromFile(extractor *extract.Extractor, path string) (models.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return models.Document{}, err
	}
	result, err := extractor.ExtractFile(abs)
	if err != nil {
		return models.Document{}, err
	}
	doc := models.Document{
		DocID:       fileid.DocID(abs),
		DocType:     extract.GuessDocType(abs),
		Filename:    filepath.Base(abs),
		IssuedDate:  normalize.ParseISODate(result.Extracted["issued_date"]),
		ExpiresDate: normalize.ParseISODate(result.Extracted["expires_date"]),
		Extracted:   result.Extracted,
	}
	if len(result.Warnings) > 0 {
		doc.Notes = strings.Join(result.Warnings, "; ")
	}
	return doc, nil
}

// loadProfile reads an applicant profile from a JSON file. An empty path
// means no profile; the verifiers treat that as an anonymous applicant.
func loadProfile(path string) (*models.UserProfile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &profile, nil
}

// collectDocuments resolves the documents for a check/verify/final run. File
// arguments are extracted locally; with no files the stored vault is used,
// via the HTTP API when a server is running and direct storage otherwise.
func collectDocuments(files []string, serverURL, configPath string) ([]models.Document, error) {
	if len(files) > 0 {
		extractor := extract.NewExtractor()
		docs := make([]models.Document, 0, len(files))
		for _, f := range files {
			doc, err := documentFromFile(extractor, f)
			if err != nil {
				return nil, fmt.Errorf("extract %s: %w", f, err)
			}
			docs = append(docs, doc)
		}
		return docs, nil
	}
	if serverURL != "" {
		docs, err := documentsViaHTTP(serverURL)
		if err == nil {
			return docs, nil
		}
		// Server not reachable: fall through to direct storage.
	}
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	stored, err := store.ListDocuments(context.Background(), 0, 1000)
	if err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0, len(stored))
	for _, d := range stored {
		docs = append(docs, *d)
	}
	return docs, nil
}

func documentsViaHTTP(serverURL string) ([]models.Document, error) {
	resp, err := http.Get(serverURL + "/api/v1/documents?limit=1000")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Documents []models.Document `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Documents, nil
}

func runCheck() {
	checkArgs := argsReorder(os.Args[2:])
	configPath := configPathFromArgs(checkArgs, defaultConfigPath)
	defaultVisa, defaultRegion := dossierDefaultsFromConfig(configPath)

	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL used to read the stored vault (empty = direct storage)")
	visaType := fs.String("visa", defaultVisa, "visa type the dossier targets")
	region := fs.String("region", defaultRegion, "destination region")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: visado check [flags] [file ...]\n\n")
		fmt.Fprintf(fs.Output(), "With file arguments the files are extracted and checked; without, the stored vault is checked.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(checkArgs)

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	docs, err := collectDocuments(fs.Args(), *serverURL, *configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		os.Exit(1)
	}
	result := coherence.CheckDocuments(docs, *visaType, *region)
	if err := cli.WriteCheckResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runVerify() {
	verifyArgs := argsReorder(os.Args[2:])
	configPath := configPathFromArgs(verifyArgs, defaultConfigPath)
	defaultVisa, defaultRegion := dossierDefaultsFromConfig(configPath)

	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = run locally without storing a snapshot history)")
	visaType := fs.String("visa", defaultVisa, "visa type the dossier targets")
	region := fs.String("region", defaultRegion, "destination region")
	profilePath := fs.String("profile", "", "path to an applicant profile JSON file")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: visado verify [flags] [file ...]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(verifyArgs)

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	profile, err := loadProfile(*profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Verify failed: %v\n", err)
		os.Exit(1)
	}
	docs, err := collectDocuments(fs.Args(), *serverURL, *configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Verify failed: %v\n", err)
		os.Exit(1)
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running so the run lands in
		// the snapshot history.
		result, err := verifyViaHTTP(*serverURL, docs, profile, *visaType, *region)
		if err == nil {
			if err := cli.WriteVerifyResult(os.Stdout, result, format); err != nil {
				fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	result := dossier.NewVerifier().Verify(profile, docs, *visaType, *region)
	saveSnapshotDirect(*configPathFlag, result)
	if err := cli.WriteVerifyResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// saveSnapshotDirect stores a verification snapshot through direct storage.
// Failures are silent: a verify run is still useful without history.
func saveSnapshotDirect(configPath string, result *models.DossierVerificationResult) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return
	}
	defer store.Close()
	_ = store.SaveVerification(context.Background(), &models.VerificationSnapshot{
		ID:                uuid.NewString(),
		VisaType:          result.VisaType,
		DestinationRegion: result.DestinationRegion,
		Result:            *result,
	})
}

func verifyViaHTTP(serverURL string, docs []models.Document, profile *models.UserProfile, visaType, region string) (*models.DossierVerificationResult, error) {
	body, err := json.Marshal(map[string]any{
		"documents":          docs,
		"profile":            profile,
		"visa_type":          visaType,
		"destination_region": region,
	})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/verify-dossier", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.DossierVerificationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// finalSignals is the shape of the optional -signals JSON file.
type finalSignals struct {
	Travel   *finalcheck.TravelSignals   `json:"travel_signals"`
	Costs    *finalcheck.CostSignals     `json:"cost_signals"`
	Timeline *finalcheck.TimelineSignals `json:"timeline_signals"`
}

func loadSignals(path string) (*finalSignals, error) {
	if strings.TrimSpace(path) == "" {
		return &finalSignals{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signals: %w", err)
	}
	var s finalSignals
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse signals: %w", err)
	}
	return &s, nil
}

func runFinal() {
	finalArgs := argsReorder(os.Args[2:])
	configPath := configPathFromArgs(finalArgs, defaultConfigPath)
	defaultVisa, defaultRegion := dossierDefaultsFromConfig(configPath)

	fs := flag.NewFlagSet("final", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL used to read the stored vault (empty = direct storage)")
	visaType := fs.String("visa", defaultVisa, "visa type the dossier targets")
	region := fs.String("region", defaultRegion, "destination region")
	profilePath := fs.String("profile", "", "path to an applicant profile JSON file")
	signalsPath := fs.String("signals", "", "path to a travel/cost/timeline signals JSON file")
	completed := fs.String("completed", "", "comma-separated finding ids already addressed")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: visado final [flags] [file ...]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(finalArgs)

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	profile, err := loadProfile(*profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Final check failed: %v\n", err)
		os.Exit(1)
	}
	signals, err := loadSignals(*signalsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Final check failed: %v\n", err)
		os.Exit(1)
	}
	docs, err := collectDocuments(fs.Args(), *serverURL, *configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Final check failed: %v\n", err)
		os.Exit(1)
	}

	result := finalcheck.Run(finalcheck.Input{
		Profile:           profile,
		VisaType:          *visaType,
		DestinationRegion: *region,
		Documents:         docs,
		Travel:            signals.Travel,
		Costs:             signals.Costs,
		Timeline:          signals.Timeline,
		CompletedFindings: parseCompleted(*completed),
	})
	if err := cli.WriteFinalResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: visado extract [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	result, err := extract.NewExtractor().ExtractFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("doc_type: %s\n", extract.GuessDocType(path))
		keys := make([]string, 0, len(result.Extracted))
		for k := range result.Extracted {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %v\n", k, result.Extracted[k])
		}
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		fmt.Printf("\n%s\n", cli.Truncate(result.Text, 400))
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// officesSearchResponse is the shape of GET /api/v1/offices/search.
type officesSearchResponse struct {
	Query   string                 `json:"query"`
	Region  string                 `json:"region"`
	Count   int                    `json:"count"`
	Results []offices.SearchResult `json:"results"`
}

func runOffices() {
	officeArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("offices", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = search the embedded catalog directly)")
	region := fs.String("region", "", "filter by destination region (schengen, uk, usa, ...)")
	limit := fs.Int("limit", 10, "number of results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: visado offices [flags] [query]\n\n")
		fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. An empty query lists offices for -region.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(officeArgs)

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" && *region == "" {
		fs.Usage()
		os.Exit(1)
	}

	var response *officesSearchResponse
	if *serverURL != "" {
		if res, err := officesViaHTTP(*serverURL, query, *region, *limit); err == nil {
			response = res
		}
	}
	if response == nil {
		// Embedded catalog: an in-memory index is enough and avoids locking
		// a server's on-disk index.
		idx, err := offices.NewIndex("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Office search failed: %v\n", err)
			os.Exit(1)
		}
		defer idx.Close()
		results, err := idx.Search(context.Background(), query, *region, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Office search failed: %v\n", err)
			os.Exit(1)
		}
		response = &officesSearchResponse{Query: query, Region: *region, Count: len(results), Results: results}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("\n%d office(s)\n\n", response.Count)
		for _, r := range response.Results {
			fmt.Printf("%s (%s, %s) [%s]\n", r.Office.Name, r.Office.City, r.Office.Country, r.Office.Region)
			if r.Office.Website != "" {
				fmt.Printf("  %s\n", r.Office.Website)
			}
			if len(r.Office.VisaTypes) > 0 {
				fmt.Printf("  visa types: %s\n", strings.Join(r.Office.VisaTypes, ", "))
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func officesViaHTTP(serverURL, query, region string, limit int) (*officesSearchResponse, error) {
	u := fmt.Sprintf("%s/api/v1/offices/search?q=%s&region=%s&limit=%d",
		serverURL, url.QueryEscape(query), url.QueryEscape(region), limit)
	resp, err := http.Get(u)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out officesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runAdd() {
	addArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage when server is not running)")
	docType := fs.String("type", "", "document type (passport, bank_statement, ...); guessed from the filename when empty")
	notes := fs.String("notes", "", "free-form notes stored with the document")
	_ = fs.Parse(addArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: visado add [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	if *serverURL != "" {
		if docID, err := addViaHTTP(*serverURL, path, *docType, *notes); err == nil {
			fmt.Printf("Document added: %s\n", docID)
			return
		}
	}

	// Direct storage access (when server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	doc, err := documentFromFile(extract.NewExtractor(), path)
	if err != nil {
		fmt.Printf("Extraction failed: %v\n", err)
		os.Exit(1)
	}
	if *docType != "" {
		doc.DocType = models.ParseDocumentType(normalize.Text(*docType))
	}
	if *notes != "" {
		doc.Notes = *notes
	}
	if err := store.UpsertDocument(context.Background(), &doc); err != nil {
		fmt.Printf("Store failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document added: %s\n", doc.DocID)
}

func addViaHTTP(serverURL, path, docType, notes string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	abs, _ := filepath.Abs(path)
	if docType == "" {
		docType = string(extract.GuessDocType(abs))
	}
	body, err := json.Marshal(map[string]any{
		"doc_id":         fileid.DocID(abs),
		"doc_type":       docType,
		"filename":       filepath.Base(abs),
		"notes":          notes,
		"content_base64": base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		return "", err
	}
	resp, err := http.Post(serverURL+"/api/v1/documents", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var doc models.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return doc.DocID, nil
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: visado delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	if *serverURL != "" {
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/documents/"+url.PathEscape(docID), nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				fmt.Printf("Delete failed (%d): %s\n", resp.StatusCode, string(b))
				os.Exit(1)
			}
			fmt.Printf("Document deleted: %s\n", docID)
			return
		}
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.DeleteDocument(context.Background(), docID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	DatabasePath             string `json:"database_path,omitempty"`
	OfficesIndexPath         string `json:"offices_index_path,omitempty"`
	DefaultVisaType          string `json:"default_visa_type,omitempty"`
	DefaultDestinationRegion string `json:"default_destination_region,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Documents      int64                 `json:"documents"`
	Verifications  int64                 `json:"verifications"`
	Offices        int                   `json:"offices"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		components, err := initializeComponents(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		ctx := context.Background()
		docCount, err := components.Storage.CountDocuments(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		verifCount, err := components.Storage.CountVerifications(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count verifications failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Documents:     docCount,
			Verifications: verifCount,
			Offices:       components.Offices.Count(),
			Config: &statusConfigResponse{
				DatabasePath:             cfg.Storage.DatabasePath,
				OfficesIndexPath:         cfg.Storage.OfficesIndexPath,
				DefaultVisaType:          cfg.Dossier.VisaType,
				DefaultDestinationRegion: cfg.Dossier.DestinationRegion,
			},
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.OfficesIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:       %d   # documents stored in the vault\n", status.Documents)
		fmt.Printf("verifications:   %d   # stored verification snapshots\n", status.Verifications)
		fmt.Printf("offices:         %d   # searchable offices in the catalog\n", status.Offices)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes: %d  # storage + index on disk\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			if status.Config.DatabasePath != "" {
				fmt.Printf("database_path:       %s\n", status.Config.DatabasePath)
			}
			if status.Config.OfficesIndexPath != "" {
				fmt.Printf("offices_index_path:  %s\n", status.Config.OfficesIndexPath)
			}
			fmt.Printf("default_visa_type:   %s\n", status.Config.DefaultVisaType)
			fmt.Printf("default_region:      %s\n", status.Config.DefaultDestinationRegion)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runVault() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: visado vault <add|remove|list> [path]")
		fmt.Println("  visado vault add <path>     Add directory to the watched vault")
		fmt.Println("  visado vault remove <path>  Remove directory from the watched vault")
		fmt.Println("  visado vault list           List watched vault directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("vault", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: visado vault add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]any{"path": path, "sync": true})
		resp, err := http.Post(*serverURL+"/api/v1/vault/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: visado vault remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/vault/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/vault/directories")
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown vault subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Storage   storage.Storage
	Offices   *offices.Index
	Extractor *extract.Extractor
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Offices != nil {
		_ = c.Offices.Close()
	}
}

func initializeComponents(cfg *config.Config) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	officeIndex, err := offices.NewIndex(cfg.Storage.OfficesIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize offices index: %w", err)
	}
	return &Components{
		Storage:   store,
		Offices:   officeIndex,
		Extractor: extract.NewExtractor(),
	}, nil
}

func printUsage() {
	fmt.Println(`visado - Visa dossier coherence and readiness checker

Usage:
  visado server [flags]             Start the HTTP server
  visado check [flags] [file ...]   Check document coherence
  visado verify [flags] [file ...]  Verify dossier readiness (profile + documents)
  visado final [flags] [file ...]   Run the final pre-submission verification
  visado extract [flags] <file>     Extract text and fields from one file
  visado offices [flags] [query]    Search the visa office directory
  visado add [flags] <file>         Extract a file and store it in the vault
  visado delete [flags] <id>        Delete a stored document
  visado status [flags]             Show vault/storage status
  visado vault <add|remove|list>    Manage watched vault directories
  visado version                    Show version
  visado help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/visado/config.yaml)
  --debug            Enable debug logging (vault changes, extraction, etc.)

Check/Verify/Final Flags:
  --config string    Config file path (for direct storage mode; also supplies visa/region defaults)
  --server string    Server URL (default: http://localhost:8090). Use empty (--server "") for direct storage.
  --visa string      Visa type the dossier targets (default from config, or tourist)
  --region string    Destination region (default from config, or schengen)
  --profile string   Applicant profile JSON file (verify and final)
  --signals string   Travel/cost/timeline signals JSON file (final only)
  --completed string Comma-separated finding ids already addressed (final only)
  --output string    Output format: text, compact, or json (default: text)

Offices Flags:
  --region string    Filter by destination region
  --limit int        Number of results (default: 10)

Examples:
  visado server
  visado check passport.pdf bank_statement.pdf
  visado check --visa student --region uk
  visado verify --profile profile.json
  visado final --profile profile.json --completed missing_photo
  visado extract passport.pdf
  visado offices london
  visado offices --region schengen
  visado add --type passport passport.pdf
  visado status --output json
  visado vault add ~/visa-documents`)
}
