// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/visado/visado/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		doc_id TEXT PRIMARY KEY,
		doc_type TEXT NOT NULL,
		filename TEXT,
		issued_date TEXT,
		expires_date TEXT,
		extracted TEXT,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type);
	CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at);

	CREATE TABLE IF NOT EXISTS verifications (
		id TEXT PRIMARY KEY,
		visa_type TEXT NOT NULL,
		destination_region TEXT NOT NULL,
		result TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_verifications_created_at ON verifications(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Dates persist as ISO strings so the column stays readable in sqlite3 itself.
const dateLayout = "2006-01-02"

func dateToSQL(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func dateFromSQL(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// UpsertDocument inserts a document or replaces the stored row with the same
// doc_id. Re-extracting a file keeps its identity and refreshes its fields.
func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *models.Document) error {
	extractedJSON, err := json.Marshal(doc.Extracted)
	if err != nil {
		return fmt.Errorf("failed to marshal extracted fields: %w", err)
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (doc_id, doc_type, filename, issued_date, expires_date, extracted, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET
			doc_type = excluded.doc_type,
			filename = excluded.filename,
			issued_date = excluded.issued_date,
			expires_date = excluded.expires_date,
			extracted = excluded.extracted,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		doc.DocID, string(doc.DocType), doc.Filename,
		dateToSQL(doc.IssuedDate), dateToSQL(doc.ExpiresDate),
		string(extractedJSON), doc.Notes, now, now,
	)
	return err
}

func scanDocument(scan func(dest ...any) error) (*models.Document, error) {
	var doc models.Document
	var docType string
	var issued, expires, extractedJSON, notes sql.NullString
	if err := scan(&doc.DocID, &docType, &doc.Filename, &issued, &expires, &extractedJSON, &notes); err != nil {
		return nil, err
	}
	doc.DocType = models.DocumentType(docType)
	doc.IssuedDate = dateFromSQL(issued)
	doc.ExpiresDate = dateFromSQL(expires)
	doc.Notes = notes.String
	if extractedJSON.Valid && extractedJSON.String != "" {
		if err := json.Unmarshal([]byte(extractedJSON.String), &doc.Extracted); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extracted fields: %w", err)
		}
	}
	return &doc, nil
}

const documentColumns = `doc_id, doc_type, filename, issued_date, expires_date, extracted, notes`

// GetDocument returns a document by ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE doc_id = ?`, docID)
	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", docID)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document by ID.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID)
	return err
}

// ListDocuments returns documents ordered by most recently updated.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		 ORDER BY updated_at DESC, doc_id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListDocumentsByType returns all documents of the given type.
func (s *SQLiteStorage) ListDocumentsByType(ctx context.Context, docType models.DocumentType) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE doc_type = ? ORDER BY updated_at DESC, doc_id`,
		string(docType),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]*models.Document, error) {
	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SaveVerification stores a verifier run.
func (s *SQLiteStorage) SaveVerification(ctx context.Context, snap *models.VerificationSnapshot) error {
	resultJSON, err := json.Marshal(snap.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal verification result: %w", err)
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verifications (id, visa_type, destination_region, result, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.VisaType, snap.DestinationRegion, string(resultJSON), snap.CreatedAt,
	)
	return err
}

// ListVerifications returns the most recent verification snapshots.
func (s *SQLiteStorage) ListVerifications(ctx context.Context, limit int) ([]*models.VerificationSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, visa_type, destination_region, result, created_at
		 FROM verifications ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*models.VerificationSnapshot
	for rows.Next() {
		var snap models.VerificationSnapshot
		var resultJSON string
		if err := rows.Scan(&snap.ID, &snap.VisaType, &snap.DestinationRegion, &resultJSON, &snap.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(resultJSON), &snap.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal verification result: %w", err)
		}
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountVerifications returns the total number of stored snapshots.
func (s *SQLiteStorage) CountVerifications(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verifications`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
