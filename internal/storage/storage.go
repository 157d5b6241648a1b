// Package storage defines the persistence interface for dossier documents
// and verification snapshots.
package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/visado/visado/internal/models"
)

// Storage defines document and verification snapshot persistence.
type Storage interface {
	// Document operations
	UpsertDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, docID string) (*models.Document, error)
	DeleteDocument(ctx context.Context, docID string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	ListDocumentsByType(ctx context.Context, docType models.DocumentType) ([]*models.Document, error)

	// Verification snapshots
	SaveVerification(ctx context.Context, snap *models.VerificationSnapshot) error
	ListVerifications(ctx context.Context, limit int) ([]*models.VerificationSnapshot, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountVerifications(ctx context.Context) (int64, error)

	Close() error
}

// DiskUsageBytes returns the total size in bytes of the given paths.
// Each path may be a file or a directory (recursively summed).
// Missing or inaccessible paths are skipped; errors during walk are returned.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if info.IsDir() {
			n, err := dirSize(p)
			if err != nil {
				return 0, err
			}
			total += n
		} else {
			total += info.Size()
		}
	}
	return total, nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info != nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
