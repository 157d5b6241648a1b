// Package fileid provides a deterministic document ID from a file path for
// vault files.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "file:"

// DocID returns a stable document ID for the given absolute path. The same
// path always yields the same ID, so re-ingesting a file updates its record
// instead of duplicating it.
func DocID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
