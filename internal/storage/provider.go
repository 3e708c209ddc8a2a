// Package storage keeps proof files in a vault directory.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/starford/fitch/internal/models"
)

// Ext is the extension of proof files.
const Ext = ".md"

// IsProofFile reports whether name looks like a proof file. Hidden files,
// including in-progress atomic writes, are skipped.
func IsProofFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, Ext) && !strings.HasPrefix(base, ".")
}

// Provider is the interface for vault file operations.
type Provider interface {
	// List returns metadata for every proof file under dir (relative to vault root).
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to vault root).
	Delete(path string) error
}
