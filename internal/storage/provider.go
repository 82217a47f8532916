// Package storage defines the chord-library file-system abstraction.
package storage

import (
	"strings"

	"github.com/starford/fretwise/internal/models"
)

// Provider is the interface for chord-library file operations.
type Provider interface {
	// List returns metadata for every chord-set document under dir (relative to the library root).
	List(dir string) ([]models.LibraryFile, error)
	// Read returns the raw bytes of the file at path (relative to the library root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the library root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the library root).
	Delete(path string) error
}

// IsDocument reports whether name looks like a chord-set document.
func IsDocument(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
