package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/fretwise/internal/checksum"
	"github.com/starford/fretwise/internal/models"
)

var (
	// ErrOutsideLibrary is returned for paths that leave the library root.
	ErrOutsideLibrary = errors.New("storage: path outside library")
	// ErrNotDocument is returned when writing a file that is not a chord-set document.
	ErrNotDocument = errors.New("storage: not a chord-set document")
)

const tempPattern = ".fretwise-tmp-*"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute library directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute library directory.
func (f *FS) Root() string { return f.root }

// resolve maps a slash-separated library path onto the file system.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" || rel == "." {
		return f.root, nil
	}
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", ErrOutsideLibrary, rel)
	}
	return filepath.Join(f.root, local), nil
}

// List walks dir and returns every chord-set document sorted by path.
// Hidden files and directories are skipped.
func (f *FS) List(dir string) ([]models.LibraryFile, error) {
	base, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []models.LibraryFile
	walk := func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		hidden := p != base && strings.HasPrefix(d.Name(), ".")
		switch {
		case d.IsDir() && hidden:
			return filepath.SkipDir
		case d.IsDir() || hidden || !IsDocument(d.Name()):
			return nil
		}
		file, err := f.describe(p, d)
		if err != nil {
			return err
		}
		out = append(out, file)
		return nil
	}
	if err := filepath.WalkDir(base, walk); err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	slices.SortFunc(out, func(a, b models.LibraryFile) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func (f *FS) describe(abs string, d fs.DirEntry) (models.LibraryFile, error) {
	info, err := d.Info()
	if err != nil {
		return models.LibraryFile{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return models.LibraryFile{}, err
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return models.LibraryFile{}, err
	}
	return models.LibraryFile{
		Path:      filepath.ToSlash(rel),
		Checksum:  checksum.Sum(data),
		UpdatedAt: info.ModTime(),
	}, nil
}

// Read returns the raw bytes of a library file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces a chord-set document atomically, creating parent
// directories as needed.
func (f *FS) Write(path string, content []byte) error {
	if !IsDocument(path) {
		return fmt.Errorf("%w: %s", ErrNotDocument, path)
	}
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := writeAtomic(abs, content); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	return nil
}

// writeAtomic stages content in a hidden sibling file and renames it over
// dst once it is synced. The staging file never survives a failure.
func writeAtomic(dst string, content []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), tempPattern)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(content); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Delete removes a file from the library.
func (f *FS) Delete(path string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}
