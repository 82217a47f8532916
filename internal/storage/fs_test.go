package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempLibrary(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempLibrary(t)
	content := []byte("name: jazz\n")
	if err := s.Write("jazz.yaml", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("jazz.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempLibrary(t)
	if err := s.Write("a/b/c.yaml", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("del.yaml", []byte("bye"))
	if err := s.Delete("del.yaml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.yaml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("b.yaml", []byte("b"))
	_ = s.Write("sub/a.yml", []byte("a"))
	_ = s.Write(".hidden.yaml", []byte("skip"))
	_ = s.Write(".git/config.yaml", []byte("skip"))
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.md"), []byte("not yaml"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "b.yaml" || items[1].Path != "sub/a.yml" {
		t.Errorf("paths = %s, %s", items[0].Path, items[1].Path)
	}
	if items[0].Checksum == "" {
		t.Error("missing checksum")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempLibrary(t)
	for _, p := range []string{"../../etc/passwd.yaml", "../outside.yaml", "/etc/shadow.yaml", "a/../../x.yaml"} {
		if _, err := s.Read(p); !errors.Is(err, ErrOutsideLibrary) {
			t.Errorf("read %q err = %v", p, err)
		}
		if err := s.Write(p, []byte("x")); !errors.Is(err, ErrOutsideLibrary) {
			t.Errorf("write %q err = %v", p, err)
		}
	}
	if err := s.Write("a/../inside.yaml", []byte("x")); err != nil {
		t.Errorf("write to cleaned local path: %v", err)
	}
}

func TestWriteRejectsNonDocuments(t *testing.T) {
	s := tempLibrary(t)
	if err := s.Write("notes.md", []byte("x")); !errors.Is(err, ErrNotDocument) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "notes.md")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file created despite rejection: %v", err)
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("atomic.yaml", []byte("original"))
	if err := s.Write("atomic.yaml", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.yaml")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".fretwise-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "fretwise-test-*")
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
