package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("P ; PR\nP ; R 1\n")
	if err := s.Write("mp.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("mp.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("a/b/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestDelete_MissingIsNotExist(t *testing.T) {
	s := tempVault(t)
	if err := s.Delete("ghost.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("not a proof"), 0o644)
	_ = os.WriteFile(filepath.Join(s.Root(), ".fitch-tmp-123.md"), []byte("partial"), 0o644)
	_ = os.MkdirAll(filepath.Join(s.Root(), ".git"), 0o755)
	_ = os.WriteFile(filepath.Join(s.Root(), ".git", "c.md"), []byte("c"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Path != "a.md" || items[1].Path != "sub/b.md" {
		t.Fatalf("items = %+v", items)
	}

	sub, err := s.List("sub")
	if err != nil || len(sub) != 1 {
		t.Errorf("List(sub) = %+v, %v", sub, err)
	}
	for _, it := range items {
		if it.Checksum == "" {
			t.Errorf("%s: empty checksum", it.Path)
		}
	}
}

func TestWriteRejectsOtherFiles(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("notes.txt", []byte("x")); err == nil {
		t.Error("expected error writing a non-proof file")
	}
}

func TestIsProofFile(t *testing.T) {
	cases := map[string]bool{
		"a.md":            true,
		"dir/modal/k.md":  true,
		"a.txt":           false,
		".fitch-tmp-1.md": false,
		"dir/.hidden.md":  false,
		"md":              false,
	}
	for name, want := range cases {
		if got := IsProofFile(name); got != want {
			t.Errorf("IsProofFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	outside := t.TempDir()
	_ = os.WriteFile(filepath.Join(outside, "secret.md"), []byte("x"), 0o644)
	if err := os.Symlink(outside, filepath.Join(s.Root(), "link")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
		"link/secret.md",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	// Verify that if we read during a write the old content is intact
	// (the rename is atomic on POSIX).
	s := tempVault(t)
	original := []byte("P ; PR\n")
	_ = s.Write("atomic.md", original)

	// Overwrite with new content.
	updated := []byte("P ; PR\nP ; R 1\n")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.Root(), tmpPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/fitch-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "fitch-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
