package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/starford/fitch/internal/checksum"
	"github.com/starford/fitch/internal/models"
)

const tmpPrefix = ".fitch-tmp-"

// FS implements Provider on a vault directory opened as an os.Root, so no
// operation can reach outside it, symlinks included.
type FS struct {
	dir  string
	root *os.Root
}

// NewFS opens the vault at dir, which must already exist.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
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
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: open root: %w", err)
	}
	return &FS{dir: abs, root: root}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string { return f.dir }

// Close releases the vault directory handle.
func (f *FS) Close() error { return f.root.Close() }

// local converts a slash-separated vault path into a root-relative name.
func local(p string) (string, error) {
	name := filepath.FromSlash(p)
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("storage: path escapes vault root: %s", p)
	}
	return name, nil
}

// List walks dir (relative to root) and returns metadata for every proof file.
func (f *FS) List(dir string) ([]models.FileMetadata, error) {
	start := "."
	if dir != "" {
		if _, err := local(dir); err != nil {
			return nil, err
		}
		start = path.Clean(dir)
	}

	fsys := f.root.FS()
	var out []models.FileMetadata
	err := fs.WalkDir(fsys, start, func(p string, d fs.DirEntry, walkErr error) error {
		switch {
		case walkErr != nil:
			return walkErr
		case d.IsDir() && p != start && path.Base(p)[0] == '.':
			return fs.SkipDir
		case d.IsDir() || !IsProofFile(p):
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		out = append(out, models.FileMetadata{
			Path:      p,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(p string) ([]byte, error) {
	name, err := local(p)
	if err != nil {
		return nil, err
	}
	data, err := f.root.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

// Write replaces the file at p by writing a hidden sibling, syncing it and
// renaming it into place.
func (f *FS) Write(p string, content []byte) (err error) {
	if !IsProofFile(p) {
		return fmt.Errorf("storage: not a proof file: %s", p)
	}
	name, err := local(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(name)
	if err := f.root.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmpName := filepath.Join(dir, tmpPrefix+uuid.NewString())
	tmp, err := f.root.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = f.root.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err = f.root.Rename(tmpName, name); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// Delete removes a file from the vault.
func (f *FS) Delete(p string) error {
	name, err := local(p)
	if err != nil {
		return err
	}
	if err := f.root.Remove(name); err != nil {
		return fmt.Errorf("storage: delete %s: %w", p, err)
	}
	return nil
}
