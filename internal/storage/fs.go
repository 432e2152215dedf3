package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to archive directory
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

// safePath resolves a relative path against the archive root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes archive root: %s", rel)
	}
	return abs, nil
}

// List returns the base names of the .md files directly inside dir. A
// missing directory lists as empty: partitions appear lazily on first write.
func (f *FS) List(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// Read returns the raw bytes of an archive file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file from the archive.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a regular file is present at path.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}
