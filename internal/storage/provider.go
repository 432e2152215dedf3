// Package storage defines the archive file-system abstraction.
package storage

// Provider is the interface for archive file operations. All paths are
// relative to the archive root.
type Provider interface {
	// List returns the base names of every .md file directly inside dir.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a regular file is present at path.
	Exists(path string) (bool, error)
}
