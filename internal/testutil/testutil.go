// Package testutil provides shared test helpers for setting up archives and
// seeding documents.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/store"
)

// TestArchive creates a temporary archive directory with a store on top.
func TestArchive(t *testing.T) (*store.Store, storage.Provider) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store.New(fs), fs
}

// Doc returns a fully populated document fixture in the given status.
func Doc(id int, slug string, status models.Status) *models.Document {
	doc := &models.Document{
		ID:       id,
		Slug:     slug,
		Title:    models.TitleFromSlug(slug),
		Status:   status,
		Deciders: []string{"alice", "bob"},
		Date:     "2026-08-30",
		Tags:     []string{"infra"},
		Impact:   "build pipeline",
	}
	for _, name := range models.SkeletonSections {
		doc.Sections = append(doc.Sections, models.Section{Name: name, Body: "text"})
	}
	return doc
}

// Seed writes doc into the partition matching its status.
func Seed(t *testing.T, fs storage.Provider, doc *models.Document) {
	t.Helper()
	path := filepath.Join(string(doc.Status.Partition()), doc.FileName())
	if err := fs.Write(path, parser.Render(doc)); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}

// SeedAt writes doc into an explicit partition, which may deliberately
// disagree with its status for integrity tests.
func SeedAt(t *testing.T, fs storage.Provider, partition models.Partition, doc *models.Document) {
	t.Helper()
	path := filepath.Join(string(partition), doc.FileName())
	if err := fs.Write(path, parser.Render(doc)); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}
