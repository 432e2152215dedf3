// Package store implements the partitioned document store and the id
// allocator. The file set itself is authoritative: ids are derived by
// scanning it, never from a cached counter, and every relocation is
// write-new → verify-new → delete-old so a crash can duplicate a document
// but never lose it.
package store

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// Entry is a document together with the partition it was found in. The two
// must agree per the status invariant; the validator reports any drift.
type Entry struct {
	Doc       *models.Document
	Partition models.Partition
}

// Path returns the entry's location relative to the archive root.
func (e Entry) Path() string {
	return filepath.Join(string(e.Partition), e.Doc.FileName())
}

// Defaults seeds the metadata of a newly created document.
type Defaults struct {
	Deciders []string
	Tags     []string
	Impact   string
	Date     string // ISO date; today when empty
}

// Store reads and mutates the document archive.
type Store struct {
	fs storage.Provider
}

// New creates a Store on top of the given provider.
func New(fs storage.Provider) *Store {
	return &Store{fs: fs}
}

// fileRef is a document located during a partition scan, identified by file
// name only (content unread).
type fileRef struct {
	partition models.Partition
	name      string
	id        int
	slug      string
}

func (s *Store) scan() ([]fileRef, error) {
	var refs []fileRef
	for _, status := range models.Statuses {
		p := status.Partition()
		names, err := s.fs.List(string(p))
		if err != nil {
			return nil, fmt.Errorf("store: scan %s: %w: %v", p, apperr.ErrIO, err)
		}
		for _, name := range names {
			id, slug, err := models.ParseFileName(name)
			if err != nil {
				return nil, fmt.Errorf("store: %s/%s: %v: %w", p, name, err, apperr.ErrValidation)
			}
			refs = append(refs, fileRef{partition: p, name: name, id: id, slug: slug})
		}
	}
	return refs, nil
}

// NextID derives the next unused id from the full document set. Two
// documents sharing an id is an integrity failure, reported rather than
// papered over with max+1.
func (s *Store) NextID() (int, error) {
	refs, err := s.scan()
	if err != nil {
		return 0, err
	}
	seen := make(map[int]fileRef, len(refs))
	max := 0
	for _, r := range refs {
		if prev, dup := seen[r.id]; dup {
			return 0, fmt.Errorf("store: id %s held by both %s/%s and %s/%s: %w",
				models.FormatID(r.id), prev.partition, prev.name, r.partition, r.name, apperr.ErrIntegrity)
		}
		seen[r.id] = r
		if r.id > max {
			max = r.id
		}
	}
	return max + 1, nil
}

// Create allocates an id and writes a new Proposed document. The slug must
// be unused across every partition.
func (s *Store) Create(slug string, d Defaults) (*models.Document, error) {
	if !models.ValidSlug(slug) {
		return nil, fmt.Errorf("store: slug %q is not kebab-case: %w", slug, apperr.ErrValidation)
	}
	if len(d.Deciders) == 0 {
		return nil, fmt.Errorf("store: deciders required: %w", apperr.ErrValidation)
	}
	refs, err := s.scan()
	if err != nil {
		return nil, err
	}
	for _, r := range refs {
		if r.slug == slug {
			return nil, fmt.Errorf("store: slug %q already used by %s/%s: %w",
				slug, r.partition, r.name, apperr.ErrConflict)
		}
	}
	id, err := s.NextID()
	if err != nil {
		return nil, err
	}

	date := d.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := &models.Document{
		ID:       id,
		Slug:     slug,
		Title:    models.TitleFromSlug(slug),
		Status:   models.StatusProposed,
		Deciders: d.Deciders,
		Date:     date,
		Tags:     tags,
		Impact:   d.Impact,
	}
	for _, name := range models.SkeletonSections {
		doc.Sections = append(doc.Sections, models.Section{Name: name})
	}

	e := Entry{Doc: doc, Partition: models.StatusProposed.Partition()}
	if err := s.writeVerified(e.Path(), parser.Render(doc)); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get resolves ref — a numeric id (optionally zero-padded or "ADR-" prefixed)
// or a slug — against every partition.
func (s *Store) Get(ref string) (Entry, error) {
	refs, err := s.scan()
	if err != nil {
		return Entry{}, err
	}
	id, byID := parseIDRef(ref)
	for _, r := range refs {
		if byID && r.id == id || !byID && r.slug == ref {
			return s.load(r)
		}
	}
	return Entry{}, fmt.Errorf("store: no document matches %q: %w", ref, apperr.ErrNotFound)
}

// All loads every document in the archive, sorted by id ascending. Duplicate
// ids are preserved (not collapsed) so the validator can see them.
func (s *Store) All() ([]Entry, error) {
	refs, err := s.scan()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(refs))
	for _, r := range refs {
		e, err := s.load(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

// Update rewrites a document in place through the verified write path.
func (s *Store) Update(e Entry) error {
	return s.writeVerified(e.Path(), parser.Render(e.Doc))
}

// Move relocates a document to another partition: the new copy is written
// and verified before the old one is deleted, so a crash at any point leaves
// the document readable somewhere. A failure after the write leaves both
// copies on disk for the validator to surface.
func (s *Store) Move(e Entry, to models.Partition) (Entry, error) {
	if e.Partition == to {
		return e, nil
	}
	oldPath := e.Path()
	moved := Entry{Doc: e.Doc, Partition: to}
	if err := s.writeVerified(moved.Path(), parser.Render(e.Doc)); err != nil {
		return Entry{}, err
	}
	if err := s.fs.Delete(oldPath); err != nil {
		return Entry{}, fmt.Errorf("store: new copy verified at %s but old copy %s not deleted: %w: %v",
			moved.Path(), oldPath, apperr.ErrIO, err)
	}
	return moved, nil
}

// writeVerified writes content and confirms the on-disk copy is complete and
// parseable before the caller does anything destructive.
func (s *Store) writeVerified(path string, content []byte) error {
	if err := s.fs.Write(path, content); err != nil {
		return fmt.Errorf("store: write %s: %w: %v", path, apperr.ErrIO, err)
	}
	back, err := s.fs.Read(path)
	if err != nil {
		return fmt.Errorf("store: verify read %s: %w: %v", path, apperr.ErrIO, err)
	}
	if checksum.Sum(back) != checksum.Sum(content) {
		return fmt.Errorf("store: verify %s: on-disk copy incomplete, inspect it before retrying: %w", path, apperr.ErrIO)
	}
	if _, err := parser.Parse(back); err != nil {
		return fmt.Errorf("store: verify %s: written copy does not parse: %w: %v", path, apperr.ErrIO, err)
	}
	return nil
}

func (s *Store) load(r fileRef) (Entry, error) {
	path := filepath.Join(string(r.partition), r.name)
	data, err := s.fs.Read(path)
	if err != nil {
		return Entry{}, fmt.Errorf("store: read %s: %w: %v", path, apperr.ErrIO, err)
	}
	doc, err := parser.Parse(data)
	if err != nil {
		return Entry{}, fmt.Errorf("store: %s: %w", path, err)
	}
	doc.ID = r.id
	doc.Slug = r.slug
	if doc.Title == "" {
		doc.Title = models.TitleFromSlug(r.slug)
	}
	return Entry{Doc: doc, Partition: r.partition}, nil
}

// parseIDRef interprets ref as a numeric id, accepting "7", "0007" and
// "ADR-0007".
func parseIDRef(ref string) (int, bool) {
	trimmed := strings.TrimPrefix(ref, "ADR-")
	id, err := strconv.Atoi(trimmed)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func sortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Doc.ID - b.Doc.ID
	})
}
