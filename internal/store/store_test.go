package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

func newTestStore(t *testing.T) (*Store, storage.Provider) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return New(fs), fs
}

func defaults() Defaults {
	return Defaults{Deciders: []string{"alice"}, Tags: []string{"infra"}, Impact: "ci", Date: "2026-08-30"}
}

func TestCreate_AssignsFirstID(t *testing.T) {
	s, _ := newTestStore(t)
	doc, err := s.Create("domain-layer-pure", defaults())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID != 1 {
		t.Errorf("id = %d, want 1", doc.ID)
	}
	if doc.Status != models.StatusProposed {
		t.Errorf("status = %s", doc.Status)
	}
	if doc.Title != "Domain Layer Pure" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Sections) != len(models.SkeletonSections) {
		t.Errorf("sections = %d", len(doc.Sections))
	}
}

func TestCreate_NextIDAfterExisting(t *testing.T) {
	s, fs := newTestStore(t)
	// Ids scattered across partitions; 20 is the max.
	seed(t, fs, "proposed", 4, "early-one")
	seed(t, fs, "accepted", 12, "mid-one")
	seed(t, fs, "superseded", 20, "late-one")

	doc, err := s.Create("domain-layer-pure", defaults())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID != 21 {
		t.Errorf("id = %d, want 21", doc.ID)
	}
	ok, _ := fs.Exists("proposed/ADR-0021-domain-layer-pure.md")
	if !ok {
		t.Error("document not written to proposed partition")
	}
}

func TestCreate_SlugConflictAnywhere(t *testing.T) {
	s, fs := newTestStore(t)
	seed(t, fs, "deprecated", 3, "taken-slug")
	_, err := s.Create("taken-slug", defaults())
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestCreate_RejectsBadInput(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Create("Bad Slug", defaults()); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad slug err = %v", err)
	}
	if _, err := s.Create("fine-slug", Defaults{Date: "2026-08-30"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty deciders err = %v", err)
	}
}

func TestNextID_DuplicateIDIsIntegrityError(t *testing.T) {
	s, fs := newTestStore(t)
	seed(t, fs, "proposed", 5, "one-copy")
	seed(t, fs, "accepted", 5, "other-copy")
	if _, err := s.NextID(); !errors.Is(err, apperr.ErrIntegrity) {
		t.Errorf("err = %v, want ErrIntegrity", err)
	}
}

func TestGet_ByIDPaddedAndSlug(t *testing.T) {
	s, fs := newTestStore(t)
	seed(t, fs, "accepted", 7, "event-storage-v1")

	for _, ref := range []string{"7", "0007", "ADR-0007", "event-storage-v1"} {
		e, err := s.Get(ref)
		if err != nil {
			t.Fatalf("Get(%q): %v", ref, err)
		}
		if e.Doc.ID != 7 || e.Doc.Slug != "event-storage-v1" {
			t.Errorf("Get(%q) = %d/%s", ref, e.Doc.ID, e.Doc.Slug)
		}
		if e.Partition != "accepted" {
			t.Errorf("partition = %s", e.Partition)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAll_SortedByID(t *testing.T) {
	s, fs := newTestStore(t)
	seed(t, fs, "accepted", 9, "high-one")
	seed(t, fs, "proposed", 2, "low-one")
	seed(t, fs, "deprecated", 5, "mid-one")

	entries, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d", len(entries))
	}
	for i, want := range []int{2, 5, 9} {
		if entries[i].Doc.ID != want {
			t.Errorf("entries[%d].ID = %d, want %d", i, entries[i].Doc.ID, want)
		}
	}
}

func TestMove_WriteThenDelete(t *testing.T) {
	s, fs := newTestStore(t)
	seed(t, fs, "proposed", 1, "move-me")
	e, err := s.Get("move-me")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	e.Doc.Status = models.StatusAccepted
	moved, err := s.Move(e, models.StatusAccepted.Partition())
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.Partition != "accepted" {
		t.Errorf("partition = %s", moved.Partition)
	}
	if ok, _ := fs.Exists("accepted/ADR-0001-move-me.md"); !ok {
		t.Error("new copy missing")
	}
	if ok, _ := fs.Exists("proposed/ADR-0001-move-me.md"); ok {
		t.Error("old copy still present")
	}
}

func TestMove_SamePartitionIsNoOp(t *testing.T) {
	s, fs := newTestStore(t)
	seed(t, fs, "proposed", 1, "stay-put")
	e, _ := s.Get("stay-put")
	moved, err := s.Move(e, e.Partition)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.Partition != e.Partition {
		t.Errorf("partition changed to %s", moved.Partition)
	}
	if ok, _ := fs.Exists("proposed/ADR-0001-stay-put.md"); !ok {
		t.Error("document vanished")
	}
}

func TestUpdate_RewritesInPlace(t *testing.T) {
	s, fs := newTestStore(t)
	seed(t, fs, "proposed", 1, "edit-me")
	e, _ := s.Get("edit-me")
	e.Doc.Impact = "rewritten impact"
	if err := s.Update(e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := s.Get("edit-me")
	if again.Doc.Impact != "rewritten impact" {
		t.Errorf("impact = %q", again.Doc.Impact)
	}
	if _, err := fs.Read("proposed/ADR-0001-edit-me.md"); err != nil {
		t.Errorf("file moved unexpectedly: %v", err)
	}
}

func TestAll_RejectsStrayFile(t *testing.T) {
	s, fs := newTestStore(t)
	if err := fs.Write("proposed/notes.md", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.All(); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

// seed writes a minimal valid document directly into a partition.
func seed(t *testing.T, fs storage.Provider, partition string, id int, slug string) {
	t.Helper()
	doc := &models.Document{
		ID:       id,
		Slug:     slug,
		Title:    models.TitleFromSlug(slug),
		Status:   models.Partition(partition).Status(),
		Deciders: []string{"alice"},
		Date:     "2026-08-30",
		Tags:     []string{"infra"},
		Impact:   "test fixture",
	}
	for _, name := range models.SkeletonSections {
		doc.Sections = append(doc.Sections, models.Section{Name: name, Body: "x"})
	}
	path := fmt.Sprintf("%s/%s", partition, doc.FileName())
	if err := fs.Write(path, parser.Render(doc)); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}
