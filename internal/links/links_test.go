package links

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/testutil"
)

func TestLink_SetsBothSides(t *testing.T) {
	s, fs := testutil.TestArchive(t)
	testutil.Seed(t, fs, testutil.Doc(1, "event-storage-v1", models.StatusAccepted))
	testutil.Seed(t, fs, testutil.Doc(2, "event-storage-v2", models.StatusProposed))

	older, _ := s.Get("event-storage-v1")
	newer, _ := s.Get("event-storage-v2")
	m := NewManager(s)
	if err := m.Link(older, newer); err != nil {
		t.Fatalf("Link: %v", err)
	}

	// Re-read from disk: both sides must be persisted.
	older, _ = s.Get("event-storage-v1")
	newer, _ = s.Get("event-storage-v2")
	if older.Doc.SupersededBy == nil || *older.Doc.SupersededBy != 2 {
		t.Errorf("older.SupersededBy = %v", older.Doc.SupersededBy)
	}
	if newer.Doc.Supersedes == nil || *newer.Doc.Supersedes != 1 {
		t.Errorf("newer.Supersedes = %v", newer.Doc.Supersedes)
	}

	entries, _ := s.All()
	if findings := m.Validate(entries); len(findings) != 0 {
		t.Errorf("Validate after Link = %v", findings)
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	s, fs := testutil.TestArchive(t)
	doc := testutil.Doc(4, "points-nowhere", models.StatusSuperseded)
	missing := 99
	doc.SupersededBy = &missing
	testutil.Seed(t, fs, doc)

	entries, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	findings := NewManager(s).Validate(entries)
	if len(findings) != 1 || findings[0].Code != models.CodeDanglingReference {
		t.Errorf("findings = %v", findings)
	}
	if findings[0].Severity != models.SeverityError {
		t.Errorf("severity = %s", findings[0].Severity)
	}
}

func TestValidate_OneSidedPair(t *testing.T) {
	s, fs := testutil.TestArchive(t)
	old := testutil.Doc(1, "old-way", models.StatusSuperseded)
	two := 2
	old.SupersededBy = &two
	testutil.Seed(t, fs, old)
	// The replacement exists but never recorded the back-reference.
	testutil.Seed(t, fs, testutil.Doc(2, "new-way", models.StatusAccepted))

	entries, _ := s.All()
	findings := NewManager(s).Validate(entries)
	if len(findings) != 1 || findings[0].Code != models.CodeOneSidedLink {
		t.Errorf("findings = %v", findings)
	}
}

func TestChainReaches(t *testing.T) {
	s, fs := testutil.TestArchive(t)
	// 3 supersedes 2, 2 supersedes 1.
	one := testutil.Doc(1, "gen-one", models.StatusSuperseded)
	two := testutil.Doc(2, "gen-two", models.StatusSuperseded)
	three := testutil.Doc(3, "gen-three", models.StatusAccepted)
	id1, id2, id3 := 1, 2, 3
	two.Supersedes, one.SupersededBy = &id1, &id2
	three.Supersedes, two.SupersededBy = &id2, &id3
	testutil.Seed(t, fs, one)
	testutil.Seed(t, fs, two)
	testutil.Seed(t, fs, three)

	entries, _ := s.All()
	if !ChainReaches(entries, 3, 1) {
		t.Error("chain 3→2→1 should reach 1")
	}
	if ChainReaches(entries, 1, 3) {
		t.Error("chain from 1 should not reach 3")
	}
}
