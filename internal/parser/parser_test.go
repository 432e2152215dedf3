package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

const sample = `# ADR-0007: Event Storage V2

Status: Accepted
Deciders: alice, bob
Date: 2026-08-30
Tags: storage, events
Impact: event write path
Supersedes: 0003

## Problem
Events outgrow the v1 layout.

## Decision
Adopt segmented logs.

## Rationale

## Enforcement
Reviewed in CI.

## References
`

func TestParse_FullDocument(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "Event Storage V2" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Status != models.StatusAccepted {
		t.Errorf("status = %q", doc.Status)
	}
	if len(doc.Deciders) != 2 || doc.Deciders[0] != "alice" || doc.Deciders[1] != "bob" {
		t.Errorf("deciders = %v", doc.Deciders)
	}
	if doc.Date != "2026-08-30" {
		t.Errorf("date = %q", doc.Date)
	}
	if doc.Supersedes == nil || *doc.Supersedes != 3 {
		t.Errorf("supersedes = %v", doc.Supersedes)
	}
	if doc.SupersededBy != nil {
		t.Errorf("supersededBy should be nil")
	}
	if len(doc.Sections) != 5 {
		t.Fatalf("sections = %d, want 5", len(doc.Sections))
	}
	if doc.Sections[0].Name != "Problem" || doc.Sections[0].Body != "Events outgrow the v1 layout." {
		t.Errorf("problem section = %+v", doc.Sections[0])
	}
}

func TestParse_MissingOptionalKeysTolerated(t *testing.T) {
	doc, err := Parse([]byte("Status: Proposed\n\n## Problem\nx\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Tags != nil {
		t.Errorf("absent Tags key should parse to nil, got %v", doc.Tags)
	}
	if len(doc.Deciders) != 0 || doc.Date != "" {
		t.Errorf("missing keys should stay zero, got %v %q", doc.Deciders, doc.Date)
	}
}

func TestParse_EmptyTagsKeyIsEmptySet(t *testing.T) {
	doc, err := Parse([]byte("Status: Proposed\nTags:\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Tags == nil || len(doc.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil set", doc.Tags)
	}
}

func TestParse_RejectsMalformedMetadata(t *testing.T) {
	cases := map[string]string{
		"junk line":      "Status: Proposed\nthis is not metadata\n",
		"duplicate key":  "Status: Proposed\nStatus: Accepted\n",
		"unknown key":    "Status: Proposed\nReviewer: carol\n",
		"bad reference":  "Status: Proposed\nSupersedes: soon\n",
		"zero reference": "Status: Proposed\nSupersedes: 0000\n",
		"stray prose":    "Status: Proposed\n\nno section header here\n",
	}
	for name, input := range cases {
		if _, err := Parse([]byte(input)); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", name, err)
		}
	}
}

func TestParse_RefWithPrefix(t *testing.T) {
	doc, err := Parse([]byte("Status: Superseded\nSuperseded-By: ADR-0009\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.SupersededBy == nil || *doc.SupersededBy != 9 {
		t.Errorf("supersededBy = %v", doc.SupersededBy)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	nine := 9
	doc := &models.Document{
		ID:           7,
		Slug:         "event-storage-v2",
		Title:        "Event Storage V2",
		Status:       models.StatusSuperseded,
		Deciders:     []string{"alice"},
		Date:         "2026-08-30",
		Tags:         []string{"storage"},
		Impact:       "write path",
		SupersededBy: &nine,
		Sections: []models.Section{
			{Name: "Problem", Body: "p"},
			{Name: "Decision", Body: "d"},
		},
	}
	back, err := Parse(Render(doc))
	if err != nil {
		t.Fatalf("Parse(Render): %v", err)
	}
	if back.Status != doc.Status || back.Date != doc.Date || back.Impact != doc.Impact {
		t.Errorf("metadata mismatch: %+v", back)
	}
	if back.SupersededBy == nil || *back.SupersededBy != 9 {
		t.Errorf("supersededBy = %v", back.SupersededBy)
	}
	if len(back.Sections) != 2 || back.Sections[1].Body != "d" {
		t.Errorf("sections = %+v", back.Sections)
	}
}

func TestRender_AlwaysEmitsTagsAndImpact(t *testing.T) {
	out := string(Render(&models.Document{ID: 1, Slug: "x", Title: "X", Status: models.StatusProposed}))
	for _, want := range []string{"\nTags:", "\nImpact:"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q line:\n%s", want, out)
		}
	}
}
