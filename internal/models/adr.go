// Package models defines the domain types for Ansuz.
package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Status is the lifecycle state of a decision record.
type Status string

const (
	StatusProposed   Status = "Proposed"
	StatusAccepted   Status = "Accepted"
	StatusDeprecated Status = "Deprecated"
	StatusSuperseded Status = "Superseded"
)

// Statuses lists every status in lifecycle order. Index builds and
// partition scans iterate this slice so their output order is stable.
var Statuses = []Status{StatusProposed, StatusAccepted, StatusDeprecated, StatusSuperseded}

// Known reports whether s is a recognised status value.
func (s Status) Known() bool {
	switch s {
	case StatusProposed, StatusAccepted, StatusDeprecated, StatusSuperseded:
		return true
	}
	return false
}

// Terminal reports whether no further transition may start from s.
func (s Status) Terminal() bool {
	return s == StatusDeprecated || s == StatusSuperseded
}

// Partition returns the archive directory holding documents in state s.
func (s Status) Partition() Partition {
	return Partition(strings.ToLower(string(s)))
}

// Partition is one of the four status-named archive directories.
type Partition string

// Status returns the status a partition directory implies.
func (p Partition) Status() Status {
	if p == "" {
		return ""
	}
	return Status(strings.ToUpper(string(p[0])) + string(p[1:]))
}

// Section names. Problem, Decision, Enforcement and References are required;
// Rationale is part of the skeleton but its absence is not flagged.
const (
	SectionProblem     = "Problem"
	SectionDecision    = "Decision"
	SectionRationale   = "Rationale"
	SectionEnforcement = "Enforcement"
	SectionReferences  = "References"
	SectionDeprecation = "Deprecation"
)

// SkeletonSections is the section order of a freshly created document.
var SkeletonSections = []string{
	SectionProblem, SectionDecision, SectionRationale, SectionEnforcement, SectionReferences,
}

// RequiredSections are the sections whose absence the validator reports.
var RequiredSections = []string{
	SectionProblem, SectionDecision, SectionEnforcement, SectionReferences,
}

// Section is one named text block of a document body. Content is opaque to
// the core; only presence is ever inspected.
type Section struct {
	Name string
	Body string
}

// Document is a single architecture decision record. ID and Slug are taken
// from the file name and are immutable once assigned. Supersedes and
// SupersededBy are written exclusively by the link manager.
type Document struct {
	ID           int
	Slug         string
	Title        string
	Status       Status
	Deciders     []string
	Date         string // ISO YYYY-MM-DD; kept raw so the validator can flag and fix it
	Tags         []string
	Impact       string
	Supersedes   *int
	SupersededBy *int
	Sections     []Section
}

// Section returns the named section, if present.
func (d *Document) Section(name string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// HasTag reports whether tag is in the document's tag set.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Ref returns the external identifier, e.g. "ADR-0007".
func (d *Document) Ref() string {
	return "ADR-" + FormatID(d.ID)
}

// FileName returns the base name the document is stored under. It is
// identical in every partition.
func (d *Document) FileName() string {
	return fmt.Sprintf("ADR-%s-%s.md", FormatID(d.ID), d.Slug)
}

// FormatID renders an id in its zero-padded external form.
func FormatID(id int) string {
	return fmt.Sprintf("%04d", id)
}

var (
	fileNameRe = regexp.MustCompile(`^ADR-(\d{4})-([a-z0-9]+(?:-[a-z0-9]+)*)\.md$`)
	slugRe     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// ParseFileName extracts the id and slug encoded in a document file name.
func ParseFileName(name string) (int, string, error) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, "", fmt.Errorf("not a decision record file name: %s", name)
	}
	var id int
	if _, err := fmt.Sscanf(m[1], "%d", &id); err != nil {
		return 0, "", fmt.Errorf("bad id in file name %s: %w", name, err)
	}
	return id, m[2], nil
}

// ValidSlug reports whether s is a well-formed kebab-case slug.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// TitleFromSlug derives a display title, e.g. "event-storage-v2" →
// "Event Storage V2".
func TitleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
