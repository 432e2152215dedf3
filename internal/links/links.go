// Package links owns the supersedes / superseded-by reference pair. Every
// mutation of those fields goes through the Manager; nothing else in the
// codebase writes them, so the two sides of a pair cannot drift apart
// unnoticed — a crash mid-operation leaves a one-sided pair that Validate
// reports on the next pass.
package links

import (
	"fmt"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// Manager mutates and checks cross-document references.
type Manager struct {
	store *store.Store
}

// NewManager creates a Manager persisting through the given store.
func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// Link records that newer supersedes older, persisting both sides. The
// newer document is written first: if the subsequent write or move of the
// older document fails, the surviving one-sided pair points at the
// replacement, which is the direction Validate reconstructs from.
func (m *Manager) Link(older, newer store.Entry) error {
	newer.Doc.Supersedes = &older.Doc.ID
	if err := m.store.Update(newer); err != nil {
		return fmt.Errorf("links: persist %s: %w", newer.Doc.Ref(), err)
	}
	older.Doc.SupersededBy = &newer.Doc.ID
	if err := m.store.Update(older); err != nil {
		return fmt.Errorf("links: persist %s: %w", older.Doc.Ref(), err)
	}
	return nil
}

// Validate checks every reference for a resolvable target and a reciprocal
// back-reference. One-sided or dangling pairs are integrity errors.
func (m *Manager) Validate(entries []store.Entry) []models.Finding {
	byID := make(map[int]*models.Document, len(entries))
	for _, e := range entries {
		byID[e.Doc.ID] = e.Doc
	}

	var findings []models.Finding
	for _, e := range entries {
		doc := e.Doc
		if doc.Supersedes != nil {
			target, ok := byID[*doc.Supersedes]
			switch {
			case !ok:
				findings = append(findings, models.Finding{
					Severity: models.SeverityError,
					Code:     models.CodeDanglingReference,
					Ref:      doc.Ref(),
					Message:  fmt.Sprintf("Supersedes points at missing document %s", models.FormatID(*doc.Supersedes)),
				})
			case target.SupersededBy == nil || *target.SupersededBy != doc.ID:
				findings = append(findings, models.Finding{
					Severity: models.SeverityError,
					Code:     models.CodeOneSidedLink,
					Ref:      doc.Ref(),
					Message:  fmt.Sprintf("%s does not acknowledge being superseded by %s", target.Ref(), doc.Ref()),
				})
			}
		}
		if doc.SupersededBy != nil {
			target, ok := byID[*doc.SupersededBy]
			switch {
			case !ok:
				findings = append(findings, models.Finding{
					Severity: models.SeverityError,
					Code:     models.CodeDanglingReference,
					Ref:      doc.Ref(),
					Message:  fmt.Sprintf("Superseded-By points at missing document %s", models.FormatID(*doc.SupersededBy)),
				})
			case target.Supersedes == nil || *target.Supersedes != doc.ID:
				findings = append(findings, models.Finding{
					Severity: models.SeverityError,
					Code:     models.CodeOneSidedLink,
					Ref:      doc.Ref(),
					Message:  fmt.Sprintf("%s does not claim to supersede %s", target.Ref(), doc.Ref()),
				})
			}
		}
	}
	return findings
}

// ChainReaches reports whether following Supersedes references starting at
// from eventually arrives at target. Used to refuse supersede cycles.
func ChainReaches(entries []store.Entry, from, target int) bool {
	byID := make(map[int]*models.Document, len(entries))
	for _, e := range entries {
		byID[e.Doc.ID] = e.Doc
	}
	visited := map[int]bool{}
	for cur := byID[from]; cur != nil && cur.Supersedes != nil; cur = byID[*cur.Supersedes] {
		next := *cur.Supersedes
		if next == target {
			return true
		}
		if visited[next] {
			return false
		}
		visited[next] = true
	}
	return false
}
