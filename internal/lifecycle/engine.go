// Package lifecycle drives documents through Proposed → Accepted →
// {Deprecated | Superseded}. Deprecated and Superseded are terminal and
// mutually exclusive; an attempt to transition out of either is always an
// error, never a no-op. Every successful transition moves the file to its
// status partition and rebuilds the index.
package lifecycle

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/links"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// Engine executes lifecycle transitions.
type Engine struct {
	store *store.Store
	links *links.Manager
	index *index.Writer
	log   *slog.Logger
	now   func() time.Time
}

// New creates an Engine. logger may be nil.
func New(s *store.Store, l *links.Manager, w *index.Writer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, links: l, index: w, log: logger, now: time.Now}
}

// Create adds a new Proposed document and rebuilds the index.
func (e *Engine) Create(slug string, d store.Defaults) (*models.Document, error) {
	if d.Date == "" {
		d.Date = e.today()
	}
	doc, err := e.store.Create(slug, d)
	if err != nil {
		return nil, err
	}
	e.log.Info("created", "ref", doc.Ref(), "slug", slug)
	return doc, e.rebuildIndex()
}

// Accept promotes a Proposed document.
func (e *Engine) Accept(ref string) (*models.Document, error) {
	entry, err := e.store.Get(ref)
	if err != nil {
		return nil, err
	}
	if entry.Doc.Status != models.StatusProposed {
		return nil, transitionErr(entry.Doc, "accept")
	}
	entry.Doc.Status = models.StatusAccepted
	entry.Doc.Date = e.today()
	moved, err := e.store.Move(entry, models.StatusAccepted.Partition())
	if err != nil {
		return nil, err
	}
	e.log.Info("accepted", "ref", moved.Doc.Ref())
	return moved.Doc, e.rebuildIndex()
}

// Deprecate retires a Proposed or Accepted document, prepending a dated
// deprecation notice to the body. Existing prose is never overwritten.
func (e *Engine) Deprecate(ref, reason string) (*models.Document, error) {
	entry, err := e.store.Get(ref)
	if err != nil {
		return nil, err
	}
	doc := entry.Doc
	if doc.Status != models.StatusProposed && doc.Status != models.StatusAccepted {
		return nil, transitionErr(doc, "deprecate")
	}
	doc.Status = models.StatusDeprecated
	doc.Date = e.today()

	notice := fmt.Sprintf("Deprecated on %s.", doc.Date)
	if reason != "" {
		notice = fmt.Sprintf("Deprecated on %s: %s", doc.Date, reason)
	}
	doc.Sections = append([]models.Section{{Name: models.SectionDeprecation, Body: notice}}, doc.Sections...)

	moved, err := e.store.Move(entry, models.StatusDeprecated.Partition())
	if err != nil {
		return nil, err
	}
	e.log.Info("deprecated", "ref", moved.Doc.Ref())
	return moved.Doc, e.rebuildIndex()
}

// Supersede replaces the Accepted document oldRef with newRef. The link is
// recorded on both sides before the old document moves, so an interruption
// leaves a state the validator can surface.
func (e *Engine) Supersede(oldRef, newRef string) (*models.Document, error) {
	older, err := e.store.Get(oldRef)
	if err != nil {
		return nil, err
	}
	newer, err := e.store.Get(newRef)
	if err != nil {
		return nil, err
	}
	if older.Doc.ID == newer.Doc.ID {
		return nil, fmt.Errorf("lifecycle: %s cannot supersede itself: %w", older.Doc.Ref(), apperr.ErrCycle)
	}
	if older.Doc.Status != models.StatusAccepted {
		return nil, transitionErr(older.Doc, "supersede")
	}
	if newer.Doc.Status != models.StatusAccepted {
		e.log.Warn("replacement is not accepted yet", "ref", newer.Doc.Ref(), "status", string(newer.Doc.Status))
	}

	entries, err := e.store.All()
	if err != nil {
		return nil, err
	}
	// A loop closes either when new's chain already reaches old, or when old's
	// chain reaches new and the fresh new→old edge would complete the circle.
	if links.ChainReaches(entries, newer.Doc.ID, older.Doc.ID) ||
		links.ChainReaches(entries, older.Doc.ID, newer.Doc.ID) {
		return nil, fmt.Errorf("lifecycle: superseding %s by %s closes a reference loop: %w",
			older.Doc.Ref(), newer.Doc.Ref(), apperr.ErrCycle)
	}

	if err := e.links.Link(older, newer); err != nil {
		return nil, err
	}
	older.Doc.Status = models.StatusSuperseded
	older.Doc.Date = e.today()
	moved, err := e.store.Move(older, models.StatusSuperseded.Partition())
	if err != nil {
		return nil, err
	}
	e.log.Info("superseded", "ref", moved.Doc.Ref(), "by", newer.Doc.Ref())
	return moved.Doc, e.rebuildIndex()
}

// RebuildIndex regenerates the index from the current document set.
func (e *Engine) RebuildIndex() error {
	return e.rebuildIndex()
}

func (e *Engine) rebuildIndex() error {
	entries, err := e.store.All()
	if err != nil {
		return err
	}
	docs := make([]*models.Document, len(entries))
	for i, en := range entries {
		docs[i] = en.Doc
	}
	return e.index.Rebuild(docs)
}

func (e *Engine) today() string {
	return e.now().Format("2006-01-02")
}

func transitionErr(doc *models.Document, op string) error {
	return fmt.Errorf("lifecycle: cannot %s %s while %s: %w", op, doc.Ref(), doc.Status, apperr.ErrInvalidTransition)
}
