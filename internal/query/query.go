// Package query lists documents with filtering and stable ordering.
package query

import (
	"iter"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// Source yields the full document set. *store.Store satisfies it.
type Source interface {
	All() ([]store.Entry, error)
}

// Filter narrows a listing. Zero fields match everything; set fields
// combine as AND.
type Filter struct {
	Status models.Status
	Tag    string
}

func (f Filter) matches(d *models.Document) bool {
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.Tag != "" && !d.HasTag(f.Tag) {
		return false
	}
	return true
}

// List returns a restartable sequence of matching documents sorted by id
// ascending. The store is re-read on every range, so a second iteration
// observes mutations that happened in between. A read failure is yielded
// once as the final pair with a nil document.
func List(src Source, f Filter) iter.Seq2[*models.Document, error] {
	return func(yield func(*models.Document, error) bool) {
		entries, err := src.All()
		if err != nil {
			yield(nil, err)
			return
		}
		for _, e := range entries {
			if !f.matches(e.Doc) {
				continue
			}
			if !yield(e.Doc, nil) {
				return
			}
		}
	}
}

// Collect drains List into a slice, returning the first error encountered.
func Collect(src Source, f Filter) ([]*models.Document, error) {
	var out []*models.Document
	for doc, err := range List(src, f) {
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}
