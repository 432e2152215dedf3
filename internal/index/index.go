// Package index projects the document set into the generated index file.
// The projection is pure and deterministic; the file is discarded and fully
// rebuilt after every mutation, never patched, so it cannot drift from the
// archive without the next rebuild erasing the drift.
package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// DefaultFileName is the index document at the archive root.
const DefaultFileName = "INDEX.md"

// Build renders the index for the given documents: one group per status in
// lifecycle order (ids ascending, with counts), then one group per tag in
// lexical order.
func Build(docs []*models.Document) []byte {
	byStatus := make(map[models.Status][]*models.Document)
	byTag := make(map[string][]*models.Document)
	for _, d := range docs {
		byStatus[d.Status] = append(byStatus[d.Status], d)
		for _, tag := range d.Tags {
			byTag[tag] = append(byTag[tag], d)
		}
	}
	for _, group := range byStatus {
		sortByID(group)
	}
	for _, group := range byTag {
		sortByID(group)
	}

	var b strings.Builder
	b.WriteString("# Decision Index\n\n")
	b.WriteString("Generated file. Do not edit; it is rebuilt after every change.\n")

	b.WriteString("\n## By status\n")
	for _, status := range models.Statuses {
		group := byStatus[status]
		fmt.Fprintf(&b, "\n### %s (%d)\n", status, len(group))
		writeGroup(&b, group)
	}

	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	b.WriteString("\n## By tag\n")
	for _, tag := range tags {
		group := byTag[tag]
		fmt.Fprintf(&b, "\n### %s (%d)\n", tag, len(group))
		writeGroup(&b, group)
	}

	return []byte(b.String())
}

func writeGroup(b *strings.Builder, group []*models.Document) {
	for _, d := range group {
		fmt.Fprintf(b, "- %s: %s (%s)\n", d.Ref(), d.Title, d.Date)
	}
}

func sortByID(docs []*models.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}

// Writer persists rebuilt indexes at a fixed location.
type Writer struct {
	fs   storage.Provider
	name string
}

// NewWriter creates a Writer targeting name at the archive root.
func NewWriter(fs storage.Provider, name string) *Writer {
	if name == "" {
		name = DefaultFileName
	}
	return &Writer{fs: fs, name: name}
}

// Rebuild replaces the index file with a fresh projection of docs.
func (w *Writer) Rebuild(docs []*models.Document) error {
	if err := w.fs.Write(w.name, Build(docs)); err != nil {
		return fmt.Errorf("index: rebuild %s: %w", w.name, err)
	}
	return nil
}
