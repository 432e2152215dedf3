// Package parser converts between the on-disk decision record format and the
// typed document model. The format is a heading, a block of "Key: value"
// metadata lines, then "## Name" sections. Malformed metadata is rejected,
// never defaulted.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

var (
	headingRe = regexp.MustCompile(`^# (?:ADR-\d{4}: )?(.+)$`)
	metaRe    = regexp.MustCompile(`^([A-Za-z][A-Za-z-]*):\s*(.*)$`)
)

// Metadata keys accepted in the header block.
const (
	keyStatus       = "Status"
	keyDeciders     = "Deciders"
	keyDate         = "Date"
	keyTags         = "Tags"
	keyImpact       = "Impact"
	keySupersedes   = "Supersedes"
	keySupersededBy = "Superseded-By"
)

// Parse decodes raw file content into a Document. ID and Slug are not set
// here; they are encoded in the file name and assigned by the store.
// Structural problems (junk in the metadata block, duplicate or unknown keys,
// unparseable references) return apperr.ErrValidation. Missing keys do not:
// the validator reports those as findings so they can be fixed or reviewed.
func Parse(data []byte) (*models.Document, error) {
	lines := strings.Split(string(data), "\n")
	doc := &models.Document{}

	i := skipBlank(lines, 0)
	if i < len(lines) {
		if m := headingRe.FindStringSubmatch(lines[i]); m != nil {
			doc.Title = strings.TrimSpace(m[1])
			i++
		}
	}
	i = skipBlank(lines, i)

	seen := map[string]bool{}
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "## ") {
			break
		}
		m := metaRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("parser: line %d: not a metadata line: %w", i+1, apperr.ErrValidation)
		}
		key, value := m[1], strings.TrimSpace(m[2])
		if seen[key] {
			return nil, fmt.Errorf("parser: duplicate metadata key %q: %w", key, apperr.ErrValidation)
		}
		seen[key] = true
		if err := assign(doc, key, value); err != nil {
			return nil, err
		}
	}

	sections, err := parseSections(lines, i)
	if err != nil {
		return nil, err
	}
	doc.Sections = sections
	return doc, nil
}

func assign(doc *models.Document, key, value string) error {
	switch key {
	case keyStatus:
		doc.Status = models.Status(value)
	case keyDeciders:
		doc.Deciders = splitList(value)
	case keyDate:
		doc.Date = value
	case keyTags:
		// Distinguish "Tags:" (empty set) from an absent key (nil).
		doc.Tags = splitList(value)
		if doc.Tags == nil {
			doc.Tags = []string{}
		}
	case keyImpact:
		doc.Impact = value
	case keySupersedes:
		id, err := parseRef(value)
		if err != nil {
			return err
		}
		doc.Supersedes = &id
	case keySupersededBy:
		id, err := parseRef(value)
		if err != nil {
			return err
		}
		doc.SupersededBy = &id
	default:
		return fmt.Errorf("parser: unrecognised metadata key %q: %w", key, apperr.ErrValidation)
	}
	return nil
}

func parseSections(lines []string, start int) ([]models.Section, error) {
	var sections []models.Section
	var cur *models.Section
	var body []string

	flush := func() {
		if cur != nil {
			cur.Body = strings.TrimRight(strings.Join(body, "\n"), "\n ")
			sections = append(sections, *cur)
		}
		body = nil
	}

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if name, ok := strings.CutPrefix(line, "## "); ok {
			flush()
			cur = &models.Section{Name: strings.TrimSpace(name)}
			continue
		}
		if cur == nil {
			if strings.TrimSpace(line) != "" {
				return nil, fmt.Errorf("parser: line %d: content outside any section: %w", i+1, apperr.ErrValidation)
			}
			continue
		}
		body = append(body, line)
	}
	flush()
	return sections, nil
}

// Render encodes a document into its on-disk form. Optional metadata lines
// are emitted only when set, except Tags and Impact which are always present
// so a rewrite materialises their placeholders.
func Render(doc *models.Document) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", doc.Ref(), doc.Title)
	fmt.Fprintf(&b, "%s: %s\n", keyStatus, doc.Status)
	fmt.Fprintf(&b, "%s: %s\n", keyDeciders, strings.Join(doc.Deciders, ", "))
	fmt.Fprintf(&b, "%s: %s\n", keyDate, doc.Date)
	fmt.Fprintf(&b, "%s: %s\n", keyTags, strings.Join(doc.Tags, ", "))
	fmt.Fprintf(&b, "%s: %s\n", keyImpact, doc.Impact)
	if doc.Supersedes != nil {
		fmt.Fprintf(&b, "%s: %s\n", keySupersedes, models.FormatID(*doc.Supersedes))
	}
	if doc.SupersededBy != nil {
		fmt.Fprintf(&b, "%s: %s\n", keySupersededBy, models.FormatID(*doc.SupersededBy))
	}
	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "\n## %s\n", s.Name)
		if s.Body != "" {
			b.WriteString(s.Body)
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

// splitList splits a comma-separated value, trimming blanks. Returns nil for
// an empty value.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseRef decodes a reference value such as "0003" or "ADR-0003".
func parseRef(value string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "ADR-")
	id, err := strconv.Atoi(trimmed)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("parser: bad document reference %q: %w", value, apperr.ErrValidation)
	}
	return id, nil
}
