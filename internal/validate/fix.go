package validate

import (
	"fmt"
	"regexp"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// Fix applies the mechanically unambiguous subset of findings: date
// normalisation and materialising an explicit empty Tags line. Everything
// touching status, links, or decision content stays in remaining for manual
// resolution.
func (v *Validator) Fix(findings []models.Finding) (applied, remaining []models.Finding, err error) {
	for _, f := range findings {
		switch f.Code {
		case models.CodeDateFormat:
			ok, ferr := v.fixDate(f)
			if ferr != nil {
				return applied, remaining, ferr
			}
			if ok {
				applied = append(applied, f)
			} else {
				remaining = append(remaining, f)
			}
		case models.CodeTagsMissing:
			if ferr := v.fixTags(f); ferr != nil {
				return applied, remaining, ferr
			}
			applied = append(applied, f)
		default:
			remaining = append(remaining, f)
		}
	}
	return applied, remaining, nil
}

func (v *Validator) fixDate(f models.Finding) (bool, error) {
	e, err := v.store.Get(f.Ref)
	if err != nil {
		return false, fmt.Errorf("validate: fix %s: %w", f.Ref, err)
	}
	iso, ok := NormalizeDate(e.Doc.Date)
	if !ok {
		return false, nil
	}
	e.Doc.Date = iso
	if err := v.store.Update(e); err != nil {
		return false, fmt.Errorf("validate: fix %s: %w", f.Ref, err)
	}
	return true, nil
}

func (v *Validator) fixTags(f models.Finding) error {
	e, err := v.store.Get(f.Ref)
	if err != nil {
		return fmt.Errorf("validate: fix %s: %w", f.Ref, err)
	}
	if e.Doc.Tags == nil {
		e.Doc.Tags = []string{}
	}
	if err := v.store.Update(e); err != nil {
		return fmt.Errorf("validate: fix %s: %w", f.Ref, err)
	}
	return nil
}

// Layouts a date may unambiguously be recovered from. Numeric forms with
// swappable day/month are deliberately absent.
var datedLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var yearlessLayouts = []string{
	"Jan 2",
	"January 2",
}

var isoRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate converts a date written in one of the recoverable layouts to
// ISO form. Year-less dates resolve against the current year. The second
// return is false when the text is not unambiguously a date.
func NormalizeDate(s string) (string, bool) {
	if isoRe.MatchString(s) {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t.Format("2006-01-02"), true
		}
		return "", false
	}
	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(time.Now().Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Format("2006-01-02"), true
		}
	}
	return "", false
}
