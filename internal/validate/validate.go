// Package validate checks metadata well-formedness and store-wide integrity,
// and applies the narrow set of fixes that cannot change a decision's
// meaning.
package validate

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/links"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// Validator runs document and archive checks.
type Validator struct {
	store *store.Store
	links *links.Manager
}

// New creates a Validator over the given store.
func New(s *store.Store) *Validator {
	return &Validator{store: s, links: links.NewManager(s)}
}

// Document checks one document's metadata, sections, and references. byID
// resolves reference targets; pass the full document set.
func (v *Validator) Document(e store.Entry, byID map[int]store.Entry) []models.Finding {
	doc := e.Doc
	findings := metadataFindings(doc)

	if doc.Tags == nil {
		findings = append(findings, finding(models.SeverityWarning, models.CodeTagsMissing, doc,
			"no Tags line; an explicit empty one can be added automatically"))
	}
	if doc.Impact == "" {
		findings = append(findings, finding(models.SeverityWarning, models.CodeImpactEmpty, doc,
			"Impact is empty and needs manual review"))
	}
	for _, name := range models.RequiredSections {
		if _, ok := doc.Section(name); !ok {
			findings = append(findings, finding(models.SeverityWarning, models.CodeMissingSection, doc,
				fmt.Sprintf("section %q is missing", name)))
		}
	}

	for _, ref := range []*int{doc.Supersedes, doc.SupersededBy} {
		if ref == nil {
			continue
		}
		if _, ok := byID[*ref]; !ok {
			findings = append(findings, finding(models.SeverityError, models.CodeDanglingReference, doc,
				fmt.Sprintf("reference to missing document %s", models.FormatID(*ref))))
		}
	}

	// Status and link fields must agree; a mismatch is the footprint of an
	// interrupted supersede.
	if doc.Status == models.StatusSuperseded && doc.SupersededBy == nil {
		findings = append(findings, finding(models.SeverityError, models.CodeMissingLink, doc,
			"Superseded but no Superseded-By reference"))
	}
	if doc.Status != models.StatusSuperseded && doc.SupersededBy != nil {
		findings = append(findings, finding(models.SeverityError, models.CodeLinkWithoutStatus, doc,
			fmt.Sprintf("Superseded-By is set but status is %s", doc.Status)))
	}

	return findings
}

// All validates every document plus the store-wide invariants: unique ids,
// partition/status agreement, and link reciprocity. The index is not
// consulted; it is derived state and recomputed from source by callers.
func (v *Validator) All() ([]models.Finding, error) {
	entries, err := v.store.All()
	if err != nil {
		return nil, err
	}

	byID := make(map[int]store.Entry, len(entries))
	var findings []models.Finding
	for _, e := range entries {
		if prev, dup := byID[e.Doc.ID]; dup {
			findings = append(findings, models.Finding{
				Severity: models.SeverityError,
				Code:     models.CodeDuplicateID,
				Ref:      e.Doc.Ref(),
				Message:  fmt.Sprintf("id also held by %s/%s", prev.Partition, prev.Doc.FileName()),
			})
			continue
		}
		byID[e.Doc.ID] = e
	}

	for _, e := range entries {
		if e.Partition != e.Doc.Status.Partition() {
			findings = append(findings, models.Finding{
				Severity: models.SeverityError,
				Code:     models.CodePartitionMismatch,
				Ref:      e.Doc.Ref(),
				Message:  fmt.Sprintf("status %s but stored in %s/", e.Doc.Status, e.Partition),
			})
		}
		findings = append(findings, v.Document(e, byID)...)
	}

	findings = append(findings, v.links.Validate(entries)...)
	return findings, nil
}

// metadataFindings applies the field rules and converts the result into
// findings keyed by fixer-recognised codes.
func metadataFindings(doc *models.Document) []models.Finding {
	err := validation.ValidateStruct(doc,
		validation.Field(&doc.Status,
			validation.Required.Error("is missing"),
			validation.In(models.StatusProposed, models.StatusAccepted, models.StatusDeprecated, models.StatusSuperseded).
				Error("is not a recognised status")),
		validation.Field(&doc.Date,
			validation.Required.Error("is missing"),
			validation.Date("2006-01-02").Error("must be an ISO YYYY-MM-DD date")),
		validation.Field(&doc.Deciders,
			validation.Required.Error("must list at least one name")),
	)
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []models.Finding{finding(models.SeverityError, models.CodeDateFormat, doc, err.Error())}
	}
	var findings []models.Finding
	for _, field := range []string{"Status", "Date", "Deciders"} {
		ferr, ok := verrs[field]
		if !ok {
			continue
		}
		findings = append(findings, finding(models.SeverityError, codeForField(field), doc,
			fmt.Sprintf("%s %s", field, ferr.Error())))
	}
	return findings
}

func codeForField(field string) string {
	switch field {
	case "Status":
		return models.CodeUnknownStatus
	case "Date":
		return models.CodeDateFormat
	default:
		return models.CodeDecidersEmpty
	}
}

func finding(sev models.Severity, code string, doc *models.Document, msg string) models.Finding {
	return models.Finding{Severity: sev, Code: code, Ref: doc.Ref(), Message: msg}
}
