package models

import "fmt"

// Severity of a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding codes. The fixer dispatches on these, so they are part of the
// contract between validator and fixer.
const (
	CodeUnknownStatus     = "unknown-status"
	CodeDateFormat        = "date-format"
	CodeDecidersEmpty     = "deciders-empty"
	CodeTagsMissing       = "tags-missing"
	CodeImpactEmpty       = "impact-empty"
	CodeMissingSection    = "missing-section"
	CodeDanglingReference = "dangling-reference"
	CodeOneSidedLink      = "one-sided-link"
	CodeDuplicateID       = "duplicate-id"
	CodePartitionMismatch = "partition-mismatch"
	CodeLinkWithoutStatus = "link-without-status"
	CodeMissingLink       = "missing-link"
)

// Finding is one validation or integrity result attached to a document.
type Finding struct {
	Severity Severity
	Code     string
	Ref      string // document ref or file path the finding concerns
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", f.Severity, f.Code, f.Ref, f.Message)
}

// Errored reports whether any finding in fs is error-level.
func Errored(fs []Finding) bool {
	for _, f := range fs {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
