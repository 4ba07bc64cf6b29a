// =============================================================================
// Invoice Email Generator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser
//   - validation
//   - grouper
//   - assembler
//   - pipeline
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORD
// =============================================================================

// Record represents one parsed input row (a single invoice line).
// A Record is immutable once parsed; downstream stages never modify it.
type Record struct {
	// RowNumber is the row number in the source file, 1-indexed and counting
	// the header row. Used for error reporting so the operator can find the
	// offending line in a spreadsheet.
	RowNumber int

	// To holds the raw To addresses as they appeared in the cell. Multiple
	// addresses may be packed into one string separated by ";" or ",".
	To string

	// Cc and Bcc hold the raw Cc/Bcc address strings. Both are optional.
	Cc  string
	Bcc string

	// SubjectOverride is an optional per-row subject. When the first record
	// of an email unit carries one, it wins over the configured format.
	SubjectOverride string

	// EntityName is the customer/entity the invoice is addressed to.
	EntityName string

	// InvoiceNumber is the invoice identifier. It is deliberately a string
	// and must never be parsed as a number: invoice numbers carry leading
	// zeros ("0003") and non-numeric suffixes ("INV-17a").
	InvoiceNumber string

	// Amount is the invoice amount, when the cell parsed as a decimal.
	// Nil when the cell was empty or unparsable; AmountRaw keeps the
	// original text either way so templates can fall back to it.
	Amount    *decimal.Decimal
	AmountRaw string

	// DueDate is the parsed due date, nil when absent or unparsable.
	// DueDateRaw keeps the original cell text for display.
	DueDate    *time.Time
	DueDateRaw string

	// AttachmentPaths are the attachment paths listed for this row, in cell
	// order. Paths may be relative to the configured attachment base.
	AttachmentPaths []string

	// GroupKey merges rows into one email when non-empty. Rows with an
	// empty GroupKey each become their own email.
	GroupKey string

	// CustomMessage is an optional free-text note rendered into the body.
	CustomMessage string
}

// HasGroup reports whether the record belongs to a named group.
func (r *Record) HasGroup() bool {
	return r.GroupKey != ""
}

// =============================================================================
// EMAIL UNIT
// =============================================================================

// EmailUnit is the atomic deliverable: one email built from one or more
// records. Units are produced by the grouper and consumed exactly once by
// the assembler; they are never modified after construction.
type EmailUnit struct {
	// To, Cc and Bcc are taken verbatim from the first record of the unit.
	// Later members' address fields are ignored for routing so each group
	// has a single predictable recipient set.
	To  string
	Cc  string
	Bcc string

	// Records are the member rows in original relative order. Length 1 for
	// a single-invoice email; >1 for a grouped email. All members of a
	// grouped unit share the same non-empty GroupKey.
	Records []Record

	// Subject is the composed (or overridden) subject line.
	Subject string

	// GroupKey is the shared key for grouped units, empty for singles.
	GroupKey string

	// IsGroup selects the group-style body/subject rendering. Note this is
	// a policy flag, not a cardinality check: a lone record with a group
	// key can still render group-style.
	IsGroup bool

	// BodyContext is the data handed to the template resolver.
	BodyContext map[string]any

	// Attachments is the concatenation, in member order, of each record's
	// resolved attachments. Duplicates are preserved; name collisions are
	// disambiguated at serialization time.
	Attachments []Attachment
}

// Attachment is a resolved attachment: the filename to present in the
// message and the absolute path to read the content from.
type Attachment struct {
	Filename string
	Path     string
}

// Descriptor returns a short human-readable identifier for the unit, used
// in failure reports to let the operator locate the source rows.
func (u *EmailUnit) Descriptor() string {
	if u.IsGroup {
		return "group " + u.GroupKey
	}
	if len(u.Records) > 0 {
		return u.Records[0].EntityName + " invoice " + u.Records[0].InvoiceNumber
	}
	return "empty unit"
}

// RowNumbers returns the source row numbers of all member records.
func (u *EmailUnit) RowNumbers() []int {
	rows := make([]int, len(u.Records))
	for i := range u.Records {
		rows[i] = u.Records[i].RowNumber
	}
	return rows
}

// =============================================================================
// VALIDATION REPORT
// =============================================================================

// Finding is a single validation error or warning tied to a source row.
type Finding struct {
	// RowNumber is the source row the finding refers to (header counted).
	RowNumber int

	// Kind classifies the finding (see errors.go).
	Kind error

	// Message is the human-readable description.
	Message string
}

// ValidationReport aggregates the findings of one validation run. Reports
// are produced fresh per run and never persisted.
type ValidationReport struct {
	Errors   []Finding
	Warnings []Finding
}

// HasErrors reports whether the run found at least one error.
func (r *ValidationReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// AddError appends an error finding.
func (r *ValidationReport) AddError(row int, kind error, message string) {
	r.Errors = append(r.Errors, Finding{RowNumber: row, Kind: kind, Message: message})
}

// AddWarning appends a warning finding.
func (r *ValidationReport) AddWarning(row int, kind error, message string) {
	r.Warnings = append(r.Warnings, Finding{RowNumber: row, Kind: kind, Message: message})
}

// =============================================================================
// GENERATION RESULT
// =============================================================================

// UnitFailure records one unit that could not be generated, with enough
// context to locate the source rows.
type UnitFailure struct {
	// Descriptor identifies the unit ("group Acme Group", "Foo invoice 0001").
	Descriptor string

	// RowNumbers are the source rows the unit was built from.
	RowNumbers []int

	// Err is the error that stopped the unit.
	Err error
}

// GenerationResult is the outcome of one pipeline run. The batch never
// aborts wholesale: every unit lands either in Succeeded or in Failed.
type GenerationResult struct {
	// Succeeded holds the sink identifiers (output paths) in unit order.
	Succeeded []string

	// Failed holds per-unit failures in unit order.
	Failed []UnitFailure

	// ValidationReport is the report from the validation stage, nil when
	// validation was skipped.
	ValidationReport *ValidationReport
}
