// =============================================================================
// Invoice Email Generator - Validation Engine
// =============================================================================
//
// Pre-flight checks over a parsed record set. The validator verifies
// structural integrity only:
//   - required fields are present (To, entity name, invoice number)
//   - every address token passes the syntax rule
//   - every attachment path exists on disk
//
// It does not judge business semantics (amounts, due dates) beyond warning
// when a typed cell failed to parse.
//
// ERROR HANDLING:
//   - Findings are collected, never raised individually.
//   - Every malformed field on every row is reported independently; the
//     validator never de-duplicates repeated values across rows.
//   - Validation is advisory. Callers decide whether to proceed; the
//     validator itself never mutates anything.
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/types"
)

// addressPattern is the address syntax rule: local part, "@", domain with at
// least one dot, and no embedded whitespace.
var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validator checks a record set against the configured strictness.
type Validator struct {
	cfg *config.Config
}

// New creates a Validator for the given configuration.
func New(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// Validate runs all enabled checks over the records and returns a fresh
// report. With validation.fail_fast set, collection stops after the first
// error (warnings gathered up to that point are kept).
func (v *Validator) Validate(records []types.Record) *types.ValidationReport {
	report := &types.ValidationReport{}

	for i := range records {
		v.validateRecord(&records[i], report)
		if v.cfg.Validation.FailFast && report.HasErrors() {
			break
		}
	}

	return report
}

// validateRecord appends all findings for one record.
func (v *Validator) validateRecord(rec *types.Record, report *types.ValidationReport) {
	v.checkRequired(rec, report)

	if *v.cfg.Validation.ValidateEmails {
		v.checkAddresses(rec, report)
	}

	if *v.cfg.Validation.CheckAttachments {
		v.checkAttachments(rec, report)
	}

	// Typed-cell warnings: the raw text survives either way, but a cell
	// that looked like an amount or date and did not parse is worth a nudge.
	if rec.AmountRaw != "" && rec.Amount == nil {
		report.AddWarning(rec.RowNumber, types.ErrMissingRequiredField,
			fmt.Sprintf("amount %q is not a decimal; the raw text will be shown as-is", rec.AmountRaw))
	}
	if rec.DueDateRaw != "" && rec.DueDate == nil {
		report.AddWarning(rec.RowNumber, types.ErrMissingRequiredField,
			fmt.Sprintf("due date %q matched no configured date format; the raw text will be shown as-is", rec.DueDateRaw))
	}
}

// checkRequired reports rows missing To, entity name or invoice number.
func (v *Validator) checkRequired(rec *types.Record, report *types.ValidationReport) {
	if len(SplitAddresses(rec.To, v.cfg.AddressSeparators)) == 0 {
		report.AddError(rec.RowNumber, types.ErrMissingRequiredField, "To address is required")
	}
	if rec.EntityName == "" {
		report.AddError(rec.RowNumber, types.ErrMissingRequiredField, "entity name is required")
	}
	if rec.InvoiceNumber == "" {
		report.AddError(rec.RowNumber, types.ErrMissingRequiredField, "invoice number is required")
	}
}

// checkAddresses validates every token of every address field. Empty Cc/Bcc
// is fine; empty To is reported by checkRequired.
func (v *Validator) checkAddresses(rec *types.Record, report *types.ValidationReport) {
	fields := []struct {
		label string
		value string
	}{
		{"To", rec.To},
		{"CC", rec.Cc},
		{"BCC", rec.Bcc},
	}

	for _, f := range fields {
		for _, addr := range SplitAddresses(f.value, v.cfg.AddressSeparators) {
			if !addressPattern.MatchString(addr) {
				report.AddError(rec.RowNumber, types.ErrMalformedAddress,
					fmt.Sprintf("invalid %s email: %s", f.label, addr))
			}
		}
	}
}

// checkAttachments reports attachment paths that do not exist on disk.
// Relative paths are resolved against paths.attachment_base; absolute paths
// pass through unchanged. The check reads nothing and mutates nothing.
func (v *Validator) checkAttachments(rec *types.Record, report *types.ValidationReport) {
	for _, path := range rec.AttachmentPaths {
		resolved := ResolveAttachmentPath(path, v.cfg.Paths.AttachmentBase)
		if _, err := os.Stat(resolved); err != nil {
			report.AddError(rec.RowNumber, types.ErrAttachmentNotFound,
				fmt.Sprintf("attachment file not found: %s", path))
		}
	}
}

// SplitAddresses splits a raw address cell on the configured separator
// characters and trims each token. Empty tokens are dropped.
func SplitAddresses(raw, separators string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})
	var addrs []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}

// ResolveAttachmentPath resolves an attachment path against the base
// directory. Absolute paths are returned as-is.
func ResolveAttachmentPath(path, base string) string {
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}
