package types

import "errors"

// Error kinds shared across the pipeline. Validation findings and per-unit
// failures carry one of these so callers can classify with errors.Is.
var (
	// ErrMissingRequiredField marks a row lacking To, EntityName or
	// InvoiceNumber.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrMalformedAddress marks an address token that failed the syntax
	// check (local@domain with a dotted domain, no whitespace).
	ErrMalformedAddress = errors.New("malformed address")

	// ErrAttachmentNotFound marks an attachment path that does not exist
	// on disk after base-directory resolution.
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrTemplateRender marks a body/subject template that failed to render.
	ErrTemplateRender = errors.New("template render failed")

	// ErrAssembly marks a message that could not be serialized, e.g. an
	// attachment that became unreadable between validation and assembly.
	ErrAssembly = errors.New("message assembly failed")

	// ErrWrite marks a sink that rejected the finished artifact.
	ErrWrite = errors.New("artifact write failed")
)
