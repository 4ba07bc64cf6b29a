// =============================================================================
// Invoice Email Generator - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration from YAML.
// One file drives the whole tool:
//
//   csv_columns:  maps canonical field names to the source column headers,
//                 so differently-labelled exports work without code changes
//   email:        sender identity, subject format strings, output format
//   grouping:     policy knobs for grouped emails
//   paths:        template, output directory, attachment base, banner
//   output:       filename pattern and archival
//   validation:   which pre-flight checks run and how strict they are
//   logging:      level, optional log file, console mirroring
//   dates:        accepted input layouts and the display layout
//
// All options have defaults applied on load; the loaded configuration is
// validated before it is handed to the pipeline.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	// CSVColumns maps canonical field names to source column headers.
	CSVColumns ColumnMapping `yaml:"csv_columns"`

	// Email contains sender identity and subject composition settings.
	Email EmailSettings `yaml:"email"`

	// Grouping contains policy settings for grouped emails.
	Grouping GroupingSettings `yaml:"grouping"`

	// Paths contains filesystem locations used by the pipeline.
	Paths PathSettings `yaml:"paths"`

	// Output controls output file naming and archival.
	Output OutputSettings `yaml:"output"`

	// Validation controls the pre-flight checks.
	Validation ValidationSettings `yaml:"validation"`

	// Logging controls log level and destinations.
	Logging LoggingSettings `yaml:"logging"`

	// Dates lists the accepted due-date input layouts and the layout used
	// when rendering dates into subjects and bodies.
	Dates DateSettings `yaml:"dates"`

	// Company is rendered into every email body.
	Company CompanySettings `yaml:"company"`

	// AddressSeparators are the characters that split a multi-address cell.
	// Default: ";," (semicolon and comma).
	AddressSeparators string `yaml:"address_separators"`
}

// ColumnMapping maps canonical field names to the column headers of the
// source file. Only To, EntityName and InvoiceNumber are required; an empty
// mapping entry disables that field entirely.
type ColumnMapping struct {
	To            string `yaml:"to"`
	Cc            string `yaml:"cc"`
	Bcc           string `yaml:"bcc"`
	Subject       string `yaml:"subject"`
	EntityName    string `yaml:"entity_name"`
	InvoiceNumber string `yaml:"invoice_number"`
	Amount        string `yaml:"amount"`
	DueDate       string `yaml:"due_date"`
	Attachment    string `yaml:"attachment"`
	Group         string `yaml:"group"`
	CustomMessage string `yaml:"custom_message"`
}

// EmailSettings contains sender identity and subject composition.
type EmailSettings struct {
	// From is the sender address placed in the From header.
	From string `yaml:"from"`

	// SubjectSingle is the subject format for single-invoice emails.
	// Placeholders: {entity_name}, {invoice_number}.
	SubjectSingle string `yaml:"subject_single"`

	// SubjectGroup is the subject format for grouped emails.
	// Placeholders: {group_name}, {invoice_numbers} (joined with " / ").
	SubjectGroup string `yaml:"subject_group"`

	// Format selects the output container: "eml", "msg" or "auto".
	// "msg" is only honoured on Windows; elsewhere it degrades to "eml"
	// with a logged warning. The selection happens at the sink boundary,
	// never inside the assembler.
	Format string `yaml:"format"`
}

// GroupingSettings contains policies for grouped emails.
type GroupingSettings struct {
	// SingleMemberStyle decides how a group with exactly one member
	// renders: "group" keeps the group subject/body format, "single"
	// falls back to the single-invoice format. The source data decides
	// membership either way; this only affects presentation.
	SingleMemberStyle string `yaml:"single_member_style"`
}

// PathSettings contains filesystem locations.
type PathSettings struct {
	// Template is the HTML body template file. Empty selects the built-in
	// default template.
	Template string `yaml:"template"`

	// Output is the directory generated emails are written to.
	Output string `yaml:"output"`

	// AttachmentBase is the base directory relative attachment paths are
	// resolved against. Absolute paths pass through unchanged.
	AttachmentBase string `yaml:"attachment_base"`

	// Banner is an optional image referenced by the body template. It is
	// only passed to the template when the file exists.
	Banner string `yaml:"banner"`
}

// OutputSettings controls output file naming and archival.
type OutputSettings struct {
	// FilenamePattern names generated files. Placeholders:
	//   {entity}    - entity name (group name for grouped emails)
	//   {group}     - group name
	//   {invoice}   - invoice number ("Multiple" for grouped emails)
	//   {timestamp} - YYYYMMDD_HHMMSS, empty when Timestamp is false
	//   {uuid}      - a random UUID
	FilenamePattern string `yaml:"filename_pattern"`

	// Timestamp enables the {timestamp} placeholder. Keeping it on is the
	// cheap way to avoid cross-run name collisions.
	Timestamp *bool `yaml:"timestamp"`

	// ArchiveDir, when set, receives a copy of every generated email.
	ArchiveDir string `yaml:"archive_dir"`
}

// ValidationSettings controls the pre-flight checks.
type ValidationSettings struct {
	// ValidateEmails toggles the address syntax check.
	ValidateEmails *bool `yaml:"validate_emails"`

	// CheckAttachments toggles the attachment existence check.
	CheckAttachments *bool `yaml:"check_attachments"`

	// FailFast stops validation at the first error instead of collecting
	// every finding.
	FailFast bool `yaml:"fail_fast"`

	// OnMissingAttachment decides what generation does when an attachment
	// is missing at assembly time (only reachable with validation skipped
	// or overridden):
	//   "omit"  - drop the attachment and continue (default)
	//   "flag"  - drop it and surface the missing names in the body context
	//   "error" - fail that unit (siblings still generate)
	OnMissingAttachment string `yaml:"on_missing_attachment"`
}

// LoggingSettings controls logging destinations.
type LoggingSettings struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// File is an optional log file, appended to.
	File string `yaml:"file"`

	// Console mirrors log output to stderr.
	Console *bool `yaml:"console"`
}

// DateSettings lists date layouts in Go reference-time form.
type DateSettings struct {
	// InputFormats are tried in order when parsing due-date cells.
	InputFormats []string `yaml:"input_formats"`

	// DisplayFormat renders parsed dates in bodies.
	DisplayFormat string `yaml:"display_format"`
}

// CompanySettings is the sender identity rendered into bodies.
type CompanySettings struct {
	Name        string `yaml:"name"`
	SenderName  string `yaml:"sender_name"`
	SenderTitle string `yaml:"sender_title"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads, defaults and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied, used by tests
// and by commands that can run without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func boolPtr(v bool) *bool { return &v }

// applyDefaults fills in every unset option.
func (c *Config) applyDefaults() {
	// Column mapping defaults match the sample sheet shipped with the tool.
	if c.CSVColumns.To == "" {
		c.CSVColumns.To = "To"
	}
	if c.CSVColumns.Cc == "" {
		c.CSVColumns.Cc = "CC"
	}
	if c.CSVColumns.Bcc == "" {
		c.CSVColumns.Bcc = "BCC"
	}
	if c.CSVColumns.Subject == "" {
		c.CSVColumns.Subject = "Subject"
	}
	if c.CSVColumns.EntityName == "" {
		c.CSVColumns.EntityName = "Entity Name"
	}
	if c.CSVColumns.InvoiceNumber == "" {
		c.CSVColumns.InvoiceNumber = "Invoice Number"
	}
	if c.CSVColumns.Amount == "" {
		c.CSVColumns.Amount = "Amount"
	}
	if c.CSVColumns.DueDate == "" {
		c.CSVColumns.DueDate = "Due Date"
	}
	if c.CSVColumns.Attachment == "" {
		c.CSVColumns.Attachment = "Attachment"
	}
	if c.CSVColumns.Group == "" {
		c.CSVColumns.Group = "Group"
	}
	if c.CSVColumns.CustomMessage == "" {
		c.CSVColumns.CustomMessage = "Custom Message"
	}

	if c.Email.From == "" {
		c.Email.From = "accounts@example.com"
	}
	if c.Email.SubjectSingle == "" {
		c.Email.SubjectSingle = "{entity_name} Invoice {invoice_number}"
	}
	if c.Email.SubjectGroup == "" {
		c.Email.SubjectGroup = "{group_name} Invoices {invoice_numbers}"
	}
	if c.Email.Format == "" {
		c.Email.Format = "auto"
	}

	if c.Grouping.SingleMemberStyle == "" {
		c.Grouping.SingleMemberStyle = "group"
	}

	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}

	if c.Output.FilenamePattern == "" {
		c.Output.FilenamePattern = "{entity}_{invoice}_{timestamp}"
	}
	if c.Output.Timestamp == nil {
		c.Output.Timestamp = boolPtr(true)
	}

	if c.Validation.ValidateEmails == nil {
		c.Validation.ValidateEmails = boolPtr(true)
	}
	if c.Validation.CheckAttachments == nil {
		c.Validation.CheckAttachments = boolPtr(true)
	}
	if c.Validation.OnMissingAttachment == "" {
		c.Validation.OnMissingAttachment = "omit"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Console == nil {
		c.Logging.Console = boolPtr(true)
	}

	if len(c.Dates.InputFormats) == 0 {
		c.Dates.InputFormats = []string{"2006-01-02", "01/02/2006", "02.01.2006"}
	}
	if c.Dates.DisplayFormat == "" {
		c.Dates.DisplayFormat = "2006-01-02"
	}

	if c.Company.Name == "" {
		c.Company.Name = "Your Company"
	}
	if c.Company.SenderName == "" {
		c.Company.SenderName = "Accounts Receivable"
	}
	if c.Company.SenderTitle == "" {
		c.Company.SenderTitle = "Billing Department"
	}

	if c.AddressSeparators == "" {
		c.AddressSeparators = ";,"
	}
}

// validate rejects option values the pipeline cannot act on.
func (c *Config) validate() error {
	switch c.Email.Format {
	case "auto", "eml", "msg":
	default:
		return fmt.Errorf("email.format must be auto, eml or msg, got %q", c.Email.Format)
	}

	switch c.Grouping.SingleMemberStyle {
	case "group", "single":
	default:
		return fmt.Errorf("grouping.single_member_style must be group or single, got %q",
			c.Grouping.SingleMemberStyle)
	}

	switch c.Validation.OnMissingAttachment {
	case "omit", "flag", "error":
	default:
		return fmt.Errorf("validation.on_missing_attachment must be omit, flag or error, got %q",
			c.Validation.OnMissingAttachment)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	if c.CSVColumns.To == "" || c.CSVColumns.EntityName == "" || c.CSVColumns.InvoiceNumber == "" {
		return fmt.Errorf("csv_columns.to, csv_columns.entity_name and csv_columns.invoice_number are required")
	}

	return nil
}
