// =============================================================================
// Invoice Email Generator - Pipeline Driver
// =============================================================================
//
// The driver orchestrates one batch run:
//
//   Loaded -> (Validated | ValidationSkipped) -> Grouped
//          -> per unit: Rendered -> Assembled -> Written
//          -> Reported
//
// Reported is always reached. Validation errors gate progress behind an
// explicit confirmation callback (unless validation is skipped); after
// grouping, every unit is processed independently and a failing unit is
// recorded without stopping its siblings. Only a structurally unrecoverable
// condition (the input could not be read at all) is fatal, and that is
// the caller's territory before Run is ever invoked.
//
// =============================================================================

package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hamzanabiel/emailcreator/internal/assembler"
	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/grouper"
	"github.com/hamzanabiel/emailcreator/internal/render"
	"github.com/hamzanabiel/emailcreator/internal/sink"
	"github.com/hamzanabiel/emailcreator/internal/types"
	"github.com/hamzanabiel/emailcreator/internal/validation"
	"github.com/hamzanabiel/emailcreator/pkg/utils"
)

// ErrAborted is returned when validation found errors and the confirmation
// callback declined to proceed.
var ErrAborted = errors.New("generation aborted after validation errors")

// ConfirmFunc decides whether to proceed despite validation errors. The CLI
// wires an interactive prompt here; tests and --yes wire a constant.
type ConfirmFunc func(report *types.ValidationReport) bool

// Driver runs the full generation pipeline over a record set.
type Driver struct {
	cfg       *config.Config
	validator *validation.Validator
	grouper   *grouper.Grouper
	renderer  render.Renderer
	assembler *assembler.Assembler
	sink      sink.Sink
	confirm   ConfirmFunc
	log       *logrus.Logger
	now       func() time.Time
}

// New wires a Driver from its collaborators. confirm may be nil, which
// declines whenever validation errors exist.
func New(cfg *config.Config, renderer render.Renderer, out sink.Sink, confirm ConfirmFunc, log *logrus.Logger) *Driver {
	if confirm == nil {
		confirm = func(*types.ValidationReport) bool { return false }
	}
	if log == nil {
		log = logrus.New()
	}
	return &Driver{
		cfg:       cfg,
		validator: validation.New(cfg),
		grouper:   grouper.New(cfg),
		renderer:  renderer,
		assembler: assembler.New(cfg.Email.From, cfg.AddressSeparators),
		sink:      out,
		confirm:   confirm,
		log:       log,
		now:       time.Now,
	}
}

// Run executes the batch. With skipValidation the validation gate is
// bypassed entirely; otherwise errors found by the validator require the
// confirmation callback to approve before any unit is generated. The
// returned result lists every unit as either succeeded or failed.
func (d *Driver) Run(records []types.Record, skipValidation bool) (*types.GenerationResult, error) {
	result := &types.GenerationResult{}

	if skipValidation {
		d.log.Warn("validation skipped")
	} else {
		report := d.validator.Validate(records)
		result.ValidationReport = report

		for _, w := range report.Warnings {
			d.log.Warnf("row %d: %s", w.RowNumber, w.Message)
		}

		if report.HasErrors() {
			for _, e := range report.Errors {
				d.log.Errorf("row %d: %s", e.RowNumber, e.Message)
			}
			if !d.confirm(report) {
				return result, ErrAborted
			}
			d.log.Warnf("proceeding despite %d validation error(s)", len(report.Errors))
		}
	}

	units := d.grouper.Group(records)
	d.log.Infof("grouped %d record(s) into %d email(s)", len(records), len(units))

	for i := range units {
		d.processUnit(&units[i], result)
	}

	d.report(result)
	return result, nil
}

// processUnit takes one unit through render, assembly and write. Any
// failure is recorded and the batch moves on.
func (d *Driver) processUnit(unit *types.EmailUnit, result *types.GenerationResult) {
	fail := func(err error) {
		d.log.Errorf("%s: %v", unit.Descriptor(), err)
		result.Failed = append(result.Failed, types.UnitFailure{
			Descriptor: unit.Descriptor(),
			RowNumbers: unit.RowNumbers(),
			Err:        err,
		})
	}

	prepared, err := d.applyAttachmentPolicy(unit)
	if err != nil {
		fail(err)
		return
	}

	body, err := d.renderer.Render(prepared.BodyContext)
	if err != nil {
		fail(err)
		return
	}

	artifact, err := d.assembler.Assemble(prepared, prepared.Subject, body)
	if err != nil {
		fail(err)
		return
	}

	id, err := d.sink.Write(artifact, d.outputBaseName(prepared))
	if err != nil {
		fail(err)
		return
	}

	d.archive(id)
	d.log.Infof("generated %s", id)
	result.Succeeded = append(result.Succeeded, id)
}

// applyAttachmentPolicy handles attachments that went missing between
// validation and generation (or were never checked because validation was
// skipped). The unit itself stays untouched; a shallow copy carries the
// filtered list so siblings and reruns see the original data.
//
//	omit:  drop the missing attachment, log a warning
//	flag:  drop it and expose the missing names to the template as
//	       missing_attachments
//	error: fail this unit
func (d *Driver) applyAttachmentPolicy(unit *types.EmailUnit) (*types.EmailUnit, error) {
	var present []types.Attachment
	var missing []string

	for _, att := range unit.Attachments {
		if _, err := os.Stat(att.Path); err != nil {
			missing = append(missing, att.Filename)
			continue
		}
		present = append(present, att)
	}

	// Attachment filenames reach the template with the body context; the
	// disambiguated part names are an assembly concern, the raw names are
	// what the reader should see listed.
	prepared := *unit
	prepared.Attachments = present

	ctx := make(map[string]any, len(unit.BodyContext)+2)
	for k, v := range unit.BodyContext {
		ctx[k] = v
	}
	names := make([]string, len(present))
	for i, att := range present {
		names[i] = att.Filename
	}
	ctx["attachments"] = names
	prepared.BodyContext = ctx

	if len(missing) == 0 {
		return &prepared, nil
	}

	switch d.cfg.Validation.OnMissingAttachment {
	case "error":
		return nil, fmt.Errorf("%w: %s", types.ErrAttachmentNotFound, strings.Join(missing, ", "))
	case "flag":
		ctx["missing_attachments"] = missing
		d.log.Warnf("%s: missing attachment(s) flagged in body: %s", unit.Descriptor(), strings.Join(missing, ", "))
	default: // omit
		d.log.Warnf("%s: omitting missing attachment(s): %s", unit.Descriptor(), strings.Join(missing, ", "))
	}

	return &prepared, nil
}

// outputBaseName fills the configured filename pattern for a unit. The
// timestamp token makes names unique across runs; the sink still probes the
// disk in case two units of one run collide.
func (d *Driver) outputBaseName(unit *types.EmailUnit) string {
	entity := unit.Records[0].EntityName
	invoice := unit.Records[0].InvoiceNumber
	group := unit.GroupKey
	if unit.IsGroup {
		entity = unit.GroupKey
		invoice = "Multiple"
	}

	ts := ""
	if *d.cfg.Output.Timestamp {
		ts = utils.Timestamp(d.now())
	}

	name := d.cfg.Output.FilenamePattern
	name = strings.ReplaceAll(name, "{entity}", utils.SanitizeFilename(entity))
	name = strings.ReplaceAll(name, "{group}", utils.SanitizeFilename(group))
	name = strings.ReplaceAll(name, "{invoice}", utils.SanitizeFilename(invoice))
	name = strings.ReplaceAll(name, "{timestamp}", ts)
	name = strings.ReplaceAll(name, "{uuid}", uuid.New().String())

	name = strings.Trim(name, "_")
	if name == "" {
		name = uuid.New().String()
	}
	return name
}

// archive copies a written file into the archive directory when one is
// configured. Only real files are archived; in-memory identifiers from a
// dry run are left alone. Archival problems never fail the unit.
func (d *Driver) archive(id string) {
	if d.cfg.Output.ArchiveDir == "" {
		return
	}
	if _, err := os.Stat(id); err != nil {
		return
	}
	if err := utils.ArchiveCopy(id, d.cfg.Output.ArchiveDir); err != nil {
		d.log.Warnf("failed to archive %s: %v", id, err)
	}
}

// report closes the run: failures go to an error log next to the output so
// the operator has a durable record of what to fix.
func (d *Driver) report(result *types.GenerationResult) {
	d.log.Infof("run complete: %d succeeded, %d failed", len(result.Succeeded), len(result.Failed))

	if len(result.Failed) == 0 {
		return
	}

	lines := make([]string, len(result.Failed))
	for i, f := range result.Failed {
		lines[i] = fmt.Sprintf("%s (rows %s): %v", f.Descriptor, joinInts(f.RowNumbers), f.Err)
	}
	if path, err := utils.WriteErrorLog(d.cfg.Paths.Output, lines, d.now()); err != nil {
		d.log.Warnf("failed to write error log: %v", err)
	} else {
		d.log.Infof("errors logged to %s", path)
	}
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
