// =============================================================================
// Invoice Email Generator - Grouper Module
// =============================================================================
//
// The grouper partitions the parsed record sequence into email units. Rows
// that carry a group key are merged into one multi-invoice email per key;
// rows without a key each become their own email. Grouping is deterministic
// and order-preserving: units appear in the order their key (or ungrouped
// row) is first seen, and members keep their original relative order.
//
// Per unit the grouper also derives:
//   - the recipient set (taken verbatim from the unit's first record)
//   - the subject line (per-row override wins, otherwise a format string)
//   - the body context handed to the template resolver
//   - the resolved attachment list (member order, no de-duplication)
//
// =============================================================================

package grouper

import (
	"os"
	"strings"
	"time"

	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/types"
	"github.com/hamzanabiel/emailcreator/internal/validation"
)

// Grouper builds email units from records.
type Grouper struct {
	cfg *config.Config

	// now is swappable for tests; body contexts carry the current year.
	now func() time.Time
}

// New creates a Grouper for the given configuration.
func New(cfg *config.Config) *Grouper {
	return &Grouper{cfg: cfg, now: time.Now}
}

// Group partitions records into email units. Every input record lands in
// exactly one unit; running Group twice on the same input yields identical
// unit lists. The input is not modified.
func (g *Grouper) Group(records []types.Record) []types.EmailUnit {
	type builder struct {
		key     string
		members []types.Record
	}

	var order []*builder
	byKey := make(map[string]*builder)

	for _, rec := range records {
		if !rec.HasGroup() {
			// Ungrouped rows are singleton units in row order.
			order = append(order, &builder{members: []types.Record{rec}})
			continue
		}
		b, ok := byKey[rec.GroupKey]
		if !ok {
			b = &builder{key: rec.GroupKey}
			byKey[rec.GroupKey] = b
			order = append(order, b)
		}
		b.members = append(b.members, rec)
	}

	units := make([]types.EmailUnit, 0, len(order))
	for _, b := range order {
		units = append(units, g.buildUnit(b.key, b.members))
	}
	return units
}

// buildUnit derives the full unit from its member records.
func (g *Grouper) buildUnit(key string, members []types.Record) types.EmailUnit {
	first := members[0]

	// Grouping is keyed purely on the presence of a group key, not on
	// cardinality. A lone member of a named group still renders group-style
	// unless the operator configured single_member_style: single.
	isGroup := key != ""
	if isGroup && len(members) == 1 && g.cfg.Grouping.SingleMemberStyle == "single" {
		isGroup = false
	}

	unit := types.EmailUnit{
		To:       first.To,
		Cc:       first.Cc,
		Bcc:      first.Bcc,
		Records:  members,
		GroupKey: key,
		IsGroup:  isGroup,
	}

	unit.Subject = g.composeSubject(&unit)
	unit.BodyContext = g.buildBodyContext(&unit)
	unit.Attachments = g.resolveAttachments(members)

	return unit
}

// composeSubject picks the subject for a unit. A non-empty override on the
// first record always wins, group or not. Otherwise the configured format
// string is filled in; invoice numbers are joined with " / " in member
// order and never altered numerically.
func (g *Grouper) composeSubject(unit *types.EmailUnit) string {
	first := unit.Records[0]
	if first.SubjectOverride != "" {
		return first.SubjectOverride
	}

	if unit.IsGroup {
		numbers := make([]string, len(unit.Records))
		for i, rec := range unit.Records {
			numbers[i] = rec.InvoiceNumber
		}
		s := g.cfg.Email.SubjectGroup
		s = strings.ReplaceAll(s, "{group_name}", unit.GroupKey)
		s = strings.ReplaceAll(s, "{invoice_numbers}", strings.Join(numbers, " / "))
		return s
	}

	s := g.cfg.Email.SubjectSingle
	s = strings.ReplaceAll(s, "{entity_name}", first.EntityName)
	s = strings.ReplaceAll(s, "{invoice_number}", first.InvoiceNumber)
	return s
}

// buildBodyContext assembles the data the template resolver renders from.
// Keys are stable template-facing names; templates branch on is_group and
// range over invoices.
func (g *Grouper) buildBodyContext(unit *types.EmailUnit) map[string]any {
	first := unit.Records[0]

	ctx := map[string]any{
		"company_name":   g.cfg.Company.Name,
		"sender_name":    g.cfg.Company.SenderName,
		"sender_title":   g.cfg.Company.SenderTitle,
		"current_year":   g.now().Year(),
		"is_group":       unit.IsGroup,
		"custom_message": first.CustomMessage,
		"subject":        unit.Subject,
	}

	// The banner only reaches templates when the file actually exists, so a
	// stale config path cannot produce broken image references.
	if g.cfg.Paths.Banner != "" {
		if _, err := os.Stat(g.cfg.Paths.Banner); err == nil {
			ctx["banner_path"] = g.cfg.Paths.Banner
		}
	}

	invoices := make([]map[string]string, len(unit.Records))
	for i, rec := range unit.Records {
		invoices[i] = map[string]string{
			"entity_name":    rec.EntityName,
			"invoice_number": rec.InvoiceNumber,
			"amount":         g.displayAmount(&rec),
			"due_date":       g.displayDueDate(&rec),
			"custom_message": rec.CustomMessage,
		}
	}
	ctx["invoices"] = invoices

	if unit.IsGroup {
		ctx["group_name"] = unit.GroupKey
	} else {
		ctx["entity_name"] = first.EntityName
		ctx["invoice_number"] = first.InvoiceNumber
		ctx["amount"] = g.displayAmount(&first)
		ctx["due_date"] = g.displayDueDate(&first)
		ctx["recipient_name"] = RecipientName(first.To)
	}

	return ctx
}

// resolveAttachments concatenates every member's attachments in member
// order, resolving relative paths against the configured base. Duplicate
// filenames across members are preserved as distinct entries; the assembler
// disambiguates names when they collide.
func (g *Grouper) resolveAttachments(members []types.Record) []types.Attachment {
	var attachments []types.Attachment
	for _, rec := range members {
		for _, path := range rec.AttachmentPaths {
			resolved := validation.ResolveAttachmentPath(path, g.cfg.Paths.AttachmentBase)
			attachments = append(attachments, types.Attachment{
				Filename: baseName(resolved),
				Path:     resolved,
			})
		}
	}
	return attachments
}

// displayAmount renders the amount for templates: the parsed decimal with
// two places when available, otherwise the original cell text.
func (g *Grouper) displayAmount(rec *types.Record) string {
	if rec.Amount != nil {
		return rec.Amount.StringFixed(2)
	}
	return rec.AmountRaw
}

// displayDueDate renders the due date with the configured display layout,
// falling back to the original cell text.
func (g *Grouper) displayDueDate(rec *types.Record) string {
	if rec.DueDate != nil {
		return rec.DueDate.Format(g.cfg.Dates.DisplayFormat)
	}
	return rec.DueDateRaw
}

// RecipientName derives a friendly salutation from the first To address:
// the local part with dots and underscores turned into spaces, title-cased.
// Falls back to "Valued Customer" when nothing usable is there.
func RecipientName(to string) string {
	const fallback = "Valued Customer"

	if !strings.Contains(to, "@") {
		return fallback
	}

	firstAddr := to
	if i := strings.IndexAny(firstAddr, ";,"); i >= 0 {
		firstAddr = firstAddr[:i]
	}
	firstAddr = strings.TrimSpace(firstAddr)

	local, _, ok := strings.Cut(firstAddr, "@")
	if !ok || local == "" {
		return fallback
	}

	name := strings.NewReplacer(".", " ", "_", " ").Replace(local)
	words := strings.Fields(name)
	if len(words) == 0 {
		return fallback
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
