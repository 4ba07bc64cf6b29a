// =============================================================================
// Invoice Email Generator - Template Resolver
// =============================================================================
//
// Thin text-substitution collaborator: given a unit's body context, return
// the rendered HTML body. The pipeline only depends on the Renderer
// interface; the implementation here is html/template, whose conditionals
// and range loops cover everything the body templates need (branching on
// is_group, iterating the invoice list).
//
// =============================================================================

package render

import (
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/hamzanabiel/emailcreator/internal/types"
)

// Renderer resolves a body template against a unit's data context.
type Renderer interface {
	Render(ctx map[string]any) (string, error)
}

// HTMLRenderer renders with html/template.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewFromFile parses the template file at path. When path is empty the
// built-in default template is used, so the tool works out of the box.
func NewFromFile(path string) (*HTMLRenderer, error) {
	if path == "" {
		return NewFromString(defaultTemplate)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return NewFromString(string(data))
}

// NewFromString parses template source.
func NewFromString(src string) (*HTMLRenderer, error) {
	tmpl, err := template.New("body").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTemplateRender, err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render executes the template against the body context.
func (r *HTMLRenderer) Render(ctx map[string]any) (string, error) {
	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrTemplateRender, err)
	}
	return buf.String(), nil
}

// defaultTemplate is a minimal body used when no template file is
// configured. Real deployments ship their own branded template.
const defaultTemplate = `<html>
<body>
{{if .is_group}}
<p>Dear Customer,</p>
<p>Please find attached the following invoices for {{.group_name}}:</p>
<ul>
{{range .invoices}}<li>Invoice {{.invoice_number}}{{if .amount}} &mdash; {{.amount}}{{end}}{{if .due_date}} (due {{.due_date}}){{end}}</li>
{{end}}</ul>
{{else}}
<p>Dear {{.recipient_name}},</p>
<p>Please find attached invoice {{.invoice_number}} for {{.entity_name}}{{if .amount}} in the amount of {{.amount}}{{end}}{{if .due_date}}, due {{.due_date}}{{end}}.</p>
{{end}}
{{if .custom_message}}<p>{{.custom_message}}</p>{{end}}
<p>Kind regards,<br>
{{.sender_name}}<br>
{{.sender_title}}<br>
{{.company_name}}</p>
<p style="color:#888;font-size:12px;">&copy; {{.current_year}} {{.company_name}}</p>
</body>
</html>
`
