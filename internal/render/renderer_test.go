package render_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamzanabiel/emailcreator/internal/render"
	"github.com/hamzanabiel/emailcreator/internal/types"
)

func TestRender_SingleInvoiceBranch(t *testing.T) {
	t.Parallel()

	r, err := render.NewFromFile("")
	require.NoError(t, err)

	body, err := r.Render(map[string]any{
		"is_group":       false,
		"recipient_name": "John Doe",
		"entity_name":    "Acme",
		"invoice_number": "0001",
		"amount":         "1234.50",
		"due_date":       "2026-09-15",
		"sender_name":    "Accounts Receivable",
		"sender_title":   "Billing Department",
		"company_name":   "Your Company",
		"current_year":   2026,
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Dear John Doe")
	assert.Contains(t, body, "invoice 0001 for Acme")
	assert.Contains(t, body, "1234.50")
	assert.Contains(t, body, "due 2026-09-15")
	assert.NotContains(t, body, "following invoices")
}

func TestRender_GroupBranchIteratesInvoices(t *testing.T) {
	t.Parallel()

	r, err := render.NewFromFile("")
	require.NoError(t, err)

	body, err := r.Render(map[string]any{
		"is_group":   true,
		"group_name": "BigCorp Group",
		"invoices": []map[string]string{
			{"invoice_number": "0003", "amount": "100.00"},
			{"invoice_number": "0004", "amount": "200.00"},
		},
		"sender_name":  "AR",
		"sender_title": "Billing",
		"company_name": "Your Company",
		"current_year": 2026,
	})
	require.NoError(t, err)

	assert.Contains(t, body, "BigCorp Group")
	assert.Contains(t, body, "Invoice 0003")
	assert.Contains(t, body, "Invoice 0004")
	assert.NotContains(t, body, "Dear John")
}

func TestRender_CustomTemplateFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "template.html")
	require.NoError(t, os.WriteFile(path,
		[]byte(`<h1>{{.subject}}</h1><p>{{.custom_message}}</p>`), 0o644))

	r, err := render.NewFromFile(path)
	require.NoError(t, err)

	body, err := r.Render(map[string]any{
		"subject":        "Acme Invoice 0001",
		"custom_message": "Payment due on receipt",
	})
	require.NoError(t, err)

	assert.Equal(t, "<h1>Acme Invoice 0001</h1><p>Payment due on receipt</p>", body)
}

func TestRender_EscapesHTMLInCellValues(t *testing.T) {
	t.Parallel()

	r, err := render.NewFromString(`<p>{{.custom_message}}</p>`)
	require.NoError(t, err)

	body, err := r.Render(map[string]any{
		"custom_message": `<script>alert("x")</script>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestRender_ErrorsAreTemplateRenderKind(t *testing.T) {
	t.Parallel()

	t.Run("parse failure", func(t *testing.T) {
		t.Parallel()

		_, err := render.NewFromString(`{{if .broken}}`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrTemplateRender))
	})

	t.Run("execute failure", func(t *testing.T) {
		t.Parallel()

		r, err := render.NewFromString(`{{template "nope"}}`)
		require.NoError(t, err)

		_, err = r.Render(map[string]any{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrTemplateRender))
	})
}

func TestRender_MissingTemplateFile(t *testing.T) {
	t.Parallel()

	_, err := render.NewFromFile(filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template")
}
