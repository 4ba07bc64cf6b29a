package validation_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/types"
	"github.com/hamzanabiel/emailcreator/internal/validation"
)

func validRecord(row int) types.Record {
	return types.Record{
		RowNumber:     row,
		To:            "billing@acme.com",
		EntityName:    "Acme",
		InvoiceNumber: "0001",
	}
}

func TestValidate_CleanRecordsProduceEmptyReport(t *testing.T) {
	t.Parallel()

	v := validation.New(config.Default())
	report := v.Validate([]types.Record{validRecord(2), validRecord(3)})

	assert.False(t, report.HasErrors())
	assert.Empty(t, report.Warnings)
}

func TestValidate_MultiAddressCellsSplitAndPass(t *testing.T) {
	t.Parallel()

	rec := validRecord(2)
	rec.To = "a@x.com;b@x.com"
	rec.Cc = "c@x.com, d@x.com"

	report := validation.New(config.Default()).Validate([]types.Record{rec})

	assert.False(t, report.HasErrors())
}

func TestValidate_MalformedAddresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		addr string
	}{
		{"missing domain dot", "user@host"},
		{"double at", "user@@host.com"},
		{"embedded space", "us er@host.com"},
		{"no local part", "@host.com"},
		{"plain text", "not an address"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := validRecord(2)
			rec.To = tt.addr

			report := validation.New(config.Default()).Validate([]types.Record{rec})

			require.True(t, report.HasErrors())
			assert.True(t, errors.Is(report.Errors[0].Kind, types.ErrMalformedAddress))
		})
	}
}

func TestValidate_OneBadTokenFlagsTheCell(t *testing.T) {
	t.Parallel()

	rec := validRecord(2)
	rec.To = "good@x.com;bad@@x.com"

	report := validation.New(config.Default()).Validate([]types.Record{rec})

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Message, "invalid To email: bad@@x.com")
}

func TestValidate_RepeatedBadValueReportedPerRow(t *testing.T) {
	t.Parallel()

	bad := validRecord(2)
	bad.To = "broken@@x.com"
	alsoBad := validRecord(5)
	alsoBad.To = "broken@@x.com"

	report := validation.New(config.Default()).Validate([]types.Record{bad, alsoBad})

	require.Len(t, report.Errors, 2)
	assert.Equal(t, 2, report.Errors[0].RowNumber)
	assert.Equal(t, 5, report.Errors[1].RowNumber)
}

func TestValidate_RequiredFields(t *testing.T) {
	t.Parallel()

	rec := types.Record{RowNumber: 4}

	report := validation.New(config.Default()).Validate([]types.Record{rec})

	require.Len(t, report.Errors, 3)
	for _, f := range report.Errors {
		assert.Equal(t, 4, f.RowNumber)
		assert.True(t, errors.Is(f.Kind, types.ErrMissingRequiredField))
	}
}

func TestValidate_EmptyCcBccAreFine(t *testing.T) {
	t.Parallel()

	rec := validRecord(2)
	rec.Cc = ""
	rec.Bcc = " ; "

	report := validation.New(config.Default()).Validate([]types.Record{rec})

	assert.False(t, report.HasErrors())
}

func TestValidate_Attachments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "invoice_0001.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("%PDF-1.4"), 0o644))

	t.Run("existing file passes", func(t *testing.T) {
		t.Parallel()

		rec := validRecord(2)
		rec.AttachmentPaths = []string{existing}

		report := validation.New(config.Default()).Validate([]types.Record{rec})
		assert.False(t, report.HasErrors())
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		rec := validRecord(2)
		rec.AttachmentPaths = []string{filepath.Join(dir, "nope.pdf")}

		report := validation.New(config.Default()).Validate([]types.Record{rec})

		require.Len(t, report.Errors, 1)
		assert.True(t, errors.Is(report.Errors[0].Kind, types.ErrAttachmentNotFound))
		assert.Contains(t, report.Errors[0].Message, "attachment file not found")
	})

	t.Run("relative paths resolve against the base", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.Paths.AttachmentBase = dir

		rec := validRecord(2)
		rec.AttachmentPaths = []string{"invoice_0001.pdf"}

		report := validation.New(cfg).Validate([]types.Record{rec})
		assert.False(t, report.HasErrors())
	})

	t.Run("check can be disabled", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		*cfg.Validation.CheckAttachments = false

		rec := validRecord(2)
		rec.AttachmentPaths = []string{filepath.Join(dir, "nope.pdf")}

		report := validation.New(cfg).Validate([]types.Record{rec})
		assert.False(t, report.HasErrors())
	})
}

func TestValidate_FailFastStopsAtFirstError(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Validation.FailFast = true

	bad1 := validRecord(2)
	bad1.To = "broken@@x.com"
	bad2 := validRecord(3)
	bad2.To = "also@@broken.com"

	report := validation.New(cfg).Validate([]types.Record{bad1, bad2})

	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].RowNumber)
}

func TestValidate_UnparsableTypedCellsWarn(t *testing.T) {
	t.Parallel()

	rec := validRecord(2)
	rec.AmountRaw = "a lot"
	rec.DueDateRaw = "whenever"

	report := validation.New(config.Default()).Validate([]types.Record{rec})

	assert.False(t, report.HasErrors())
	assert.Len(t, report.Warnings, 2)
}

func TestSplitAddresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"semicolons", "a@x.com;b@x.com", []string{"a@x.com", "b@x.com"}},
		{"commas", "a@x.com,b@x.com", []string{"a@x.com", "b@x.com"}},
		{"mixed with spaces", "a@x.com; b@x.com , c@x.com", []string{"a@x.com", "b@x.com", "c@x.com"}},
		{"single", "a@x.com", []string{"a@x.com"}},
		{"empty", "", nil},
		{"only separators", " ; , ", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, validation.SplitAddresses(tt.raw, ";,"))
		})
	}
}
