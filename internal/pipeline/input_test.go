package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/pipeline"
)

func TestLoadRecords_DispatchesOnExtension(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "Invoices.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"To,Entity Name,Invoice Number\na@acme.com,Acme,0001\n"), 0o644))

	records, err := pipeline.LoadRecords(csvPath, config.Default())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLoadRecords_RejectsUnknownFormats(t *testing.T) {
	t.Parallel()

	_, err := pipeline.LoadRecords("invoices.json", config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input format")
}
