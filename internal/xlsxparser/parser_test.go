package xlsxparser_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/xlsxparser"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "invoices.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse_SheetRowsBecomeRecords(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{
		{"To", "Entity Name", "Invoice Number", "Group"},
		{"a@acme.com", "Acme", "0001", ""},
		{"accounting@bigcorp.com", "BigCorp", "0003", "BigCorp Group"},
	})

	records, err := xlsxparser.Parse(path, config.Default())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].RowNumber)
	assert.Equal(t, "Acme", records[0].EntityName)
	assert.Equal(t, "BigCorp Group", records[1].GroupKey)
}

func TestParse_InvoiceNumbersSurviveAsText(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{
		{"To", "Entity Name", "Invoice Number"},
		{"a@acme.com", "Acme", "0003"},
	})

	records, err := xlsxparser.Parse(path, config.Default())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0003", records[0].InvoiceNumber)
}

func TestParse_MissingRequiredColumns(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{
		{"To", "Amount"},
		{"a@acme.com", "12.00"},
	})

	_, err := xlsxparser.Parse(path, config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestParse_NotAWorkbook(t *testing.T) {
	t.Parallel()

	_, err := xlsxparser.Parse(filepath.Join(t.TempDir(), "nope.xlsx"), config.Default())
	require.Error(t, err)
}
