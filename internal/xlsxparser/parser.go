// =============================================================================
// Invoice Email Generator - XLSX Parser Module
// =============================================================================
//
// Some billing teams hand over the invoice sheet as an Excel workbook rather
// than a CSV export. This module reads the first sheet of an .xlsx file and
// produces the same Records the CSV parser does, so the rest of the pipeline
// does not care which format the input arrived in.
//
// The cell semantics are shared with the CSV parser: everything is text,
// invoice numbers stay opaque, amounts and due dates get typed copies.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/csvparser"
	"github.com/hamzanabiel/emailcreator/internal/types"
)

// Parse reads the first sheet of an XLSX workbook and returns one Record per
// data row, in sheet order.
func Parse(filePath string, cfg *config.Config) ([]types.Record, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	// excelize returns ragged rows as string slices, which is exactly the
	// shape the CSV row builder consumes.
	return csvparser.FromRows(rows, cfg)
}
