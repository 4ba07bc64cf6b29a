// =============================================================================
// Invoice Email Generator - CSV Parser Module
// =============================================================================
//
// This module reads an invoice CSV export and turns each data row into a
// typed Record using the configured column mapping. The parser is the only
// place that ever sees raw column headers; downstream stages work with
// canonical fields exclusively.
//
// PARSING RULES:
//   - The first row is the header row; data starts at row 2.
//   - Every cell is treated as text. Amounts and due dates are additionally
//     parsed into typed values, but the original text is always preserved.
//   - Invoice numbers are never interpreted numerically so "0003" survives.
//   - Attachment cells may list several paths separated by ";" or ",".
//   - Fully empty rows are skipped.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/types"
)

// Parse reads a CSV file and returns one Record per data row, in file order.
// It fails only on structural problems (unreadable file, missing required
// columns); per-cell issues are left for the validator to report.
func Parse(filePath string, cfg *config.Config) ([]types.Record, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return FromRows(allRows, cfg)
}

// FromRows converts raw rows (header row first) into Records. The XLSX
// parser feeds sheet rows through the same path so both input formats share
// one set of cell semantics.
func FromRows(allRows [][]string, cfg *config.Config) ([]types.Record, error) {
	headers := cleanHeaders(allRows[0])
	index, err := columnIndex(headers, cfg.CSVColumns)
	if err != nil {
		return nil, err
	}

	records := make([]types.Record, 0, len(allRows)-1)
	for i, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		// Row numbers are 1-indexed and count the header, matching what the
		// operator sees in a spreadsheet.
		records = append(records, buildRecord(row, i+2, index, cfg))
	}

	return records, nil
}

// columnIndex resolves the configured column names against the actual file
// headers. The three required columns must be present; optional columns
// that are absent are simply disabled (index -1).
type columns struct {
	to, cc, bcc, subject, entity, invoice, amount, dueDate, attachment, group, message int
}

func columnIndex(headers []string, mapping config.ColumnMapping) (columns, error) {
	find := func(name string) int {
		for i, h := range headers {
			if strings.EqualFold(h, name) {
				return i
			}
		}
		return -1
	}

	idx := columns{
		to:         find(mapping.To),
		cc:         find(mapping.Cc),
		bcc:        find(mapping.Bcc),
		subject:    find(mapping.Subject),
		entity:     find(mapping.EntityName),
		invoice:    find(mapping.InvoiceNumber),
		amount:     find(mapping.Amount),
		dueDate:    find(mapping.DueDate),
		attachment: find(mapping.Attachment),
		group:      find(mapping.Group),
		message:    find(mapping.CustomMessage),
	}

	var missing []string
	if idx.to < 0 {
		missing = append(missing, mapping.To)
	}
	if idx.entity < 0 {
		missing = append(missing, mapping.EntityName)
	}
	if idx.invoice < 0 {
		missing = append(missing, mapping.InvoiceNumber)
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("missing required columns: %s (available: %s)",
			strings.Join(missing, ", "), strings.Join(headers, ", "))
	}

	return idx, nil
}

// buildRecord converts one raw row into a Record.
func buildRecord(row []string, rowNumber int, idx columns, cfg *config.Config) types.Record {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := types.Record{
		RowNumber:       rowNumber,
		To:              cell(idx.to),
		Cc:              cell(idx.cc),
		Bcc:             cell(idx.bcc),
		SubjectOverride: cell(idx.subject),
		EntityName:      cell(idx.entity),
		InvoiceNumber:   cell(idx.invoice),
		AmountRaw:       cell(idx.amount),
		DueDateRaw:      cell(idx.dueDate),
		GroupKey:        cell(idx.group),
		CustomMessage:   cell(idx.message),
		AttachmentPaths: splitAttachments(cell(idx.attachment)),
	}

	rec.Amount = parseAmount(rec.AmountRaw)
	rec.DueDate = parseDueDate(rec.DueDateRaw, cfg.Dates.InputFormats)

	return rec
}

// parseAmount parses an amount cell into a decimal. Currency symbols and
// thousands separators are tolerated; an unparsable cell yields nil and the
// raw text is used for display instead.
func parseAmount(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(raw)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// parseDueDate tries each configured layout in order.
func parseDueDate(raw string, layouts []string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// splitAttachments splits an attachment cell on ";" and ",".
func splitAttachments(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ';' || r == ','
	})
	var paths []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// cleanHeaders trims whitespace and names blank headers by position so a
// sparse header row cannot collapse distinct columns into "".
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = h
	}
	return cleaned
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
