package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hamzanabiel/emailcreator/internal/config"
	"github.com/hamzanabiel/emailcreator/internal/csvparser"
	"github.com/hamzanabiel/emailcreator/internal/types"
	"github.com/hamzanabiel/emailcreator/internal/xlsxparser"
)

// LoadRecords reads the input file into records, dispatching on extension.
// CSV exports and Excel workbooks produce identical record sequences; an
// unreadable input is the one structurally fatal error of a run.
func LoadRecords(path string, cfg *config.Config) ([]types.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvparser.Parse(path, cfg)
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(path, cfg)
	default:
		return nil, fmt.Errorf("unsupported input format %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
}
