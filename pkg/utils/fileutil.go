// =============================================================================
// Invoice Email Generator - File Utilities
// =============================================================================
//
// File management helpers shared by the pipeline and the CLI:
//   - output filename sanitization and composition
//   - on-disk uniqueness probing
//   - archival of generated emails
//   - error log generation for failed runs
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SanitizeFilename strips characters that are invalid in filenames on any
// supported platform and collapses runs of underscores.
func SanitizeFilename(name string) string {
	const invalid = `<>:"/\|?*`
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(invalid, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// Timestamp returns the filename timestamp token (YYYYMMDD_HHMMSS).
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// UniquePath returns path if nothing exists there, otherwise the first
// "name_N.ext" variant that is free. Bounded probing keeps a pathological
// directory from spinning forever; after that the caller's write fails with
// a regular filesystem error.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i < 10000; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
	return path
}

// ArchiveCopy copies a generated file into the archive directory, creating
// it when needed. Archival failures are reported but should not fail the
// run that produced the file.
func ArchiveCopy(path, archiveDir string) error {
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for archival: %w", path, err)
	}
	defer src.Close()

	dstPath := UniquePath(filepath.Join(archiveDir, filepath.Base(path)))
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive copy: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy to archive: %w", err)
	}
	return nil
}

// WriteErrorLog writes one line per failure into an error log in the output
// directory and returns the log path.
func WriteErrorLog(outputDir string, lines []string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("errors_%s.log", Timestamp(now)))
	var b strings.Builder
	fmt.Fprintf(&b, "Generation errors - %s\n\n", now.Format(time.RFC1123))
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}
	return path, nil
}
