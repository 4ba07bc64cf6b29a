package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamzanabiel/emailcreator/pkg/utils"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean name passes through", "Acme_0001", "Acme_0001"},
		{"path separators", `reports/2026\q3`, "reports_2026_q3"},
		{"windows specials", `a<b>c:d"e|f?g*h`, "a_b_c_d_e_f_g_h"},
		{"runs collapse", "a//b", "a_b"},
		{"edges trimmed", "/Acme/", "Acme"},
		{"spaces survive", "BigCorp Group", "BigCorp Group"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utils.SanitizeFilename(tt.in))
		})
	}
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 29, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "20260829_140509", utils.Timestamp(at))
}

func TestUniquePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Acme_0001.eml")

	assert.Equal(t, path, utils.UniquePath(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	first := utils.UniquePath(path)
	assert.Equal(t, filepath.Join(dir, "Acme_0001_1.eml"), first)

	require.NoError(t, os.WriteFile(first, []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "Acme_0001_2.eml"), utils.UniquePath(path))
}

func TestArchiveCopy(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	archive := filepath.Join(t.TempDir(), "archive")

	src := filepath.Join(srcDir, "Acme_0001.eml")
	require.NoError(t, os.WriteFile(src, []byte("message"), 0o644))

	require.NoError(t, utils.ArchiveCopy(src, archive))
	copied, err := os.ReadFile(filepath.Join(archive, "Acme_0001.eml"))
	require.NoError(t, err)
	assert.Equal(t, "message", string(copied))

	// A second archival of the same name does not overwrite the first.
	require.NoError(t, utils.ArchiveCopy(src, archive))
	_, err = os.Stat(filepath.Join(archive, "Acme_0001_1.eml"))
	assert.NoError(t, err)
}

func TestWriteErrorLog(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "output")
	at := time.Date(2026, 8, 29, 14, 5, 9, 0, time.UTC)

	path, err := utils.WriteErrorLog(dir, []string{"Acme (rows 2): boom"}, at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "errors_20260829_140509.log"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Acme (rows 2): boom")
}
