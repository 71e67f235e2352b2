package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractZIP(t *testing.T) {
	zipPath := writeTestZip(t, map[string]string{
		"stats.csv":        "pref,city",
		"nested/area.json": "{}",
	})

	dest := t.TempDir()
	paths, err := ExtractZIP(zipPath, dest)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(dest, "stats.csv"))
	require.NoError(t, err)
	assert.Equal(t, "pref,city", string(data))
}

func TestExtractZIPRejectsZipSlip(t *testing.T) {
	zipPath := writeTestZip(t, map[string]string{"../evil.txt": "pwned"})

	_, err := ExtractZIP(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip slip")
}
