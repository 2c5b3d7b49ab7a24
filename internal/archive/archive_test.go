package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeDay(t *testing.T, recordDir, day string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(recordDir, day)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	out := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(tr)
		require.NoError(t, err)
		out[hdr.Name] = string(b)
	}
	return out
}

func TestArchiveDay(t *testing.T) {
	base := t.TempDir()
	recordDir := filepath.Join(base, "record")
	archiveDir := filepath.Join(base, "archived")
	writeDay(t, recordDir, "20250901", map[string]string{
		"jm2601.csv": "TradingDay,InstrumentID\n20250901,jm2601\n",
		"IF2512.csv": "TradingDay,InstrumentID\n20250901,IF2512\n",
	})

	a := New(recordDir, archiveDir, zap.NewNop())
	require.NoError(t, a.Archive("20250901"))

	files := readArchive(t, filepath.Join(archiveDir, "20250901.tar.gz"))
	assert.Len(t, files, 2)
	assert.Contains(t, files["20250901/jm2601.csv"], "jm2601")
	assert.Contains(t, files["20250901/IF2512.csv"], "IF2512")

	assert.NoDirExists(t, filepath.Join(recordDir, "20250901"))
}

func TestArchiveMissingDayFails(t *testing.T) {
	base := t.TempDir()
	a := New(filepath.Join(base, "record"), filepath.Join(base, "archived"), zap.NewNop())

	err := a.Archive("20250901")
	require.Error(t, err)
}

func TestArchiveKeepsOtherDays(t *testing.T) {
	base := t.TempDir()
	recordDir := filepath.Join(base, "record")
	archiveDir := filepath.Join(base, "archived")
	writeDay(t, recordDir, "20250901", map[string]string{"jm2601.csv": "a\n"})
	writeDay(t, recordDir, "20250902", map[string]string{"jm2601.csv": "b\n"})

	a := New(recordDir, archiveDir, zap.NewNop())
	require.NoError(t, a.Archive("20250901"))

	assert.NoDirExists(t, filepath.Join(recordDir, "20250901"))
	assert.DirExists(t, filepath.Join(recordDir, "20250902"))
}
