package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestGenerateOutputFileName(t *testing.T) {
	assert.Equal(t, "SalesData.xml", GenerateOutputFileName("", nil))
	assert.Equal(t, "Sales_march.xml", GenerateOutputFileName("Sales_{original}", map[string]string{"original": "march"}))

	name := GenerateOutputFileName("{date}_{time}_{uuid}.XML", nil)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}_\d{6}_[0-9a-f-]{36}\.XML$`), name)

	name = GenerateOutputFileName("Sales_{timestamp}.xml", nil)
	assert.Regexp(t, regexp.MustCompile(`^Sales_\d{8}_\d{6}\.xml$`), name)
}

func TestOriginalName(t *testing.T) {
	assert.Equal(t, "march sales", OriginalName("/data/in/march sales.xlsx"))
	assert.Equal(t, "noext", OriginalName("noext"))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.xlsx"))
	touch(t, filepath.Join(dir, "a.CSV"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "~$b.xlsx"))
	touch(t, filepath.Join(dir, "nested", "c.xlsx"))

	fm := NewFileManager(dir, "", "")
	files, err := fm.DiscoverInputFiles("", []string{".xlsx", ".csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.xlsx")}, files)

	_, err = fm.DiscoverInputFiles(filepath.Join(dir, "missing"), []string{".xlsx"})
	assert.Error(t, err)
}

func TestWriteOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	fm := NewFileManager("", out, "")
	require.NoError(t, fm.EnsureDirectories())

	path, err := fm.WriteOutput("SalesData.xml", []byte("<ENVELOPE></ENVELOPE>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "SalesData.xml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<ENVELOPE></ENVELOPE>", string(data))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in", "sales.xlsx")
	touch(t, input)

	fm := NewFileManager(filepath.Join(root, "in"), filepath.Join(root, "out"), filepath.Join(root, "archive"))

	path, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, input, path, "archiving is off by default")
	assert.FileExists(t, input)

	fm.ArchiveOnSuccess = true
	fm.UseTimestampSubdirs = true
	path, err = fm.ArchiveInputFile(input)
	require.NoError(t, err)

	now := time.Now()
	assert.Contains(t, path, filepath.Join("archive", now.Format("2006"), now.Format("01")))
	assert.FileExists(t, path)
	assert.NoFileExists(t, input)
}
