package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCSVs() map[string]string {
	return map[string]string{
		"simple":             "name,age\nAlice,30\nBob,25",
		"parent.child":       "id,value\n1,foo\n2,bar",
		"deeply.nested.file": "col1,col2\na,b\nc,d",
	}
}

func options(t *testing.T, zipName string) Options {
	t.Helper()
	tmp := t.TempDir()
	return Options{
		OutDir:  filepath.Join(tmp, "test_output"),
		ZipName: filepath.Join(tmp, zipName),
	}
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestWrite_FlatMode(t *testing.T) {
	opts := options(t, "test.zip")
	opts.Flat = true

	res, err := Write(sampleCSVs(), opts)
	require.NoError(t, err)

	assert.DirExists(t, res.OutDir)
	assert.FileExists(t, filepath.Join(res.OutDir, "simple.csv"))
	assert.FileExists(t, filepath.Join(res.OutDir, "parent.child.csv"))
	assert.FileExists(t, filepath.Join(res.OutDir, "deeply.nested.file.csv"))
}

func TestWrite_NestedModeCreatesSubdirectories(t *testing.T) {
	opts := options(t, "test.zip")

	res, err := Write(sampleCSVs(), opts)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(res.OutDir, "simple.csv"))
	assert.FileExists(t, filepath.Join(res.OutDir, "parent", "child.csv"))
	assert.FileExists(t, filepath.Join(res.OutDir, "deeply", "nested", "file.csv"))
	assert.ElementsMatch(t, []string{"simple.csv", "parent/child.csv", "deeply/nested/file.csv"}, res.Files)
}

func TestWrite_BOM(t *testing.T) {
	csvs := map[string]string{"test": "col1,col2\nval1,val2"}

	opts := options(t, "bom.zip")
	opts.BOM = true
	res, err := Write(csvs, opts)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(res.OutDir, "test.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte{0xef, 0xbb, 0xbf}))
	assert.Equal(t, "col1,col2\nval1,val2", string(content[3:]))

	opts = options(t, "nobom.zip")
	res, err = Write(csvs, opts)
	require.NoError(t, err)
	content, err = os.ReadFile(filepath.Join(res.OutDir, "test.csv"))
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(content, []byte{0xef, 0xbb, 0xbf}))
	assert.True(t, bytes.HasPrefix(content, []byte("col1")))
}

func TestWrite_ZipArchiveFlat(t *testing.T) {
	opts := options(t, "archive.zip")
	opts.Flat = true

	res, err := Write(sampleCSVs(), opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(opts.ZipName), res.ZipPath)
	assert.FileExists(t, res.ZipPath)
	assert.ElementsMatch(t, []string{"simple.csv", "parent.child.csv", "deeply.nested.file.csv"}, zipNames(t, res.ZipPath))
}

func TestWrite_ZipArchiveNested(t *testing.T) {
	opts := options(t, "nested.zip")

	res, err := Write(sampleCSVs(), opts)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"simple.csv", "parent/child.csv", "deeply/nested/file.csv"}, zipNames(t, res.ZipPath))
}

func TestWrite_ContentPreserved(t *testing.T) {
	want := "name,value\ntest,123\nfoo,bar"
	opts := options(t, "test.zip")

	res, err := Write(map[string]string{"data": want}, opts)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(res.OutDir, "data.csv"))
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
	assert.NotContains(t, string(got), "\r")
}

func TestWrite_SanitizesFlatNames(t *testing.T) {
	opts := options(t, "test.zip")
	opts.Flat = true

	res, err := Write(map[string]string{"file/with\\special:chars*": "data"}, opts)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(res.OutDir, "filewithspecialchars.csv"))
}

func TestWrite_EmptyMap(t *testing.T) {
	opts := options(t, "empty.zip")

	res, err := Write(map[string]string{}, opts)
	require.NoError(t, err)
	assert.DirExists(t, res.OutDir)
	assert.FileExists(t, res.ZipPath)
	assert.Empty(t, zipNames(t, res.ZipPath))
}

func TestWrite_DeepNesting(t *testing.T) {
	opts := options(t, "test.zip")

	res, err := Write(map[string]string{"a.b.c.d.e.f": "deep,data"}, opts)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(res.OutDir, "a", "b", "c", "d", "e", "f.csv"))
}

func TestWrite_RootTable(t *testing.T) {
	for _, flat := range []bool{true, false} {
		opts := options(t, "root.zip")
		opts.Flat = flat

		res, err := Write(map[string]string{"": "count\n2\n"}, opts)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(res.OutDir, "root.csv"))
	}
}

func TestWrite_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	res, err := Write(map[string]string{"t": "a\n1\n"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOutDir, res.OutDir)
	assert.Equal(t, DefaultOutDir+".zip", res.ZipPath)
	assert.FileExists(t, filepath.Join(DefaultOutDir, "t.csv"))
}

func TestWrite_ArchiveInsideOutDirIsSkipped(t *testing.T) {
	tmp := t.TempDir()
	opts := Options{OutDir: tmp, ZipName: filepath.Join(tmp, "tables.zip"), Flat: true}

	res, err := Write(map[string]string{"t": "a\n1\n"}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"t.csv"}, zipNames(t, res.ZipPath))
}

func TestRelPath(t *testing.T) {
	assert.Equal(t, "a.b.csv", RelPath("a.b", true))
	assert.Equal(t, "a/b.csv", RelPath("a.b", false))
	assert.Equal(t, "a/b.csv", RelPath("a..b", false))
	assert.Equal(t, "root.csv", RelPath("", false))
	assert.Equal(t, "root.csv", RelPath("", true))
}
