package writer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/text/encoding/unicode"
)

const (
	DefaultOutDir = "csv_out"
	rootFileName  = "root"
)

// Options controls how tables are persisted.
type Options struct {
	OutDir  string // Directory receiving the .csv files (default csv_out)
	ZipName string // Archive path (default <OutDir>.zip)
	BOM     bool   // Prefix every file with a UTF-8 byte-order mark
	Flat    bool   // One directory with dotted file names instead of a directory per path segment
}

// Result reports where the tables were written.
type Result struct {
	OutDir  string
	ZipPath string
	Files   []string // Paths relative to OutDir, slash separated
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Write persists each table as a .csv file under opts.OutDir and archives the
// directory into opts.ZipName. Table text is written verbatim.
func Write(csvs map[string]string, opts Options) (Result, error) {
	if opts.OutDir == "" {
		opts.OutDir = DefaultOutDir
	}
	if opts.ZipName == "" {
		opts.ZipName = filepath.Clean(opts.OutDir) + ".zip"
	}
	res := Result{OutDir: filepath.Clean(opts.OutDir), ZipPath: filepath.Clean(opts.ZipName)}

	if err := os.MkdirAll(res.OutDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	// Sorted so that names colliding after sanitizing resolve the same way every run.
	names := make([]string, 0, len(csvs))
	for name := range csvs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rel := RelPath(name, opts.Flat)
		if err := writeFile(filepath.Join(res.OutDir, filepath.FromSlash(rel)), csvs[name], opts.BOM); err != nil {
			return Result{}, fmt.Errorf("write %s: %w", rel, err)
		}
		res.Files = append(res.Files, rel)
	}

	if err := Archive(res.OutDir, res.ZipPath); err != nil {
		return Result{}, err
	}
	return res, nil
}

// RelPath maps a dotted table name to its file path relative to the output
// directory. Flat mode keeps the dots in the file name, nested mode turns
// every segment but the last into a directory.
func RelPath(name string, flat bool) string {
	if flat {
		return sanitize(name) + ".csv"
	}
	var segs []string
	for _, seg := range strings.Split(name, ".") {
		if s := unsafeChars.ReplaceAllString(seg, ""); s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) == 0 {
		return rootFileName + ".csv"
	}
	return strings.Join(segs, "/") + ".csv"
}

// sanitize strips everything but letters, digits, dot, underscore and dash.
func sanitize(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(name, ""), ".")
	if s == "" {
		return rootFileName
	}
	return s
}

func writeFile(path, content string, bom bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data := []byte(content)
	if bom {
		encoded, err := unicode.UTF8BOM.NewEncoder().Bytes(data)
		if err != nil {
			return fmt.Errorf("encode with bom: %w", err)
		}
		data = encoded
	}
	return os.WriteFile(path, data, 0o644)
}

// Archive zips every regular file under dir into zipPath, using slash
// separated paths relative to dir. The archive itself is skipped when it
// lives inside dir.
func Archive(dir, zipPath string) error {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	absZip, _ := filepath.Abs(zipPath)

	zw := zip.NewWriter(f)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absZip {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})

	if err := zw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := f.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		return fmt.Errorf("build archive: %w", walkErr)
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
