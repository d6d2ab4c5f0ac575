package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/dgallion1/tooncsv/internal/source"
	"github.com/dgallion1/tooncsv/internal/toon"
	"github.com/dgallion1/tooncsv/internal/writer"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tooncsv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.String("out", writer.DefaultOutDir, "directory receiving the .csv files")
	zipName := fs.String("zip", "", "archive path (default <out>.zip)")
	bom := fs.Bool("bom", false, "prefix every file with a UTF-8 byte-order mark")
	flat := fs.Bool("flat", false, "write dotted file names into one directory")
	asJSON := fs.Bool("json", false, "print the tables as JSON instead of writing files")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: tooncsv [flags] [file]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 1
	}

	errColor := color.New(color.FgRed, color.Bold)
	fail := func(err error) int {
		errColor.Fprint(stderr, "error: ")
		fmt.Fprintln(stderr, err)
		return 1
	}

	text, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		return fail(err)
	}

	doc, err := toon.ParseDocument(text)
	if err != nil {
		return fail(err)
	}

	log := slog.New(slog.NewTextHandler(stderr, nil))
	for _, d := range doc.Diagnostics {
		log.Warn("declared row count mismatch", "line", d.Line, "path", d.Path, "declared", d.Declared, "actual", d.Actual)
	}

	csvs, err := doc.CSV()
	if err != nil {
		return fail(err)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(csvs); err != nil {
			return fail(err)
		}
		return 0
	}

	res, err := writer.Write(csvs, writer.Options{
		OutDir:  *outDir,
		ZipName: *zipName,
		BOM:     *bom,
		Flat:    *flat,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "wrote %d tables to %s\n", len(res.Files), res.OutDir)
	fmt.Fprintf(stdout, "archive: %s\n", res.ZipPath)
	return 0
}

// readInput returns the toon text of path, or of stdin when path is empty.
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" {
		if f, ok := stdin.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			return "", errors.New("no input file given and stdin is a terminal")
		}
		return (&source.TextExtractor{}).Extract(stdin, "stdin")
	}

	ex, err := source.ForFile(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ex.Extract(f, path)
}
