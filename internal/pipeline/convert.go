package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgallion1/tooncsv/internal/source"
	"github.com/dgallion1/tooncsv/internal/toon"
)

// Conversion is one parsed toon document and its rendered tables.
type Conversion struct {
	Doc  *toon.Document
	CSVs map[string]string
}

// Rows counts data rows across all tables.
func (c *Conversion) Rows() int {
	n := 0
	for _, node := range c.Doc.Nodes {
		if len(node.Columns) > 0 {
			n += len(node.Rows)
		}
	}
	return n
}

// Extract pulls toon text out of an uploaded document.
func Extract(cfg source.Config, filename string, data []byte) (string, error) {
	ex, err := cfg.ForFile(filename)
	if err != nil {
		return "", err
	}
	text, err := ex.Extract(bytes.NewReader(data), filename)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	return text, nil
}

// Parse turns toon text into tables.
func Parse(text string) (*Conversion, error) {
	doc, err := toon.ParseDocument(text)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	csvs, err := doc.CSV()
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return &Conversion{Doc: doc, CSVs: csvs}, nil
}

// Convert runs Extract then Parse.
func Convert(cfg source.Config, filename string, data []byte) (*Conversion, error) {
	text, err := Extract(cfg, filename, data)
	if err != nil {
		return nil, err
	}
	return Parse(text)
}

// IsInputError reports whether err was caused by the uploaded content rather
// than by the service.
func IsInputError(err error) bool {
	var lineErr *toon.MalformedLineError
	var indentErr *toon.IndentationError
	return errors.As(err, &lineErr) || errors.As(err, &indentErr) || errors.Is(err, source.ErrNoToon)
}

// ErrorLine returns the source line a parse error points at, or 0.
func ErrorLine(err error) int {
	var lineErr *toon.MalformedLineError
	if errors.As(err, &lineErr) {
		return lineErr.Line
	}
	var indentErr *toon.IndentationError
	if errors.As(err, &indentErr) {
		return indentErr.Line
	}
	return 0
}
