package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNoToon is returned when a document contains no toon block.
var ErrNoToon = errors.New("no toon content found")

// Extractor pulls toon text out of an uploaded document.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".toon":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Config tunes extractor construction.
type Config struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the extractor for a filename using default settings.
func ForFile(filename string) (Extractor, error) {
	return Config{PDFFallbackPdftotext: true}.ForFile(filename)
}

// ForFile returns the appropriate extractor for a filename.
func (c Config) ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".toon", ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: c.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// joinBlocks concatenates toon blocks so each one starts on its own line at depth 0.
func joinBlocks(blocks []string) string {
	var sb strings.Builder
	for _, b := range blocks {
		b = dedent(b)
		if b == "" {
			continue
		}
		sb.WriteString(b)
		if !strings.HasSuffix(b, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// dedent removes the indentation shared by every non-blank line and drops
// leading and trailing blank lines.
func dedent(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	common := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		if n := len(line) - len(trimmed); common < 0 || n < common {
			common = n
		}
	}
	if common < 0 {
		return ""
	}

	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	var sb strings.Builder
	for _, line := range lines[start:end] {
		if len(line) >= common {
			line = line[common:]
		} else {
			line = strings.TrimLeft(line, " ")
		}
		sb.WriteString(strings.TrimRight(line, " \t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}
