package source

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTextExtractor_PassesThrough(t *testing.T) {
	input := "users[1]{id}:\n  id: 1\n"
	e := &TextExtractor{}
	got, err := e.Extract(strings.NewReader(input), "users.toon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestTextExtractor_StripsBOM(t *testing.T) {
	e := &TextExtractor{}
	got, err := e.Extract(strings.NewReader("\ufeffcount: 2\n"), "bom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "count: 2\n" {
		t.Errorf("expected BOM to be stripped, got %q", got)
	}
}

func TestTextExtractor_EmptyInput(t *testing.T) {
	e := &TextExtractor{}
	got, err := e.Extract(strings.NewReader(""), "empty.toon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.toon", "*source.TextExtractor"},
		{"a.TXT", "*source.TextExtractor"},
		{"a.md", "*source.MarkdownExtractor"},
		{"a.markdown", "*source.MarkdownExtractor"},
		{"a.htm", "*source.HTMLExtractor"},
		{"a.pdf", "*source.PDFExtractor"},
		{"a.docx", "*source.DOCXExtractor"},
	}
	for _, tt := range tests {
		e, err := ForFile(tt.filename)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.filename, err)
			continue
		}
		if got := typeName(e); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.want, got)
		}
	}

	if _, err := ForFile("a.csv"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("a.csv") || !IsSupportedExtension("A.TOON") {
		t.Error("unexpected IsSupportedExtension result")
	}
}

func TestConfig_PDFFallback(t *testing.T) {
	e, err := Config{}.ForFile("a.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.(*PDFExtractor).FallbackPdftotext {
		t.Error("expected fallback disabled")
	}
}

func TestDedent(t *testing.T) {
	input := "\n\n    a:\n      b: 1\n\n    c: 2   \n\n"
	want := "a:\n  b: 1\n\nc: 2\n"
	if got := dedent(input); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := dedent(" \n \n"); got != "" {
		t.Errorf("expected empty result for blank input, got %q", got)
	}
}

func TestJoinBlocks(t *testing.T) {
	got := joinBlocks([]string{"a:\n  x: 1", "", "  b: 2\n"})
	want := "a:\n  x: 1\nb: 2\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestErrNoToon(t *testing.T) {
	e := &MarkdownExtractor{}
	_, err := e.Extract(strings.NewReader("# Title\n\nNo code here.\n"), "doc.md")
	if !errors.Is(err, ErrNoToon) {
		t.Errorf("expected ErrNoToon, got %v", err)
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
