package source

import (
	"strings"
	"testing"
)

func TestPDFExtractor_InvalidInput(t *testing.T) {
	e := &PDFExtractor{}
	if _, err := e.Extract(strings.NewReader("not a pdf"), "broken.pdf"); err == nil {
		t.Error("expected error for invalid pdf")
	}
}
