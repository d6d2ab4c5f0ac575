package toon

import (
	"fmt"

	"github.com/dgallion1/tooncsv/internal/csvout"
	"github.com/dgallion1/tooncsv/internal/entity"
)

// Diagnostic is a non-fatal finding about otherwise valid input.
type Diagnostic struct {
	Line     int    `json:"line"`
	Path     string `json:"path"`
	Declared int    `json:"declared"`
	Actual   int    `json:"actual"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s declares %d rows, found %d", d.Line, d.Path, d.Declared, d.Actual)
}

// Document is the result of one parse.
type Document struct {
	Nodes       []*entity.Node // Output order: implicit root first, then headers as declared
	Diagnostics []Diagnostic
}

// Node returns the node registered at path, or nil.
func (d *Document) Node(path string) *entity.Node {
	for _, n := range d.Nodes {
		if n.Path == path {
			return n
		}
	}
	return nil
}

// CSV renders every node keyed by its dotted path.
func (d *Document) CSV() (map[string]string, error) {
	return csvout.EncodeAll(d.Nodes)
}

// ParseDocument reads toon text in a single pass and returns the finalized
// nodes. Nothing is returned when any line fails.
func ParseDocument(text string) (*Document, error) {
	b := newBuilder()
	for i, raw := range splitLines(text) {
		line, ok, err := classify(i+1, raw)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := b.add(line); err != nil {
			return nil, err
		}
	}

	doc := &Document{Nodes: b.finish()}
	for _, n := range doc.Nodes {
		if n.Kind == entity.Array && n.DeclaredCount != len(n.Rows) {
			doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
				Line:     n.Line,
				Path:     n.Path,
				Declared: n.DeclaredCount,
				Actual:   len(n.Rows),
			})
		}
	}
	return doc, nil
}

// Parse converts toon text into CSV text keyed by dotted path.
func Parse(text string) (map[string]string, error) {
	doc, err := ParseDocument(text)
	if err != nil {
		return nil, err
	}
	return doc.CSV()
}
