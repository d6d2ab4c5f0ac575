package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor handles HTML files. Elements marked with a toon class
// (toon, language-toon, lang-toon) win; otherwise every <pre> block is used.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var tagged, plain []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "pre", "code":
				if hasToonClass(n) {
					tagged = append(tagged, rawText(n))
					return
				}
				if n.Data == "pre" && !containsToonCode(n) {
					plain = append(plain, rawText(n))
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	switch {
	case len(tagged) > 0:
		return joinBlocks(tagged), nil
	case len(plain) > 0:
		return joinBlocks(plain), nil
	}
	return "", ErrNoToon
}

func hasToonClass(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			switch strings.ToLower(c) {
			case "toon", "language-toon", "lang-toon":
				return true
			}
		}
	}
	return false
}

func containsToonCode(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (hasToonClass(c) || containsToonCode(c)) {
			return true
		}
	}
	return false
}

// rawText returns the text content of n with whitespace preserved.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
