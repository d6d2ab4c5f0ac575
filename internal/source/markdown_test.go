package source

import (
	"strings"
	"testing"
)

func TestMarkdownExtractor_ToonFences(t *testing.T) {
	input := "# Report\n\nSome prose.\n\n```toon\nusers[1]{id,name}:\n  id: 1\n  name: Alice\n```\n\n```go\nfmt.Println(\"skip\")\n```\n\n```TOON\ncount: 2\n```\n"
	e := &MarkdownExtractor{}
	got, err := e.Extract(strings.NewReader(input), "report.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "users[1]{id,name}:\n  id: 1\n  name: Alice\ncount: 2\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownExtractor_IgnoresOtherLanguages(t *testing.T) {
	input := "```yaml\na: 1\n```\n"
	e := &MarkdownExtractor{}
	if _, err := e.Extract(strings.NewReader(input), "doc.md"); err != ErrNoToon {
		t.Errorf("expected ErrNoToon, got %v", err)
	}
}

func TestHTMLExtractor_TaggedBlocksWin(t *testing.T) {
	input := `<html><body>
<pre>not: toon</pre>
<pre><code class="language-toon">
  a:
    x: 1
</code></pre>
<script>var x = 1;</script>
</body></html>`
	e := &HTMLExtractor{}
	got, err := e.Extract(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a:\n  x: 1\n" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestHTMLExtractor_PlainPre(t *testing.T) {
	input := "<html><body><p>intro</p><pre>t[1]{v}:\n  v: &lt;1&gt;\n</pre></body></html>"
	e := &HTMLExtractor{}
	got, err := e.Extract(strings.NewReader(input), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "t[1]{v}:\n  v: <1>\n" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestHTMLExtractor_NoBlocks(t *testing.T) {
	e := &HTMLExtractor{}
	if _, err := e.Extract(strings.NewReader("<p>hello</p>"), "page.html"); err != ErrNoToon {
		t.Errorf("expected ErrNoToon, got %v", err)
	}
}
