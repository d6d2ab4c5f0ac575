package toon

import "fmt"

// MalformedLineError reports a line that matches none of the toon line forms.
type MalformedLineError struct {
	Line int    // 1-indexed source line
	Text string // Raw line text
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: malformed line %q", e.Line, e.Text)
}

// IndentationError reports a line whose depth does not fit the open headers.
type IndentationError struct {
	Line     int
	Expected int // Deepest depth allowed at this line
	Actual   int
	Reason   string // Set when the indentation itself is unusable (tabs, odd widths)
}

func (e *IndentationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: indentation depth %d, expected at most %d", e.Line, e.Actual, e.Expected)
}
