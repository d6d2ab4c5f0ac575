package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IndentWidth is the number of spaces per nesting level.
const IndentWidth = 2

// Kind is the grammatical form of a non-blank line.
type Kind int

const (
	Primitive    Kind = iota + 1 // key: value
	ObjectHeader                 // name:
	ArrayHeader                  // name[N]{col1,col2}:
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case ObjectHeader:
		return "object header"
	case ArrayHeader:
		return "array header"
	}
	return "unknown"
}

// Line is one classified source line.
type Line struct {
	Number        int
	Depth         int
	Kind          Kind
	Name          string
	Value         string   // Primitive only
	Columns       []string // ArrayHeader only
	DeclaredCount int      // ArrayHeader only
}

var (
	lineBreaks    = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	arrayHeaderRe = regexp.MustCompile(`^([^\[\]{}:]+)\[(\d+)\]\{([^\[\]{}:]*)\}:$`)
)

// splitLines breaks input on any of \n, \r\n or \r. A leading UTF-8
// byte-order mark is dropped.
func splitLines(input string) []string {
	input = strings.TrimPrefix(input, "\ufeff")
	lines := strings.Split(lineBreaks.Replace(input), "\n")
	// A trailing newline does not start another line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// classify turns one physical line into a Line. ok is false for blank lines.
func classify(number int, raw string) (line Line, ok bool, err error) {
	content := strings.TrimLeft(raw, " \t")
	indent := raw[:len(raw)-len(content)]
	content = strings.TrimRight(content, " \t")
	if content == "" {
		return Line{}, false, nil
	}

	depth, err := indentDepth(number, indent)
	if err != nil {
		return Line{}, false, err
	}
	line = Line{Number: number, Depth: depth}

	if m := arrayHeaderRe.FindStringSubmatch(content); m != nil {
		name := strings.TrimSpace(m[1])
		count, convErr := strconv.Atoi(m[2])
		cols, colsOK := splitColumns(m[3])
		if !validHeaderName(name) || convErr != nil || !colsOK {
			return Line{}, false, &MalformedLineError{Line: number, Text: raw}
		}
		line.Kind = ArrayHeader
		line.Name = name
		line.DeclaredCount = count
		line.Columns = cols
		return line, true, nil
	}

	if name, ok := strings.CutSuffix(content, ":"); ok {
		name = strings.TrimSpace(name)
		if validHeaderName(name) {
			line.Kind = ObjectHeader
			line.Name = name
			return line, true, nil
		}
	}

	if key, value, found := strings.Cut(content, ":"); found {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if validName(key) && value != "" {
			line.Kind = Primitive
			line.Name = key
			line.Value = value
			return line, true, nil
		}
	}

	return Line{}, false, &MalformedLineError{Line: number, Text: raw}
}

func indentDepth(number int, indent string) (int, error) {
	if strings.ContainsRune(indent, '\t') {
		return 0, &IndentationError{Line: number, Reason: "tab used for indentation"}
	}
	if len(indent)%IndentWidth != 0 {
		return 0, &IndentationError{
			Line:   number,
			Actual: len(indent) / IndentWidth,
			Reason: fmt.Sprintf("indentation of %d spaces is not a multiple of %d", len(indent), IndentWidth),
		}
	}
	return len(indent) / IndentWidth, nil
}

func splitColumns(s string) ([]string, bool) {
	if strings.TrimSpace(s) == "" {
		return []string{}, true
	}
	parts := strings.Split(s, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, false
		}
		cols = append(cols, p)
	}
	return cols, true
}

func validName(s string) bool {
	return s != "" && !strings.ContainsAny(s, "[]{}:")
}

// validHeaderName also rejects dots: a header name becomes one segment of a
// dotted path, and a dot inside it would collide with a nested header.
func validHeaderName(s string) bool {
	return validName(s) && !strings.Contains(s, ".")
}
