package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dgallion1/tooncsv/internal/entity"
)

// Write renders a finalized node as CSV: a header row of its columns, then
// one line per row in column order. Lines end with "\n".
func Write(w io.Writer, n *entity.Node) error {
	rw := recordWriter{w: w, cw: csv.NewWriter(w)}
	if err := rw.write(n.Columns); err != nil {
		return fmt.Errorf("write header for %q: %w", n.Path, err)
	}

	// A node without columns has nothing to put in a data row.
	if len(n.Columns) > 0 {
		record := make([]string, len(n.Columns))
		for _, row := range n.Rows {
			for i, col := range n.Columns {
				record[i] = row[col]
			}
			if err := rw.write(record); err != nil {
				return fmt.Errorf("write row for %q: %w", n.Path, err)
			}
		}
	}

	rw.cw.Flush()
	return rw.cw.Error()
}

// recordWriter sends records through encoding/csv, except the few that it
// frames differently from RFC 4180. Those are written directly.
type recordWriter struct {
	w  io.Writer
	cw *csv.Writer
}

func (r recordWriter) write(record []string) error {
	if !needsOwnFraming(record) {
		return r.cw.Write(record)
	}
	r.cw.Flush()
	if err := r.cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(r.w, formatRecord(record))
	return err
}

// needsOwnFraming reports records that encoding/csv would damage. A single
// empty field comes out as a blank line, which readers skip, and a field of
// exactly `\.` is always quoted.
func needsOwnFraming(record []string) bool {
	if len(record) == 1 && record[0] == "" {
		return true
	}
	return slices.Contains(record, `\.`)
}

// formatRecord quotes a field only when it holds a comma, a quote or a line
// break. A lone empty field is written as "" so the row stays visible.
func formatRecord(record []string) string {
	if len(record) == 1 && record[0] == "" {
		return "\"\"\n"
	}
	fields := make([]string, len(record))
	for i, f := range record {
		if strings.ContainsAny(f, ",\"\r\n") {
			f = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		fields[i] = f
	}
	return strings.Join(fields, ",") + "\n"
}

// Encode returns the CSV text of a node. The text always ends with exactly
// one newline, including header-only output.
func Encode(n *entity.Node) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// EncodeAll renders every node keyed by its dotted path.
func EncodeAll(nodes []*entity.Node) (map[string]string, error) {
	out := make(map[string]string, len(nodes))
	for _, n := range nodes {
		text, err := Encode(n)
		if err != nil {
			return nil, err
		}
		out[n.Path] = text
	}
	return out, nil
}
