package core

// csvline.go splits import text into rows.
//
// The scanner is deliberately small: a double quote toggles quoting and is
// dropped, commas outside quotes separate fields, fields are trimmed. Doubled
// quotes ("") inside a quoted field are NOT treated as an escaped quote; each
// one toggles quoting again. Swap in encoding/csv behind SplitLines if full
// RFC 4180 fidelity is ever needed.

import "strings"

// SplitLine splits one line into its unquoted, trimmed fields.
func SplitLine(line string) RawRow {
	var (
		row      RawRow
		current  strings.Builder
		inQuotes bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			row = append(row, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	return append(row, strings.TrimSpace(current.String()))
}

// SplitLines breaks text on '\n', trims every line (which also drops a
// trailing '\r') and discards blank lines.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// SplitRows splits text into lines and each line into fields.
func SplitRows(text string) []RawRow {
	lines := SplitLines(text)
	rows := make([]RawRow, len(lines))
	for i, l := range lines {
		rows[i] = SplitLine(l)
	}
	return rows
}

// JoinRow renders cells as one line that SplitLine parses back to the same
// cells. Cells containing a comma are wrapped in quotes; quote characters are
// dropped since SplitLine cannot represent them.
func JoinRow(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, `"`, "")
		c = strings.ReplaceAll(c, "\n", " ")
		if strings.Contains(c, ",") {
			c = `"` + c + `"`
		}
		out[i] = c
	}
	return strings.Join(out, ",")
}
