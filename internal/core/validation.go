package core

// validation.go resolves import headers.
//
// Header resolution happens once per file. Every required column that cannot
// be located produces one "Missing required column" message and the file is
// rejected before any data row is read.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoValidRows is returned when a file passes header checks but yields no
// importable rows.
var ErrNoValidRows = errors.New("no valid rows found")

// ErrEmptyFile is returned when a file has no header or no data lines at all.
var ErrEmptyFile = errors.New("empty file")

const (
	msgEmptyCSV   = "CSV file is empty"
	msgNoDataRows = "File must contain at least a header row and one data row"
)

// StructuralError reports required columns missing from the header.
type StructuralError struct {
	Missing []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("missing required column: %s", strings.Join(e.Missing, ", "))
}

// MissingColumnMessage is the user-facing message for one missing column.
func MissingColumnMessage(name string) string {
	return fmt.Sprintf("Missing required column: %q", name)
}

// ResolveHeader locates each column of specs in header using policy.
// It returns the HeaderMap and the canonical names of missing required columns.
// Optional columns that cannot be found are simply absent from the map.
func ResolveHeader(header RawRow, specs []ColumnSpec, policy MatchPolicy) (HeaderMap, []string) {
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = normalizeHeader(h)
	}

	idx := make(HeaderMap, len(specs))
	var missing []string

	for _, spec := range specs {
		var pos int
		switch policy {
		case MatchSubstring:
			pos = findByKeyword(cells, spec)
		default:
			pos = findExact(cells, spec)
		}

		if pos < 0 {
			if spec.Required {
				missing = append(missing, spec.Name)
			}
			continue
		}
		idx[spec.Key()] = pos
	}

	return idx, missing
}

// findExact returns the first header cell equal to the column name or an alias.
func findExact(cells []string, spec ColumnSpec) int {
	names := append([]string{spec.Key()}, spec.Aliases...)
	for i, c := range cells {
		for _, n := range names {
			if c == n {
				return i
			}
		}
	}
	return -1
}

// findByKeyword returns the first header cell containing a keyword and none of
// the exclusion words. Columns without keywords fall back to exact matching.
func findByKeyword(cells []string, spec ColumnSpec) int {
	if len(spec.Keywords) == 0 {
		return findExact(cells, spec)
	}
	for i, c := range cells {
		if !containsAny(c, spec.Keywords) || containsAny(c, spec.Exclude) {
			continue
		}
		return i
	}
	return -1
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// normalizeHeader lower-cases a header cell and strips whitespace and stray
// surrounding quotes.
func normalizeHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.ToLower(strings.TrimSpace(s))
}

// ColumnNames returns the canonical names of specs in order.
func ColumnNames(specs []ColumnSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
