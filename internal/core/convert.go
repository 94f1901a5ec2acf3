package core

// convert.go turns import cells into typed task fields.
//
// Conversion is best-effort: a malformed date or amount never rejects a row.
// It becomes the zero value instead (EpochZero for dates, 0 for amounts).

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// EpochZero is the default for missing or unparseable dates.
var EpochZero = time.Unix(0, 0).UTC()

// importDateLayouts are tried in order. Only 4-digit years are accepted so a
// value like "3/4/25" is not silently mapped to the wrong century.
var importDateLayouts = []string{
	"2006-01-02",
	"01/02/2006", "1/2/2006",
	"2006/01/02", "2006.01.02",
	"01-02-2006", "1-2-2006",
	"2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05",
	"Jan 2, 2006", "January 2, 2006", "2 Jan 2006",
}

// ParseImportDate parses a calendar date cell. Empty or unparseable input
// returns EpochZero.
func ParseImportDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return EpochZero
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return EpochZero
}

// ParseAmount keeps only digits and the first decimal point and floors the
// result. "$1,250.75" -> 1250. Anything that does not yield a number returns
// 0. The result is never negative: the minus sign is stripped with the other
// symbols and values beyond the int64 range clamp to math.MaxInt64.
func ParseAmount(s string) int64 {
	var b strings.Builder
	seenDot := false
scan:
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == '.':
			if seenDot {
				// A second point ends the number, as a prefix parse would.
				break scan
			}
			seenDot = true
			b.WriteRune(ch)
		}
	}
	// Flooring a non-negative decimal keeps its integer digits.
	whole, _, _ := strings.Cut(b.String(), ".")
	if whole == "" {
		return 0
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64
	}
	if err != nil {
		return 0
	}
	return n
}

// FormatImportDate renders a date the way templates and exports expect it.
// EpochZero renders as an empty cell.
func FormatImportDate(t time.Time) string {
	if t.IsZero() || t.Equal(EpochZero) {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// orDefault returns s, or def when s is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
