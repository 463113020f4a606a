// Package heuristic provides deterministic, non-ML extraction passes that
// map raw text to schema field values. All extractors are pure functions:
// absent matches produce empty results, never errors.
package heuristic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ymdPattern       = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	dmyPattern       = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
	monthNamePattern = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]{3,})\s*,?\s*(\d{4})`)
)

// ParseDate scans s for a recognizable calendar date and normalizes it to
// YYYY-MM-DD. Accepted shapes: YYYY-M-D (also with slashes), D-M-YYYY or
// M-D-YYYY (a part greater than 12 is the day), and "D MonthName YYYY"
// with a three-letter or full month name. Impossible dates (month 13,
// Feb 30) are skipped and the next pattern tried. The second return is
// false when nothing matched.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)

	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if iso, ok := formatIfValid(y, mo, d); ok {
			return iso, true
		}
	}

	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		// Ambiguous day/month order: a part over 12 must be the day.
		d, mo := a, b
		if a <= 12 {
			mo, d = a, b
		}
		if iso, ok := formatIfValid(y, mo, d); ok {
			return iso, true
		}
	}

	if m := monthNamePattern.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[3])
		if mo, ok := monthByName(m[2]); ok {
			if iso, ok := formatIfValid(y, mo, d); ok {
				return iso, true
			}
		}
	}

	return "", false
}

// formatIfValid returns the ISO form only for real calendar dates.
// time.Date normalizes overflow (Feb 30 becomes Mar 2), so a round-trip
// comparison detects impossible inputs.
func formatIfValid(y, mo, d int) (string, bool) {
	if y < 1 || mo < 1 || mo > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), true
}

func monthByName(name string) (int, bool) {
	lower := strings.ToLower(name)
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if lower == full || lower == full[:3] {
			return int(m), true
		}
	}
	return 0, false
}
