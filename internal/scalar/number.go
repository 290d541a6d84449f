// Package scalar converts raw spreadsheet cells into typed values. None of the
// functions panic or return NaN; unparseable input yields an explicit sentinel.
package scalar

import (
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// ParseNumber returns the numeric value of a cell, or 0 when it cannot be parsed.
// Number cells are returned as-is. Text is normalized for regional separators
// ("1.234,5", "1,234", "12,5") and then stripped of everything except digits,
// '.' and '-'.
func ParseNumber(c sheet.Cell) float64 {
	switch c.Kind {
	case sheet.KindNumber:
		return finite(c.Num)
	case sheet.KindString:
		v, ok := ParseNumberString(c.Str)
		if !ok {
			return 0
		}
		return v
	case sheet.KindBool:
		if c.Bool {
			return 1
		}
	}
	return 0
}

// ParseNumberString is the text half of ParseNumber; ok is false when nothing
// numeric could be extracted.
func ParseNumberString(s string) (float64, bool) {
	s = normalizeSeparators(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	// a trailing minus ("125-") is the SAP notation for negative values
	if strings.HasSuffix(cleaned, "-") && !strings.HasPrefix(cleaned, "-") {
		cleaned = "-" + strings.TrimSuffix(cleaned, "-")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizeSeparators rewrites a number so that '.' is the only decimal
// separator and thousands separators are gone.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && digitsAfter(s, lastComma) != 3 {
			// 12,5
			return strings.Replace(s, ",", ".", 1)
		}
		// 1,234 or 1,234,567
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		// 1.234.567
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

func digitsAfter(s string, idx int) int {
	n := 0
	for _, r := range s[idx+1:] {
		if r < '0' || r > '9' {
			break
		}
		n++
	}
	return n
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
