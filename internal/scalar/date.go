package scalar

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// SerialEpoch is day 0 of the spreadsheet serial date system.
var SerialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const msPerDay = 86_400_000

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type dateFormat struct {
	name    string
	pattern *regexp.Regexp
	// indices of year, month and day capture groups
	y, m, d int
}

// dateFormats are tried in order after the ISO-8601 layouts.
var dateFormats = []dateFormat{
	{"YYYY-MM-DD", regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`), 1, 2, 3},
	{"MM/DD/YYYY", regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`), 3, 1, 2},
	{"DD.MM.YYYY", regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})`), 3, 2, 1},
	{"YYYYMMDD", regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`), 1, 2, 3},
}

var serialString = regexp.MustCompile(`^\d{5}(\.\d+)?$`)

// ParseDate converts a cell to a date. It returns false when the value cannot be
// interpreted; callers must skip or flag the row instead of defaulting.
func ParseDate(c sheet.Cell) (time.Time, bool) {
	switch c.Kind {
	case sheet.KindDate:
		return c.Time, true
	case sheet.KindNumber:
		return FromSerial(c.Num)
	case sheet.KindString:
		return ParseDateString(c.Str)
	}
	return time.Time{}, false
}

// FromSerial converts a spreadsheet serial day number (fractions are time of day).
func FromSerial(serial float64) (time.Time, bool) {
	if serial <= 0 || serial > 2958465 { // 9999-12-31
		return time.Time{}, false
	}
	ms := int64(serial*msPerDay + 0.5)
	return SerialEpoch.Add(time.Duration(ms) * time.Millisecond), true
}

// ParseDateString tries ISO-8601 first, then the explicit regional formats.
func ParseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, f := range dateFormats {
		m := f.pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if t, ok := buildDate(m[f.y], m[f.m], m[f.d]); ok {
			return t, true
		}
	}

	if serialString.MatchString(s) {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return FromSerial(v)
		}
	}
	return time.Time{}, false
}

func buildDate(ys, ms, ds string) (time.Time, bool) {
	y, err1 := strconv.Atoi(ys)
	m, err2 := strconv.Atoi(ms)
	d, err3 := strconv.Atoi(ds)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// reject dates time.Date normalized, e.g. 31.02.2025
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

// MonthKey formats the year-month of t as "YYYY-MM" on the calendar of t's
// own location, so a timestamp keeps the month it was written in.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
