package units

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const num = `(\d+(?:[.,]\d+)?)`

// sizePattern extracts the size of one piece, in the dimension's base unit,
// from a material description.
type sizePattern struct {
	name    string
	re      *regexp.Regexp
	extract func(m []string) (decimal.Decimal, bool)
	// standalone skips tokens that are one side of an "a x b" dimension pair.
	standalone bool
}

func scaled(group int, factor int64) func([]string) (decimal.Decimal, bool) {
	return func(m []string) (decimal.Decimal, bool) {
		v, ok := parseDecimal(m[group])
		if !ok {
			return decimal.Zero, false
		}
		return v.Mul(decimal.NewFromInt(factor)), true
	}
}

func product(a, b int) func([]string) (decimal.Decimal, bool) {
	return func(m []string) (decimal.Decimal, bool) {
		x, ok1 := parseDecimal(m[a])
		y, ok2 := parseDecimal(m[b])
		if !ok1 || !ok2 {
			return decimal.Zero, false
		}
		return x.Mul(y), true
	}
}

var volumePatterns = []sizePattern{
	{"<n> ML", regexp.MustCompile(`(?i)(?:^|[^A-Z0-9])` + num + `\s*ML\b`), scaled(1, 1), false},
	{"<n> L", regexp.MustCompile(`(?i)(?:^|[^A-Z0-9])` + num + `\s*(?:L|LTR|LITER|LITRE)\b`), scaled(1, 1000), false},
}

var lengthPatterns = []sizePattern{
	{"L=<n>MM", regexp.MustCompile(`(?i)\bL\s*=\s*` + num + `\s*MM\b`), scaled(1, 1), false},
	{"L<n>MM", regexp.MustCompile(`(?i)\bL` + num + `\s*MM\b`), scaled(1, 1), false},
	{"<n> M", regexp.MustCompile(`(?i)(?:^|[^A-Z0-9])` + num + `\s*M\b`), scaled(1, 1000), false},
	{"<n>MM", regexp.MustCompile(`(?i)(?:^|[^A-Z0-9])` + num + `\s*MM\b`), scaled(1, 1), true},
}

var areaPatterns = []sizePattern{
	{"W<n>MM H<n>MM", regexp.MustCompile(`(?i)\bW\s*=?\s*` + num + `\s*MM\W+(?:H|L)\s*=?\s*` + num + `\s*MM\b`), product(1, 2), false},
	{"H<n>MM W<n>MM", regexp.MustCompile(`(?i)\b(?:H|L)\s*=?\s*` + num + `\s*MM\W+W\s*=?\s*` + num + `\s*MM\b`), product(1, 2), false},
	{"<a>x<b>MM", regexp.MustCompile(`(?i)(?:^|[^A-Z0-9])` + num + `\s*(?:MM)?\s*[X×*]\s*` + num + `\s*MM\b`), product(1, 2), false},
}

func patternsFor(d Dimension) []sizePattern {
	switch d {
	case DimensionVolume:
		return volumePatterns
	case DimensionLength:
		return lengthPatterns
	case DimensionArea:
		return areaPatterns
	}
	return nil
}

// pieceSize returns the first positive size a pattern extracts from desc.
func pieceSize(d Dimension, desc string) (decimal.Decimal, string, bool) {
	for _, p := range patternsFor(d) {
		for _, idx := range p.re.FindAllStringSubmatchIndex(desc, -1) {
			if p.standalone && inDimensionPair(desc, idx[2], idx[1]) {
				continue
			}
			m := make([]string, len(idx)/2)
			for i := range m {
				if idx[2*i] >= 0 {
					m[i] = desc[idx[2*i]:idx[2*i+1]]
				}
			}
			v, ok := p.extract(m)
			if !ok || !v.IsPositive() {
				continue
			}
			return v, p.name, true
		}
	}
	return decimal.Zero, "", false
}

var (
	pairBefore = regexp.MustCompile(`(?i)\d\s*(?:MM)?\s*[X×*]\s*$`)
	pairAfter  = regexp.MustCompile(`(?i)^\s*[X×*]\s*\d`)
)

// inDimensionPair reports whether the token desc[start:end] is joined to
// another value by x, × or *, as in "50MM x 25MM".
func inDimensionPair(desc string, start, end int) bool {
	return pairBefore.MatchString(desc[:start]) || pairAfter.MatchString(desc[end:])
}

// parseDecimal reads a size token. A single comma followed by exactly three
// digits groups thousands ("1,000"); any other comma is a decimal comma.
func parseDecimal(s string) (decimal.Decimal, bool) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		if len(s)-i-1 == 3 {
			s = strings.Replace(s, ",", "", 1)
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
