package columns

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldReplacer = strings.NewReplacer(
	"_", " ",
	".", "",
	"ß", "ss",
	" ", " ",
)

// Normalize lowercases a header, strips diacritics ("Menge Ä" -> "menge a"),
// treats underscores as spaces, drops dots and collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = foldReplacer.Replace(strings.ToLower(folded))
	return strings.Join(strings.Fields(folded), " ")
}
