package ingest

import (
	"regexp"
	"strings"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
)

var notificationCode = regexp.MustCompile(`(?i)(?:^|[^A-Z0-9])([QDP])\s*-?\s*0?([123])(?:[^0-9]|$)`)

type typeKeyword struct {
	words []string
	typ   domain.NotificationType
}

// typeKeywords maps free text to a full code; checked in order.
var typeKeywords = []typeKeyword{
	{[]string{"customer complaint", "kundenreklamation", "customer claim"}, domain.TypeQ1},
	{[]string{"supplier complaint", "lieferantenreklamation", "supplier claim", "vendor complaint"}, domain.TypeQ2},
	{[]string{"internal complaint", "interne reklamation", "internal defect", "interner fehler"}, domain.TypeQ3},
}

type familyKeyword struct {
	words  []string
	family domain.Family
}

// familyKeywords only identify the family; the sub-type falls back to the
// family default.
var familyKeywords = []familyKeyword{
	{[]string{"deviation", "abweichung", "sonderfreigabe", "concession"}, domain.FamilyDeviation},
	{[]string{"ppap", "bemusterung", "erstmuster", "first article"}, domain.FamilyPPAP},
	{[]string{"complaint", "reklamation", "claim"}, domain.FamilyComplaint},
}

// TypeResolution is the outcome of reading a notification type column.
type TypeResolution struct {
	Type domain.NotificationType
	// Defaulted is set when the text named only a family (or several codes)
	// and the sub-type was chosen by rule. Callers surface it as a warning.
	Defaulted bool
	Note      string
}

// ResolveNotificationType reads a notification type from free text.
//
// An explicit code ("Q2", "q 2", "D03", "Q1 - Kundenreklamation") wins. Known
// descriptions map to a full code. Text naming only a family ("Deviation",
// "Q") resolves to sub-type 1 of that family. When the text contains several
// different codes the first one is used. Empty text resolves to sub-type 1 of
// hint when hint is set. Anything else is unresolved.
func ResolveNotificationType(text string, hint domain.Family) (TypeResolution, bool) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		if hint == 0 {
			return TypeResolution{}, false
		}
		return TypeResolution{
			Type:      hint.Default(),
			Defaulted: true,
			Note:      "empty notification type, defaulted to " + string(hint.Default()),
		}, true
	}

	if t, ok := domain.ParseNotificationType(raw); ok {
		return TypeResolution{Type: t}, true
	}

	if matches := notificationCode.FindAllStringSubmatch(raw, -1); len(matches) > 0 {
		first := codeOf(matches[0])
		for _, m := range matches[1:] {
			if codeOf(m) != first {
				return TypeResolution{
					Type:      first,
					Defaulted: true,
					Note:      "several notification types in " + quote(raw) + ", using " + string(first),
				}, true
			}
		}
		return TypeResolution{Type: first}, true
	}

	lower := strings.ToLower(raw)
	for _, kw := range typeKeywords {
		if containsAny(lower, kw.words) {
			return TypeResolution{Type: kw.typ}, true
		}
	}
	for _, kw := range familyKeywords {
		if containsAny(lower, kw.words) {
			return familyDefault(kw.family, raw), true
		}
	}

	if len(raw) == 1 {
		switch f := domain.Family(strings.ToUpper(raw)[0]); f {
		case domain.FamilyComplaint, domain.FamilyDeviation, domain.FamilyPPAP:
			return familyDefault(f, raw), true
		}
	}
	return TypeResolution{}, false
}

func familyDefault(f domain.Family, raw string) TypeResolution {
	return TypeResolution{
		Type:      f.Default(),
		Defaulted: true,
		Note:      "ambiguous notification type " + quote(raw) + ", defaulted to " + string(f.Default()),
	}
}

func codeOf(m []string) domain.NotificationType {
	return domain.NotificationType(strings.ToUpper(m[1]) + m[2])
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func quote(s string) string {
	return `"` + s + `"`
}
