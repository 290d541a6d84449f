// Package columns maps the header row of a spreadsheet onto a canonical schema.
//
// Every schema is a declarative table of candidate names per field; one shared
// algorithm resolves it. For each field the first header matching (in order) an
// exact candidate, a candidate substring, or the fallback predicate wins. Headers
// containing an excluded substring never match a field through the substring or
// fallback passes.
package columns

import "strings"

// Field describes how to find one canonical column.
type Field struct {
	Name     string
	Exact    []string
	Contains []string
	Exclude  []string
	Fallback func(normalized string) bool
	Required bool
}

// Schema is the ordered list of fields a parser needs.
type Schema struct {
	Name   string
	Fields []Field
}

// Required returns the names of the schema's required fields.
func (s Schema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Mapping is the immutable result of resolving a schema against a header row.
type Mapping struct {
	schema  Schema
	headers []string
	index   map[string]int
}

// Index returns the resolved column of a field.
func (m Mapping) Index(name string) (int, bool) {
	idx, ok := m.index[name]
	return idx, ok
}

// Col returns the resolved column of a field, or -1 when unresolved.
func (m Mapping) Col(name string) int {
	if idx, ok := m.index[name]; ok {
		return idx
	}
	return -1
}

// Has reports whether the field was resolved.
func (m Mapping) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Header returns the original header text of a resolved field.
func (m Mapping) Header(name string) string {
	idx, ok := m.index[name]
	if !ok || idx >= len(m.headers) {
		return ""
	}
	return m.headers[idx]
}

// Missing lists required fields that could not be resolved, in schema order.
func (m Mapping) Missing() []string {
	var out []string
	for _, f := range m.schema.Fields {
		if !f.Required {
			continue
		}
		if _, ok := m.index[f.Name]; !ok {
			out = append(out, f.Name)
		}
	}
	return out
}

// Resolved returns field name -> header text for every resolved field.
func (m Mapping) Resolved() map[string]string {
	out := make(map[string]string, len(m.index))
	for name := range m.index {
		out[name] = m.Header(name)
	}
	return out
}

// Resolve builds the mapping for headers. Exact matches are claimed for all
// fields before any substring or fallback pass runs, so a loose candidate of
// one field cannot steal the column another field names exactly.
func Resolve(headers []string, schema Schema) Mapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	m := Mapping{schema: schema, headers: headers, index: make(map[string]int)}
	claimed := make(map[int]bool)

	for _, f := range schema.Fields {
		if idx := matchExact(normalized, f, claimed); idx >= 0 {
			m.index[f.Name] = idx
			claimed[idx] = true
		}
	}

	for _, f := range schema.Fields {
		if _, done := m.index[f.Name]; done {
			continue
		}
		idx := matchContains(normalized, f, claimed)
		if idx < 0 {
			idx = matchFallback(normalized, f, claimed)
		}
		if idx >= 0 {
			m.index[f.Name] = idx
			claimed[idx] = true
		}
	}
	return m
}

// Score is the fraction of required fields the headers resolve, used to guess
// which kind of export a sheet is.
func Score(headers []string, schema Schema) float64 {
	required := schema.Required()
	if len(required) == 0 {
		return 0
	}
	m := Resolve(headers, schema)
	return float64(len(required)-len(m.Missing())) / float64(len(required))
}

// matchExact honours candidate priority: the first candidate present wins.
func matchExact(headers []string, f Field, claimed map[int]bool) int {
	for _, cand := range f.Exact {
		want := Normalize(cand)
		for i, h := range headers {
			if !claimed[i] && h == want {
				return i
			}
		}
	}
	return -1
}

func matchContains(headers []string, f Field, claimed map[int]bool) int {
	for _, cand := range f.Contains {
		want := Normalize(cand)
		if want == "" {
			continue
		}
		for i, h := range headers {
			if claimed[i] || h == "" || excluded(h, f.Exclude) {
				continue
			}
			if strings.Contains(h, want) {
				return i
			}
		}
	}
	return -1
}

func matchFallback(headers []string, f Field, claimed map[int]bool) int {
	if f.Fallback == nil {
		return -1
	}
	for i, h := range headers {
		if claimed[i] || h == "" || excluded(h, f.Exclude) {
			continue
		}
		if f.Fallback(h) {
			return i
		}
	}
	return -1
}

func excluded(h string, exclude []string) bool {
	for _, x := range exclude {
		if strings.Contains(h, Normalize(x)) {
			return true
		}
	}
	return false
}

// ContainsAll returns a fallback predicate matching headers containing every word.
func ContainsAll(words ...string) func(string) bool {
	return func(h string) bool {
		for _, w := range words {
			if !strings.Contains(h, w) {
				return false
			}
		}
		return true
	}
}

// ContainsAny returns a fallback predicate matching headers containing any word.
func ContainsAny(words ...string) func(string) bool {
	return func(h string) bool {
		for _, w := range words {
			if strings.Contains(h, w) {
				return true
			}
		}
		return false
	}
}
