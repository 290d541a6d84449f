package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV parses delimited text into a sheet of string cells. The delimiter is
// sniffed from the header line; UTF-16 (with BOM) and Windows-1252 input is
// transcoded to UTF-8 first.
func DecodeCSV(data []byte) (Sheet, error) {
	text, err := toUTF8(data)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to decode csv text: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read csv records: %w", err)
	}
	return FromStrings("", records), nil
}

func toUTF8(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return data[len(utf8BOM):], nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		return out, err
	case !utf8.Valid(data):
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		return out, err
	}
	return data, nil
}

// sniffDelimiter picks the most frequent of ';', tab and ',' in the first line,
// ignoring quoted sections. Comma wins ties.
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == ';', r == '\t', r == ',':
			counts[r]++
		}
	}

	best := ','
	for _, r := range []rune{';', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}
