// Package sheet holds the decoded two-dimensional spreadsheet model consumed by the
// record parsers, and the decoders that produce it from xlsx and csv bytes.
package sheet

import (
	"strconv"
	"strings"
	"time"
)

// CellKind tags the dynamic type of a cell.
type CellKind uint8

const (
	KindEmpty CellKind = iota
	KindString
	KindNumber
	KindDate
	KindBool
)

// Cell is one heterogeneous spreadsheet value.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Time time.Time
	Bool bool
}

func Empty() Cell { return Cell{} }

// String builds a text cell; blank text becomes an empty cell.
func String(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: KindString, Str: s}
}

func Number(f float64) Cell { return Cell{Kind: KindNumber, Num: f} }

func Date(t time.Time) Cell { return Cell{Kind: KindDate, Time: t} }

func Bool(b bool) Cell { return Cell{Kind: KindBool, Bool: b} }

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty
}

// String renders the cell as trimmed display text.
func (c Cell) String() string {
	switch c.Kind {
	case KindString:
		return strings.TrimSpace(c.Str)
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format(time.RFC3339)
	case KindBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}

// Sheet is a decoded worksheet; Rows[0] is the header row.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Header returns the header row as text, or nil when the sheet has no rows.
func (s Sheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	header := make([]string, len(s.Rows[0]))
	for i, c := range s.Rows[0] {
		header[i] = c.String()
	}
	return header
}

// DataRows returns all rows after the header.
func (s Sheet) DataRows() [][]Cell {
	if len(s.Rows) < 2 {
		return nil
	}
	return s.Rows[1:]
}

// At returns the cell at idx, or an empty cell when the row is short or idx < 0.
func At(row []Cell, idx int) Cell {
	if idx < 0 || idx >= len(row) {
		return Cell{}
	}
	return row[idx]
}

// IsBlankRow reports whether every cell of the row is empty.
func IsBlankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// FromStrings builds a sheet from already-parsed text rows.
func FromStrings(name string, rows [][]string) Sheet {
	out := Sheet{Name: name, Rows: make([][]Cell, len(rows))}
	for i, r := range rows {
		cells := make([]Cell, len(r))
		for j, v := range r {
			cells[j] = String(v)
		}
		out.Rows[i] = cells
	}
	return out
}
