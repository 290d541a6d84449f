// Package units converts defective-part quantities expressed in volume, length or
// area units into piece equivalents, using size tokens found in free-text
// material descriptions.
package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Dimension is the physical quantity a unit of measure measures.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	DimensionPiece
	DimensionVolume
	DimensionLength
	DimensionArea
)

func (d Dimension) String() string {
	switch d {
	case DimensionPiece:
		return "piece"
	case DimensionVolume:
		return "volume"
	case DimensionLength:
		return "length"
	case DimensionArea:
		return "area"
	}
	return "unknown"
}

// unit is a recognised unit of measure and its size in the base unit of its
// dimension (ml, mm, mm²).
type unit struct {
	code      string
	dimension Dimension
	base      decimal.Decimal
}

var catalog = map[string]unit{}

func register(dim Dimension, base int64, codes ...string) {
	for _, c := range codes {
		catalog[c] = unit{code: codes[0], dimension: dim, base: decimal.NewFromInt(base)}
	}
}

func init() {
	register(DimensionPiece, 1, "PC", "", "PCS", "ST", "STK", "EA", "PCE", "STUECK", "STUCK")
	register(DimensionVolume, 1, "ML")
	register(DimensionVolume, 1000, "L", "LTR", "LT")
	register(DimensionLength, 1, "MM")
	register(DimensionLength, 10, "CM")
	register(DimensionLength, 1000, "M", "MTR")
	register(DimensionArea, 1_000_000, "M2", "QM", "SQM")
}

// NormalizeUnit canonicalises a unit-of-measure code ("m²" -> "M2", "pcs." -> "PCS").
func NormalizeUnit(u string) string {
	u = strings.ToUpper(strings.TrimSpace(u))
	u = strings.NewReplacer(".", "", " ", "", "²", "2", "Ü", "UE").Replace(u)
	return u
}

func lookup(u string) (unit, bool) {
	got, ok := catalog[NormalizeUnit(u)]
	return got, ok
}

// IsPiece reports whether a unit of measure already counts pieces.
func IsPiece(u string) bool {
	got, ok := lookup(u)
	return ok && got.dimension == DimensionPiece
}

// DimensionOf returns the dimension of a unit of measure.
func DimensionOf(u string) Dimension {
	got, ok := lookup(u)
	if !ok {
		return DimensionUnknown
	}
	return got.dimension
}
