package units

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
)

const precision = 6

// Resolver converts non-piece quantities into piece equivalents.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Convert derives the piece count of value expressed in unit, using size tokens
// in description. A failed result keeps the original value and unit and leaves
// ConvertedValue nil.
func (r *Resolver) Convert(value float64, unitCode, description string) domain.ConversionResult {
	res := domain.ConversionResult{
		OriginalValue:       value,
		OriginalUnit:        strings.TrimSpace(unitCode),
		MaterialDescription: strings.TrimSpace(description),
	}

	u, ok := lookup(unitCode)
	if !ok {
		res.Status = domain.ConversionFailed
		res.Reason = fmt.Sprintf("unsupported unit of measure %q", res.OriginalUnit)
		return res
	}
	if u.dimension == DimensionPiece {
		v := value
		res.ConvertedValue = &v
		res.Status = domain.ConversionNotApplicable
		return res
	}

	if res.MaterialDescription == "" {
		res.Status = domain.ConversionFailed
		res.Reason = fmt.Sprintf("no material description to derive a %s per piece for unit %s", u.dimension, u.code)
		return res
	}

	size, pattern, ok := pieceSize(u.dimension, res.MaterialDescription)
	if !ok {
		res.Status = domain.ConversionFailed
		res.Reason = fmt.Sprintf("no %s token found in material description %q", u.dimension, res.MaterialDescription)
		return res
	}

	// size is in base units; express the piece size in the complaint's unit
	factor := size.Div(u.base)
	if !factor.IsPositive() {
		res.Status = domain.ConversionFailed
		res.Reason = fmt.Sprintf("invalid %s factor from pattern %s", u.dimension, pattern)
		return res
	}

	pieces := decimal.NewFromFloat(value).Div(factor).Round(precision)
	converted := pieces.InexactFloat64()
	res.ConvertedValue = &converted
	res.WasConverted = true
	res.Factor = factor.Round(precision).InexactFloat64()

	if pieces.Equal(pieces.Truncate(0)) {
		res.Status = domain.ConversionConverted
	} else {
		res.Status = domain.ConversionNeedsAttention
		res.Reason = fmt.Sprintf("fractional piece count %s (%s %s / %s %s per piece)",
			pieces.String(), decimal.NewFromFloat(value).String(), u.code, factor.Round(precision).String(), u.code)
	}
	return res
}
