package ingest

import (
	"errors"
	"time"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/columns"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/scalar"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// ParseDeliveries folds a delivery export into one Delivery per
// (plant, month, kind).
//
// For files named "Outbound <plant>..." or "Inbound <plant>..." the role and
// plant from the file name take precedence over the sheet's columns. Without a
// role the kind comes from a kind column, and the configured default kind is
// used (with one warning) when neither is available.
func (p *Parser) ParseDeliveries(s sheet.Sheet, fileName string) (Result[domain.Delivery], error) {
	var res Result[domain.Delivery]

	m, err := resolve(s, fileName, DeliverySchema)
	if err != nil {
		return res, err
	}

	info := ParseFileName(fileName)
	if !m.Has(FieldPlant) && info.PlantCode == "" {
		return res, &ColumnResolutionError{
			File: fileName, Sheet: s.Name, Schema: DeliverySchema.Name,
			Missing: []string{FieldPlant}, Headers: s.Header(),
		}
	}
	if !m.Has(FieldDate) && !m.Has(FieldGoodsIssueDate) && !m.Has(FieldGoodsReceiptDate) {
		return res, &ColumnResolutionError{
			File: fileName, Sheet: s.Name, Schema: DeliverySchema.Name,
			Missing: []string{FieldDate}, Headers: s.Header(),
		}
	}

	roleKind, hasRole := info.Role.Kind()
	filenamePlant := info.PlantCode != "" && hasRole
	defaultedKind := false

	agg := NewDeliveryAggregator(p.plants)
	for i, row := range s.DataRows() {
		if sheet.IsBlankRow(row) {
			continue
		}
		res.RowsRead++
		rowNum := sheetRow(i)

		qtyCell := cell(row, m, FieldQuantity)
		if qtyCell.IsEmpty() {
			res.skip(rowNum, FieldQuantity, "missing quantity")
			continue
		}

		dr := DeliveryRow{
			Role:                  info.Role,
			Quantity:              scalar.ParseNumber(qtyCell),
			SiteName:              scalar.Text(cell(row, m, FieldSiteName)),
			HasGoodsIssueColumn:   m.Has(FieldGoodsIssueDate),
			HasGoodsReceiptColumn: m.Has(FieldGoodsReceiptDate),
			Date:                  optionalDate(row, m, FieldDate),
			GoodsIssueDate:        optionalDate(row, m, FieldGoodsIssueDate),
			GoodsReceiptDate:      optionalDate(row, m, FieldGoodsReceiptDate),
		}

		switch {
		case filenamePlant:
			dr.PlantCode = info.PlantCode
		default:
			if code, ok := p.plants.PlantCode(cell(row, m, FieldPlant)); ok {
				dr.PlantCode = code
			} else {
				dr.PlantCode = info.PlantCode
			}
		}

		switch {
		case hasRole:
			dr.Kind = roleKind
		default:
			if k, ok := domain.ParseDeliveryKind(scalar.Text(cell(row, m, FieldKind))); ok {
				dr.Kind = k
			} else {
				dr.Kind = p.defaultKind
				defaultedKind = true
			}
		}

		if err := agg.Add(dr); err != nil {
			res.skip(rowNum, deliveryField(err), "%v", err)
		}
	}

	if defaultedKind {
		res.warn(0, FieldKind, "delivery kind not derivable from file name or column, defaulted to %s", p.defaultKind)
	}
	res.Records = agg.Deliveries()

	p.log.Debug().
		Str("file", fileName).
		Str("role", info.Role.String()).
		Int("rows", res.RowsRead).
		Int("records", len(res.Records)).
		Msg("deliveries parsed")

	return res, nil
}

func optionalDate(row []sheet.Cell, m columns.Mapping, field string) *time.Time {
	if !m.Has(field) {
		return nil
	}
	t, ok := scalar.ParseDate(cell(row, m, field))
	if !ok {
		return nil
	}
	return &t
}

func deliveryField(err error) string {
	switch {
	case errors.Is(err, ErrNoPlant):
		return FieldPlant
	case errors.Is(err, ErrNoKind):
		return FieldKind
	case errors.Is(err, ErrNoGoodsIssueDate):
		return FieldGoodsIssueDate
	case errors.Is(err, ErrNoGoodsReceiptDate):
		return FieldGoodsReceiptDate
	}
	return FieldDate
}
