package ingest

import (
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/columns"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/scalar"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/units"
)

// ParseComplaints maps a complaints export onto Complaint records. Quantities
// in non-piece units are converted to pieces; a failed conversion keeps the
// original value and is reported as a warning.
func (p *Parser) ParseComplaints(s sheet.Sheet, fileName string) (Result[domain.Complaint], error) {
	var res Result[domain.Complaint]

	m, err := resolve(s, fileName, ComplaintSchema)
	if err != nil {
		return res, err
	}

	seen := make(occurrences)
	for i, row := range s.DataRows() {
		if sheet.IsBlankRow(row) {
			continue
		}
		res.RowsRead++
		rowNum := sheetRow(i)

		c, ok := p.complaintFromRow(row, m, rowNum, &res)
		if !ok {
			continue
		}
		c.SourceFile = fileName
		c.ID = recordID("complaint", seen.next(c.NotificationNumber))
		res.Records = append(res.Records, c)
	}

	p.log.Debug().
		Str("file", fileName).
		Str("sheet", s.Name).
		Int("records", len(res.Records)).
		Int("skipped", res.RowsSkipped).
		Msg("complaints parsed")

	return res, nil
}

func (p *Parser) complaintFromRow(row []sheet.Cell, m columns.Mapping, rowNum int, res *Result[domain.Complaint]) (domain.Complaint, bool) {
	number := scalar.Text(cell(row, m, FieldNotificationNumber))
	if number == "" {
		res.skip(rowNum, FieldNotificationNumber, "missing notification number")
		return domain.Complaint{}, false
	}

	typeText := scalar.Text(cell(row, m, FieldNotificationType))
	tr, ok := ResolveNotificationType(typeText, 0)
	if !ok {
		res.skip(rowNum, FieldNotificationType, "unrecognized notification type %q", typeText)
		return domain.Complaint{}, false
	}
	if tr.Defaulted {
		res.warn(rowNum, FieldNotificationType, "%s", tr.Note)
	}

	plantCell := cell(row, m, FieldPlant)
	plantCode, ok := p.plants.PlantCode(plantCell)
	if !ok {
		res.skip(rowNum, FieldPlant, "no plant code in %q", plantCell.String())
		return domain.Complaint{}, false
	}

	created, ok := scalar.ParseDate(cell(row, m, FieldCreatedOn))
	if !ok {
		res.skip(rowNum, FieldCreatedOn, "invalid date %q", cell(row, m, FieldCreatedOn).String())
		return domain.Complaint{}, false
	}

	c := domain.Complaint{
		NotificationNumber:  number,
		NotificationType:    tr.Type,
		Category:            tr.Type.Category(),
		PlantCode:           plantCode,
		SiteName:            p.siteName(row, m, plantCode),
		CreatedOn:           created,
		DefectiveParts:      scalar.ParseNumber(cell(row, m, FieldDefectiveParts)),
		UnitOfMeasure:       scalar.Text(cell(row, m, FieldUnitOfMeasure)),
		MaterialDescription: scalar.Text(cell(row, m, FieldMaterialDescription)),
		MaterialNumber:      scalar.Text(cell(row, m, FieldMaterialNumber)),
		Status:              scalar.Text(cell(row, m, FieldStatus)),
	}

	if !units.IsPiece(c.UnitOfMeasure) {
		conv := p.units.Convert(c.DefectiveParts, c.UnitOfMeasure, c.MaterialDescription)
		c.Conversion = &conv
		switch conv.Status {
		case domain.ConversionConverted:
			c.DefectiveParts = *conv.ConvertedValue
		case domain.ConversionNeedsAttention:
			c.DefectiveParts = *conv.ConvertedValue
			res.warn(rowNum, FieldDefectiveParts, "notification %s: %s", number, conv.Reason)
		default:
			res.warn(rowNum, FieldDefectiveParts, "notification %s: conversion failed, keeping %v %s: %s",
				number, conv.OriginalValue, conv.OriginalUnit, conv.Reason)
		}
	}
	return c, true
}

// siteName prefers the sheet's own site name column over master data.
func (p *Parser) siteName(row []sheet.Cell, m columns.Mapping, plantCode string) string {
	if name := scalar.Text(cell(row, m, FieldSiteName)); name != "" {
		return name
	}
	return p.plants.SiteName(plantCode)
}
