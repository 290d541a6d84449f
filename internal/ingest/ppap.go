package ingest

import (
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/scalar"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// ParsePPAP maps a PPAP export onto P1–P3 notifications.
func (p *Parser) ParsePPAP(s sheet.Sheet, fileName string) (Result[domain.PPAPNotification], error) {
	var res Result[domain.PPAPNotification]

	m, err := resolve(s, fileName, PPAPSchema)
	if err != nil {
		return res, err
	}
	if !m.Has(FieldNotificationType) {
		res.warn(0, FieldNotificationType, "no notification type column, every PPAP counted as %s", domain.TypeP1)
	}

	seen := make(occurrences)
	for i, row := range s.DataRows() {
		if sheet.IsBlankRow(row) {
			continue
		}
		res.RowsRead++
		rowNum := sheetRow(i)

		head, ok := readHead(p, row, m, domain.FamilyPPAP, rowNum, &res)
		if !ok {
			continue
		}
		created, ok := scalar.ParseDate(cell(row, m, FieldCreatedOn))
		if !ok {
			res.skip(rowNum, FieldCreatedOn, "invalid date %q", cell(row, m, FieldCreatedOn).String())
			continue
		}
		_, completed := scalar.ParseDate(cell(row, m, FieldCompletedOn))

		res.Records = append(res.Records, domain.PPAPNotification{
			ID:                 recordID("ppap", seen.next(head.number)),
			NotificationNumber: head.number,
			NotificationType:   head.typ,
			PlantCode:          head.plantCode,
			SiteName:           head.siteName,
			CreatedOn:          created,
			Status:             domain.ParsePPAPStatus(scalar.Text(cell(row, m, FieldStatus)), completed),
			MaterialNumber:     scalar.Text(cell(row, m, FieldMaterialNumber)),
			Supplier:           scalar.Text(cell(row, m, FieldSupplier)),
		})
	}
	return res, nil
}
