package ingest

import (
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/columns"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/scalar"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// notificationHead is the part every notification export shares.
type notificationHead struct {
	number    string
	typ       domain.NotificationType
	plantCode string
	siteName  string
}

// readHead extracts number, type and plant of a notification row of the given
// family, recording why a row is skipped.
func readHead[T any](p *Parser, row []sheet.Cell, m columns.Mapping, family domain.Family, rowNum int, res *Result[T]) (notificationHead, bool) {
	number := scalar.Text(cell(row, m, FieldNotificationNumber))
	if number == "" {
		res.skip(rowNum, FieldNotificationNumber, "missing notification number")
		return notificationHead{}, false
	}

	typeText := scalar.Text(cell(row, m, FieldNotificationType))
	tr, ok := ResolveNotificationType(typeText, family)
	if !ok {
		res.skip(rowNum, FieldNotificationType, "unrecognized notification type %q", typeText)
		return notificationHead{}, false
	}
	if tr.Type.Family() != family {
		res.skip(rowNum, FieldNotificationType, "notification %s is a %s, not a %s notification", number, tr.Type, family)
		return notificationHead{}, false
	}
	if tr.Defaulted && m.Has(FieldNotificationType) {
		res.warn(rowNum, FieldNotificationType, "%s", tr.Note)
	}

	plantCell := cell(row, m, FieldPlant)
	plantCode, ok := p.plants.PlantCode(plantCell)
	if !ok {
		res.skip(rowNum, FieldPlant, "no plant code in %q", plantCell.String())
		return notificationHead{}, false
	}

	return notificationHead{
		number:    number,
		typ:       tr.Type,
		plantCode: plantCode,
		siteName:  p.siteName(row, m, plantCode),
	}, true
}

// ParseDeviations maps a deviation export onto D1–D3 notifications. Without a
// type column every row is a D1.
func (p *Parser) ParseDeviations(s sheet.Sheet, fileName string) (Result[domain.Deviation], error) {
	var res Result[domain.Deviation]

	m, err := resolve(s, fileName, DeviationSchema)
	if err != nil {
		return res, err
	}
	if !m.Has(FieldNotificationType) {
		res.warn(0, FieldNotificationType, "no notification type column, every deviation counted as %s", domain.TypeD1)
	}

	seen := make(occurrences)
	for i, row := range s.DataRows() {
		if sheet.IsBlankRow(row) {
			continue
		}
		res.RowsRead++
		rowNum := sheetRow(i)

		head, ok := readHead(p, row, m, domain.FamilyDeviation, rowNum, &res)
		if !ok {
			continue
		}
		created, ok := scalar.ParseDate(cell(row, m, FieldCreatedOn))
		if !ok {
			res.skip(rowNum, FieldCreatedOn, "invalid date %q", cell(row, m, FieldCreatedOn).String())
			continue
		}

		res.Records = append(res.Records, domain.Deviation{
			ID:                 recordID("deviation", seen.next(head.number)),
			NotificationNumber: head.number,
			NotificationType:   head.typ,
			PlantCode:          head.plantCode,
			SiteName:           head.siteName,
			CreatedOn:          created,
			Status:             scalar.Text(cell(row, m, FieldStatus)),
			Description:        scalar.Text(cell(row, m, FieldDescription)),
			MaterialNumber:     scalar.Text(cell(row, m, FieldMaterialNumber)),
		})
	}
	return res, nil
}
