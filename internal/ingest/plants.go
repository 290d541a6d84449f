package ingest

import (
	"regexp"
	"strings"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/scalar"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// ParsePlants reads the plant master data. Duplicate codes keep the first row.
func (p *Parser) ParsePlants(s sheet.Sheet, fileName string) (Result[domain.Plant], error) {
	var res Result[domain.Plant]

	m, err := resolve(s, fileName, PlantSchema)
	if err != nil {
		return res, err
	}

	// plant names in the master data are not codes; resolve numerics only
	codes := NewPlantDirectory(nil)
	seen := make(map[string]int)
	for i, row := range s.DataRows() {
		if sheet.IsBlankRow(row) {
			continue
		}
		res.RowsRead++
		rowNum := sheetRow(i)

		code, ok := codes.PlantCode(cell(row, m, FieldPlant))
		if !ok {
			res.skip(rowNum, FieldPlant, "no plant code in %q", cell(row, m, FieldPlant).String())
			continue
		}
		if first, dup := seen[code]; dup {
			res.skip(rowNum, FieldPlant, "duplicate plant %s, keeping row %d", code, first)
			continue
		}
		seen[code] = rowNum

		plant := domain.Plant{
			Code:    code,
			Name:    scalar.Text(cell(row, m, FieldName)),
			City:    scalar.Text(cell(row, m, FieldCity)),
			Country: scalar.Text(cell(row, m, FieldCountry)),
		}
		plant.SiteCode = code
		siteCell := cell(row, m, FieldSiteCode)
		if !siteCell.IsEmpty() {
			if site, ok := siteCode(codes, siteCell); ok {
				plant.SiteCode = site
			} else {
				res.warn(rowNum, FieldSiteCode, "unusable site code %q, using plant %s", siteCell.String(), code)
			}
		}
		res.Records = append(res.Records, plant)
	}
	return res, nil
}

var siteToken = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,15}$`)

// siteCode reads a site key: numeric codes are normalized like plant codes,
// alphanumeric keys such as "BER" are kept upper-cased.
func siteCode(codes *PlantDirectory, c sheet.Cell) (string, bool) {
	if c.Kind == sheet.KindNumber {
		return codes.PlantCode(c)
	}
	text := scalar.Text(c)
	if text == "" {
		return "", false
	}
	if isDigits(text) {
		return trimCode(text), true
	}
	if siteToken.MatchString(text) {
		return strings.ToUpper(text), true
	}
	// "200 - Berlin"
	if code, ok := codes.PlantCode(c); ok {
		return code, true
	}
	return "", false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
