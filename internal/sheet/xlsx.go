package sheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DecodeXLSX reads every visible worksheet of an xlsx workbook into typed cells.
// Numeric cells keep their raw value (dates formatted as numbers become Date cells),
// text cells stay text so leading zeros in codes survive.
func DecodeXLSX(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("xlsx workbook has no sheets")
	}

	var sheets []Sheet
	for _, name := range names {
		if visible, err := f.GetSheetVisible(name); err == nil && !visible {
			continue
		}
		s, err := readWorksheet(f, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

func readWorksheet(f *excelize.File, name string) (Sheet, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read rows from sheet %s: %w", name, err)
	}

	dateStyles := make(map[int]bool)
	out := Sheet{Name: name, Rows: make([][]Cell, 0, len(rows))}
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, raw := range row {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return Sheet{}, err
			}
			typ, err := f.GetCellType(name, axis)
			if err != nil {
				cells[c] = String(raw)
				continue
			}
			cells[c] = typedCell(f, name, axis, raw, typ, dateStyles)
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

func typedCell(f *excelize.File, sheetName, axis, raw string, typ excelize.CellType, dateStyles map[int]bool) Cell {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return String(raw)
	case excelize.CellTypeBool:
		return Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return Date(t)
		}
		if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
			return Date(t)
		}
		return String(raw)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return String(raw)
	}
	if isDateStyled(f, sheetName, axis, dateStyles) {
		return Date(serialToTime(v))
	}
	return Number(v)
}

func isDateStyled(f *excelize.File, sheetName, axis string, cache map[int]bool) bool {
	styleID, err := f.GetCellStyle(sheetName, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if v, ok := cache[styleID]; ok {
		return v
	}
	style, err := f.GetStyle(styleID)
	isDate := err == nil && style != nil && isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	cache[styleID] = isDate
	return isDate
}

// isDateNumFmt recognizes the built-in date formats (14-22, 45-47) and custom
// formats that contain both a day/year token and a month token.
func isDateNumFmt(id int, custom *string) bool {
	if (id >= 14 && id <= 22) || (id >= 45 && id <= 47) {
		return true
	}
	if custom == nil {
		return false
	}
	fmtStr := strings.ToLower(*custom)
	return (strings.Contains(fmtStr, "d") || strings.Contains(fmtStr, "y")) && strings.Contains(fmtStr, "m")
}

var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func serialToTime(serial float64) time.Time {
	return serialEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
}
