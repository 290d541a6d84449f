package ingest

import "fmt"

// Result is the output of one parser run over one sheet.
type Result[T any] struct {
	Records     []T       `json:"records"`
	Warnings    []Warning `json:"warnings,omitempty"`
	RowsRead    int       `json:"rowsRead"`
	RowsSkipped int       `json:"rowsSkipped"`
}

func (r *Result[T]) warn(row int, field, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Row: row, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *Result[T]) skip(row int, field, format string, args ...any) {
	r.RowsSkipped++
	r.warn(row, field, format, args...)
}

// sheetRow converts a data row index into the 1-based row number shown by
// spreadsheet applications (the header is row 1).
func sheetRow(i int) int {
	return i + 2
}
