package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySheet is returned when a sheet has no header row at all.
var ErrEmptySheet = errors.New("sheet has no header row")

// ColumnResolutionError is the file-level failure of a parser: a required column
// could not be found, so no row of the sheet was parsed.
type ColumnResolutionError struct {
	File    string
	Sheet   string
	Schema  string
	Missing []string
	Headers []string
}

func (e *ColumnResolutionError) Error() string {
	where := e.Sheet
	if e.File != "" {
		where = fmt.Sprintf("%s (sheet %q)", e.File, e.Sheet)
	}
	return fmt.Sprintf("%s: %s: required columns not found: %s",
		e.Schema, where, strings.Join(e.Missing, ", "))
}

// IsFileFatal reports whether err means the whole sheet was rejected, as opposed
// to a sheet that parsed with row warnings.
func IsFileFatal(err error) bool {
	if err == nil {
		return false
	}
	var colErr *ColumnResolutionError
	return errors.As(err, &colErr) || errors.Is(err, ErrEmptySheet)
}

// Warning is a row-level problem. The row was skipped or its value flagged, the
// rest of the sheet is unaffected.
type Warning struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Row == 0 {
		return w.Message
	}
	if w.Field == "" {
		return fmt.Sprintf("row %d: %s", w.Row, w.Message)
	}
	return fmt.Sprintf("row %d: %s: %s", w.Row, w.Field, w.Message)
}
