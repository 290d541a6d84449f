package scalar

import (
	"strings"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// Text returns the trimmed display text of a cell with inner whitespace collapsed.
func Text(c sheet.Cell) string {
	return strings.Join(strings.Fields(c.String()), " ")
}
