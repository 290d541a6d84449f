package ingest

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// recordNamespace scopes the name-based ids of every parsed record.
var recordNamespace = uuid.MustParse("6f1c2d0e-8a4b-5c3d-9e7f-0a1b2c3d4e5f")

// recordID derives a stable id so that re-parsing the same export, or a
// correction of a record, yields the same identity.
func recordID(kind string, parts ...string) string {
	name := kind + "|" + strings.Join(parts, "|")
	return uuid.NewSHA1(recordNamespace, []byte(name)).String()
}

// DeliveryID is the id of the aggregated delivery of a (plant, month, kind).
func DeliveryID(plantCode, month, kind string) string {
	return recordID("delivery", plantCode, month, kind)
}

// occurrences numbers repeated keys within one sheet (0 for the first).
type occurrences map[string]int

func (o occurrences) next(key string) string {
	n := o[key]
	o[key] = n + 1
	if n == 0 {
		return key
	}
	return key + "#" + strconv.Itoa(n)
}
