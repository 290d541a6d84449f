package pipeline

import (
	"strings"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/columns"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/ingest"
)

type nameHint struct {
	kind  Kind
	words []string
}

// nameHints are checked in order; PPAP and deviation exports are often named
// "... notifications", so they come before complaints.
var nameHints = []nameHint{
	{KindDeliveries, []string{"outbound", "inbound", "deliver", "lieferung", "shipment"}},
	{KindPPAP, []string{"ppap", "bemusterung", "erstmuster"}},
	{KindDeviations, []string{"deviation", "abweichung", "sonderfreigabe"}},
	{KindPlants, []string{"plant master", "plants", "werke", "stammdaten", "sites"}},
	{KindComplaints, []string{"complaint", "reklamation", "notification", "meldung", "qmel"}},
}

var schemaKinds = []struct {
	kind   Kind
	schema columns.Schema
}{
	{KindComplaints, ingest.ComplaintSchema},
	{KindDeviations, ingest.DeviationSchema},
	{KindPPAP, ingest.PPAPSchema},
	{KindDeliveries, ingest.DeliverySchema},
	{KindPlants, ingest.PlantSchema},
}

// DetectKind guesses the export type of a sheet: first from keywords in the file
// and sheet names, then from the schema whose required columns the header fully
// resolves with the most fields overall.
func DetectKind(fileName, sheetName string, headers []string) Kind {
	names := columns.Normalize(fileName + " " + sheetName)
	for _, h := range nameHints {
		for _, w := range h.words {
			if strings.Contains(names, w) {
				return h.kind
			}
		}
	}

	best, bestFields := KindUnknown, 0
	for _, sk := range schemaKinds {
		m := columns.Resolve(headers, sk.schema)
		if len(m.Missing()) > 0 {
			continue
		}
		if n := len(m.Resolved()); n > bestFields {
			best, bestFields = sk.kind, n
		}
	}
	return best
}
