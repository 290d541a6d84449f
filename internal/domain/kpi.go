package domain

// PPAPCounts splits PPAP notifications by progress.
type PPAPCounts struct {
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// MonthlySiteKpi is the per (month, site) quality KPI record. A nil PPM means the
// corresponding deliveries total is zero.
//
// The Q1–Q3 complaint fields carry the complaint quantity (defective parts of
// notifications of that type); notification counts are kept in Extensions
// under the Ext* keys. Deviation and PPAP fields are notification counts.
type MonthlySiteKpi struct {
	Month                  string             `json:"month"`
	SiteCode               string             `json:"siteCode"`
	SiteName               string             `json:"siteName,omitempty"`
	CustomerComplaintsQ1   float64            `json:"customerComplaintsQ1"`
	SupplierComplaintsQ2   float64            `json:"supplierComplaintsQ2"`
	InternalComplaintsQ3   float64            `json:"internalComplaintsQ3"`
	DeviationsD            int                `json:"deviationsD"`
	PPAPP                  PPAPCounts         `json:"ppapP"`
	CustomerDeliveries     float64            `json:"customerDeliveries"`
	SupplierDeliveries     float64            `json:"supplierDeliveries"`
	CustomerDefectiveParts float64            `json:"customerDefectiveParts"`
	SupplierDefectiveParts float64            `json:"supplierDefectiveParts"`
	InternalDefectiveParts float64            `json:"internalDefectiveParts"`
	CustomerPpm            *float64           `json:"customerPpm"`
	SupplierPpm            *float64           `json:"supplierPpm"`
	Extensions             map[string]float64 `json:"extensions,omitempty"`
}

// Extension keys set by the aggregator.
const (
	ExtNotificationsQ1 = "notificationsQ1"
	ExtNotificationsQ2 = "notificationsQ2"
	ExtNotificationsQ3 = "notificationsQ3"
)

// Key returns the unique (month, siteCode) key.
func (k MonthlySiteKpi) Key() KpiKey {
	return KpiKey{Month: k.Month, SiteCode: k.SiteCode}
}

// KpiKey identifies a MonthlySiteKpi.
type KpiKey struct {
	Month    string
	SiteCode string
}

// Less orders keys by month, then site code.
func (k KpiKey) Less(o KpiKey) bool {
	if k.Month != o.Month {
		return k.Month < o.Month
	}
	return k.SiteCode < o.SiteCode
}

// GlobalPpm is the PPM over a whole record set, computed from summed
// numerators and denominators.
type GlobalPpm struct {
	CustomerPpm *float64 `json:"customerPpm"`
	SupplierPpm *float64 `json:"supplierPpm"`
}

// KpiFilter narrows KPI queries. Months are inclusive "YYYY-MM" bounds.
type KpiFilter struct {
	FromMonth string   `json:"fromMonth,omitempty"`
	ToMonth   string   `json:"toMonth,omitempty"`
	Sites     []string `json:"sites,omitempty"`
}
