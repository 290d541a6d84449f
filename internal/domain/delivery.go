package domain

import "strings"

// DeliveryKind is the flow direction of a delivery.
type DeliveryKind string

const (
	DeliveryCustomer DeliveryKind = "Customer"
	DeliverySupplier DeliveryKind = "Supplier"
)

// ParseDeliveryKind maps free text ("customer", "Outbound", "Lieferant", ...) to a kind.
func ParseDeliveryKind(s string) (DeliveryKind, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return "", false
	case strings.Contains(v, "customer"), strings.Contains(v, "outbound"), strings.Contains(v, "kunde"):
		return DeliveryCustomer, true
	case strings.Contains(v, "supplier"), strings.Contains(v, "inbound"), strings.Contains(v, "lieferant"), strings.Contains(v, "vendor"):
		return DeliverySupplier, true
	}
	return "", false
}

// Delivery is the monthly delivered quantity of one plant and flow direction.
// Quantity is always the sum of every contributing row.
type Delivery struct {
	ID        string       `json:"id"`
	PlantCode string       `json:"plantCode"`
	SiteCode  string       `json:"siteCode"`
	SiteName  string       `json:"siteName,omitempty"`
	Month     string       `json:"month"`
	Quantity  float64      `json:"quantity"`
	Kind      DeliveryKind `json:"kind"`
}
