package kpi

import (
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/scalar"
)

// Matches reports whether a (month, site) falls inside the filter. Empty bounds
// and an empty site list match everything.
func Matches(f domain.KpiFilter, month, site string) bool {
	if f.FromMonth != "" && month < f.FromMonth {
		return false
	}
	if f.ToMonth != "" && month > f.ToMonth {
		return false
	}
	if len(f.Sites) == 0 {
		return true
	}
	for _, s := range f.Sites {
		if s == site {
			return true
		}
	}
	return false
}

// Apply returns the KPIs matching the filter, in input order.
func Apply(kpis []domain.MonthlySiteKpi, f domain.KpiFilter) []domain.MonthlySiteKpi {
	out := make([]domain.MonthlySiteKpi, 0, len(kpis))
	for _, k := range kpis {
		if Matches(f, k.Month, k.SiteCode) {
			out = append(out, k)
		}
	}
	return out
}

// FilterComplaints keeps complaints whose creation month and plant site match.
func FilterComplaints(complaints []domain.Complaint, f domain.KpiFilter, siteOf func(plantCode string) string) []domain.Complaint {
	var out []domain.Complaint
	for _, c := range complaints {
		site := c.PlantCode
		if siteOf != nil {
			site = siteOf(c.PlantCode)
		}
		if Matches(f, scalar.MonthKey(c.CreatedOn), site) {
			out = append(out, c)
		}
	}
	return out
}

// FilterDeliveries keeps deliveries whose month and site match.
func FilterDeliveries(deliveries []domain.Delivery, f domain.KpiFilter) []domain.Delivery {
	var out []domain.Delivery
	for _, d := range deliveries {
		site := d.SiteCode
		if site == "" {
			site = d.PlantCode
		}
		if Matches(f, d.Month, site) {
			out = append(out, d)
		}
	}
	return out
}
