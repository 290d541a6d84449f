// Package kpi folds parsed quality records into monthly per-site KPIs.
//
// Everything here is total: any well-typed input, including empty input,
// produces a result, and the same input always produces the same output.
package kpi

import (
	"sort"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/scalar"
)

const perMillion = 1_000_000

// Inputs is the full record set of one aggregation.
type Inputs struct {
	Complaints []domain.Complaint
	Deliveries []domain.Delivery
	Deviations []domain.Deviation
	PPAPs      []domain.PPAPNotification
	Plants     []domain.Plant
}

// CalculateMonthlySiteKpis aggregates complaints and deliveries into one record
// per (month, site), sorted by month then site.
func CalculateMonthlySiteKpis(complaints []domain.Complaint, deliveries []domain.Delivery) []domain.MonthlySiteKpi {
	return Calculate(Inputs{Complaints: complaints, Deliveries: deliveries})
}

// Calculate aggregates every record kind. Deviation and PPAP notifications from
// their own exports are counted once per notification number, also when the
// complaint export already contained them.
func Calculate(in Inputs) []domain.MonthlySiteKpi {
	a := newAccumulator(in.Plants)

	counted := make(map[string]bool)
	for _, c := range in.Complaints {
		k := a.get(scalar.MonthKey(c.CreatedOn), a.site(c.PlantCode), c.SiteName)
		switch c.NotificationType {
		case domain.TypeQ1:
			k.CustomerComplaintsQ1 += c.DefectiveParts
			k.CustomerDefectiveParts += c.DefectiveParts
			incr(k, domain.ExtNotificationsQ1)
		case domain.TypeQ2:
			k.SupplierComplaintsQ2 += c.DefectiveParts
			k.SupplierDefectiveParts += c.DefectiveParts
			incr(k, domain.ExtNotificationsQ2)
		case domain.TypeQ3:
			k.InternalComplaintsQ3 += c.DefectiveParts
			k.InternalDefectiveParts += c.DefectiveParts
			incr(k, domain.ExtNotificationsQ3)
		case domain.TypeD1, domain.TypeD2, domain.TypeD3:
			k.DeviationsD++
			counted[notificationKey(c.NotificationType.Family(), c.NotificationNumber)] = true
		case domain.TypeP1, domain.TypeP2, domain.TypeP3:
			addPPAP(k, domain.ParsePPAPStatus(c.Status, false))
			counted[notificationKey(c.NotificationType.Family(), c.NotificationNumber)] = true
		}
	}

	for _, d := range in.Deviations {
		key := notificationKey(domain.FamilyDeviation, d.NotificationNumber)
		if counted[key] {
			continue
		}
		counted[key] = true
		a.get(scalar.MonthKey(d.CreatedOn), a.site(d.PlantCode), d.SiteName).DeviationsD++
	}

	for _, p := range in.PPAPs {
		key := notificationKey(domain.FamilyPPAP, p.NotificationNumber)
		if counted[key] {
			continue
		}
		counted[key] = true
		addPPAP(a.get(scalar.MonthKey(p.CreatedOn), a.site(p.PlantCode), p.SiteName), p.Status)
	}

	for _, d := range in.Deliveries {
		site := d.SiteCode
		if site == "" {
			site = a.site(d.PlantCode)
		}
		k := a.get(d.Month, site, d.SiteName)
		switch d.Kind {
		case domain.DeliveryCustomer:
			k.CustomerDeliveries += d.Quantity
		case domain.DeliverySupplier:
			k.SupplierDeliveries += d.Quantity
		}
	}

	return a.result()
}

// PPM returns defects per million delivered parts, or nil when nothing was
// delivered.
func PPM(defects, deliveries float64) *float64 {
	if deliveries <= 0 {
		return nil
	}
	v := defects / deliveries * perMillion
	return &v
}

// WithPPM recomputes the PPM fields of k from its own sums.
func WithPPM(k domain.MonthlySiteKpi) domain.MonthlySiteKpi {
	k.CustomerPpm = PPM(k.CustomerDefectiveParts, k.CustomerDeliveries)
	k.SupplierPpm = PPM(k.SupplierDefectiveParts, k.SupplierDeliveries)
	return k
}

func incr(k *domain.MonthlySiteKpi, ext string) {
	if k.Extensions == nil {
		k.Extensions = make(map[string]float64)
	}
	k.Extensions[ext]++
}

func addPPAP(k *domain.MonthlySiteKpi, s domain.PPAPStatus) {
	if s == domain.PPAPCompleted {
		k.PPAPP.Completed++
		return
	}
	k.PPAPP.InProgress++
}

func notificationKey(f domain.Family, number string) string {
	return f.String() + "|" + number
}

type accumulator struct {
	plants map[string]domain.Plant
	kpis   map[domain.KpiKey]*domain.MonthlySiteKpi
}

func newAccumulator(plants []domain.Plant) *accumulator {
	a := &accumulator{
		plants: make(map[string]domain.Plant, len(plants)),
		kpis:   make(map[domain.KpiKey]*domain.MonthlySiteKpi),
	}
	for _, p := range plants {
		if _, dup := a.plants[p.Code]; !dup {
			a.plants[p.Code] = p
		}
	}
	return a
}

func (a *accumulator) site(plantCode string) string {
	if p, ok := a.plants[plantCode]; ok && p.SiteCode != "" {
		return p.SiteCode
	}
	return plantCode
}

func (a *accumulator) get(month, site, siteName string) *domain.MonthlySiteKpi {
	key := domain.KpiKey{Month: month, SiteCode: site}
	k, ok := a.kpis[key]
	if !ok {
		k = &domain.MonthlySiteKpi{Month: month, SiteCode: site}
		if p, ok := a.plants[site]; ok {
			k.SiteName = p.Name
		}
		a.kpis[key] = k
	}
	if k.SiteName == "" {
		k.SiteName = siteName
	}
	return k
}

func (a *accumulator) result() []domain.MonthlySiteKpi {
	out := make([]domain.MonthlySiteKpi, 0, len(a.kpis))
	for _, k := range a.kpis {
		out = append(out, WithPPM(*k))
	}
	Sort(out)
	return out
}

// Sort orders KPIs by month, then site code.
func Sort(kpis []domain.MonthlySiteKpi) {
	sort.Slice(kpis, func(i, j int) bool {
		return kpis[i].Key().Less(kpis[j].Key())
	})
}
