package kpi

import (
	"reflect"
	"testing"
	"time"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func complaint(id string, typ domain.NotificationType, plant, created string, parts float64) domain.Complaint {
	return domain.Complaint{
		ID: id, NotificationNumber: id, NotificationType: typ, Category: typ.Category(),
		PlantCode: plant, CreatedOn: date(created), DefectiveParts: parts,
	}
}

func delivery(plant, month string, kind domain.DeliveryKind, qty float64) domain.Delivery {
	return domain.Delivery{PlantCode: plant, SiteCode: plant, Month: month, Kind: kind, Quantity: qty}
}

func TestInternalComplaintWithoutDeliveries(t *testing.T) {
	got := CalculateMonthlySiteKpis([]domain.Complaint{
		complaint("1", domain.TypeQ3, "235", "2025-01-15", 10),
	}, nil)

	if len(got) != 1 {
		t.Fatalf("got %d records", len(got))
	}
	k := got[0]
	if k.Month != "2025-01" || k.SiteCode != "235" {
		t.Fatalf("unexpected key %v", k.Key())
	}
	if k.InternalComplaintsQ3 != 10 || k.InternalDefectiveParts != 10 {
		t.Fatalf("internal complaints = %v/%v, want 10/10", k.InternalComplaintsQ3, k.InternalDefectiveParts)
	}
	if k.Extensions[domain.ExtNotificationsQ3] != 1 {
		t.Fatalf("notification count = %v", k.Extensions)
	}
	if k.CustomerPpm != nil || k.SupplierPpm != nil {
		t.Fatal("PPM must be null without deliveries")
	}
}

func TestCalculateMonthlySiteKpis(t *testing.T) {
	complaints := []domain.Complaint{
		complaint("1", domain.TypeQ1, "235", "2025-03-02", 5),
		complaint("2", domain.TypeQ1, "235", "2025-03-20", 3),
		complaint("3", domain.TypeQ2, "235", "2025-03-21", 2),
		complaint("4", domain.TypeD1, "235", "2025-03-21", 0),
		complaint("5", domain.TypeP2, "145", "2025-02-01", 0),
	}
	deliveries := []domain.Delivery{
		delivery("235", "2025-03", domain.DeliveryCustomer, 4000),
		delivery("235", "2025-03", domain.DeliverySupplier, 0),
		delivery("145", "2025-04", domain.DeliveryCustomer, 100),
	}

	got := CalculateMonthlySiteKpis(complaints, deliveries)
	keys := make([]domain.KpiKey, len(got))
	for i, k := range got {
		keys[i] = k.Key()
	}
	wantKeys := []domain.KpiKey{{Month: "2025-02", SiteCode: "145"}, {Month: "2025-03", SiteCode: "235"}, {Month: "2025-04", SiteCode: "145"}}
	if !reflect.DeepEqual(keys, wantKeys) {
		t.Fatalf("keys = %v, want %v", keys, wantKeys)
	}

	mar := got[1]
	if mar.CustomerComplaintsQ1 != 8 || mar.CustomerDefectiveParts != 8 || mar.SupplierComplaintsQ2 != 2 || mar.DeviationsD != 1 {
		t.Fatalf("unexpected march record %+v", mar)
	}
	if mar.Extensions[domain.ExtNotificationsQ1] != 2 || mar.Extensions[domain.ExtNotificationsQ2] != 1 {
		t.Fatalf("notification counts = %v", mar.Extensions)
	}
	if mar.CustomerPpm == nil || *mar.CustomerPpm != 2000 {
		t.Fatalf("customer ppm = %v, want 2000", mar.CustomerPpm)
	}
	if mar.SupplierPpm != nil {
		t.Fatal("supplier ppm must be null for zero supplier deliveries")
	}

	if got[0].PPAPP.InProgress != 1 {
		t.Fatalf("ppap counts = %+v", got[0].PPAPP)
	}

	apr := got[2]
	if apr.CustomerPpm == nil || *apr.CustomerPpm != 0 {
		t.Fatalf("zero defects over positive deliveries must be ppm 0, got %v", apr.CustomerPpm)
	}
}

func TestCalculateDeduplicatesNotifications(t *testing.T) {
	in := Inputs{
		Complaints: []domain.Complaint{complaint("D-1", domain.TypeD2, "235", "2025-01-10", 0)},
		Deviations: []domain.Deviation{
			{NotificationNumber: "D-1", NotificationType: domain.TypeD2, PlantCode: "235", CreatedOn: date("2025-01-10")},
			{NotificationNumber: "D-2", NotificationType: domain.TypeD1, PlantCode: "235", CreatedOn: date("2025-01-11")},
			{NotificationNumber: "D-2", NotificationType: domain.TypeD1, PlantCode: "235", CreatedOn: date("2025-01-11")},
		},
		PPAPs: []domain.PPAPNotification{
			{NotificationNumber: "P-1", PlantCode: "235", CreatedOn: date("2025-01-01"), Status: domain.PPAPCompleted},
			{NotificationNumber: "P-2", PlantCode: "235", CreatedOn: date("2025-01-02"), Status: domain.PPAPInProgress},
		},
		Plants: []domain.Plant{{Code: "235", SiteCode: "235", Name: "Berlin"}},
	}
	got := Calculate(in)
	if len(got) != 1 {
		t.Fatalf("got %d records", len(got))
	}
	k := got[0]
	if k.DeviationsD != 2 {
		t.Fatalf("deviations = %d, want 2", k.DeviationsD)
	}
	if k.PPAPP != (domain.PPAPCounts{InProgress: 1, Completed: 1}) {
		t.Fatalf("ppap = %+v", k.PPAPP)
	}
	if k.SiteName != "Berlin" {
		t.Fatalf("site name = %q", k.SiteName)
	}
}

func TestCalculatePlantToSite(t *testing.T) {
	in := Inputs{
		Complaints: []domain.Complaint{
			complaint("1", domain.TypeQ1, "235", "2025-01-10", 1),
			complaint("2", domain.TypeQ1, "236", "2025-01-10", 1),
		},
		Deliveries: []domain.Delivery{{PlantCode: "236", Month: "2025-01", Kind: domain.DeliveryCustomer, Quantity: 1000}},
		Plants: []domain.Plant{
			{Code: "235", SiteCode: "200"},
			{Code: "236", SiteCode: "200"},
		},
	}
	got := Calculate(in)
	if len(got) != 1 || got[0].SiteCode != "200" || got[0].Extensions[domain.ExtNotificationsQ1] != 2 {
		t.Fatalf("unexpected %+v", got)
	}
	if *got[0].CustomerPpm != 2000 {
		t.Fatalf("ppm = %v", *got[0].CustomerPpm)
	}
}

func TestCalculateEmpty(t *testing.T) {
	got := CalculateMonthlySiteKpis(nil, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("empty input must give an empty result, got %v", got)
	}
	g := CalculateGlobalPPM(nil, nil)
	if g.CustomerPpm != nil || g.SupplierPpm != nil {
		t.Fatal("global ppm of nothing must be null")
	}
}

func TestCalculateDeterministic(t *testing.T) {
	complaints := []domain.Complaint{
		complaint("1", domain.TypeQ1, "235", "2025-03-02", 5),
		complaint("2", domain.TypeQ2, "145", "2025-01-02", 1),
		complaint("3", domain.TypeQ3, "300", "2025-02-02", 2),
	}
	deliveries := []domain.Delivery{delivery("145", "2025-01", domain.DeliverySupplier, 10)}
	a := CalculateMonthlySiteKpis(complaints, deliveries)
	b := CalculateMonthlySiteKpis([]domain.Complaint{complaints[2], complaints[0], complaints[1]}, deliveries)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("input order changed the output")
	}
}

func TestGlobalPPMIsNotMeanOfRatios(t *testing.T) {
	complaints := []domain.Complaint{
		complaint("1", domain.TypeQ1, "A", "2025-01-01", 1),
		complaint("2", domain.TypeQ1, "B", "2025-01-01", 99),
		complaint("3", domain.TypeQ2, "A", "2025-01-01", 5),
	}
	deliveries := []domain.Delivery{
		delivery("A", "2025-01", domain.DeliveryCustomer, 1_000),
		delivery("B", "2025-01", domain.DeliveryCustomer, 99_000),
	}
	g := CalculateGlobalPPM(complaints, deliveries)
	if g.CustomerPpm == nil || *g.CustomerPpm != 1000 {
		t.Fatalf("customer ppm = %v, want 1000", g.CustomerPpm)
	}
	if g.SupplierPpm != nil {
		t.Fatal("supplier ppm must be null without supplier deliveries")
	}

	fromKpis := GlobalPPMFromKpis(CalculateMonthlySiteKpis(complaints, deliveries))
	if !reflect.DeepEqual(g, fromKpis) {
		t.Fatalf("GlobalPPMFromKpis = %+v, want %+v", fromKpis, g)
	}
}

func TestFilter(t *testing.T) {
	kpis := []domain.MonthlySiteKpi{
		{Month: "2025-01", SiteCode: "145"},
		{Month: "2025-02", SiteCode: "235"},
		{Month: "2025-03", SiteCode: "145"},
	}
	tests := []struct {
		name   string
		filter domain.KpiFilter
		want   int
	}{
		{"all", domain.KpiFilter{}, 3},
		{"from", domain.KpiFilter{FromMonth: "2025-02"}, 2},
		{"to", domain.KpiFilter{ToMonth: "2025-02"}, 2},
		{"range and site", domain.KpiFilter{FromMonth: "2025-01", ToMonth: "2025-02", Sites: []string{"145"}}, 1},
		{"unknown site", domain.KpiFilter{Sites: []string{"999"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(kpis, tt.filter); len(got) != tt.want {
				t.Fatalf("got %d, want %d", len(got), tt.want)
			}
		})
	}
}
