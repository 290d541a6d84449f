package ingest

import (
	"testing"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

func TestPlantCode(t *testing.T) {
	dir := NewPlantDirectory([]domain.Plant{
		{Code: "235", Name: "Berlin"},
		{Code: "236", Name: "Berlin Süd"},
		{Code: "145", Name: "Győr"},
	})
	tests := []struct {
		name string
		cell sheet.Cell
		want string
		ok   bool
	}{
		{"number", sheet.Number(235), "235", true},
		{"fractional number", sheet.Number(235.5), "", false},
		{"dash label", sheet.String("235 - Berlin"), "235", true},
		{"leading zero", sheet.String("0145"), "145", true},
		{"plant prefix", sheet.String("Plant 145"), "145", true},
		{"werk nr", sheet.String("Werk Nr. 236"), "236", true},
		{"name", sheet.String("Berlin"), "235", true},
		{"longest name wins", sheet.String("Standort Berlin Sud"), "236", true},
		{"diacritics", sheet.String("GYOR"), "145", true},
		{"unknown", sheet.String("Paris"), "", false},
		{"empty", sheet.Empty(), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := dir.PlantCode(tt.cell)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("PlantCode = %q,%v, want %q,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPlantDirectorySiteCode(t *testing.T) {
	dir := NewPlantDirectory([]domain.Plant{{Code: "235", SiteCode: "200", Name: "Berlin"}})
	if dir.SiteCode("235") != "200" || dir.SiteCode("999") != "999" {
		t.Fatal("SiteCode must map known plants and pass through unknown ones")
	}
	var nilDir *PlantDirectory
	if nilDir.SiteCode("1") != "1" || nilDir.Len() != 0 {
		t.Fatal("nil directory must be usable")
	}
}

func TestParsePlants(t *testing.T) {
	s := sheet.FromStrings("Plants", [][]string{
		{"Plant", "Name", "Site", "City", "Country"},
		{"235", "Berlin", "200", "Berlin", "DE"},
		{"236", "Berlin Süd", "", "Berlin", "DE"},
		{"235", "Duplicate", "", "", ""},
		{"", "No code", "", "", ""},
		{"145", "Hamburg", "ham", "Hamburg", "DE"},
		{"146", "Hamburg Hafen", "0146 - Hafen", "Hamburg", "DE"},
		{"147", "Kiel", "Nord / Ost", "Kiel", "DE"},
	})
	res, err := NewParser().ParsePlants(s, "plants.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 5 || res.RowsSkipped != 2 {
		t.Fatalf("records=%+v skipped=%d", res.Records, res.RowsSkipped)
	}
	wantSites := []string{"200", "236", "HAM", "146", "147"}
	for i, want := range wantSites {
		if res.Records[i].SiteCode != want {
			t.Errorf("plant %s: site = %q, want %q", res.Records[i].Code, res.Records[i].SiteCode, want)
		}
	}

	var siteWarnings int
	for _, w := range res.Warnings {
		if w.Field == FieldSiteCode {
			siteWarnings++
			if w.Row != 8 {
				t.Errorf("site warning on row %d, want 8", w.Row)
			}
		}
	}
	if siteWarnings != 1 {
		t.Fatalf("site warnings = %d, want 1: %+v", siteWarnings, res.Warnings)
	}
}

func TestParseDeviationsAndPPAP(t *testing.T) {
	dev := sheet.FromStrings("D", [][]string{
		{"Notification", "Notification Type", "Plant", "Created On", "Status", "Description"},
		{"800001", "D2", "235", "2025-03-01", "OSNO", "Material deviation"},
		{"800002", "Q1", "235", "2025-03-01", "", ""},
		{"800003", "", "235", "2025-03-02", "", ""},
	})
	dres, err := NewParser().ParseDeviations(dev, "deviations.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(dres.Records) != 2 || dres.Records[0].NotificationType != domain.TypeD2 || dres.Records[1].NotificationType != domain.TypeD1 {
		t.Fatalf("unexpected deviations %+v", dres.Records)
	}
	if dres.RowsSkipped != 1 {
		t.Fatalf("wrong-family row must be skipped, got %d skipped", dres.RowsSkipped)
	}

	pp := sheet.FromStrings("P", [][]string{
		{"Notification", "Plant", "Created On", "Status", "Completed On", "Supplier"},
		{"900001", "235", "2025-03-01", "OSNO", "", "ACME"},
		{"900002", "235", "2025-03-05", "OSNO", "2025-03-20", "ACME"},
		{"900003", "235", "2025-03-05", "NOCO", "", ""},
	})
	pres, err := NewParser().ParsePPAP(pp, "ppap.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(pres.Records) != 3 {
		t.Fatalf("unexpected ppap %+v", pres.Records)
	}
	want := []domain.PPAPStatus{domain.PPAPInProgress, domain.PPAPCompleted, domain.PPAPCompleted}
	for i, r := range pres.Records {
		if r.Status != want[i] || r.NotificationType != domain.TypeP1 {
			t.Errorf("record %d = %+v", i, r)
		}
	}
	if len(pres.Warnings) != 1 {
		t.Fatalf("expected a single missing type column warning, got %+v", pres.Warnings)
	}
}
