package ingest

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

func TestParseDeliveriesOutboundFileName(t *testing.T) {
	s := sheet.FromStrings("Sheet1", [][]string{
		{"Plant", "Delivery Date", "Quantity", "Kind"},
		{"", "2025-03-03", "100", ""},
		{"", "2025-03-15", "50", ""},
		{"", "2025-03-31", "25", ""},
	})

	res, err := NewParser().ParseDeliveries(s, "Outbound 235_PS4.xlsx")
	if err != nil {
		t.Fatalf("ParseDeliveries: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1: %+v", len(res.Records), res.Records)
	}
	got := res.Records[0]
	if got.PlantCode != "235" || got.Month != "2025-03" || got.Kind != domain.DeliveryCustomer || got.Quantity != 175 {
		t.Fatalf("unexpected delivery %+v", got)
	}
	if got.ID != DeliveryID("235", "2025-03", "Customer") {
		t.Fatalf("id %q is not the deterministic delivery id", got.ID)
	}
	if res.RowsRead != 3 || res.RowsSkipped != 0 {
		t.Fatalf("rows read/skipped = %d/%d", res.RowsRead, res.RowsSkipped)
	}
}

func TestParseDeliveriesFileNamePlantWinsForRoles(t *testing.T) {
	s := sheet.FromStrings("Sheet1", [][]string{
		{"Plant", "Date", "Qty"},
		{"145", "2025-01-10", "10"},
	})
	res, err := NewParser().ParseDeliveries(s, "Inbound 235.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].PlantCode != "235" || res.Records[0].Kind != domain.DeliverySupplier {
		t.Fatalf("unexpected records %+v", res.Records)
	}
}

func TestParseDeliveriesDatedFileNameKeepsColumnPlant(t *testing.T) {
	s := sheet.FromStrings("Sheet1", [][]string{
		{"Plant", "Date", "Qty"},
		{"145", "2025-03-10", "10"},
	})
	for _, name := range []string{"Outbound 2025-03.xlsx", "Outbound_20250301.xlsx"} {
		t.Run(name, func(t *testing.T) {
			res, err := NewParser().ParseDeliveries(s, name)
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Records) != 1 {
				t.Fatalf("got %d records, want 1", len(res.Records))
			}
			got := res.Records[0]
			if got.PlantCode != "145" || got.SiteCode != "145" || got.Kind != domain.DeliveryCustomer {
				t.Fatalf("unexpected delivery %+v", got)
			}
		})
	}
}

func TestParseDeliveriesGoodsIssueRule(t *testing.T) {
	s := sheet.FromStrings("Sheet1", [][]string{
		{"Plant", "Delivery Date", "Actual Goods Issue Date", "Quantity"},
		{"235", "2025-02-27", "2025-03-02", "10"},
		{"235", "2025-03-10", "", "99"},
		{"235", "2025-03-11", "2025-03-12", "5"},
	})
	res, err := NewParser().ParseDeliveries(s, "Outbound 235.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.Delivery{{
		ID: DeliveryID("235", "2025-03", "Customer"), PlantCode: "235", SiteCode: "235",
		Month: "2025-03", Quantity: 15, Kind: domain.DeliveryCustomer,
	}}
	if !reflect.DeepEqual(res.Records, want) {
		t.Fatalf("records = %+v, want %+v", res.Records, want)
	}
	if res.RowsSkipped != 1 || len(res.Warnings) != 1 || res.Warnings[0].Field != FieldGoodsIssueDate {
		t.Fatalf("expected one goods issue warning, got %+v", res.Warnings)
	}
}

func TestParseDeliveriesGoodsReceiptRule(t *testing.T) {
	s := sheet.FromStrings("Sheet1", [][]string{
		{"Werk", "Buchungsdatum", "Actual Goods Receipt Date", "Menge"},
		{"145", "2025-01-30", "2025-02-01", "1.000,00"},
		{"145", "2025-01-31", "", "7"},
	})
	res, err := NewParser().ParseDeliveries(s, "Inbound_145.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].Month != "2025-02" || res.Records[0].Quantity != 1000 {
		t.Fatalf("unexpected records %+v", res.Records)
	}
}

func TestParseDeliveriesKindColumnAndDefault(t *testing.T) {
	s := sheet.FromStrings("Sheet1", [][]string{
		{"Plant", "Date", "Quantity", "Delivery Type"},
		{"235", "2025-01-05", "10", "Supplier"},
		{"235", "2025-01-06", "20", "customer"},
		{"235", "2025-01-07", "30", ""},
	})
	res, err := NewParser(WithDefaultDeliveryKind(domain.DeliverySupplier)).ParseDeliveries(s, "deliveries.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records: %+v", len(res.Records), res.Records)
	}
	byKind := map[domain.DeliveryKind]float64{}
	for _, d := range res.Records {
		byKind[d.Kind] = d.Quantity
	}
	if byKind[domain.DeliverySupplier] != 40 || byKind[domain.DeliveryCustomer] != 20 {
		t.Fatalf("unexpected quantities %v", byKind)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Field != FieldKind {
		t.Fatalf("expected one default kind warning, got %+v", res.Warnings)
	}
}

func TestParseDeliveriesAtMostOnePerKey(t *testing.T) {
	rows := [][]string{{"Plant", "Date", "Quantity", "Kind"}}
	for i := 0; i < 50; i++ {
		kind := "Customer"
		if i%2 == 0 {
			kind = "Supplier"
		}
		plant := "145"
		if i%3 == 0 {
			plant = "235"
		}
		rows = append(rows, []string{plant, "2025-0" + string(rune('1'+i%4)) + "-15", "1", kind})
	}
	res, err := NewParser().ParseDeliveries(sheet.FromStrings("s", rows), "d.csv")
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	var total float64
	for _, d := range res.Records {
		key := d.PlantCode + "|" + d.Month + "|" + string(d.Kind)
		if seen[key] {
			t.Fatalf("duplicate record for %s", key)
		}
		seen[key] = true
		total += d.Quantity
	}
	if total != 50 {
		t.Fatalf("total quantity = %v, want 50", total)
	}
}

func TestParseDeliveriesFileFatal(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		file    string
		missing string
	}{
		{"no quantity", [][]string{{"Plant", "Date"}, {"235", "2025-01-01"}}, "d.xlsx", FieldQuantity},
		{"no plant anywhere", [][]string{{"Date", "Quantity"}, {"2025-01-01", "4"}}, "deliveries.xlsx", FieldPlant},
		{"no date", [][]string{{"Plant", "Quantity"}, {"235", "4"}}, "d.xlsx", FieldDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewParser().ParseDeliveries(sheet.FromStrings("s", tt.rows), tt.file)
			var colErr *ColumnResolutionError
			if !errors.As(err, &colErr) {
				t.Fatalf("expected ColumnResolutionError, got %v", err)
			}
			if !IsFileFatal(err) {
				t.Fatal("error must be file fatal")
			}
			if len(colErr.Missing) != 1 || colErr.Missing[0] != tt.missing {
				t.Fatalf("missing = %v, want %s", colErr.Missing, tt.missing)
			}
			if len(res.Records) != 0 {
				t.Fatal("fatal result must be empty")
			}
		})
	}
}

func TestParseDeliveriesEmptySheet(t *testing.T) {
	_, err := NewParser().ParseDeliveries(sheet.Sheet{Name: "empty"}, "x.xlsx")
	if !errors.Is(err, ErrEmptySheet) {
		t.Fatalf("expected ErrEmptySheet, got %v", err)
	}
}

func TestSelectDeliveryDate(t *testing.T) {
	d := func(s string) *time.Time {
		v, _ := time.Parse("2006-01-02", s)
		return &v
	}
	tests := []struct {
		name    string
		row     DeliveryRow
		want    string
		wantErr error
	}{
		{"outbound uses goods issue", DeliveryRow{Role: RoleOutbound, HasGoodsIssueColumn: true, GoodsIssueDate: d("2025-04-01"), Date: d("2025-03-30")}, "2025-04-01", nil},
		{"outbound empty goods issue", DeliveryRow{Role: RoleOutbound, HasGoodsIssueColumn: true, Date: d("2025-03-30")}, "", ErrNoGoodsIssueDate},
		{"outbound without column", DeliveryRow{Role: RoleOutbound, Date: d("2025-03-30")}, "2025-03-30", nil},
		{"inbound uses goods receipt", DeliveryRow{Role: RoleInbound, HasGoodsReceiptColumn: true, GoodsReceiptDate: d("2025-05-02"), Date: d("2025-04-29")}, "2025-05-02", nil},
		{"inbound empty goods receipt", DeliveryRow{Role: RoleInbound, HasGoodsReceiptColumn: true, Date: d("2025-04-29")}, "", ErrNoGoodsReceiptDate},
		{"no role generic date", DeliveryRow{HasGoodsIssueColumn: true, GoodsIssueDate: d("2025-01-02"), Date: d("2025-01-01")}, "2025-01-01", nil},
		{"no role customer movement", DeliveryRow{Kind: domain.DeliveryCustomer, GoodsIssueDate: d("2025-01-02")}, "2025-01-02", nil},
		{"nothing", DeliveryRow{}, "", ErrNoDeliveryDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectDeliveryDate(tt.row)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Format("2006-01-02") != tt.want {
				t.Fatalf("date = %s, want %s", got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestMergeDeliveries(t *testing.T) {
	a := []domain.Delivery{
		{PlantCode: "235", SiteCode: "235", Month: "2025-03", Kind: domain.DeliveryCustomer, Quantity: 100},
		{PlantCode: "145", SiteCode: "145", Month: "2025-03", Kind: domain.DeliverySupplier, Quantity: 1},
	}
	b := []domain.Delivery{
		{PlantCode: "235", SiteCode: "235", Month: "2025-03", Kind: domain.DeliveryCustomer, Quantity: 75},
	}
	got := MergeDeliveries(a, b)
	if len(got) != 2 {
		t.Fatalf("got %d records", len(got))
	}
	if got[0].PlantCode != "145" || got[1].Quantity != 175 {
		t.Fatalf("unexpected merge %+v", got)
	}
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name  string
		role  FileRole
		plant string
	}{
		{"Outbound 235_PS4.xlsx", RoleOutbound, "235"},
		{"inbound-145.csv", RoleInbound, "145"},
		{"Delivery_Outbound_0235.xlsx", RoleOutbound, "235"},
		{"INBOUND.xlsx", RoleInbound, ""},
		{"Deliveries 145 2025.xlsx", RoleUnknown, "145"},
		{"deliveries_2025-03.xlsx", RoleUnknown, ""},
		{"Outbound 2025-03.xlsx", RoleOutbound, ""},
		{"Inbound_2025_03_235.xlsx", RoleInbound, "235"},
		{"Outbound 20250301.csv", RoleOutbound, ""},
		{"Outbound 235 2025-03.xlsx", RoleOutbound, "235"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFileName(tt.name)
			if got.Role != tt.role || got.PlantCode != tt.plant {
				t.Fatalf("ParseFileName(%q) = %+v, want role %s plant %q", tt.name, got, tt.role, tt.plant)
			}
		})
	}
}
