package units

import (
	"strings"
	"testing"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
)

func TestConvertCatalog(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		unit       string
		desc       string
		wantStatus domain.ConversionStatus
		wantValue  float64
		wantFactor float64
	}{
		{"piece unit passes through", 7, "PC", "anything", domain.ConversionNotApplicable, 7, 0},
		{"empty unit is piece", 3, "", "", domain.ConversionNotApplicable, 3, 0},
		{"german piece unit", 3, "ST", "", domain.ConversionNotApplicable, 3, 0},
		{"bottle ML", 1200, "ML", "600 ML", domain.ConversionConverted, 2, 600},
		{"bottle ML glued", 1500, "ML", "CLEANER 500ML BOTTLE", domain.ConversionConverted, 3, 500},
		{"bottle ML decimal comma", 50, "ML", "Spray 12,5 ml", domain.ConversionConverted, 4, 12.5},
		{"bottle ML thousands", 2000, "ML", "Cleaner 1,000 ML", domain.ConversionConverted, 2, 1000},
		{"liters against ml bottle", 3, "L", "Oil 750 ML", domain.ConversionConverted, 4, 0.75},
		{"liters against canister", 20, "L", "Coolant canister 5 L", domain.ConversionConverted, 4, 5},
		{"length L<n>MM", 6, "M", "PROFILE L1500MM", domain.ConversionConverted, 4, 1.5},
		{"length L=<n>MM", 3, "M", "Tube D20 L=750MM", domain.ConversionConverted, 4, 0.75},
		{"length plain mm", 10, "M", "Seal 2500 MM", domain.ConversionConverted, 4, 2.5},
		{"length roll", 100, "M", "Tape roll 50 M", domain.ConversionConverted, 2, 50},
		{"roll length beside width", 100, "M", "Tape 50MM x 25M", domain.ConversionConverted, 4, 25},
		{"length skips cross section", 10, "M", "Gasket 30 x 2 MM 500 MM", domain.ConversionConverted, 20, 0.5},
		{"length after word ending in x", 10, "M", "Box 500MM", domain.ConversionConverted, 20, 0.5},
		{"length in mm unit", 3000, "MM", "Rod L1000MM", domain.ConversionConverted, 3, 1000},
		{"area W H", 4, "M2", "W1000MM H2000MM", domain.ConversionConverted, 2, 2},
		{"area superscript", 4, "m²", "Sheet W1000MM H2000MM", domain.ConversionConverted, 2, 2},
		{"area W L", 1, "QM", "Foil W500MM L1000MM", domain.ConversionConverted, 2, 0.5},
		{"area AxB", 3, "M2", "Panel 1000x500MM", domain.ConversionConverted, 6, 0.5},
		{"area AxB spaced", 3, "M2", "Panel 1000 x 500 mm", domain.ConversionConverted, 6, 0.5},
		{"fractional result", 1000, "ML", "600 ML", domain.ConversionNeedsAttention, 1.666667, 600},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Convert(tt.value, tt.unit, tt.desc)
			if got.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s (reason %q)", got.Status, tt.wantStatus, got.Reason)
			}
			if got.ConvertedValue == nil {
				t.Fatal("converted value is nil")
			}
			if *got.ConvertedValue != tt.wantValue {
				t.Errorf("converted = %v, want %v", *got.ConvertedValue, tt.wantValue)
			}
			if got.Factor != tt.wantFactor {
				t.Errorf("factor = %v, want %v", got.Factor, tt.wantFactor)
			}
			if got.OriginalValue != tt.value {
				t.Errorf("original value = %v, want %v", got.OriginalValue, tt.value)
			}
			wantConverted := tt.wantStatus != domain.ConversionNotApplicable
			if got.WasConverted != wantConverted {
				t.Errorf("wasConverted = %v, want %v", got.WasConverted, wantConverted)
			}
		})
	}
}

func TestConvertFailures(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		unit   string
		desc   string
		reason string
	}{
		{"no token", 1200, "ML", "Cleaning agent", "no volume token"},
		{"no description", 5, "M", "", "no material description"},
		{"zero size", 10, "ML", "0 ML", "no volume token"},
		{"unknown unit", 10, "KG", "Powder 25 KG", "unsupported unit"},
		{"area without two dims", 4, "M2", "W1000MM", "no area token"},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Convert(tt.value, tt.unit, tt.desc)
			if got.Status != domain.ConversionFailed {
				t.Fatalf("status = %s, want failed", got.Status)
			}
			if got.ConvertedValue != nil {
				t.Fatalf("converted value must be nil, got %v", *got.ConvertedValue)
			}
			if got.WasConverted {
				t.Fatal("wasConverted must be false")
			}
			if got.OriginalValue != tt.value {
				t.Fatalf("original value lost: %v", got.OriginalValue)
			}
			if !strings.Contains(got.Reason, tt.reason) {
				t.Fatalf("reason %q does not mention %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := map[string]string{
		" pcs. ": "PCS",
		"m²":     "M2",
		"Stück":  "STUECK",
		"":       "",
	}
	for in, want := range tests {
		if got := NormalizeUnit(in); got != want {
			t.Errorf("NormalizeUnit(%q) = %q, want %q", in, got, want)
		}
	}
	if !IsPiece("stk") || IsPiece("ML") {
		t.Fatal("IsPiece misclassifies units")
	}
	if DimensionOf("qm") != DimensionArea {
		t.Fatal("QM must be an area unit")
	}
}
