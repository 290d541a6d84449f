package columns

import (
	"reflect"
	"testing"
)

func complaintLikeSchema() Schema {
	return Schema{
		Name: "test",
		Fields: []Field{
			{
				Name:     "notificationNumber",
				Exact:    []string{"Notification", "Notification Number", "Meldung"},
				Contains: []string{"notification no", "notification number"},
				Exclude:  []string{"type", "art"},
				Fallback: ContainsAny("notification", "meldung"),
				Required: true,
			},
			{
				Name:     "notificationType",
				Exact:    []string{"Notification Type", "Meldungsart"},
				Contains: []string{"notification type", "type"},
				Required: true,
			},
			{
				Name:     "plant",
				Exact:    []string{"Plant", "Werk"},
				Contains: []string{"plant"},
				Required: true,
			},
			{
				Name:     "unit",
				Exact:    []string{"UoM"},
				Contains: []string{"unit of measure"},
			},
		},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Notification   Number ", "notification number"},
		{"Max._Daily_Sales", "max daily sales"},
		{"Menge Fehlerhaft (Ä)", "menge fehlerhaft (a)"},
		{"Straße", "strasse"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveExcludesFalsePositives(t *testing.T) {
	headers := []string{"Notification Type", "Plant", "Notification Nr."}
	m := Resolve(headers, complaintLikeSchema())

	if got := m.Col("notificationNumber"); got != 2 {
		t.Fatalf("notificationNumber resolved to %d, want 2", got)
	}
	if got := m.Col("notificationType"); got != 0 {
		t.Fatalf("notificationType resolved to %d, want 0", got)
	}
	if len(m.Missing()) != 0 {
		t.Fatalf("unexpected missing fields %v", m.Missing())
	}
}

func TestResolveExactBeatsSubstring(t *testing.T) {
	headers := []string{"Plant Name", "plant"}
	m := Resolve(headers, complaintLikeSchema())
	if got := m.Col("plant"); got != 1 {
		t.Fatalf("plant resolved to %d, want exact match at 1", got)
	}
}

func TestResolveExactPriorityOrder(t *testing.T) {
	headers := []string{"Meldung", "Notification Number"}
	m := Resolve(headers, complaintLikeSchema())
	if got := m.Col("notificationNumber"); got != 1 {
		t.Fatalf("notificationNumber resolved to %d, want 1 (earlier candidate)", got)
	}
}

func TestResolveUnresolved(t *testing.T) {
	m := Resolve([]string{"Foo", "Bar"}, complaintLikeSchema())
	want := []string{"notificationNumber", "notificationType", "plant"}
	if got := m.Missing(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing() = %v, want %v", got, want)
	}
	if m.Has("unit") {
		t.Fatal("optional field must stay unresolved")
	}
	if _, ok := m.Index("plant"); ok {
		t.Fatal("plant must be unresolved")
	}
}

func TestResolveCaseAndWhitespace(t *testing.T) {
	m := Resolve([]string{" NOTIFICATION  TYPE", "werk", "uom"}, complaintLikeSchema())
	if m.Col("notificationType") != 0 || m.Col("plant") != 1 || m.Col("unit") != 2 {
		t.Fatalf("unexpected mapping %v", m.Resolved())
	}
	if m.Header("plant") != "werk" {
		t.Fatalf("Header(plant) = %q", m.Header("plant"))
	}
}

func TestScore(t *testing.T) {
	s := complaintLikeSchema()
	if got := Score([]string{"Notification", "Notification Type", "Plant"}, s); got != 1 {
		t.Errorf("full score = %v", got)
	}
	if got := Score([]string{"Plant"}, s); got <= 0 || got >= 1 {
		t.Errorf("partial score = %v", got)
	}
	if got := Score(nil, s); got != 0 {
		t.Errorf("empty score = %v", got)
	}
}
