package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/ingest"
)

type memRecorder struct {
	mu    sync.Mutex
	runs  []Run
	files []FileReport
	fail  error
}

func (r *memRecorder) CreateRun(_ context.Context, run *Run) error {
	if r.fail != nil {
		return r.fail
	}
	run.ID = 42
	return nil
}

func (r *memRecorder) UpdateRun(_ context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return nil
}

func (r *memRecorder) RecordFile(_ context.Context, _ int64, report FileReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, report)
	return nil
}

func batchInputs() []Input {
	return []Input{
		{Name: "complaints.csv", Data: []byte("Notification;Notification Type;Plant;Created On;Defective Parts\n" +
			"100001;Q1;235;2025-03-04;5\n" +
			"100002;Q3;235;2025-03-05;10\n" +
			"100003;Q2;145;2025-03-06;2\n")},
		{Name: "Outbound 235.csv", Data: []byte("Delivery Date,Quantity\n2025-03-03,600\n2025-03-20,400\n")},
		{Name: "plants.csv", Data: []byte("Plant,Name,Site\n235,Berlin,BER\n145,Hamburg,HAM\n")},
		{Name: "notes.txt", Data: []byte("hello")},
	}
}

func TestOrchestratorRun(t *testing.T) {
	rec := &memRecorder{}
	o := NewOrchestrator(Config{Name: "test", WorkerCount: 2}, ingest.NewParser(), WithRecorder(rec))

	batch, err := o.Run(context.Background(), batchInputs())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if batch.RunID != 42 {
		t.Fatalf("run id = %d", batch.RunID)
	}
	if len(batch.Files) != 4 {
		t.Fatalf("got %d file reports", len(batch.Files))
	}
	for i, want := range []FileStatus{FileStatusCompleted, FileStatusCompleted, FileStatusCompleted, FileStatusFailed} {
		if batch.Files[i].Status != want {
			t.Fatalf("file %s status = %s (%s), want %s", batch.Files[i].Name, batch.Files[i].Status, batch.Files[i].Error, want)
		}
	}
	if len(batch.Complaints) != 3 || len(batch.Deliveries) != 1 || len(batch.Plants) != 2 {
		t.Fatalf("complaints=%d deliveries=%d plants=%d", len(batch.Complaints), len(batch.Deliveries), len(batch.Plants))
	}
	if d := batch.Deliveries[0]; d.SiteCode != "BER" || d.Quantity != 1000 || d.Kind != domain.DeliveryCustomer {
		t.Fatalf("unexpected delivery %+v", d)
	}

	if len(batch.Kpis) != 2 {
		t.Fatalf("got %d kpis: %+v", len(batch.Kpis), batch.Kpis)
	}
	ber := batch.Kpis[0]
	if ber.SiteCode != "BER" || ber.Month != "2025-03" || ber.SiteName != "Berlin" {
		t.Fatalf("unexpected first kpi %+v", ber)
	}
	if ber.CustomerComplaintsQ1 != 5 || ber.InternalComplaintsQ3 != 10 {
		t.Fatalf("complaint quantities %+v", ber)
	}
	if ber.CustomerPpm == nil || *ber.CustomerPpm != 5000 {
		t.Fatalf("customer ppm = %v", ber.CustomerPpm)
	}
	if ber.SupplierPpm != nil {
		t.Fatalf("supplier ppm should be nil without deliveries")
	}
	if ham := batch.Kpis[1]; ham.SiteCode != "HAM" || ham.SupplierComplaintsQ2 != 2 {
		t.Fatalf("unexpected second kpi %+v", ham)
	}
	if batch.GlobalPpm.CustomerPpm == nil || *batch.GlobalPpm.CustomerPpm != 5000 {
		t.Fatalf("global ppm %+v", batch.GlobalPpm)
	}

	if len(rec.files) != 4 || len(rec.runs) != 1 {
		t.Fatalf("recorded files=%d runs=%d", len(rec.files), len(rec.runs))
	}
	run := rec.runs[0]
	if run.Status != StatusCompleted || run.ProcessedFiles != 3 || run.FailedFiles != 1 || run.TotalRows != 7 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.CompletedAt == nil {
		t.Fatal("completed at not set")
	}
}

func TestOrchestratorMissingColumnsFailsOnlyThatFile(t *testing.T) {
	inputs := []Input{
		{Name: "complaints.csv", Data: []byte("Notification,Plant\n1,235\n")},
		{Name: "complaints_ok.csv", Data: []byte("Notification,Notification Type,Plant,Created On,Defective Parts\n2,Q3,235,2025-01-02,1\n")},
	}
	batch, err := NewOrchestrator(DefaultConfig("test"), nil).Run(context.Background(), inputs)
	if err != nil {
		t.Fatal(err)
	}
	bad := batch.Files[0]
	if bad.Status != FileStatusFailed || len(bad.Sheets) != 1 || len(bad.Sheets[0].MissingColumns) == 0 {
		t.Fatalf("expected column resolution failure, got %+v", bad)
	}
	if batch.Files[1].Status != FileStatusCompleted || len(batch.Complaints) != 1 {
		t.Fatalf("good file not processed: %+v", batch.Files[1])
	}
	if len(batch.Failed()) != 1 {
		t.Fatalf("failed = %d", len(batch.Failed()))
	}
}

func TestOrchestratorExplicitKind(t *testing.T) {
	inputs := []Input{{
		Name: "export.csv",
		Kind: KindDeliveries,
		Data: []byte("Plant,Date,Quantity,Kind\n235,2025-04-01,10,Supplier\n235,2025-04-02,5,Supplier\n"),
	}}
	batch, err := NewOrchestrator(DefaultConfig("test"), nil).Run(context.Background(), inputs)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Deliveries) != 1 || batch.Deliveries[0].Quantity != 15 || batch.Deliveries[0].Kind != domain.DeliverySupplier {
		t.Fatalf("unexpected deliveries %+v", batch.Deliveries)
	}
}

func TestOrchestratorCreateRunError(t *testing.T) {
	rec := &memRecorder{fail: errors.New("db down")}
	_, err := NewOrchestrator(DefaultConfig("test"), nil, WithRecorder(rec)).Run(context.Background(), batchInputs())
	if err == nil || !errors.Is(err, rec.fail) {
		t.Fatalf("err = %v", err)
	}
}

func TestOrchestratorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOrchestrator(DefaultConfig("test"), nil).Run(ctx, batchInputs())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		sheet   string
		headers []string
		want    Kind
	}{
		{"outbound file name", "Outbound 235.xlsx", "Sheet1", nil, KindDeliveries},
		{"ppap before notification", "PPAP notifications.xlsx", "Sheet1", nil, KindPPAP},
		{"deviation sheet", "export.xlsx", "Deviations", nil, KindDeviations},
		{"complaints header", "export.xlsx", "Sheet1", []string{"Notification", "Notification Type", "Plant", "Created On", "Defective Parts"}, KindComplaints},
		{"delivery header", "export.xlsx", "Sheet1", []string{"Plant", "Delivery Date", "Quantity"}, KindDeliveries},
		{"plant header", "export.xlsx", "Sheet1", []string{"Plant", "Name", "Country"}, KindPlants},
		{"nothing", "export.xlsx", "Sheet1", []string{"foo", "bar"}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectKind(tt.file, tt.sheet, tt.headers); got != tt.want {
				t.Fatalf("DetectKind = %q, want %q", got, tt.want)
			}
		})
	}
}
