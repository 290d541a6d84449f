package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/ingest"
)

// Kind is the type of export a sheet holds.
type Kind string

const (
	KindUnknown    Kind = ""
	KindComplaints Kind = "complaints"
	KindDeliveries Kind = "deliveries"
	KindDeviations Kind = "deviations"
	KindPPAP       Kind = "ppap"
	KindPlants     Kind = "plants"
)

// ParseKind accepts the kind names used on the API and CLI.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindComplaints, KindDeliveries, KindDeviations, KindPPAP, KindPlants:
		return k, true
	}
	return KindUnknown, false
}

// Input is one raw file handed to the pipeline. Kind is optional; when empty it
// is detected per sheet from the names and the header row.
type Input struct {
	Name string
	Data []byte
	Kind Kind
}

// Config holds configuration for a pipeline instance
type Config struct {
	Name        string
	WorkerCount int // Number of files parsed concurrently
}

// DefaultConfig returns sensible defaults
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		WorkerCount: runtime.NumCPU(),
	}
}

// RunStatus represents the current state of a pipeline run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// FileStatus represents the outcome of a single file
type FileStatus string

const (
	FileStatusCompleted FileStatus = "completed"
	FileStatusFailed    FileStatus = "failed"
)

// Run tracks a single execution of the pipeline over a batch of files
type Run struct {
	ID             int64      `json:"id" db:"id"`
	PipelineName   string     `json:"pipelineName" db:"pipeline_name"`
	Status         RunStatus  `json:"status" db:"status"`
	TotalFiles     int        `json:"totalFiles" db:"total_files"`
	ProcessedFiles int        `json:"processedFiles" db:"processed_files"`
	FailedFiles    int        `json:"failedFiles" db:"failed_files"`
	TotalRows      int        `json:"totalRows" db:"total_rows"`
	StartedAt      time.Time  `json:"startedAt" db:"started_at"`
	CompletedAt    *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	ErrorMessage   string     `json:"errorMessage,omitempty" db:"error_message"`
}

// SheetReport is the parse outcome of one worksheet.
type SheetReport struct {
	Sheet          string           `json:"sheet"`
	Kind           Kind             `json:"kind"`
	Records        int              `json:"records"`
	RowsRead       int              `json:"rowsRead"`
	RowsSkipped    int              `json:"rowsSkipped"`
	Warnings       []ingest.Warning `json:"warnings,omitempty"`
	Error          string           `json:"error,omitempty"`
	MissingColumns []string         `json:"missingColumns,omitempty"`
}

// FileReport is the outcome of one input file. A file fails when none of its
// sheets could be parsed; row warnings never fail a file.
type FileReport struct {
	Name     string        `json:"name"`
	Status   FileStatus    `json:"status"`
	Sheets   []SheetReport `json:"sheets,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"durationNs"`
}

// Rows returns the number of data rows read over all sheets.
func (r FileReport) Rows() int {
	n := 0
	for _, s := range r.Sheets {
		n += s.RowsRead
	}
	return n
}

// Batch is everything one pipeline run produced.
type Batch struct {
	RunID      int64                     `json:"runId,omitempty"`
	Files      []FileReport              `json:"files"`
	Complaints []domain.Complaint        `json:"complaints"`
	Deliveries []domain.Delivery         `json:"deliveries"`
	Deviations []domain.Deviation        `json:"deviations"`
	PPAPs      []domain.PPAPNotification `json:"ppaps"`
	Plants     []domain.Plant            `json:"plants"`
	Kpis       []domain.MonthlySiteKpi   `json:"kpis"`
	GlobalPpm  domain.GlobalPpm          `json:"globalPpm"`
}

// Failed returns the reports of files that produced nothing.
func (b *Batch) Failed() []FileReport {
	var out []FileReport
	for _, f := range b.Files {
		if f.Status == FileStatusFailed {
			out = append(out, f)
		}
	}
	return out
}

// RunRecorder persists run and file tracking.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
	RecordFile(ctx context.Context, runID int64, report FileReport) error
}

type nopRecorder struct{}

func (nopRecorder) CreateRun(context.Context, *Run) error { return nil }
func (nopRecorder) UpdateRun(context.Context, *Run) error { return nil }
func (nopRecorder) RecordFile(context.Context, int64, FileReport) error { return nil }
