package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/ingest"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/kpi"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/metrics"
)

// Orchestrator coordinates running the parsers over a batch of raw files.
type Orchestrator struct {
	cfg      Config
	parser   *ingest.Parser
	plants   []domain.Plant
	recorder RunRecorder
	log      zerolog.Logger
}

type OrchestratorOption func(*Orchestrator)

// WithRecorder persists run and file tracking.
func WithRecorder(r RunRecorder) OrchestratorOption {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithKnownPlants seeds the plant directory, e.g. with stored master data.
// Plant sheets in the batch take precedence.
func WithKnownPlants(plants []domain.Plant) OrchestratorOption {
	return func(o *Orchestrator) { o.plants = plants }
}

func WithLogger(l zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.log = l }
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg Config, parser *ingest.Parser, opts ...OrchestratorOption) *Orchestrator {
	if parser == nil {
		parser = ingest.NewParser()
	}
	o := &Orchestrator{
		cfg:      cfg,
		parser:   parser,
		recorder: nopRecorder{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run parses every input and aggregates the result.
//
// Files are decoded concurrently; plant master sheets are parsed first so the
// remaining sheets resolve plant names and site codes against them. The other
// sheets are then parsed concurrently and gathered in input order. A file that
// cannot be parsed is reported as failed and does not affect the others.
func (o *Orchestrator) Run(ctx context.Context, inputs []Input) (*Batch, error) {
	run := &Run{
		PipelineName: o.cfg.Name,
		Status:       StatusProcessing,
		TotalFiles:   len(inputs),
		StartedAt:    time.Now(),
	}
	if err := o.recorder.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create pipeline run: %w", err)
	}

	batch, err := o.process(ctx, inputs)
	if err != nil {
		o.finishRun(ctx, run, nil, err)
		return nil, err
	}
	batch.RunID = run.ID

	for _, f := range batch.Files {
		if err := o.recorder.RecordFile(ctx, run.ID, f); err != nil {
			o.log.Warn().Err(err).Str("file", f.Name).Msg("failed to record file job")
		}
	}
	o.finishRun(ctx, run, batch, nil)

	o.log.Info().
		Int64("run_id", run.ID).
		Int("files", len(inputs)).
		Int("failed", run.FailedFiles).
		Int("complaints", len(batch.Complaints)).
		Int("deliveries", len(batch.Deliveries)).
		Int("kpis", len(batch.Kpis)).
		Msg("pipeline run completed")

	return batch, nil
}

func (o *Orchestrator) process(ctx context.Context, inputs []Input) (*Batch, error) {
	decoded := make([]decodedFile, len(inputs))
	err := forEach(ctx, len(inputs), o.cfg.WorkerCount, func(_ context.Context, i int) {
		decoded[i] = decodeInput(inputs[i])
	})
	if err != nil {
		return nil, err
	}

	outputs := make([]fileOutput, len(inputs))
	onlyPlants := func(k Kind) bool { return k == KindPlants }
	var plants []domain.Plant
	for i, df := range decoded {
		outputs[i] = parseFile(o.parser, df, onlyPlants)
		plants = append(plants, outputs[i].plants...)
	}
	// batch plants first: the directory keeps the first entry per code
	parser := o.parser.With(ingest.WithPlants(ingest.NewPlantDirectory(append(plants, o.plants...))))

	rest := make([]fileOutput, len(inputs))
	notPlants := func(k Kind) bool { return k != KindPlants }
	err = forEach(ctx, len(inputs), o.cfg.WorkerCount, func(_ context.Context, i int) {
		rest[i] = parseFile(parser, decoded[i], notPlants)
	})
	if err != nil {
		return nil, err
	}

	batch := &Batch{Files: make([]FileReport, len(inputs))}
	var deliveries [][]domain.Delivery
	for i := range outputs {
		out := &outputs[i]
		out.merge(rest[i])
		out.finish(decoded[i])

		batch.Files[i] = out.report
		batch.Complaints = append(batch.Complaints, out.complaints...)
		batch.Deviations = append(batch.Deviations, out.deviations...)
		batch.PPAPs = append(batch.PPAPs, out.ppaps...)
		batch.Plants = append(batch.Plants, out.plants...)
		deliveries = append(deliveries, out.deliveries)

		metrics.FilesProcessed.WithLabelValues(fileKind(out.report), string(out.report.Status)).Inc()
		metrics.ParseDuration.WithLabelValues(fileKind(out.report)).Observe(out.report.Duration.Seconds())
		if out.report.Status == FileStatusFailed {
			o.log.Warn().Str("file", out.report.Name).Str("error", out.report.Error).Msg("file rejected")
		}
	}

	batch.Deliveries = ingest.MergeDeliveries(deliveries...)
	batch.Kpis = kpi.Calculate(kpi.Inputs{
		Complaints: batch.Complaints,
		Deliveries: batch.Deliveries,
		Deviations: batch.Deviations,
		PPAPs:      batch.PPAPs,
		Plants:     parser.Plants().Plants(),
	})
	batch.GlobalPpm = kpi.GlobalPPMFromKpis(batch.Kpis)
	return batch, nil
}

func (o *Orchestrator) finishRun(ctx context.Context, run *Run, batch *Batch, runErr error) {
	now := time.Now()
	run.CompletedAt = &now
	run.Status = StatusCompleted
	if runErr != nil {
		run.Status = StatusFailed
		run.ErrorMessage = runErr.Error()
	}
	if batch != nil {
		for _, f := range batch.Files {
			run.TotalRows += f.Rows()
			if f.Status == FileStatusFailed {
				run.FailedFiles++
				continue
			}
			run.ProcessedFiles++
		}
		if run.ProcessedFiles == 0 && run.TotalFiles > 0 {
			run.Status = StatusFailed
			run.ErrorMessage = "no file could be parsed"
		}
	}
	// the caller's context may already be cancelled
	if err := o.recorder.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		o.log.Warn().Err(err).Int64("run_id", run.ID).Msg("failed to update pipeline run")
	}
}
