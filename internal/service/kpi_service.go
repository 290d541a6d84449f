package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/ingest"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/kpi"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/repository"
)

// ErrInvalidInput marks request data the service refuses to store.
var ErrInvalidInput = errors.New("invalid input")

type Deps struct {
	Kpis     repository.KpiRepository
	Plants   repository.PlantRepository // optional
	Runs     pipeline.RunRecorder       // optional
	Cache    cache.KpiCache             // optional
	Parser   *ingest.Parser
	Pipeline pipeline.Config
	Logger   zerolog.Logger
}

type KpiService struct {
	kpis     repository.KpiRepository
	plants   repository.PlantRepository
	runs     pipeline.RunRecorder
	cache    cache.KpiCache
	parser   *ingest.Parser
	pipeline pipeline.Config
	log      zerolog.Logger
}

func NewKpiService(d Deps) *KpiService {
	s := &KpiService{
		kpis:     d.Kpis,
		plants:   d.Plants,
		runs:     d.Runs,
		cache:    d.Cache,
		parser:   d.Parser,
		pipeline: d.Pipeline,
		log:      d.Logger,
	}
	if s.cache == nil {
		s.cache = cache.NewNoopKpiCache()
	}
	if s.parser == nil {
		s.parser = ingest.NewParser(ingest.WithLogger(d.Logger))
	}
	if s.pipeline.Name == "" {
		s.pipeline = pipeline.DefaultConfig("upload")
	}
	return s
}

// RecordCounts is the number of records each parser produced.
type RecordCounts struct {
	Complaints int `json:"complaints"`
	Deliveries int `json:"deliveries"`
	Deviations int `json:"deviations"`
	PPAPs      int `json:"ppaps"`
	Plants     int `json:"plants"`
}

// IngestReport is the outcome of one upload.
type IngestReport struct {
	RunID       int64                   `json:"runId,omitempty"`
	Files       []pipeline.FileReport   `json:"files"`
	Records     RecordCounts            `json:"records"`
	Kpis        []domain.MonthlySiteKpi `json:"kpis"`
	GlobalPpm   domain.GlobalPpm        `json:"globalPpm"`
	NeedsReview []domain.Complaint      `json:"needsReview,omitempty"`
}

// Ingest parses the files, stores the resulting KPIs (replacing stored records
// with the same month and site) and any plant master data, and drops cached
// queries. Files that fail are reported, not returned as an error.
func (s *KpiService) Ingest(ctx context.Context, inputs []pipeline.Input) (*IngestReport, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no files", ErrInvalidInput)
	}

	known, err := s.knownPlants(ctx)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.OrchestratorOption{
		pipeline.WithKnownPlants(known),
		pipeline.WithLogger(s.log),
	}
	if s.runs != nil {
		opts = append(opts, pipeline.WithRecorder(s.runs))
	}
	batch, err := pipeline.NewOrchestrator(s.pipeline, s.parser, opts...).Run(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to run ingestion: %w", err)
	}

	if s.plants != nil && len(batch.Plants) > 0 {
		if err := s.plants.UpsertPlants(ctx, batch.Plants); err != nil {
			return nil, fmt.Errorf("failed to save plants: %w", err)
		}
	}
	if err := s.kpis.Upsert(ctx, batch.Kpis); err != nil {
		return nil, fmt.Errorf("failed to save kpis: %w", err)
	}
	s.invalidate(ctx)

	report := &IngestReport{
		RunID:     batch.RunID,
		Files:     batch.Files,
		Kpis:      batch.Kpis,
		GlobalPpm: batch.GlobalPpm,
		Records: RecordCounts{
			Complaints: len(batch.Complaints),
			Deliveries: len(batch.Deliveries),
			Deviations: len(batch.Deviations),
			PPAPs:      len(batch.PPAPs),
			Plants:     len(batch.Plants),
		},
	}
	for _, c := range batch.Complaints {
		if c.NeedsReview() {
			report.NeedsReview = append(report.NeedsReview, c)
		}
	}
	return report, nil
}

// List returns the stored KPIs matching filter and their global PPM.
func (s *KpiService) List(ctx context.Context, filter domain.KpiFilter) (*cache.KpiView, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	if view, ok, err := s.cache.Get(ctx, filter); err != nil {
		s.log.Warn().Err(err).Msg("kpi cache read failed")
	} else if ok {
		return view, nil
	}

	kpis, err := s.kpis.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	view := &cache.KpiView{Kpis: kpis, GlobalPpm: kpi.GlobalPPMFromKpis(kpis)}

	if err := s.cache.Set(ctx, filter, view); err != nil {
		s.log.Warn().Err(err).Msg("kpi cache write failed")
	}
	return view, nil
}

// GlobalPPM is the PPM over all stored KPIs matching filter, from summed
// defects and deliveries.
func (s *KpiService) GlobalPPM(ctx context.Context, filter domain.KpiFilter) (domain.GlobalPpm, error) {
	view, err := s.List(ctx, filter)
	if err != nil {
		return domain.GlobalPpm{}, err
	}
	return view.GlobalPpm, nil
}

// SaveManual merges manually entered KPIs over the stored ones; an entry
// replaces the stored record with the same month and site. PPM values are
// derived from the submitted defects and deliveries.
func (s *KpiService) SaveManual(ctx context.Context, entries []domain.MonthlySiteKpi) ([]domain.MonthlySiteKpi, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no kpi entries", ErrInvalidInput)
	}
	incoming := make([]domain.MonthlySiteKpi, len(entries))
	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		e.SiteCode = strings.TrimSpace(e.SiteCode)
		incoming[i] = kpi.WithPPM(e)
	}

	existing, err := s.kpis.List(ctx, domain.KpiFilter{})
	if err != nil {
		return nil, err
	}
	merged := kpi.Merge(existing, incoming)
	if err := s.kpis.ReplaceAll(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to save kpis: %w", err)
	}
	s.invalidate(ctx)

	s.log.Info().Int("entries", len(incoming)).Int("stored", len(merged)).Msg("manual kpis saved")
	return merged, nil
}

// RecalculateRequest carries already parsed records, e.g. after a reviewer
// corrected complaint types or quantities.
type RecalculateRequest struct {
	Complaints  []domain.Complaint        `json:"complaints"`
	Corrections []domain.Complaint        `json:"corrections"`
	Deliveries  []domain.Delivery         `json:"deliveries"`
	Deviations  []domain.Deviation        `json:"deviations"`
	PPAPs       []domain.PPAPNotification `json:"ppaps"`
	Persist     bool                      `json:"persist"`
}

type RecalculateResult struct {
	Kpis      []domain.MonthlySiteKpi `json:"kpis"`
	GlobalPpm domain.GlobalPpm        `json:"globalPpm"`
	Rejected  []domain.Complaint      `json:"rejected,omitempty"`
}

// Recalculate applies the corrections and aggregates the records again. With
// Persist the result is stored like an upload.
func (s *KpiService) Recalculate(ctx context.Context, req RecalculateRequest) (*RecalculateResult, error) {
	complaints, rejected := kpi.ApplyCorrections(req.Complaints, req.Corrections)

	plants, err := s.knownPlants(ctx)
	if err != nil {
		return nil, err
	}
	kpis := kpi.Calculate(kpi.Inputs{
		Complaints: complaints,
		Deliveries: req.Deliveries,
		Deviations: req.Deviations,
		PPAPs:      req.PPAPs,
		Plants:     plants,
	})

	if req.Persist {
		if err := s.kpis.Upsert(ctx, kpis); err != nil {
			return nil, fmt.Errorf("failed to save kpis: %w", err)
		}
		s.invalidate(ctx)
	}

	if len(rejected) > 0 {
		s.log.Warn().Int("rejected", len(rejected)).Msg("corrections rejected")
	}
	return &RecalculateResult{
		Kpis:      kpis,
		GlobalPpm: kpi.CalculateGlobalPPM(complaints, req.Deliveries),
		Rejected:  rejected,
	}, nil
}

func (s *KpiService) knownPlants(ctx context.Context) ([]domain.Plant, error) {
	if s.plants == nil {
		return nil, nil
	}
	plants, err := s.plants.ListPlants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plants: %w", err)
	}
	return plants, nil
}

func (s *KpiService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("kpi cache invalidation failed")
	}
}

func validateFilter(f domain.KpiFilter) error {
	for _, m := range []string{f.FromMonth, f.ToMonth} {
		if m != "" && !validMonth(m) {
			return fmt.Errorf("%w: month %q is not YYYY-MM", ErrInvalidInput, m)
		}
	}
	if f.FromMonth != "" && f.ToMonth != "" && f.FromMonth > f.ToMonth {
		return fmt.Errorf("%w: from month %s is after to month %s", ErrInvalidInput, f.FromMonth, f.ToMonth)
	}
	return nil
}

func validateEntry(k domain.MonthlySiteKpi) error {
	if !validMonth(k.Month) {
		return fmt.Errorf("%w: month %q is not YYYY-MM", ErrInvalidInput, k.Month)
	}
	if strings.TrimSpace(k.SiteCode) == "" {
		return fmt.Errorf("%w: site code is required for %s", ErrInvalidInput, k.Month)
	}
	if k.CustomerDeliveries < 0 || k.SupplierDeliveries < 0 {
		return fmt.Errorf("%w: negative deliveries for %s/%s", ErrInvalidInput, k.Month, k.SiteCode)
	}
	return nil
}

func validMonth(m string) bool {
	_, err := time.Parse("2006-01", m)
	return err == nil && len(m) == 7
}
