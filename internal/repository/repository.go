package repository

import (
	"context"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
)

// KpiRepository stores MonthlySiteKpi records keyed by (month, site code).
type KpiRepository interface {
	List(ctx context.Context, filter domain.KpiFilter) ([]domain.MonthlySiteKpi, error)
	Upsert(ctx context.Context, kpis []domain.MonthlySiteKpi) error
	ReplaceAll(ctx context.Context, kpis []domain.MonthlySiteKpi) error
}

// PlantRepository stores the plant master data.
type PlantRepository interface {
	ListPlants(ctx context.Context) ([]domain.Plant, error)
	UpsertPlants(ctx context.Context, plants []domain.Plant) error
}

// RunRepository tracks ingestion runs and their files.
type RunRepository interface {
	pipeline.RunRecorder
	GetRun(ctx context.Context, id int64) (*pipeline.Run, error)
	ListRuns(ctx context.Context, limit int) ([]pipeline.Run, error)
	FileReports(ctx context.Context, runID int64) ([]pipeline.FileReport, error)
}
