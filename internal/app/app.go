// Package app wires configuration into the repositories, cache and service
// shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/ingest"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/service"
)

type App struct {
	DB      *sqlstore.DB
	Runs    *sqlstore.RunRepository
	Service *service.KpiService
}

// Parser builds the record parser from the ingest settings.
func Parser(cfg config.IngestConfig, log zerolog.Logger) (*ingest.Parser, error) {
	opts := []ingest.Option{ingest.WithLogger(log)}
	if cfg.DefaultDeliveryKind != "" {
		kind, ok := domain.ParseDeliveryKind(cfg.DefaultDeliveryKind)
		if !ok {
			return nil, fmt.Errorf("invalid default delivery kind %q", cfg.DefaultDeliveryKind)
		}
		opts = append(opts, ingest.WithDefaultDeliveryKind(kind))
	}
	return ingest.NewParser(opts...), nil
}

// PipelineConfig returns the orchestrator settings for a named entry point.
func PipelineConfig(name string, cfg config.IngestConfig) pipeline.Config {
	pc := pipeline.DefaultConfig(name)
	if cfg.WorkerCount > 0 {
		pc.WorkerCount = cfg.WorkerCount
	}
	return pc
}

// New opens the database, creates the schema and builds the KPI service.
func New(ctx context.Context, cfg *config.Config, name string, log zerolog.Logger) (*App, error) {
	parser, err := Parser(cfg.Ingest, log)
	if err != nil {
		return nil, err
	}

	db, err := sqlstore.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	kpiCache, err := cache.NewKpiCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("kpi cache unavailable, continuing without it")
		kpiCache = cache.NewNoopKpiCache()
	}

	runs := sqlstore.NewRunRepository(db)
	svc := service.NewKpiService(service.Deps{
		Kpis:     sqlstore.NewKpiRepository(db),
		Plants:   sqlstore.NewPlantRepository(db),
		Runs:     runs,
		Cache:    kpiCache,
		Parser:   parser,
		Pipeline: PipelineConfig(name, cfg.Ingest),
		Logger:   log,
	})

	return &App{DB: db, Runs: runs, Service: svc}, nil
}

// RunNotFound classifies the run store's missing-run error for the API.
func RunNotFound(err error) bool {
	return errors.Is(err, sqlstore.ErrRunNotFound)
}

func (a *App) Close() error {
	return a.DB.Close()
}
