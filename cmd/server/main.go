package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/api"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/app"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/metrics"
	"github.com/andresuchdata/qms-dashboard/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, "upload", logger.Component("ingest"))
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	router := api.NewRouter(&api.Services{
		Kpis:           a.Service,
		Runs:           a.Runs,
		RunNotFound:    app.RunNotFound,
		MaxUploadBytes: cfg.Ingest.MaxUploadBytes,
	}, cfg.Server.AllowedOrigins, logger.Component("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	admin := newAdminServer(cfg.Server.AdminPort, a.DB)

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	go func() {
		logger.Log.Info().Str("port", cfg.Server.AdminPort).Msg("Starting admin server")
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error().Err(err).Msg("Admin server stopped")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := admin.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Admin server forced to shutdown")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
