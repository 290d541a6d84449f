package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/api/handlers"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/api/middleware"
)

type Services struct {
	Kpis           handlers.KpiService
	Runs           handlers.RunStore
	RunNotFound    func(error) bool
	MaxUploadBytes int64
}

func NewRouter(services *Services, allowedOrigins []string, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(log, "/health"))
	router.Use(middleware.Recovery(log))
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Kpis != nil {
			kpiHandler := handlers.NewKpiHandler(services.Kpis, services.MaxUploadBytes, log)
			apiGroup.POST("/uploads", kpiHandler.Upload)
			kpiGroup := apiGroup.Group("/kpis")
			{
				kpiGroup.GET("", kpiHandler.ListKpis)
				kpiGroup.PUT("", kpiHandler.SaveKpis)
				kpiGroup.GET("/global-ppm", kpiHandler.GetGlobalPPM)
				kpiGroup.POST("/recalculate", kpiHandler.Recalculate)
			}
		}

		if services.Runs != nil {
			runHandler := handlers.NewRunHandler(services.Runs, services.RunNotFound)
			runGroup := apiGroup.Group("/runs")
			{
				runGroup.GET("", runHandler.ListRuns)
				runGroup.GET("/:id", runHandler.GetRun)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
