package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestBuildDefaultsAndOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("INGEST_WORKERS", "3")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.example http://b.example")

	setDefaults()
	viper.AutomaticEnv()
	cfg := build()

	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != ":memory:" {
		t.Fatalf("database overrides not applied: %+v", cfg.Database)
	}
	if cfg.Ingest.WorkerCount != 3 || cfg.Ingest.DefaultDeliveryKind != "Customer" {
		t.Fatalf("unexpected ingest config %+v", cfg.Ingest)
	}
	if !cfg.Cache.Enabled || cfg.Cache.KpiTTLSeconds != 120 {
		t.Fatalf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Server.Port != "8080" || cfg.Server.AdminPort != "9090" {
		t.Fatalf("unexpected server ports %+v", cfg.Server)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("allowed origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Storage.Region != "us-east-1" || !cfg.Storage.UseSSL {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
}
