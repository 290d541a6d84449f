// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Ingest   IngestConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	AdminPort      string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// DatabaseConfig selects one of the registered sql drivers: "postgres" (lib/pq),
// "pgx" (pgx stdlib) or "sqlite" (modernc, Path is the database file).
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	KpiTTLSeconds int
}

type IngestConfig struct {
	WorkerCount         int
	DefaultDeliveryKind string
	MaxUploadBytes      int64
	DataDir             string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

type LogConfig struct {
	Level string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("INGEST_DATA_DIR"))

		instance = build()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ADMIN_PORT", "9090")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "qms")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_PATH", "./data/qms.db")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_KEY_PREFIX", "qms")
	viper.SetDefault("CACHE_KPI_TTL_SECONDS", 120)
	viper.SetDefault("INGEST_WORKERS", runtime.NumCPU())
	viper.SetDefault("INGEST_DEFAULT_DELIVERY_KIND", "Customer")
	viper.SetDefault("INGEST_MAX_UPLOAD_BYTES", 50<<20)
	viper.SetDefault("INGEST_DATA_DIR", "./data")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("LOG_LEVEL", "info")
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			AdminPort:      viper.GetString("SERVER_ADMIN_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			Path:     viper.GetString("DB_PATH"),
		},
		Cache: CacheConfig{
			Enabled:       viper.GetBool("CACHE_ENABLED"),
			RedisURL:      viper.GetString("REDIS_URL"),
			RedisHost:     viper.GetString("REDIS_HOST"),
			RedisPort:     viper.GetString("REDIS_PORT"),
			RedisPassword: viper.GetString("REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("REDIS_DB"),
			KeyPrefix:     viper.GetString("CACHE_KEY_PREFIX"),
			KpiTTLSeconds: viper.GetInt("CACHE_KPI_TTL_SECONDS"),
		},
		Ingest: IngestConfig{
			WorkerCount:         viper.GetInt("INGEST_WORKERS"),
			DefaultDeliveryKind: viper.GetString("INGEST_DEFAULT_DELIVERY_KIND"),
			MaxUploadBytes:      viper.GetInt64("INGEST_MAX_UPLOAD_BYTES"),
			DataDir:             viper.GetString("INGEST_DATA_DIR"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			Prefix:    viper.GetString("STORAGE_PREFIX"),
		},
		Drive: DriveConfig{
			CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
