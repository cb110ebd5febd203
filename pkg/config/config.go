package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (generation run log)
	Database DatabaseConfig

	// Redis (optional API response cache)
	Redis RedisConfig

	// Blob storage
	Storage StorageConfig

	// RRG batch generation
	Generation GenerationConfig

	// Out-of-band IDX data refresh
	IDX IDXConfig

	// Scheduler
	SchedulerEnabled bool
	GenerationCron   string
	RefreshCron      string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL     string
	Enabled bool

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// StorageConfig holds blob storage configuration.
// Backend is "supabase" (default) or "fs" for a local directory tree.
type StorageConfig struct {
	Backend string
	BaseURL string
	Bucket  string
	APIKey  string
	FSRoot  string
}

// GenerationConfig holds the batch generation knobs.
type GenerationConfig struct {
	WaveSize            int     // subjects per wave
	Concurrency         int     // in-flight tasks per sub-batch
	PrecheckConcurrency int     // in-flight existence checks during skip precheck
	Lookback            int     // RRG trajectory length
	HeapReclaimMB       int     // reclaim memory between waves above this heap size
	Benchmark           string  // benchmark ticker, e.g. COMPOSITE
	DatasetPrefix       string  // raw price CSVs
	OutputPrefix        string  // per-subject RRG CSVs
	MappingPath         string  // sector mapping YAML
	RunOnStartup        bool
}

// IDXConfig holds the IDX data refresh configuration
type IDXConfig struct {
	PriceAPIBaseURL  string
	SectorPageURL    string
	RequestsPerSec   int
	TickerSuffix     string // yfinance-style exchange suffix, e.g. .JK
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Enabled:  getEnvBool("REDIS_ENABLED", false),
		},

		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "supabase"),
			BaseURL: getEnv("STORAGE_BASE_URL", ""),
			Bucket:  getEnv("STORAGE_BUCKET", "bandarmolony"),
			APIKey:  getEnv("STORAGE_API_KEY", ""),
			FSRoot:  getEnv("STORAGE_FS_ROOT", "./data"),
		},

		Generation: GenerationConfig{
			WaveSize:            getEnvInt("GEN_WAVE_SIZE", 50),
			Concurrency:         getEnvInt("GEN_CONCURRENCY", 10),
			PrecheckConcurrency: getEnvInt("GEN_PRECHECK_CONCURRENCY", 5),
			Lookback:            getEnvInt("GEN_LOOKBACK", 12),
			HeapReclaimMB:       getEnvInt("GEN_HEAP_RECLAIM_MB", 512),
			Benchmark:           getEnv("GEN_BENCHMARK", "COMPOSITE"),
			DatasetPrefix:       getEnv("GEN_DATASET_PREFIX", "datasets/"),
			OutputPrefix:        getEnv("GEN_OUTPUT_PREFIX", "rrg/"),
			MappingPath:         getEnv("GEN_MAPPING_PATH", "mapping/sectors.yaml"),
			RunOnStartup:        getEnvBool("GEN_RUN_ON_STARTUP", false),
		},

		IDX: IDXConfig{
			PriceAPIBaseURL: getEnv("IDX_PRICE_API_BASE_URL", ""),
			SectorPageURL:   getEnv("IDX_SECTOR_PAGE_URL", ""),
			RequestsPerSec:  getEnvInt("IDX_REQUESTS_PER_SEC", 5),
			TickerSuffix:    getEnv("IDX_TICKER_SUFFIX", ".JK"),
		},

		SchedulerEnabled: getEnvBool("SCHEDULER_ENABLED", false),
		GenerationCron:   getEnv("GENERATION_CRON", "0 0 18 * * 1-5"),
		RefreshCron:      getEnv("REFRESH_CRON", "0 30 17 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	cfg.Database.Enabled = cfg.Database.URL != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "supabase":
		if c.Storage.BaseURL == "" {
			return fmt.Errorf("STORAGE_BASE_URL is required for the supabase backend")
		}
	case "fs":
		if c.Storage.FSRoot == "" {
			return fmt.Errorf("STORAGE_FS_ROOT is required for the fs backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}

	if c.Generation.WaveSize <= 0 {
		return fmt.Errorf("GEN_WAVE_SIZE must be positive, got %d", c.Generation.WaveSize)
	}
	if c.Generation.Concurrency <= 0 {
		return fmt.Errorf("GEN_CONCURRENCY must be positive, got %d", c.Generation.Concurrency)
	}
	if c.Generation.PrecheckConcurrency <= 0 {
		return fmt.Errorf("GEN_PRECHECK_CONCURRENCY must be positive, got %d", c.Generation.PrecheckConcurrency)
	}
	if c.Generation.Lookback <= 0 {
		return fmt.Errorf("GEN_LOOKBACK must be positive, got %d", c.Generation.Lookback)
	}
	return nil
}

// loadEnvFile tries to load a .env file from common locations
func loadEnvFile() {
	paths := []string{
		".env",
		filepath.Join("..", ".env"),
		filepath.Join("..", "..", ".env"),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// getEnv returns the env var value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the env var as int or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the env var as bool or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration returns the env var as duration or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
