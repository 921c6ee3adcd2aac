package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Allocation modes accepted in ALLOCATION_MODE
const (
	AllocationCompound = "compound"
	AllocationSlice    = "slice"
)

// Rebalance modes accepted in REBALANCE_MODE
const (
	RebalanceAtomic     = "atomic"
	RebalanceSequential = "sequential"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL            string
	Port             string
	LogLevel         string
	LogFormat        string
	AllocationMode   string
	RebalanceMode    string
	RunMigrations    bool
	LedgerWorkers    int
	CalendarCacheTTL time.Duration
	RateLimit        int
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first; values already set in
// the shell take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	cfg := &Config{
		PGURL:          pgURL,
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		AllocationMode: getEnv("ALLOCATION_MODE", AllocationCompound),
		RebalanceMode:  getEnv("REBALANCE_MODE", RebalanceAtomic),
	}

	switch cfg.AllocationMode {
	case AllocationCompound, AllocationSlice:
	default:
		return nil, fmt.Errorf("ALLOCATION_MODE must be %q or %q, got %q", AllocationCompound, AllocationSlice, cfg.AllocationMode)
	}

	switch cfg.RebalanceMode {
	case RebalanceAtomic, RebalanceSequential:
	default:
		return nil, fmt.Errorf("REBALANCE_MODE must be %q or %q, got %q", RebalanceAtomic, RebalanceSequential, cfg.RebalanceMode)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	runMigrations, err := strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("RUN_MIGRATIONS must be a boolean: %w", err)
	}
	cfg.RunMigrations = runMigrations

	workers, err := strconv.Atoi(getEnv("LEDGER_WORKERS", "4"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("LEDGER_WORKERS must be a positive integer, got %q", os.Getenv("LEDGER_WORKERS"))
	}
	cfg.LedgerWorkers = workers

	ttl, err := time.ParseDuration(getEnv("CALENDAR_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("CALENDAR_CACHE_TTL must be a duration: %w", err)
	}
	cfg.CalendarCacheTTL = ttl

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "600"))
	if err != nil || rateLimit < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a non-negative integer, got %q", os.Getenv("RATE_LIMIT_PER_MINUTE"))
	}
	cfg.RateLimit = rateLimit

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
