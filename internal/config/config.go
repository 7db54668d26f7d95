package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every tunable of the pipelines and the API server. Corpus
// location, artifact locations and image geometry are explicit parameters
// here, never constants buried in the pipelines.
type Config struct {
	// Server
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// Corpus layout: a root directory with one subfolder per label.
	CorpusRoot          string
	FracturedDirName    string
	NotFracturedDirName string

	// Model artifacts
	ModelDir       string
	StorageBackend string // "local" or "azure"
	AzureAccount   string
	AzureKey       string
	AzureContainer string

	// Preprocessing geometry
	ImageSize int

	// Training
	TestFraction  float64
	Seed          int64
	CrossValFolds int
	Workers       int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		CorpusRoot:          getEnvOrDefault("CORPUS_ROOT", "data"),
		FracturedDirName:    getEnvOrDefault("FRACTURED_DIR", "fractured"),
		NotFracturedDirName: getEnvOrDefault("NOT_FRACTURED_DIR", "not fractured"),

		ModelDir:       getEnvOrDefault("MODEL_DIR", "artifacts"),
		StorageBackend: getEnvOrDefault("MODEL_STORAGE", "local"),
		AzureAccount:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureKey:       os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "models"),

		ImageSize: int(parseIntOrDefault("IMAGE_SIZE", 224)),

		TestFraction:  parseFloatOrDefault("TEST_FRACTION", 0.2),
		Seed:          parseIntOrDefault("RANDOM_SEED", 42),
		CrossValFolds: int(parseIntOrDefault("CROSS_VAL_FOLDS", 5)),
		Workers:       int(parseIntOrDefault("WORKERS", 0)), // 0 = NumCPU
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout)
	}
	if cfg.ImageSize < 8 {
		return nil, fmt.Errorf("IMAGE_SIZE must be >= 8 (got %d)", cfg.ImageSize)
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("TEST_FRACTION must be in (0, 1) (got %g)", cfg.TestFraction)
	}
	if cfg.CrossValFolds < 2 {
		return nil, fmt.Errorf("CROSS_VAL_FOLDS must be >= 2 (got %d)", cfg.CrossValFolds)
	}
	if cfg.StorageBackend != "local" && cfg.StorageBackend != "azure" {
		return nil, fmt.Errorf("MODEL_STORAGE must be \"local\" or \"azure\" (got %q)", cfg.StorageBackend)
	}
	if cfg.StorageBackend == "azure" && (cfg.AzureAccount == "" || cfg.AzureKey == "") {
		return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
