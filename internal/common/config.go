// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio. It is constructed once at
// startup and passed into constructors explicitly.
type Config struct {
	Environment string          `toml:"environment"`
	Storage     StorageConfig   `toml:"storage"`
	Reconcile   ReconcileConfig `toml:"reconcile"`
	Logging     LoggingConfig   `toml:"logging"`
}

// Backend type constants for StorageConfig.Backend.
const (
	BackendLocal  = "local"
	BackendGCS    = "gcs"
	BackendHybrid = "hybrid"
)

// StorageConfig selects and configures the snapshot history backend.
type StorageConfig struct {
	Backend string      `toml:"backend"` // "local", "gcs", "hybrid"
	Local   LocalConfig `toml:"local"`
	GCS     GCSConfig   `toml:"gcs"`
	Queue   QueueConfig `toml:"queue"`
}

// LocalConfig holds local file backend configuration.
type LocalConfig struct {
	Path string `toml:"path"` // data directory holding the history file
}

// GCSConfig holds Google Cloud Storage backend configuration.
type GCSConfig struct {
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`           // optional key prefix within bucket
	CredentialsFile string `toml:"credentials_file"` // service account JSON (optional if using ADC)
	Timeout         string `toml:"timeout"`
}

// GetTimeout parses and returns the per-call timeout for GCS operations.
func (c *GCSConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// QueueConfig holds the pending-sync queue location (hybrid backend only).
type QueueConfig struct {
	Path string `toml:"path"`
}

// ReconcileConfig tunes change detection and ledger matching.
type ReconcileConfig struct {
	// DetectionThreshold is the minimum quantity delta (in units) between
	// snapshots that counts as a buy or sell. Sub-threshold drift is
	// treated as rounding noise.
	DetectionThreshold float64 `toml:"detection_threshold"`
	// QuantityTolerance is the maximum allowed gap between a detected
	// quantity change and the summed ledger quantity.
	QuantityTolerance float64 `toml:"quantity_tolerance"`
	// ExemptCategories are never validated against the ledger.
	ExemptCategories []string `toml:"exempt_categories"`
}

// IsExempt reports whether a category is excluded from ledger validation.
func (c *ReconcileConfig) IsExempt(category string) bool {
	for _, exempt := range c.ExemptCategories {
		if exempt == category {
			return true
		}
	}
	return false
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Backend: BackendLocal,
			Local:   LocalConfig{Path: "data"},
			GCS: GCSConfig{
				Bucket:  "",
				Timeout: "30s",
			},
			Queue: QueueConfig{Path: "data/pending-sync"},
		},
		Reconcile: ReconcileConfig{
			DetectionThreshold: 1.0,
			QuantityTolerance:  1.0,
			ExemptCategories:   []string{"Pension", "Cash"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateBackend(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("FOLIO_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.Local.Path = path
		config.Storage.Queue.Path = filepath.Join(path, "pending-sync")
	}

	if bucket := os.Getenv("FOLIO_GCS_BUCKET"); bucket != "" {
		config.Storage.GCS.Bucket = bucket
	}
	if creds := os.Getenv("FOLIO_GCS_CREDENTIALS"); creds != "" {
		config.Storage.GCS.CredentialsFile = creds
	}

	if v := os.Getenv("FOLIO_DETECTION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			config.Reconcile.DetectionThreshold = f
		}
	}
	if v := os.Getenv("FOLIO_QUANTITY_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			config.Reconcile.QuantityTolerance = f
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateBackend falls back to the local backend on unknown values.
func validateBackend(config *Config) {
	switch config.Storage.Backend {
	case BackendLocal, BackendGCS, BackendHybrid:
	default:
		config.Storage.Backend = BackendLocal
	}
}
