// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// Config holds application configuration
type Config struct {
	DataDir               string // Base directory for datasets and reports.db (always absolute)
	Port                  int
	LogLevel              string
	LogPretty             bool
	DevMode               bool
	ClusterWorkers        int // Concurrent groups per cluster computation
	SchedulerEnabled      bool
	HealthCheckSchedule   string
	WALCheckpointSchedule string // Empty disables the WAL checkpoint job
	S3                    *S3Config
	Backup                *BackupConfig
}

// BackupConfig holds the optional reports.db backup settings. Backups are
// uploaded to Bucket through the S3 settings.
type BackupConfig struct {
	Bucket        string
	Schedule      string
	RetentionDays int // 0 keeps every backup
}

// Enabled reports whether backups are configured.
func (c *BackupConfig) Enabled() bool {
	return c != nil && c.Bucket != ""
}

// S3Config holds the optional S3 dataset source settings
type S3Config struct {
	Region          string
	Endpoint        string // Custom endpoint for S3 compatible stores (MinIO, R2)
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether S3 sources are configured.
func (c *S3Config) Enabled() bool {
	return c != nil && (c.Region != "" || c.Endpoint != "")
}

// ToDatasetConfig converts config.S3Config to dataset.S3Config
func (c *S3Config) ToDatasetConfig() dataset.S3Config {
	return dataset.S3Config{
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
	}
}

// Load reads configuration from environment variables. The given env files
// (".env" when none are given) are loaded first when they exist; variables
// already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	dataDir := getEnv("KAFKANATOR_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:               absDataDir,
		Port:                  getEnvAsInt("PORT", 8080),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogPretty:             getEnvAsBool("LOG_PRETTY", false),
		DevMode:               getEnvAsBool("DEV_MODE", false),
		ClusterWorkers:        getEnvAsInt("CLUSTER_WORKERS", runtime.NumCPU()),
		SchedulerEnabled:      getEnvAsBool("SCHEDULER_ENABLED", true),
		HealthCheckSchedule:   getEnv("HEALTH_CHECK_SCHEDULE", "0 */15 * * * *"),
		WALCheckpointSchedule: getEnv("WAL_CHECKPOINT_SCHEDULE", "0 0 * * * *"),
		S3: &S3Config{
			Region:          getEnv("S3_REGION", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Backup: &BackupConfig{
			Bucket:        getEnv("BACKUP_BUCKET", ""),
			Schedule:      getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
			RetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return inequality.ConfigError("config", "PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.ClusterWorkers <= 0 {
		return inequality.ConfigError("config", "CLUSTER_WORKERS must be positive, got %d", c.ClusterWorkers)
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		return inequality.ConfigError("config", "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}
	if c.Backup.Enabled() {
		if !c.S3.Enabled() {
			return inequality.ConfigError("config", "BACKUP_BUCKET needs S3_REGION or S3_ENDPOINT")
		}
		if c.Backup.RetentionDays < 0 {
			return inequality.ConfigError("config", "BACKUP_RETENTION_DAYS must not be negative, got %d", c.Backup.RetentionDays)
		}
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
