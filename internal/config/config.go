package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"gofit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Bootstrap BootstrapConfig
	Export    ExportConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// BootstrapConfig holds defaults for the bootstrap p-value simulation
type BootstrapConfig struct {
	Datasets uint
	Workers  int
}

// ExportConfig holds report output settings
type ExportConfig struct {
	Dir       string
	ExcelFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Bootstrap: BootstrapConfig{
			Datasets: uint(getEnvIntOrDefault("BOOTSTRAP_DATASETS", 10000)),
			Workers:  getEnvIntOrDefault("BOOTSTRAP_WORKERS", runtime.NumCPU()),
		},
		Export: ExportConfig{
			Dir:       getEnvOrDefault("EXPORT_DIR", "."),
			ExcelFile: getEnvOrDefault("EXCEL_FILE", "fit_report.xlsx"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Bootstrap.Datasets == 0 {
		return errors.ConfigInvalid("BOOTSTRAP_DATASETS must be positive")
	}
	if config.Bootstrap.Workers < 1 {
		return errors.ConfigInvalid("BOOTSTRAP_WORKERS must be at least 1")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
