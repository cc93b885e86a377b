package config

import (
	"errors"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath  string
	DataSheet string

	// Classifier configuration. ModelEndpoint takes precedence over
	// ModelArtifactPath when both are set.
	ModelArtifactPath string
	ModelEndpoint     string
	ModelTimeout      time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	modelTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MODEL_TIMEOUT", "5s"))
	if err != nil || modelTimeout <= 0 {
		return nil, errors.New("invalid MODEL_TIMEOUT")
	}

	cfg := &Config{
		DataPath:          strings.TrimSpace(sharedcfg.EnvOrDefault("FLIGHTS_DATA_PATH", "data/flights_sample_10000.csv")),
		DataSheet:         sharedcfg.EnvOrDefault("FLIGHTS_SHEET", "Sheet1"),
		ModelArtifactPath: strings.TrimSpace(sharedcfg.EnvOrDefault("MODEL_ARTIFACT_PATH", "model/delay_model.yaml")),
		ModelEndpoint:     strings.TrimSpace(os.Getenv("MODEL_ENDPOINT")),
		ModelTimeout:      modelTimeout,
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
	}

	if cfg.DataPath == "" {
		return nil, errors.New("FLIGHTS_DATA_PATH is required")
	}
	if cfg.ModelEndpoint == "" && cfg.ModelArtifactPath == "" {
		return nil, errors.New("one of MODEL_ENDPOINT or MODEL_ARTIFACT_PATH is required")
	}

	return cfg, nil
}

// UseModelServer reports whether predictions go to a served model.
func (c *Config) UseModelServer() bool {
	return c.ModelEndpoint != ""
}
