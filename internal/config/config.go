// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.forge/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - History: version-store caps for artifact and file histories
//   - Serve: CORS origins, proxy trust, rate-limiter burst
//   - Snapshot: directory for history exports
//   - Tracing: OTLP trace export (see internal/observability)
//   - Log: level and output format
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidArtifactCap indicates the artifact history cap is out of range.
	ErrInvalidArtifactCap = errors.New("invalid artifact history cap")

	// ErrInvalidFileCap indicates the file history cap is out of range.
	ErrInvalidFileCap = errors.New("invalid file history cap")

	// ErrInvalidRateBurst indicates the rate limiter burst is out of range.
	ErrInvalidRateBurst = errors.New("invalid rate burst")

	// ErrInvalidLogLevel indicates the log level name is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidTracingEndpoint indicates tracing is enabled without an endpoint.
	ErrInvalidTracingEndpoint = errors.New("invalid tracing endpoint")
)

const (
	// DefaultArtifactCap is the default number of versions kept per artifact.
	DefaultArtifactCap = 50

	// DefaultFileCap is the default number of snapshots kept per file path.
	DefaultFileCap = 100

	// MaxHistoryCap is the absolute maximum for either cap, to prevent OOM.
	MaxHistoryCap = 10000

	// DefaultRateBurst is the default per-IP rate limiter burst.
	DefaultRateBurst = 60
)

// HistoryConfig holds the version-store bounds.
type HistoryConfig struct {
	// ArtifactCap is the max versions kept per artifact (default: 50)
	ArtifactCap int `mapstructure:"artifact_cap" json:"artifact_cap"`
	// FileCap is the max snapshots kept per file path (default: 100)
	FileCap int `mapstructure:"file_cap" json:"file_cap"`
}

// TracingConfig holds OTLP trace export configuration.
//
// Traces are sent to a local collector over OTLP HTTP.
// See internal/observability for setup details.
type TracingConfig struct {
	// Enabled turns trace export on (default: false)
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP HTTP endpoint (default: localhost:4318)
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the service name on exported spans (default: forge)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error" (default: info)
	Level string `mapstructure:"level" json:"level"`
	// JSON switches output to JSON format (default: false)
	JSON bool `mapstructure:"json" json:"json"`
}

// Config stores application configuration.
// No field is sensitive; the whole struct is safe to log.
type Config struct {
	// Version-store bounds
	History HistoryConfig `mapstructure:"history" json:"history"`

	// Serve mode
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"` // Trust X-Real-IP/X-Forwarded-For (set true behind reverse proxy)
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`

	// SnapshotDir is where history exports are written (default: ~/.forge)
	SnapshotDir string `mapstructure:"snapshot_dir" json:"snapshot_dir"`

	// Observability
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`

	// Logging
	Log LogConfig `mapstructure:"log" json:"log"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// Configuration directory: ~/.forge/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".forge")

	// Ensure directory exists (0750 — config may sit next to history exports)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults(configDir)
	bindEnvVariables()

	// Read configuration file (if exists)
	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(configDir string) {
	// History defaults
	viper.SetDefault("history.artifact_cap", DefaultArtifactCap)
	viper.SetDefault("history.file_cap", DefaultFileCap)

	// CORS defaults (Vite dev server)
	viper.SetDefault("cors_origins", []string{"http://localhost:5173"})

	// Proxy trust (default: false — safe for direct exposure; set true behind reverse proxy)
	viper.SetDefault("trust_proxy", false)

	viper.SetDefault("rate_burst", DefaultRateBurst)

	// Snapshot exports land next to the config file
	viper.SetDefault("snapshot_dir", configDir)

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "localhost:4318")
	viper.SetDefault("tracing.environment", "dev")
	viper.SetDefault("tracing.service_name", "forge")

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)
}

// bindEnvVariables binds environment overrides explicitly.
// Everything here is operational tuning; there are no secret values.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail)
	// If this panics, it's a BUG in our code, not a runtime error
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	// Serve mode (comma-separated list for origins)
	mustBind("cors_origins", "FORGE_CORS_ORIGINS")
	mustBind("trust_proxy", "FORGE_TRUST_PROXY")
	mustBind("rate_burst", "FORGE_RATE_BURST")

	// History caps
	mustBind("history.artifact_cap", "FORGE_ARTIFACT_CAP")
	mustBind("history.file_cap", "FORGE_FILE_CAP")

	mustBind("snapshot_dir", "FORGE_SNAPSHOT_DIR")

	// Tracing
	mustBind("tracing.enabled", "FORGE_TRACING_ENABLED")
	mustBind("tracing.endpoint", "FORGE_TRACING_ENDPOINT")
	mustBind("tracing.environment", "FORGE_TRACING_ENV")
	mustBind("tracing.service_name", "FORGE_TRACING_SERVICE")

	// Logging
	mustBind("log.level", "FORGE_LOG_LEVEL")
	mustBind("log.json", "FORGE_LOG_JSON")
}

// String implements Stringer so the full config can be logged at startup.
func (c Config) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
