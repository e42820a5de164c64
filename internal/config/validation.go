package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
// Load() calls this after unmarshalling, so a *Config obtained from
// Load() is always valid.
func (c *Config) Validate() error {
	// 0. Check for nil config
	if c == nil {
		return ErrConfigNil
	}

	// 1. History caps (must be positive, bounded to prevent unbounded memory)
	if c.History.ArtifactCap < 1 || c.History.ArtifactCap > MaxHistoryCap {
		return fmt.Errorf("%w: must be between 1 and %d, got %d",
			ErrInvalidArtifactCap, MaxHistoryCap, c.History.ArtifactCap)
	}

	if c.History.FileCap < 1 || c.History.FileCap > MaxHistoryCap {
		return fmt.Errorf("%w: must be between 1 and %d, got %d",
			ErrInvalidFileCap, MaxHistoryCap, c.History.FileCap)
	}

	// 2. Rate limiter burst
	if c.RateBurst < 1 || c.RateBurst > 10000 {
		return fmt.Errorf("%w: must be between 1 and 10,000, got %d",
			ErrInvalidRateBurst, c.RateBurst)
	}

	// 3. Log level name
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return err
	}

	// 4. Tracing endpoint (required only when tracing is on)
	if c.Tracing.Enabled && strings.TrimSpace(c.Tracing.Endpoint) == "" {
		return fmt.Errorf("%w: tracing.endpoint cannot be empty when tracing is enabled",
			ErrInvalidTracingEndpoint)
	}

	return nil
}

// LogLevel returns the slog level named by log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	return parseLogLevel(c.Log.Level)
}

// parseLogLevel maps a level name to its slog level.
// The empty string means "info" so a zero-value LogConfig stays usable.
func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q (must be debug, info, warn, or error)",
			ErrInvalidLogLevel, name)
	}
}
