// Package app provides application initialization and dependency injection.
//
// App is the container shared by every entry point (serve, mcp). Setup
// wires configuration, logging, trace export, and the version store;
// Close flushes history to disk and releases resources in reverse order.
package app

import (
	"log/slog"
	"path/filepath"

	"github.com/koopa0/forge/internal/artifact"
	"github.com/koopa0/forge/internal/config"
)

// App is the core application container.
type App struct {
	// Configuration
	Config *config.Config

	// Core services
	Logger *slog.Logger
	Store  *artifact.Store

	// Lifecycle management
	otelCleanup func()
}

// Close gracefully shuts down all resources: pending history is written
// to disk, then the tracer provider is flushed. Safe to call on a
// partially initialized App.
func (a *App) Close() error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if path := a.snapshotPath(); path != "" && a.Store != nil {
		if err := a.Store.WriteSnapshot(path); err != nil {
			logger.Warn("writing history snapshot", "path", path, "error", err)
		} else {
			logger.Debug("history snapshot written", "path", path)
		}
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}

// snapshotPath returns the on-disk history location, or "" when
// persistence is disabled (no snapshot directory configured).
func (a *App) snapshotPath() string {
	if a.Config == nil || a.Config.SnapshotDir == "" {
		return ""
	}
	return filepath.Join(a.Config.SnapshotDir, snapshotFile)
}
