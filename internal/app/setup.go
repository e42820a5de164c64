package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/koopa0/forge/internal/artifact"
	"github.com/koopa0/forge/internal/config"
	"github.com/koopa0/forge/internal/log"
	"github.com/koopa0/forge/internal/observability"
)

// snapshotFile is the history export kept under SnapshotDir.
const snapshotFile = "history.json"

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config) (_ *App, retErr error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}

	a := &App{Config: cfg}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				slog.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, err
	}
	a.Logger = logger

	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	a.Store = provideStore(cfg, logger)

	return a, nil
}

// provideLogger builds the process logger from config. Output goes to
// stderr, keeping stdout free for the MCP stdio transport.
func provideLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, fmt.Errorf("resolving log level: %w", err)
	}
	return log.New(log.Config{Level: level, JSON: cfg.Log.JSON}), nil
}

// provideOtelShutdown sets up OTLP trace export when tracing is enabled.
// Returns the cleanup to run during shutdown; a disabled or failed
// exporter yields a no-op.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger *slog.Logger) func() {
	if !cfg.Tracing.Enabled {
		return func() {}
	}

	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Environment: cfg.Tracing.Environment,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		logger.Warn("setting up trace export, tracing disabled", "error", err)
		return func() {}
	}

	//nolint:contextcheck // Independent context: shutdown runs during teardown when parent is canceled
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideStore creates the bounded version store and restores prior
// history from disk when an export exists. A missing snapshot is the
// normal first-run case; a malformed one must not stop the process, so
// the store starts empty instead.
func provideStore(cfg *config.Config, logger *slog.Logger) *artifact.Store {
	store := artifact.New(cfg.History.ArtifactCap, cfg.History.FileCap,
		logger.With("component", "artifact"))

	if cfg.SnapshotDir == "" {
		return store
	}

	path := filepath.Join(cfg.SnapshotDir, snapshotFile)
	switch err := store.ReadSnapshot(path); {
	case err == nil:
		stats := store.Stats()
		logger.Info("history restored from snapshot",
			"path", path,
			"artifacts", stats.Artifacts,
			"versions", stats.Versions)
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("no history snapshot on disk", "path", path)
	default:
		logger.Warn("reading history snapshot, starting empty", "path", path, "error", err)
	}

	return store
}
