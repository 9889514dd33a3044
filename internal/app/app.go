// Package app wires configuration, logging, storage, and services into a
// single initialized core shared by the CLI entrypoints.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/services/reconcile"
	"github.com/foliotrack/folio/internal/services/snapshot"
	"github.com/foliotrack/folio/internal/storage"
)

// App holds all initialized components.
type App struct {
	Config    *common.Config
	Logger    *common.Logger
	Store     interfaces.SnapshotStore
	Matcher   *reconcile.Matcher
	Snapshots *snapshot.Service
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes logging, storage, and
// services. configPath may be empty, in which case FOLIO_CONFIG and the
// binary directory are consulted.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory.
	if config.Storage.Local.Path != "" && !filepath.IsAbs(config.Storage.Local.Path) {
		config.Storage.Local.Path = filepath.Join(binDir, config.Storage.Local.Path)
	}
	if config.Storage.Queue.Path != "" && !filepath.IsAbs(config.Storage.Queue.Path) {
		config.Storage.Queue.Path = filepath.Join(binDir, config.Storage.Queue.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := storage.NewSnapshotStore(ctx, logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	matcher := reconcile.NewMatcher(config.Reconcile, logger)

	a := &App{
		Config:    config,
		Logger:    logger,
		Store:     store,
		Matcher:   matcher,
		Snapshots: snapshot.NewService(store, matcher, logger),
	}

	logger.Info().
		Str("backend", config.Storage.Backend).
		Str("version", common.GetVersion()).
		Msg("App initialized")
	return a, nil
}

// Syncer returns the store's sync interface when the configured backend
// supports pending-queue syncing (hybrid only).
func (a *App) Syncer() (interfaces.Syncer, bool) {
	syncer, ok := a.Store.(interfaces.Syncer)
	return syncer, ok
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Store = nil
	}
}
