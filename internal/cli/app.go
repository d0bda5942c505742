package cli

import (
	"fmt"
	"log/slog"

	"github.com/mmynk/tally/internal/config"
	"github.com/mmynk/tally/internal/metrics"
	"github.com/mmynk/tally/internal/service"
	"github.com/mmynk/tally/internal/storage/sqlite"
	"github.com/mmynk/tally/pkg/logging"
)

// App is the explicitly constructed application context: configuration,
// the open store, and metrics. Close releases the database handle.
type App struct {
	Config  config.Config
	Store   *sqlite.SQLiteStore
	Metrics *metrics.Metrics
}

// OpenApp loads configuration, applies flag overrides, sets up logging and
// opens the store.
func OpenApp(opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.strictDeleteSet {
		cfg.StrictDelete = opts.StrictDelete
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to initialize storage", err)
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)

	return &App{
		Config:  cfg,
		Store:   store,
		Metrics: metrics.New(),
	}, nil
}

// Controller builds a controller over the app's store for presenter.
func (a *App) Controller(presenter service.Presenter) *service.Controller {
	return service.NewController(a.Store, presenter, service.Options{
		StrictDelete: a.Config.StrictDelete,
		Metrics:      a.Metrics,
	})
}

// Close logs the session's action counts and closes the store.
func (a *App) Close() error {
	if snap, err := a.Metrics.Snapshot(); err == nil {
		slog.Debug("Session actions",
			"counts", snap.Counts,
			"seconds", snap.Seconds,
			"items", snap.Items,
		)
	}
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
