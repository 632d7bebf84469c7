package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	msql "tracker-reports/internal/adapter/mysql"
	"tracker-reports/internal/adapter/sqlite"
	"tracker-reports/internal/config"
	"tracker-reports/internal/migrate"
	"tracker-reports/internal/ports"
	"tracker-reports/internal/usecase"
)

// factStore is what a fact-database adapter must provide to serve every
// orchestrator. Both the MySQL and the embedded SQLite adapters satisfy it.
type factStore interface {
	ports.IntervalStore
	ports.EntityLookup
	ports.Directory
	Close() error
}

// App wires adapters and report orchestrators.
type App struct {
	log        *slog.Logger
	loc        *time.Location
	reportsDir string
	store      factStore

	universal *usecase.UniversalReport
	tasks     *usecase.TaskReport
	dashboard *usecase.Dashboard
}

// New selects the fact store from config (MySQL when a DSN is set,
// embedded SQLite otherwise) and wires the orchestrators on top of it.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load report timezone: %w", err)
	}

	var store factStore
	if cfg.MySQL.DSN != "" {
		// Run migrations before opening the store for use.
		if err := migrate.Run(ctx, cfg.MySQL.DSN, log); err != nil {
			return nil, err
		}
		if store, err = msql.NewStore(ctx, cfg.MySQL.DSN, log); err != nil {
			return nil, err
		}
	} else {
		if store, err = sqlite.New(cfg.SQLite.Path, log); err != nil {
			return nil, err
		}
	}

	return &App{
		log:        log,
		loc:        loc,
		reportsDir: cfg.Report.Dir,
		store:      store,
		universal:  &usecase.UniversalReport{Log: log, Store: store, Lookup: store},
		tasks:      &usecase.TaskReport{Log: log, Store: store, Directory: store, Lookup: store},
		dashboard:  &usecase.Dashboard{Log: log, Store: store, Directory: store, Lookup: store},
	}, nil
}

// Close releases the fact store connection.
func (a *App) Close() error { return a.store.Close() }
