package commands

import (
	"fmt"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/generation"
	"github.com/hintstechnology/bandarmolony-sub008/internal/rrg"
	"github.com/hintstechnology/bandarmolony-sub008/internal/runlog"
	"github.com/hintstechnology/bandarmolony-sub008/internal/scanner"
	"github.com/hintstechnology/bandarmolony-sub008/internal/sector"
	"github.com/hintstechnology/bandarmolony-sub008/internal/storage"
	"github.com/hintstechnology/bandarmolony-sub008/internal/timeseries"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/config"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/database"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// app bundles the collaborators every command needs. Commands build what
// they need on top: the API server adds Redis and the scheduler.
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	store        contracts.Storage
	db           *database.DB
	runLog       contracts.RunLog
	orchestrator *generation.Orchestrator
}

// newApp loads config and wires the generation pipeline
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	store, err := newStorage(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, store: store}

	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.runLog = runlog.NewRepository(db.Pool)
		log.Info("Connected to database")
	} else {
		a.runLog = runlog.NewNoop(log)
		log.Info("No database configured, run log is local only")
	}

	a.orchestrator = generation.NewOrchestrator(
		generation.ConfigFromApp(cfg),
		store,
		a.runLog,
		generation.NewCache(store, log),
		timeseries.NewLoader(log),
		rrg.NewEngine(cfg.Generation.Lookback, log),
		sector.NewAggregator(log),
		scanner.NewAggregator(store, cfg.Generation.OutputPrefix, log),
		log,
	)

	return a, nil
}

// Close releases held resources
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func newStorage(cfg *config.Config, log *logger.Logger) (contracts.Storage, error) {
	switch cfg.Storage.Backend {
	case "supabase":
		return storage.NewSupabaseClient(cfg, log), nil
	case "fs":
		return storage.NewFSClient(cfg.Storage.FSRoot), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
