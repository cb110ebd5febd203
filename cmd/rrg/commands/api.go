package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hintstechnology/bandarmolony-sub008/internal/api"
	"github.com/hintstechnology/bandarmolony-sub008/internal/api/handlers"
	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/external/idx"
	"github.com/hintstechnology/bandarmolony-sub008/internal/scheduler"
	"github.com/hintstechnology/bandarmolony-sub008/internal/scheduler/jobs"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                    - Health check
  POST /api/generation/run        - Trigger a generation run
  GET  /api/generation/status     - Current run state
  GET  /api/rrg/{kind}/{subject}  - Rotation series CSV
  GET  /api/scanner/{kind}        - Ranked summary CSV
  WS   /ws/generation             - Live run progress

Example:
  go run ./cmd/rrg api
  go run ./cmd/rrg api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// Optional Redis response cache
	var artifactCache *redis.Cache
	redisClient, err := redis.New(a.cfg)
	if err != nil {
		a.log.WithError(err).Warn("Redis unavailable, serving without response cache")
	} else if redisClient.Enabled() {
		artifactCache = redis.NewCache(redisClient, "rrg")
		defer redisClient.Close()
		a.log.Info("Redis response cache enabled")
	}

	generationHandler := handlers.NewGenerationHandler(a.orchestrator, a.log)
	artifactHandler := handlers.NewArtifactHandler(a.store, artifactCache, a.cfg.Generation.OutputPrefix, a.log)
	progressFeed := api.NewProgressFeed(a.orchestrator, a.log)

	router := api.NewRouter(generationHandler, artifactHandler, progressFeed, a.log)
	server := api.New(a.cfg, a.log, router)

	// Scheduler
	var sched *scheduler.Scheduler
	if a.cfg.SchedulerEnabled {
		sched = scheduler.New(a.log)
		if err := sched.AddJob(jobs.NewGenerationJob(a.orchestrator, a.cfg.GenerationCron, a.log)); err != nil {
			return fmt.Errorf("schedule generation job: %w", err)
		}
		if a.cfg.IDX.PriceAPIBaseURL != "" {
			refresher := idx.NewRefresher(
				idx.NewClient(a.cfg, a.log),
				a.store,
				a.cfg.Generation.DatasetPrefix,
				a.cfg.Generation.MappingPath,
				a.cfg.Generation.Benchmark,
				a.log,
			)
			job := jobs.NewRefreshJob(refresher, a.store, a.cfg.Generation.DatasetPrefix, a.cfg.RefreshCron, a.log)
			if err := sched.AddJob(job); err != nil {
				return fmt.Errorf("schedule refresh job: %w", err)
			}
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Kick off an initial run once the server is up
	if a.cfg.Generation.RunOnStartup {
		go func() {
			if err := a.orchestrator.Run(context.Background(), false, contracts.TriggerStartup); err != nil {
				a.log.WithError(err).Error("Startup generation run failed")
			}
		}()
	}

	fmt.Printf("Server running on http://localhost:%s\n", a.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
