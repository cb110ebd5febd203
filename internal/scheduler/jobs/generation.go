package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/generation"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// GenerationJob runs the rotation pipeline on schedule
type GenerationJob struct {
	orchestrator *generation.Orchestrator
	schedule     string
	logger       *logger.Logger
}

// NewGenerationJob creates a new generation job
func NewGenerationJob(orch *generation.Orchestrator, schedule string, log *logger.Logger) *GenerationJob {
	return &GenerationJob{
		orchestrator: orch,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *GenerationJob) Name() string {
	return "rrg_generation"
}

// Schedule returns the cron schedule expression
func (j *GenerationJob) Schedule() string {
	return j.schedule
}

// Run executes the generation pipeline. An already-running pipeline is a
// skip, not a failure.
func (j *GenerationJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled generation run")

	err := j.orchestrator.Run(ctx, false, contracts.TriggerScheduled)
	if err != nil {
		var inProgress *contracts.GenerationInProgressError
		if errors.As(err, &inProgress) {
			j.logger.Warn("Generation already in progress, skipping scheduled run")
			return nil
		}
		return fmt.Errorf("scheduled generation run: %w", err)
	}

	counters := j.orchestrator.Status().Counters
	j.logger.WithFields(map[string]interface{}{
		"processed": counters.Processed,
		"created":   counters.Created,
		"skipped":   counters.Skipped,
		"failed":    counters.Failed,
	}).Info("Scheduled generation run finished")

	return nil
}
