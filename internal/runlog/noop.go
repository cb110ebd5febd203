package runlog

import (
	"context"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// Noop satisfies contracts.RunLog without a database. Used when
// DATABASE_URL is not configured; run records only reach the logs.
type Noop struct {
	logger *logger.Logger
}

// NewNoop creates a log-only run log
func NewNoop(log *logger.Logger) *Noop {
	return &Noop{logger: log}
}

// BeginRun logs the run start
func (n *Noop) BeginRun(_ context.Context, source contracts.TriggerSource) error {
	n.logger.WithField("source", source).Info("Run started (no run-log database)")
	return nil
}

// UpdateProgress logs progress at debug level
func (n *Noop) UpdateProgress(_ context.Context, percentage float64, currentOperation string) error {
	n.logger.WithFields(map[string]interface{}{
		"progress":  percentage,
		"operation": currentOperation,
	}).Debug("Run progress")
	return nil
}

// MarkCompleted logs the final counters
func (n *Noop) MarkCompleted(_ context.Context, counters contracts.RunCounters) error {
	n.logger.WithFields(map[string]interface{}{
		"processed": counters.Processed,
		"created":   counters.Created,
		"skipped":   counters.Skipped,
		"failed":    counters.Failed,
	}).Info("Run completed")
	return nil
}

// MarkFailed logs the failure reason
func (n *Noop) MarkFailed(_ context.Context, reason string) error {
	n.logger.WithField("reason", reason).Error("Run failed")
	return nil
}
