package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/external/idx"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// refreshHistoryYears is how far back refreshed datasets reach
const refreshHistoryYears = 3

// RefreshJob re-downloads raw datasets and the sector mapping before the
// nightly generation run. The ticker set is whatever already exists under
// the dataset prefix; new tickers enter through the fetch command.
type RefreshJob struct {
	refresher     *idx.Refresher
	storage       contracts.Storage
	datasetPrefix string
	schedule      string
	logger        *logger.Logger
}

// NewRefreshJob creates a new dataset refresh job
func NewRefreshJob(refresher *idx.Refresher, store contracts.Storage, datasetPrefix, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		refresher:     refresher,
		storage:       store,
		datasetPrefix: datasetPrefix,
		schedule:      schedule,
		logger:        log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "dataset_refresh"
}

// Schedule returns the cron schedule expression
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes the sector mapping and all known datasets
func (j *RefreshJob) Run(ctx context.Context) error {
	if err := j.refresher.RefreshSectorMapping(ctx); err != nil {
		j.logger.WithError(err).Error("Failed to refresh sector mapping")
	}

	paths, err := j.storage.ListPaths(ctx, j.datasetPrefix)
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}

	tickers := make([]string, 0, len(paths))
	for _, path := range paths {
		name := strings.TrimPrefix(path, j.datasetPrefix)
		if ticker, ok := strings.CutSuffix(name, ".csv"); ok && !strings.Contains(ticker, "/") {
			tickers = append(tickers, ticker)
		}
	}

	if len(tickers) == 0 {
		j.logger.Warn("No datasets to refresh")
		return nil
	}

	to := time.Now()
	from := to.AddDate(-refreshHistoryYears, 0, 0)
	if _, err := j.refresher.RefreshPrices(ctx, tickers, from, to); err != nil {
		return fmt.Errorf("refresh datasets: %w", err)
	}

	return nil
}
