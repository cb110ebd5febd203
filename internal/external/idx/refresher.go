package idx

import (
	"context"
	"fmt"
	"time"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// Refresher keeps the raw datasets and the sector mapping in blob storage
// up to date. It replaces the old yfinance fetch script: one CSV per ticker
// under the dataset prefix, newest rows first.
type Refresher struct {
	client        *Client
	storage       contracts.Storage
	datasetPrefix string
	mappingPath   string
	benchmark     string
	logger        *logger.Logger
}

// NewRefresher creates a dataset refresher
func NewRefresher(client *Client, store contracts.Storage, datasetPrefix, mappingPath, benchmark string, log *logger.Logger) *Refresher {
	return &Refresher{
		client:        client,
		storage:       store,
		datasetPrefix: datasetPrefix,
		mappingPath:   mappingPath,
		benchmark:     benchmark,
		logger:        log.WithField("module", "idx_refresh"),
	}
}

// RefreshPrices fetches and stores daily bars for the given tickers. Per
// ticker failures are logged and counted, not fatal.
func (r *Refresher) RefreshPrices(ctx context.Context, tickers []string, from, to time.Time) (int, error) {
	updated := 0
	for _, ticker := range tickers {
		select {
		case <-ctx.Done():
			return updated, ctx.Err()
		default:
		}

		bars, err := r.client.FetchDailyBars(ctx, ticker, from, to)
		if err != nil {
			r.logger.WithError(err).WithField("ticker", ticker).Error("Failed to fetch bars")
			continue
		}
		if len(bars) == 0 {
			r.logger.WithField("ticker", ticker).Warn("No bars returned")
			continue
		}

		path := r.datasetPrefix + ticker + ".csv"
		if err := r.storage.UploadText(ctx, path, EncodeBarsCSV(bars), "text/csv"); err != nil {
			r.logger.WithError(err).WithField("ticker", ticker).Error("Failed to store dataset")
			continue
		}
		updated++
	}

	r.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"updated": updated,
	}).Info("Dataset refresh finished")
	return updated, nil
}

// RefreshSectorMapping regenerates the stored sector mapping document
func (r *Refresher) RefreshSectorMapping(ctx context.Context) error {
	mapping, err := r.client.FetchSectorMapping(ctx, r.benchmark)
	if err != nil {
		return err
	}

	doc, err := EncodeMappingYAML(mapping)
	if err != nil {
		return err
	}

	if err := r.storage.UploadText(ctx, r.mappingPath, doc, "application/yaml"); err != nil {
		return fmt.Errorf("store sector mapping: %w", err)
	}

	r.logger.WithField("sectors", len(mapping.Sectors)).Info("Sector mapping refreshed")
	return nil
}
