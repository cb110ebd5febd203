package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hintstechnology/bandarmolony-sub008/internal/external/idx"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [tickers...]",
	Short: "Download raw datasets and the sector mapping",
	Long: `Fetches daily bars for the given tickers from the IDX price API and
stores them as raw dataset CSVs, then refreshes the sector mapping.
With no tickers, only the sector mapping is refreshed.

Example:
  go run ./cmd/rrg fetch BBCA TLKM BBRI
  go run ./cmd/rrg fetch --years 5 COMPOSITE`,
	RunE: runFetch,
}

var (
	fetchYears       int
	fetchSkipMapping bool
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchYears, "years", 3, "years of history to fetch")
	fetchCmd.Flags().BoolVar(&fetchSkipMapping, "skip-mapping", false, "do not refresh the sector mapping")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.IDX.PriceAPIBaseURL == "" {
		return fmt.Errorf("IDX_PRICE_API_BASE_URL is not configured")
	}

	ctx := context.Background()
	refresher := idx.NewRefresher(
		idx.NewClient(a.cfg, a.log),
		a.store,
		a.cfg.Generation.DatasetPrefix,
		a.cfg.Generation.MappingPath,
		a.cfg.Generation.Benchmark,
		a.log,
	)

	if !fetchSkipMapping {
		if a.cfg.IDX.SectorPageURL == "" {
			a.log.Warn("IDX_SECTOR_PAGE_URL is not configured, skipping sector mapping")
		} else if err := refresher.RefreshSectorMapping(ctx); err != nil {
			return fmt.Errorf("refresh sector mapping: %w", err)
		}
	}

	if len(args) == 0 {
		return nil
	}

	to := time.Now()
	from := to.AddDate(-fetchYears, 0, 0)
	updated, err := refresher.RefreshPrices(ctx, args, from, to)
	if err != nil {
		return fmt.Errorf("fetch datasets: %w", err)
	}

	fmt.Printf("Updated %d of %d datasets\n", updated, len(args))
	return nil
}
