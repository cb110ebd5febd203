package idx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hintstechnology/bandarmolony-sub008/pkg/config"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/httputil"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// Client fetches IDX market data: daily bars from the price API and the
// sector classification page. It is only used by the out-of-band data
// refresh, never by the generation pipeline.
type Client struct {
	httpClient   *httputil.Client
	priceBaseURL string
	sectorURL    string
	tickerSuffix string
	limiter      *rate.Limiter
	logger       *logger.Logger
}

// NewClient creates an IDX client from config
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	rps := cfg.IDX.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient:   httputil.NewWithTimeout(log, 30*time.Second),
		priceBaseURL: strings.TrimRight(cfg.IDX.PriceAPIBaseURL, "/"),
		sectorURL:    cfg.IDX.SectorPageURL,
		tickerSuffix: cfg.IDX.TickerSuffix,
		limiter:      rate.NewLimiter(rate.Limit(rps), rps),
		logger:       log.WithField("module", "idx"),
	}
}

// Bar is one daily price observation from the IDX price API
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// FetchDailyBars fetches daily bars for a ticker over a date range. The API
// returns chronological bars; callers get them newest first to match the
// stored dataset layout.
func (c *Client) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", ticker+c.tickerSuffix)
	q.Set("start", from.Format("2006-01-02"))
	q.Set("end", to.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/v1/history?%s", c.priceBaseURL, q.Encode())

	body, err := c.httpClient.Get(ctx, endpoint, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", ticker, err)
	}

	var bars []Bar
	if err := json.Unmarshal(body, &bars); err != nil {
		return nil, fmt.Errorf("decode daily bars for %s: %w", ticker, err)
	}

	// Newest first
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   len(bars),
	}).Debug("Fetched daily bars")
	return bars, nil
}

// EncodeBarsCSV serializes bars as a raw dataset file
func EncodeBarsCSV(bars []Bar) string {
	var b strings.Builder
	b.WriteString("date,open,high,low,close,volume\n")
	for _, bar := range bars {
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d\n",
			bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}
	return b.String()
}
