package idx

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/hintstechnology/bandarmolony-sub008/internal/sector"
)

// FetchSectorMapping downloads the sector classification page and parses it
// into a mapping document
func (c *Client) FetchSectorMapping(ctx context.Context, benchmark string) (*sector.Mapping, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.httpClient.Get(ctx, c.sectorURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch sector page: %w", err)
	}

	sectors, err := ParseSectorTable(string(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithField("sectors", len(sectors)).Debug("Fetched sector mapping")
	return &sector.Mapping{Benchmark: benchmark, Sectors: sectors}, nil
}

// ParseSectorTable extracts sector membership from the classification page.
// Expected markup is one table with a ticker column and a sector column:
//
//	<table id="classification">
//	  <tr><td class="ticker">BBCA</td><td class="sector">Financials</td></tr>
//	</table>
func ParseSectorTable(html string) (map[string][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse sector page: %w", err)
	}

	sectors := make(map[string][]string)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		ticker := strings.TrimSpace(row.Find("td.ticker").Text())
		name := strings.TrimSpace(row.Find("td.sector").Text())
		if ticker == "" || name == "" {
			return
		}
		sectors[name] = append(sectors[name], ticker)
	})

	if len(sectors) == 0 {
		return nil, fmt.Errorf("sector page contained no classification rows")
	}

	for name := range sectors {
		sort.Strings(sectors[name])
	}
	return sectors, nil
}

// EncodeMappingYAML serializes a mapping as the stored document
func EncodeMappingYAML(m *sector.Mapping) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode sector mapping: %w", err)
	}
	return string(data), nil
}
