package sector

import (
	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

const (
	// MinConstituentPoints is the raw length below which a constituent is
	// excluded from aggregation.
	MinConstituentPoints = 50
	// MinAggregatedDates is the minimum aligned length of a valid sector
	// series.
	MinAggregatedDates = 10
)

// AggregateResult carries the aligned sector series plus participation
// counts. Included + Excluded equals the sector's discovered constituents.
type AggregateResult struct {
	Series   contracts.TimeSeries
	Included int
	Excluded int
}

// Aggregator combines constituent series plus a benchmark series into one
// aligned sector aggregate.
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a new Aggregator
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log}
}

// Aggregate builds the sector series. Constituents shorter than
// MinConstituentPoints are excluded. The first surviving constituent is the
// date reference: dates absent from the benchmark are skipped, and each kept
// date takes the arithmetic mean close across whichever constituents have
// that date (partial participation allowed).
func (a *Aggregator) Aggregate(sectorName string, benchmark contracts.TimeSeries, constituents []contracts.TimeSeries) (*AggregateResult, error) {
	usable := make([]contracts.TimeSeries, 0, len(constituents))
	excluded := 0
	for _, c := range constituents {
		if c.Len() < MinConstituentPoints {
			excluded++
			a.logger.WithFields(map[string]interface{}{
				"sector":      sectorName,
				"constituent": c.Subject,
				"points":      c.Len(),
				"min":         MinConstituentPoints,
			}).Warn("Excluding constituent below minimum length")
			continue
		}
		usable = append(usable, c)
	}

	if len(usable) == 0 {
		return nil, &contracts.SubjectNotFoundError{Subject: sectorName}
	}

	benchDates := make(map[string]struct{}, benchmark.Len())
	for _, p := range benchmark.Points {
		benchDates[p.Date] = struct{}{}
	}

	// Close lookup per constituent; dates are canonical after ingestion
	closesByDate := make([]map[string]float64, len(usable))
	for i, c := range usable {
		m := make(map[string]float64, c.Len())
		for _, p := range c.Points {
			m[p.Date] = p.Close
		}
		closesByDate[i] = m
	}

	reference := usable[0]
	series := contracts.TimeSeries{Subject: sectorName}
	for _, refPoint := range reference.Points {
		if _, ok := benchDates[refPoint.Date]; !ok {
			continue
		}

		var sum float64
		var count int
		for _, closes := range closesByDate {
			if v, ok := closes[refPoint.Date]; ok {
				sum += v
				count++
			}
		}
		if count == 0 {
			continue
		}

		series.Points = append(series.Points, contracts.PricePoint{
			Date:  refPoint.Date,
			Close: sum / float64(count),
		})
	}

	if series.Len() < MinAggregatedDates {
		return nil, &contracts.InsufficientDataError{Subject: sectorName, Got: series.Len(), Min: MinAggregatedDates}
	}

	a.logger.WithFields(map[string]interface{}{
		"sector":   sectorName,
		"included": len(usable),
		"excluded": excluded,
		"dates":    series.Len(),
	}).Debug("Aggregated sector series")

	return &AggregateResult{
		Series:   series,
		Included: len(usable),
		Excluded: excluded,
	}, nil
}
