package rrg

import "github.com/hintstechnology/bandarmolony-sub008/internal/contracts"

// ClassifyTrend applies the scanner's stricter threshold set to a latest
// point. This is independent of the per-subject quadrant.
func ClassifyTrend(ratio, momentum float64) contracts.Trend {
	switch {
	case ratio > 110 && momentum > 100:
		return contracts.TrendStrong
	case ratio < 100 && momentum > 100:
		return contracts.TrendImproving
	case ratio > 100 && momentum < 100:
		return contracts.TrendWeakening
	case ratio < 90 && momentum < 100:
		return contracts.TrendWeak
	default:
		return contracts.TrendNeutral
	}
}

// Performance approximates a return from the ratio's deviation from 100.
// It is a deviation-scaled proxy, not a real return.
func Performance(ratio float64) float64 {
	return (ratio - 100) * 0.05
}

// NewScannerRow builds one scanner table entry from a subject's latest point
func NewScannerRow(subject string, latest contracts.RRGPoint) contracts.ScannerRow {
	return contracts.ScannerRow{
		Subject:     subject,
		RSRatio:     latest.RSRatio,
		RSMomentum:  latest.RSMomentum,
		Performance: Performance(latest.RSRatio),
		Trend:       ClassifyTrend(latest.RSRatio, latest.RSMomentum),
	}
}
