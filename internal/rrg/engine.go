package rrg

import (
	"math"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/timeseries"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// MinValidPoints is the minimum length of the valid RRG point sequence
const MinValidPoints = 10

// Engine converts an aligned subject/benchmark series into a sequence of
// (RS-Ratio, RS-Momentum) points and classifies the latest point.
//
// RS-Ratio is centered so the subject's own historical average raw relative
// strength maps to 100. RS-Momentum compares chronologically adjacent stored
// rows (trading-day gaps count as one period) and maps "no change" to 100.
type Engine struct {
	lookback int
	logger   *logger.Logger
}

// NewEngine creates a new Engine. lookback is the trajectory length.
func NewEngine(lookback int, log *logger.Logger) *Engine {
	return &Engine{
		lookback: lookback,
		logger:   log,
	}
}

// Compute derives the RRG result for one subject. bars are in stored order
// (newest first); momentum is computed walking the series chronologically so
// the oldest row takes the 100 fallback, not the latest.
func (e *Engine) Compute(subject, benchmark string, bars []timeseries.AlignedBar) (*contracts.RRGResult, error) {
	n := len(bars)

	// Raw relative strength per row; 0 stands in for an unusable ratio.
	rawRS := make([]float64, n)
	for i, bar := range bars {
		if bar.Benchmark == 0 {
			continue
		}
		rs := bar.Subject / bar.Benchmark
		if isFinite(rs) {
			rawRS[i] = rs
		}
	}

	// Average over the nonzero, finite raw values across the whole series
	var sum float64
	var count int
	for _, rs := range rawRS {
		if rs != 0 && isFinite(rs) {
			sum += rs
			count++
		}
	}
	var avgRS float64
	if count > 0 {
		avgRS = sum / float64(count)
	}

	ratio := make([]float64, n)
	for i, rs := range rawRS {
		if rs == 0 || !isFinite(rs) || avgRS == 0 {
			ratio[i] = 100
			continue
		}
		ratio[i] = (rs / avgRS) * 100
	}

	// Momentum walks oldest to newest: row i is compared against row i+1,
	// its chronological predecessor in a newest-first series.
	momentum := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		if i == n-1 {
			momentum[i] = 100
			continue
		}
		prev := ratio[i+1]
		cur := ratio[i]
		if prev != 0 && cur != 0 && isFinite(prev) && isFinite(cur) {
			momentum[i] = (cur / prev) * 100
		} else {
			momentum[i] = 100
		}
	}

	// Keep rows where both derived values are finite, preserving order
	valid := make([]contracts.RRGPoint, 0, n)
	for i, bar := range bars {
		if !isFinite(ratio[i]) || !isFinite(momentum[i]) {
			continue
		}
		valid = append(valid, contracts.RRGPoint{
			Date:       bar.Date,
			RSRatio:    ratio[i],
			RSMomentum: momentum[i],
		})
	}

	if len(valid) < MinValidPoints {
		return nil, &contracts.InsufficientDataError{Subject: subject, Got: len(valid), Min: MinValidPoints}
	}

	trajectory := valid
	if e.lookback > 0 && e.lookback < len(valid) {
		trajectory = valid[:e.lookback]
	}

	latest := trajectory[0]
	result := &contracts.RRGResult{
		Subject:        subject,
		Benchmark:      benchmark,
		Trajectory:     trajectory,
		LatestPoint:    latest,
		Quadrant:       ClassifyQuadrant(latest.RSRatio, latest.RSMomentum),
		TotalPoints:    len(valid),
		StocksAnalyzed: 1,
	}

	e.logger.WithFields(map[string]interface{}{
		"subject":     subject,
		"benchmark":   benchmark,
		"points":      len(valid),
		"quadrant":    result.Quadrant,
		"rs_ratio":    latest.RSRatio,
		"rs_momentum": latest.RSMomentum,
	}).Debug("Computed RRG result")

	return result, nil
}

// ClassifyQuadrant places a point into one of the four RRG quadrants. The
// boundary ratio == 100 falls through to Lagging.
func ClassifyQuadrant(ratio, momentum float64) contracts.Quadrant {
	switch {
	case ratio > 100 && momentum > 100:
		return contracts.QuadrantLeading
	case ratio < 100 && momentum > 100:
		return contracts.QuadrantImproving
	case ratio > 100 && momentum < 100:
		return contracts.QuadrantWeakening
	default:
		return contracts.QuadrantLagging
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
