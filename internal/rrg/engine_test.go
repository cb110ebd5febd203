package rrg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/timeseries"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// bars builds an aligned series in stored order (newest first) from
// chronological closes.
func bars(subjectCloses, benchmarkCloses []float64) []timeseries.AlignedBar {
	n := len(subjectCloses)
	out := make([]timeseries.AlignedBar, n)
	for i := 0; i < n; i++ {
		chrono := n - 1 - i // newest first
		out[i] = timeseries.AlignedBar{
			Date:      fmt.Sprintf("2024-01-%02d", chrono+1),
			Subject:   subjectCloses[chrono],
			Benchmark: benchmarkCloses[chrono],
		}
	}
	return out
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestEngine_Compute_SubjectEqualsBenchmark(t *testing.T) {
	engine := NewEngine(0, logger.NewNop())

	closes := []float64{100, 101, 99, 103, 104, 102, 105, 107, 106, 108, 110, 111}
	result, err := engine.Compute("BBCA", "COMPOSITE", bars(closes, closes))
	require.NoError(t, err)

	// RawRS == 1 everywhere, AvgRS == 1, so every derived value is exactly 100
	for i, p := range result.Trajectory {
		assert.Equal(t, 100.0, p.RSRatio, "ratio at %d", i)
		assert.Equal(t, 100.0, p.RSMomentum, "momentum at %d", i)
	}
	// ratio == 100 fails both the >100 and <100 tests
	assert.Equal(t, contracts.QuadrantLagging, result.Quadrant)
	assert.Equal(t, len(closes), result.TotalPoints)
}

func TestEngine_Compute_ZeroBenchmarkFallsBackTo100(t *testing.T) {
	engine := NewEngine(0, logger.NewNop())

	subject := constant(50, 12)
	benchmark := constant(7000, 12)
	benchmark[4] = 0 // RawRS becomes 0 at this row

	result, err := engine.Compute("TLKM", "COMPOSITE", bars(subject, benchmark))
	require.NoError(t, err)

	// Chronological index 4 is stored index n-1-4
	stored := len(subject) - 1 - 4
	assert.Equal(t, 100.0, result.Trajectory[stored].RSRatio)
}

func TestEngine_Compute_InsufficientDataBoundary(t *testing.T) {
	engine := NewEngine(0, logger.NewNop())

	// 9 valid points fails
	_, err := engine.Compute("BBNI", "COMPOSITE", bars(constant(100, 9), constant(7000, 9)))
	require.Error(t, err)
	assert.Equal(t, contracts.KindInsufficientData, contracts.Classify(err))

	// exactly 10 succeeds
	result, err := engine.Compute("BBNI", "COMPOSITE", bars(constant(100, 10), constant(7000, 10)))
	require.NoError(t, err)
	assert.Equal(t, 10, result.TotalPoints)
}

func TestEngine_Compute_LookbackTrajectory(t *testing.T) {
	engine := NewEngine(5, logger.NewNop())

	n := 200
	subject := make([]float64, n)
	benchmark := make([]float64, n)
	for i := 0; i < n; i++ {
		subject[i] = 100 + float64(i)*0.5
		benchmark[i] = 7000 + float64(i)
	}

	all := bars(subject, benchmark)
	result, err := engine.Compute("ASII", "COMPOSITE", all)
	require.NoError(t, err)

	require.Len(t, result.Trajectory, 5)
	assert.Equal(t, n, result.TotalPoints)
	assert.Equal(t, result.Trajectory[0], result.LatestPoint)
	// Newest-first: trajectory dates match the first stored rows
	for i := 0; i < 5; i++ {
		assert.Equal(t, all[i].Date, result.Trajectory[i].Date)
	}
}

func TestEngine_Compute_MomentumIsChronological(t *testing.T) {
	engine := NewEngine(0, logger.NewNop())

	// Subject strengthens steadily against a flat benchmark, so the latest
	// ratio is the series' maximum and the latest momentum is above 100.
	n := 20
	subject := make([]float64, n)
	for i := 0; i < n; i++ {
		subject[i] = 100 * (1 + 0.01*float64(i))
	}
	result, err := engine.Compute("BMRI", "COMPOSITE", bars(subject, constant(7000, n)))
	require.NoError(t, err)

	latest := result.LatestPoint
	assert.Greater(t, latest.RSRatio, 100.0)
	assert.Greater(t, latest.RSMomentum, 100.0)
	assert.Equal(t, contracts.QuadrantLeading, result.Quadrant)

	// The chronologically oldest row carries the momentum fallback
	oldest := result.Trajectory[len(result.Trajectory)-1]
	assert.Equal(t, 100.0, oldest.RSMomentum)
}

func TestClassifyQuadrant(t *testing.T) {
	tests := []struct {
		ratio    float64
		momentum float64
		want     contracts.Quadrant
	}{
		{101, 101, contracts.QuadrantLeading},
		{99, 101, contracts.QuadrantImproving},
		{101, 99, contracts.QuadrantWeakening},
		{99, 99, contracts.QuadrantLagging},
		{100, 101, contracts.QuadrantLagging}, // boundary
		{100, 99, contracts.QuadrantLagging},  // boundary
		{100, 100, contracts.QuadrantLagging},
	}

	for _, tt := range tests {
		got := ClassifyQuadrant(tt.ratio, tt.momentum)
		assert.Equal(t, tt.want, got, "ratio=%v momentum=%v", tt.ratio, tt.momentum)
	}
}

func TestEncodeCSV(t *testing.T) {
	result := &contracts.RRGResult{
		Subject:   "BBCA",
		Benchmark: "COMPOSITE",
		Trajectory: []contracts.RRGPoint{
			{Date: "2024-03-08", RSRatio: 103.456, RSMomentum: 100.991},
			{Date: "2024-03-07", RSRatio: 102.4, RSMomentum: 99.006},
		},
	}

	csv := EncodeCSV(result)
	assert.Equal(t, "date,rs_ratio,rs_momentum\n2024-03-08,103.46,100.99\n2024-03-07,102.40,99.01\n", csv)
}
