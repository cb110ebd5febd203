package rrg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		momentum float64
		want     contracts.Trend
	}{
		{name: "strong", ratio: 111, momentum: 101, want: contracts.TrendStrong},
		{name: "improving", ratio: 95, momentum: 102, want: contracts.TrendImproving},
		{name: "weakening", ratio: 105, momentum: 98, want: contracts.TrendWeakening},
		{name: "weak", ratio: 85, momentum: 97, want: contracts.TrendWeak},
		{name: "neutral above ratio threshold", ratio: 105, momentum: 100, want: contracts.TrendNeutral},
		{name: "neutral between weak and improving", ratio: 95, momentum: 99, want: contracts.TrendNeutral},
		{name: "110 exactly is not strong", ratio: 110, momentum: 101, want: contracts.TrendNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(tt.ratio, tt.momentum))
		})
	}
}

func TestPerformance(t *testing.T) {
	assert.InDelta(t, 0.5, Performance(110), 1e-9)
	assert.InDelta(t, -0.5, Performance(90), 1e-9)
	assert.InDelta(t, 0.0, Performance(100), 1e-9)
}

func TestNewScannerRow(t *testing.T) {
	row := NewScannerRow("BBCA", contracts.RRGPoint{Date: "2024-03-08", RSRatio: 112, RSMomentum: 103})

	assert.Equal(t, "BBCA", row.Subject)
	assert.Equal(t, 112.0, row.RSRatio)
	assert.Equal(t, 103.0, row.RSMomentum)
	assert.Equal(t, contracts.TrendStrong, row.Trend)
	assert.InDelta(t, 0.6, row.Performance, 1e-9)
}
