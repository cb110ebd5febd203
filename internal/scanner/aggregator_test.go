package scanner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/storage"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

func TestAggregator_Run(t *testing.T) {
	store := storage.NewMemory()
	store.Put("rrg/stock/BBCA.csv", "date,rs_ratio,rs_momentum\n2024-03-08,112.00,103.00\n2024-03-07,111.50,101.00\n")
	store.Put("rrg/stock/TLKM.csv", "date,rs_ratio,rs_momentum\n2024-03-08,95.00,102.00\n")
	store.Put("rrg/stock/ASII.csv", "date,rs_ratio,rs_momentum\n2024-03-08,85.00,97.00\n")
	store.Put("rrg/stock/EMPTY.csv", "date,rs_ratio,rs_momentum\n") // header only

	agg := NewAggregator(store, "rrg/", logger.NewNop())

	content, err := agg.Run(context.Background(), contracts.KindStock,
		[]string{"BBCA", "TLKM", "ASII", "EMPTY", "MISSING"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 4) // header + 3 ranked subjects
	assert.Equal(t, SummaryHeader, lines[0])

	// Ranked descending by RS-Ratio
	assert.True(t, strings.HasPrefix(lines[1], "BBCA,112.0,103.0,+0.60%,STRONG"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "TLKM,95.0,102.0,-0.25%,IMPROVING"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "ASII,85.0,97.0,-0.75%,WEAK"), lines[3])

	// Summary uploaded as the terminal artifact
	stored, err := store.DownloadText(context.Background(), "rrg/scanner_stocks.csv")
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestAggregator_Run_AllMissing(t *testing.T) {
	store := storage.NewMemory()
	agg := NewAggregator(store, "rrg/", logger.NewNop())

	content, err := agg.Run(context.Background(), contracts.KindSector, []string{"Banking", "Telco"})
	require.NoError(t, err)

	assert.Equal(t, SummaryHeader+"\n", content)
}

func TestAggregator_SummaryPath(t *testing.T) {
	agg := NewAggregator(storage.NewMemory(), "rrg/", logger.NewNop())

	assert.Equal(t, "rrg/scanner_stocks.csv", agg.SummaryPath(contracts.KindStock))
	assert.Equal(t, "rrg/scanner_sectors.csv", agg.SummaryPath(contracts.KindSector))
}

func TestEncodeSummary_PerformanceSign(t *testing.T) {
	rows := []contracts.ScannerRow{
		{Subject: "A", RSRatio: 100, RSMomentum: 100, Performance: 0, Trend: contracts.TrendNeutral},
		{Subject: "B", RSRatio: 90, RSMomentum: 99, Performance: -0.5, Trend: contracts.TrendNeutral},
	}

	out := EncodeSummary(rows)
	assert.Contains(t, out, "A,100.0,100.0,+0.00%,NEUTRAL")
	assert.Contains(t, out, "B,90.0,99.0,-0.50%,NEUTRAL")
}
