package sector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// seriesOf builds a newest-first series of n sequential trading dates
func seriesOf(subject string, n int, close float64) contracts.TimeSeries {
	s := contracts.TimeSeries{Subject: subject}
	for i := 0; i < n; i++ {
		day := n - i
		s.Points = append(s.Points, contracts.PricePoint{
			Date:  fmt.Sprintf("2024-01-%02d", day),
			Close: close,
		})
	}
	return s
}

func TestAggregator_ExcludesShortConstituents(t *testing.T) {
	agg := NewAggregator(logger.NewNop())

	benchmark := seriesOf("COMPOSITE", 30, 7000)
	constituents := []contracts.TimeSeries{
		seriesOf("A", 60, 100),
		seriesOf("B", 40, 200), // below the 50-point minimum
		seriesOf("C", 60, 300),
	}

	result, err := agg.Aggregate("Banking", benchmark, constituents)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Included)
	assert.Equal(t, 1, result.Excluded)
	assert.Equal(t, len(constituents), result.Included+result.Excluded)

	// A and C both cover every benchmark date: mean of 100 and 300
	require.NotEmpty(t, result.Series.Points)
	assert.Equal(t, 200.0, result.Series.Points[0].Close)
}

func TestAggregator_AllConstituentsTooShort(t *testing.T) {
	agg := NewAggregator(logger.NewNop())

	_, err := agg.Aggregate("Telco",
		seriesOf("COMPOSITE", 60, 7000),
		[]contracts.TimeSeries{seriesOf("A", 10, 100), seriesOf("B", 49, 200)},
	)
	require.Error(t, err)
	assert.Equal(t, contracts.KindSubjectNotFound, contracts.Classify(err))
}

func TestAggregator_SkipsDatesMissingFromBenchmark(t *testing.T) {
	agg := NewAggregator(logger.NewNop())

	// Benchmark misses the first 5 reference dates
	benchmark := seriesOf("COMPOSITE", 60, 7000)
	benchmark.Points = benchmark.Points[5:]

	result, err := agg.Aggregate("Banking",
		benchmark,
		[]contracts.TimeSeries{seriesOf("A", 60, 100)},
	)
	require.NoError(t, err)
	assert.Equal(t, 55, result.Series.Len())
	// First surviving date is the newest benchmark date
	assert.Equal(t, benchmark.Points[0].Date, result.Series.Points[0].Date)
}

func TestAggregator_PartialParticipation(t *testing.T) {
	agg := NewAggregator(logger.NewNop())

	benchmark := seriesOf("COMPOSITE", 60, 7000)
	a := seriesOf("A", 60, 100)
	b := seriesOf("B", 60, 300)
	// B misses the newest date; the mean there is A alone
	b.Points = b.Points[1:]

	result, err := agg.Aggregate("Banking", benchmark, []contracts.TimeSeries{a, b})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Series.Points[0].Close)
	assert.Equal(t, 200.0, result.Series.Points[1].Close)
}

func TestAggregator_TooFewAlignedDates(t *testing.T) {
	agg := NewAggregator(logger.NewNop())

	// Constituent is long enough but the benchmark only shares 9 dates
	benchmark := seriesOf("COMPOSITE", 9, 7000)

	_, err := agg.Aggregate("Banking",
		benchmark,
		[]contracts.TimeSeries{seriesOf("A", 60, 100)},
	)
	require.Error(t, err)
	assert.Equal(t, contracts.KindInsufficientData, contracts.Classify(err))
}

func TestParseMapping(t *testing.T) {
	doc := `
benchmark: COMPOSITE
sectors:
  Banking: [BBCA, BBRI, BMRI]
  Telco: [TLKM, ISAT]
`
	m, err := ParseMapping([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "COMPOSITE", m.Benchmark)
	assert.Equal(t, []string{"Banking", "Telco"}, m.SectorNames())

	tickers, err := m.Constituents("Banking")
	require.NoError(t, err)
	assert.Equal(t, []string{"BBCA", "BBRI", "BMRI"}, tickers)

	_, err = m.Constituents("Mining")
	require.Error(t, err)
	assert.Equal(t, contracts.KindSubjectNotFound, contracts.Classify(err))
}

func TestParseMapping_Empty(t *testing.T) {
	_, err := ParseMapping([]byte("benchmark: COMPOSITE\n"))
	require.Error(t, err)
}
