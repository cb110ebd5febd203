package timeseries

import "github.com/hintstechnology/bandarmolony-sub008/internal/contracts"

// AlignedBar pairs a subject close with the benchmark close for one date
type AlignedBar struct {
	Date      string
	Subject   float64
	Benchmark float64
}

// Align pairs subject and benchmark observations by canonical date. Subject
// order is preserved (newest first); dates absent from the benchmark are
// skipped.
func Align(subject, benchmark contracts.TimeSeries) []AlignedBar {
	benchByDate := make(map[string]float64, len(benchmark.Points))
	for _, p := range benchmark.Points {
		benchByDate[p.Date] = p.Close
	}

	bars := make([]AlignedBar, 0, len(subject.Points))
	for _, p := range subject.Points {
		b, ok := benchByDate[p.Date]
		if !ok {
			continue
		}
		bars = append(bars, AlignedBar{
			Date:      p.Date,
			Subject:   p.Close,
			Benchmark: b,
		})
	}
	return bars
}
