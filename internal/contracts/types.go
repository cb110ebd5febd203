package contracts

import "time"

// PricePoint is one raw instrument observation. Date is always in canonical
// YYYY-MM-DD form after ingestion; raw sources may carry M/D/YYYY instead.
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// TimeSeries is the ordered price history of one subject. Order is source
// file order (newest first) and is never re-sorted.
type TimeSeries struct {
	Subject string       `json:"subject"`
	Points  []PricePoint `json:"points"`
}

// Len returns the number of points in the series
func (s TimeSeries) Len() int {
	return len(s.Points)
}

// RRGPoint is one derived (RS-Ratio, RS-Momentum) observation
type RRGPoint struct {
	Date       string  `json:"date"`
	RSRatio    float64 `json:"rs_ratio"`
	RSMomentum float64 `json:"rs_momentum"`
}

// Quadrant classifies a subject's latest RRG point
type Quadrant string

const (
	QuadrantLeading   Quadrant = "Leading"
	QuadrantImproving Quadrant = "Improving"
	QuadrantWeakening Quadrant = "Weakening"
	QuadrantLagging   Quadrant = "Lagging"
)

// Trend is the scanner-oriented classification of a latest point. It uses a
// stricter threshold set than the quadrant.
type Trend string

const (
	TrendStrong    Trend = "STRONG"
	TrendImproving Trend = "IMPROVING"
	TrendWeakening Trend = "WEAKENING"
	TrendWeak      Trend = "WEAK"
	TrendNeutral   Trend = "NEUTRAL"
)

// RRGResult is the full per-subject computation output. It is immutable
// once produced and discarded after its output file is written.
type RRGResult struct {
	Subject        string     `json:"subject"`
	Benchmark      string     `json:"benchmark"`
	Trajectory     []RRGPoint `json:"trajectory"` // newest first
	LatestPoint    RRGPoint   `json:"latest_point"`
	Quadrant       Quadrant   `json:"quadrant"`
	TotalPoints    int        `json:"total_points"`
	StocksAnalyzed int        `json:"stocks_analyzed"` // constituents for sectors, 1 for stocks
}

// ScannerRow is one subject's entry in the cross-sectional scanner table
type ScannerRow struct {
	Subject     string  `json:"subject"`
	RSRatio     float64 `json:"rs_ratio"`
	RSMomentum  float64 `json:"rs_momentum"`
	Performance float64 `json:"performance"`
	Trend       Trend   `json:"trend"`
}

// SubjectKind distinguishes individual instruments from sector aggregates
type SubjectKind string

const (
	KindStock  SubjectKind = "stock"
	KindSector SubjectKind = "sector"
)

// TriggerSource identifies what started a generation run
type TriggerSource string

const (
	TriggerStartup   TriggerSource = "startup"
	TriggerScheduled TriggerSource = "scheduled"
	TriggerManual    TriggerSource = "manual"
	TriggerDebug     TriggerSource = "debug"
)

// RunStatus is the lifecycle state of a generation run
type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunCounters are the per-subject outcome counts of a run. Every subject in
// the universe lands in exactly one of created/skipped/failed.
type RunCounters struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// RunSnapshot is a read-only view of the current run state
type RunSnapshot struct {
	IsRunning        bool          `json:"is_running"`
	Status           RunStatus     `json:"status"`
	Progress         float64       `json:"progress"` // 0-100
	CurrentOperation string        `json:"current_operation"`
	Counters         RunCounters   `json:"counters"`
	TriggerSource    TriggerSource `json:"trigger_source,omitempty"`
	StartedAt        time.Time     `json:"started_at,omitempty"`
}
