package generation

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/rrg"
	"github.com/hintstechnology/bandarmolony-sub008/internal/scanner"
	"github.com/hintstechnology/bandarmolony-sub008/internal/sector"
	"github.com/hintstechnology/bandarmolony-sub008/internal/timeseries"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/config"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// Config holds the orchestrator knobs
type Config struct {
	WaveSize            int
	Concurrency         int
	PrecheckConcurrency int
	HeapReclaimMB       int
	Benchmark           string
	DatasetPrefix       string
	OutputPrefix        string
	MappingPath         string
}

// ConfigFromApp maps application config to orchestrator config
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		WaveSize:            cfg.Generation.WaveSize,
		Concurrency:         cfg.Generation.Concurrency,
		PrecheckConcurrency: cfg.Generation.PrecheckConcurrency,
		HeapReclaimMB:       cfg.Generation.HeapReclaimMB,
		Benchmark:           cfg.Generation.Benchmark,
		DatasetPrefix:       cfg.Generation.DatasetPrefix,
		OutputPrefix:        cfg.Generation.OutputPrefix,
		MappingPath:         cfg.Generation.MappingPath,
	}
}

// subjectUnit is one entry of the work queue. Weight feeds the progress
// denominator: a sector weighs as many units as it has usable constituents.
type subjectUnit struct {
	Name         string
	Kind         contracts.SubjectKind
	Constituents []string
	Weight       int
}

// universe is the enumerated and pre-counted subject set of one run
type universe struct {
	units       []subjectUnit
	totalWeight int
}

// Orchestrator drives a full generation run: enumerate the universe, apply
// skip/force policy, execute bounded-concurrency waves through the
// indicator engine, then refresh the scanner summaries.
type Orchestrator struct {
	cfg     Config
	storage contracts.Storage
	runLog  contracts.RunLog
	cache   *Cache
	loader  *timeseries.Loader
	engine  *rrg.Engine
	sectors *sector.Aggregator
	scanner *scanner.Aggregator
	state   *RunState
	logger  *logger.Logger
}

// NewOrchestrator wires a generation orchestrator
func NewOrchestrator(
	cfg Config,
	store contracts.Storage,
	runLog contracts.RunLog,
	cache *Cache,
	loader *timeseries.Loader,
	engine *rrg.Engine,
	sectors *sector.Aggregator,
	scan *scanner.Aggregator,
	log *logger.Logger,
) *Orchestrator {
	// The precheck loops advance by this cap; zero would never advance.
	if cfg.PrecheckConcurrency <= 0 {
		cfg.PrecheckConcurrency = 1
	}
	return &Orchestrator{
		cfg:     cfg,
		storage: store,
		runLog:  runLog,
		cache:   cache,
		loader:  loader,
		engine:  engine,
		sectors: sectors,
		scanner: scan,
		state:   NewRunState(),
		logger:  log.WithField("module", "generation"),
	}
}

// Status returns a read-only snapshot of the current run
func (o *Orchestrator) Status() contracts.RunSnapshot {
	return o.state.Snapshot()
}

// Run executes one generation run. A second trigger while one is active is
// rejected by the guard and logged as a warning; per-subject failures are
// counted but never abort the run. Only universe enumeration or run-log
// initialization failure marks the run Failed.
func (o *Orchestrator) Run(ctx context.Context, force bool, source contracts.TriggerSource) error {
	if !o.state.TryBegin(source) {
		active := o.state.Snapshot().TriggerSource
		err := &contracts.GenerationInProgressError{Active: active, Requested: source}
		o.logger.WithFields(map[string]interface{}{
			"active_source":    active,
			"requested_source": source,
		}).Warn("Generation already in progress, trigger ignored")
		return err
	}
	defer o.cache.ClearActive()

	o.logger.WithFields(map[string]interface{}{
		"source": source,
		"force":  force,
	}).Info("Starting generation run")

	if err := o.runLog.BeginRun(ctx, source); err != nil {
		o.state.Finish(contracts.RunFailed)
		return fmt.Errorf("initialize run log: %w", err)
	}

	o.state.SetProgress(0, "enumerating universe")
	uni, benchmark, err := o.enumerateUniverse(ctx)
	if err != nil {
		o.failRun(ctx, fmt.Errorf("enumerate universe: %w", err))
		return err
	}

	// Publish the subjects about to be processed; concurrent cache readers
	// treat them as provisional until run end.
	names := make([]string, len(uni.units))
	for i, u := range uni.units {
		names[i] = u.Name
	}
	o.cache.MarkActive(names)

	pending := uni.units
	if !force {
		o.state.SetProgress(0, "checking existing output")
		pending = o.precheckExisting(ctx, uni.units)
	}

	o.logger.WithFields(map[string]interface{}{
		"universe": len(uni.units),
		"pending":  len(pending),
		"skipped":  len(uni.units) - len(pending),
	}).Info("Universe enumerated")

	doneWeight := uni.totalWeight - pendingWeight(pending)
	o.publishProgress(ctx, doneWeight, uni.totalWeight, "starting waves")

	waves := chunkUnits(pending, o.cfg.WaveSize)
	for i, wave := range waves {
		operation := fmt.Sprintf("wave %d/%d", i+1, len(waves))
		o.runWave(ctx, wave, benchmark)

		doneWeight += waveWeight(wave)
		o.publishProgress(ctx, doneWeight, uni.totalWeight, operation)
		o.maybeReclaimMemory()

		// Brief yield between waves
		time.Sleep(25 * time.Millisecond)
	}

	counters := o.state.Counters()
	if counters.Created > 0 {
		o.state.SetProgress(o.state.Snapshot().Progress, "scanner summaries")
		o.runScanners(ctx, uni)
	} else {
		o.logger.Info("No new output produced, scanner summaries left untouched")
	}

	counters = o.state.Counters()
	if err := o.runLog.MarkCompleted(ctx, counters); err != nil {
		o.logger.WithError(err).Error("Failed to mark run completed in run log")
	}
	o.state.Finish(contracts.RunCompleted)

	o.logger.WithFields(map[string]interface{}{
		"processed": counters.Processed,
		"created":   counters.Created,
		"skipped":   counters.Skipped,
		"failed":    counters.Failed,
	}).Info("Generation run completed")

	return nil
}

// failRun marks the run Failed in both the run log and the local state
func (o *Orchestrator) failRun(ctx context.Context, cause error) {
	if err := o.runLog.MarkFailed(ctx, cause.Error()); err != nil {
		o.logger.WithError(err).Error("Failed to mark run failed in run log")
	}
	o.state.Finish(contracts.RunFailed)
	o.logger.WithError(cause).Error("Generation run failed")
}

// enumerateUniverse lists the datasets, loads the sector mapping and runs
// the pre-count pass. The dataset listing goes through the read-through
// cache; a later run in the same process reuses it until memory reclaim
// drops it. Content reads here use DownloadTextBypass: the pre-count may
// touch files this run never processes and must not populate the shared
// cache.
func (o *Orchestrator) enumerateUniverse(ctx context.Context) (*universe, contracts.TimeSeries, error) {
	var none contracts.TimeSeries

	paths, err := o.cache.ListPaths(ctx, o.cfg.DatasetPrefix)
	if err != nil {
		return nil, none, err
	}

	available := make(map[string]struct{}, len(paths))
	var stocks []string
	for _, p := range paths {
		ticker, ok := tickerFromPath(p, o.cfg.DatasetPrefix)
		if !ok {
			continue
		}
		available[ticker] = struct{}{}
		if ticker != o.cfg.Benchmark {
			stocks = append(stocks, ticker)
		}
	}
	if len(stocks) == 0 {
		return nil, none, &contracts.SubjectNotFoundError{Subject: "universe", Path: o.cfg.DatasetPrefix}
	}

	// Benchmark must load before anything else is worth doing
	rawBench, err := o.cache.DownloadTextBypass(ctx, o.datasetPath(o.cfg.Benchmark))
	if err != nil {
		return nil, none, err
	}
	benchmark, err := o.loader.Load(o.cfg.Benchmark, rawBench)
	if err != nil {
		return nil, none, err
	}

	rawMapping, err := o.cache.DownloadTextBypass(ctx, o.cfg.MappingPath)
	if err != nil {
		return nil, none, err
	}
	mapping, err := sector.ParseMapping([]byte(rawMapping))
	if err != nil {
		return nil, none, err
	}

	uni := &universe{}
	for _, ticker := range stocks {
		uni.units = append(uni.units, subjectUnit{
			Name:   ticker,
			Kind:   contracts.KindStock,
			Weight: 1,
		})
		uni.totalWeight++
	}

	for _, name := range mapping.SectorNames() {
		constituents, err := mapping.Constituents(name)
		if err != nil {
			continue
		}
		usable := o.preCountConstituents(ctx, name, constituents, available)
		if len(usable) == 0 {
			o.logger.WithField("sector", name).Warn("Sector has no usable constituents, excluded from universe")
			continue
		}
		uni.units = append(uni.units, subjectUnit{
			Name:         name,
			Kind:         contracts.KindSector,
			Constituents: usable,
			Weight:       len(usable),
		})
		uni.totalWeight += len(usable)
	}

	return uni, benchmark, nil
}

// preCountConstituents sizes a sector for progress reporting by reading its
// constituent files directly (cache bypass) under the precheck concurrency
// cap. A constituent counts when its file exists and parses to at least the
// aggregation minimum.
func (o *Orchestrator) preCountConstituents(ctx context.Context, sectorName string, constituents []string, available map[string]struct{}) []string {
	type outcome struct {
		ticker string
		ok     bool
	}

	results := make([]outcome, len(constituents))
	for start := 0; start < len(constituents); start += o.cfg.PrecheckConcurrency {
		end := start + o.cfg.PrecheckConcurrency
		if end > len(constituents) {
			end = len(constituents)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			ticker := constituents[i]
			if _, ok := available[ticker]; !ok {
				results[i] = outcome{ticker: ticker}
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				raw, err := o.cache.DownloadTextBypass(ctx, o.datasetPath(ticker))
				if err != nil {
					results[i] = outcome{ticker: ticker}
					return
				}
				series, err := o.loader.Load(ticker, raw)
				results[i] = outcome{
					ticker: ticker,
					ok:     err == nil && series.Len() >= sector.MinConstituentPoints,
				}
			}()
		}
		wg.Wait()
	}

	var usable []string
	for _, r := range results {
		if r.ok {
			usable = append(usable, r.ticker)
		}
	}
	o.logger.WithFields(map[string]interface{}{
		"sector": sectorName,
		"mapped": len(constituents),
		"usable": len(usable),
	}).Debug("Pre-counted sector constituents")
	return usable
}

// precheckExisting drops subjects that already have output, at a smaller
// concurrency cap than the main waves. A failed existence check leaves the
// subject in the queue.
func (o *Orchestrator) precheckExisting(ctx context.Context, units []subjectUnit) []subjectUnit {
	exists := make([]bool, len(units))

	for start := 0; start < len(units); start += o.cfg.PrecheckConcurrency {
		end := start + o.cfg.PrecheckConcurrency
		if end > len(units) {
			end = len(units)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			unit := units[i]
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := o.storage.Exists(ctx, o.outputPath(unit))
				if err != nil {
					o.logger.WithError(err).WithField("subject", unit.Name).Warn("Existence precheck failed, subject kept in queue")
					return
				}
				exists[i] = ok
			}()
		}
		wg.Wait()
	}

	var pending []subjectUnit
	for i, unit := range units {
		if exists[i] {
			o.state.RecordSkipped()
			continue
		}
		pending = append(pending, unit)
	}
	return pending
}

// runWave processes one wave in sub-batches of the concurrency cap. Each
// sub-batch settles fully, success or failure, before the next starts.
func (o *Orchestrator) runWave(ctx context.Context, wave []subjectUnit, benchmark contracts.TimeSeries) {
	for start := 0; start < len(wave); start += o.cfg.Concurrency {
		end := start + o.cfg.Concurrency
		if end > len(wave) {
			end = len(wave)
		}

		var wg sync.WaitGroup
		for _, unit := range wave[start:end] {
			unit := unit
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := o.processSubject(ctx, unit, benchmark); err != nil {
					o.state.RecordFailed()
					o.logger.WithError(err).WithFields(map[string]interface{}{
						"subject": unit.Name,
						"kind":    unit.Kind,
						"class":   contracts.Classify(err),
					}).Error("Subject failed")
					return
				}
				o.state.RecordCreated()
			}()
		}
		wg.Wait()
	}
}

// processSubject computes and writes one subject's RRG output
func (o *Orchestrator) processSubject(ctx context.Context, unit subjectUnit, benchmark contracts.TimeSeries) error {
	var (
		result *contracts.RRGResult
		err    error
	)

	switch unit.Kind {
	case contracts.KindSector:
		result, err = o.computeSector(ctx, unit, benchmark)
	default:
		result, err = o.computeStock(ctx, unit.Name, benchmark)
	}
	if err != nil {
		return err
	}

	return o.storage.UploadText(ctx, o.outputPath(unit), rrg.EncodeCSV(result), "text/csv")
}

// computeStock derives one instrument's RRG result
func (o *Orchestrator) computeStock(ctx context.Context, ticker string, benchmark contracts.TimeSeries) (*contracts.RRGResult, error) {
	raw, err := o.cache.DownloadText(ctx, o.datasetPath(ticker))
	if err != nil {
		return nil, err
	}
	series, err := o.loader.Load(ticker, raw)
	if err != nil {
		return nil, err
	}

	bars := timeseries.Align(series, benchmark)
	return o.engine.Compute(ticker, benchmark.Subject, bars)
}

// computeSector aggregates a sector's constituents and derives its result
func (o *Orchestrator) computeSector(ctx context.Context, unit subjectUnit, benchmark contracts.TimeSeries) (*contracts.RRGResult, error) {
	constituents := make([]contracts.TimeSeries, 0, len(unit.Constituents))
	for _, ticker := range unit.Constituents {
		raw, err := o.cache.DownloadText(ctx, o.datasetPath(ticker))
		if err != nil {
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"sector":      unit.Name,
				"constituent": ticker,
			}).Warn("Constituent unreadable, excluded from aggregation")
			continue
		}
		series, err := o.loader.Load(ticker, raw)
		if err != nil {
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"sector":      unit.Name,
				"constituent": ticker,
			}).Warn("Constituent unparseable, excluded from aggregation")
			continue
		}
		constituents = append(constituents, series)
	}

	aggregate, err := o.sectors.Aggregate(unit.Name, benchmark, constituents)
	if err != nil {
		return nil, err
	}

	bars := timeseries.Align(aggregate.Series, benchmark)
	result, err := o.engine.Compute(unit.Name, benchmark.Subject, bars)
	if err != nil {
		return nil, err
	}
	result.StocksAnalyzed = aggregate.Included
	return result, nil
}

// runScanners refreshes the summary artifact of each scanner type. Scanner
// failures are logged, never fatal.
func (o *Orchestrator) runScanners(ctx context.Context, uni *universe) {
	byKind := map[contracts.SubjectKind][]string{}
	for _, u := range uni.units {
		byKind[u.Kind] = append(byKind[u.Kind], u.Name)
	}

	for _, kind := range []contracts.SubjectKind{contracts.KindSector, contracts.KindStock} {
		subjects := byKind[kind]
		if len(subjects) == 0 {
			continue
		}
		if _, err := o.scanner.Run(ctx, kind, subjects); err != nil {
			o.logger.WithError(err).WithField("kind", kind).Error("Scanner stage failed")
		}
	}
}

// publishProgress pushes progress to local state and the run log. The run
// log's own failures are logged and dropped.
func (o *Orchestrator) publishProgress(ctx context.Context, doneWeight, totalWeight int, operation string) {
	progress := 100.0
	if totalWeight > 0 {
		progress = float64(doneWeight) / float64(totalWeight) * 100
	}
	o.state.SetProgress(progress, operation)

	if err := o.runLog.UpdateProgress(ctx, progress, operation); err != nil {
		o.logger.WithError(err).Warn("Failed to persist progress to run log")
	}
}

// maybeReclaimMemory drops cached file bytes and forces a collection when
// the heap exceeds the configured threshold
func (o *Orchestrator) maybeReclaimMemory() {
	if o.cfg.HeapReclaimMB <= 0 {
		return
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	threshold := uint64(o.cfg.HeapReclaimMB) * 1024 * 1024
	if ms.HeapAlloc <= threshold {
		return
	}

	dropped := o.cache.Size()
	o.cache.Clear()
	runtime.GC()
	o.logger.WithFields(map[string]interface{}{
		"heap_mb":         ms.HeapAlloc / 1024 / 1024,
		"dropped_entries": dropped,
	}).Info("Reclaimed memory between waves")
}

// datasetPath is the raw price file of one ticker
func (o *Orchestrator) datasetPath(ticker string) string {
	return o.cfg.DatasetPrefix + ticker + ".csv"
}

// outputPath is the per-subject RRG output file
func (o *Orchestrator) outputPath(unit subjectUnit) string {
	return fmt.Sprintf("%s%s/%s.csv", o.cfg.OutputPrefix, unit.Kind, unit.Name)
}

// tickerFromPath extracts a ticker from a dataset object path
func tickerFromPath(path, prefix string) (string, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path || strings.Contains(rest, "/") || !strings.HasSuffix(rest, ".csv") {
		return "", false
	}
	ticker := strings.TrimSuffix(rest, ".csv")
	return ticker, ticker != ""
}

func pendingWeight(units []subjectUnit) int {
	total := 0
	for _, u := range units {
		total += u.Weight
	}
	return total
}

func waveWeight(units []subjectUnit) int {
	return pendingWeight(units)
}

// chunkUnits splits the work queue into fixed-size waves
func chunkUnits(units []subjectUnit, size int) [][]subjectUnit {
	if size <= 0 || len(units) == 0 {
		if len(units) == 0 {
			return nil
		}
		return [][]subjectUnit{units}
	}
	var chunks [][]subjectUnit
	for start := 0; start < len(units); start += size {
		end := start + size
		if end > len(units) {
			end = len(units)
		}
		chunks = append(chunks, units[start:end])
	}
	return chunks
}
