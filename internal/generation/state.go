package generation

import (
	"sync"
	"time"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

// RunState owns the module-wide single-active-run guard plus the mutable
// counters and progress of the current run. All access goes through its
// methods; worker tasks mutate it concurrently.
type RunState struct {
	mu        sync.Mutex
	running   bool
	status    contracts.RunStatus
	source    contracts.TriggerSource
	startedAt time.Time
	progress  float64
	operation string
	counters  contracts.RunCounters
}

// NewRunState creates an idle run state
func NewRunState() *RunState {
	return &RunState{status: contracts.RunIdle}
}

// TryBegin claims the guard. It returns false if a run is already active;
// on success all counters and progress are reset.
func (s *RunState) TryBegin(source contracts.TriggerSource) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	s.running = true
	s.status = contracts.RunRunning
	s.source = source
	s.startedAt = time.Now()
	s.progress = 0
	s.operation = ""
	s.counters = contracts.RunCounters{}
	return true
}

// Finish releases the guard with a terminal status
func (s *RunState) Finish(status contracts.RunStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.status = status
	if status == contracts.RunCompleted {
		s.progress = 100
	}
}

// SetProgress updates the progress percentage and current operation
func (s *RunState) SetProgress(progress float64, operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	s.progress = progress
	s.operation = operation
}

// RecordCreated counts one subject whose output was written
func (s *RunState) RecordCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Created++
	s.counters.Processed++
}

// RecordSkipped counts one subject excluded by skip-existing mode
func (s *RunState) RecordSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Skipped++
	s.counters.Processed++
}

// RecordFailed counts one subject whose task failed
func (s *RunState) RecordFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Failed++
	s.counters.Processed++
}

// Counters returns a copy of the current counters
func (s *RunState) Counters() contracts.RunCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// Snapshot returns a read-only view of the run state
func (s *RunState) Snapshot() contracts.RunSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contracts.RunSnapshot{
		IsRunning:        s.running,
		Status:           s.status,
		Progress:         s.progress,
		CurrentOperation: s.operation,
		Counters:         s.counters,
		TriggerSource:    s.source,
		StartedAt:        s.startedAt,
	}
}
