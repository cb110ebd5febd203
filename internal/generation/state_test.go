package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

func TestRunState_Guard(t *testing.T) {
	s := NewRunState()

	assert.True(t, s.TryBegin(contracts.TriggerManual))
	assert.False(t, s.TryBegin(contracts.TriggerScheduled), "second begin must be rejected")

	snapshot := s.Snapshot()
	assert.True(t, snapshot.IsRunning)
	assert.Equal(t, contracts.RunRunning, snapshot.Status)
	assert.Equal(t, contracts.TriggerManual, snapshot.TriggerSource)

	s.Finish(contracts.RunCompleted)
	assert.False(t, s.Snapshot().IsRunning)
	assert.True(t, s.TryBegin(contracts.TriggerDebug), "guard released after finish")
}

func TestRunState_BeginResetsCounters(t *testing.T) {
	s := NewRunState()

	s.TryBegin(contracts.TriggerManual)
	s.RecordCreated()
	s.RecordFailed()
	s.SetProgress(40, "wave 1/3")
	s.Finish(contracts.RunCompleted)

	s.TryBegin(contracts.TriggerManual)
	snapshot := s.Snapshot()
	assert.Equal(t, contracts.RunCounters{}, snapshot.Counters)
	assert.Equal(t, 0.0, snapshot.Progress)
	assert.Empty(t, snapshot.CurrentOperation)
}

func TestRunState_Counters(t *testing.T) {
	s := NewRunState()
	s.TryBegin(contracts.TriggerManual)

	s.RecordCreated()
	s.RecordCreated()
	s.RecordSkipped()
	s.RecordFailed()

	c := s.Counters()
	assert.Equal(t, 2, c.Created)
	assert.Equal(t, 1, c.Skipped)
	assert.Equal(t, 1, c.Failed)
	assert.Equal(t, 4, c.Processed)
}

func TestRunState_ProgressClamped(t *testing.T) {
	s := NewRunState()
	s.TryBegin(contracts.TriggerManual)

	s.SetProgress(140, "x")
	assert.Equal(t, 100.0, s.Snapshot().Progress)

	s.SetProgress(-5, "x")
	assert.Equal(t, 0.0, s.Snapshot().Progress)

	s.Finish(contracts.RunCompleted)
	assert.Equal(t, 100.0, s.Snapshot().Progress)
}
