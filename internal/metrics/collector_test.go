package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotEmpty(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()

	assert.Nil(t, snap.Completion)
	assert.Nil(t, snap.Mutation)
	assert.Zero(t, snap.Statements.Executed)
}

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpCompletion, 100*time.Millisecond, false)
	c.RecordTiming(OpCompletion, 300*time.Millisecond, true)

	snap := c.Snapshot()
	if assert.NotNil(t, snap.Completion) {
		assert.EqualValues(t, 2, snap.Completion.Count)
		assert.EqualValues(t, 1, snap.Completion.Failures)
		assert.EqualValues(t, 100, snap.Completion.MinTimeMs)
		assert.EqualValues(t, 300, snap.Completion.MaxTimeMs)
		assert.InDelta(t, 200, snap.Completion.AvgTimeMs, 0.1)
	}
	assert.Nil(t, snap.Mutation)
}

func TestRecordStatements(t *testing.T) {
	c := NewCollector()
	c.RecordStatements(3, 0, 0)
	c.RecordStatements(2, 1, 1)

	snap := c.Snapshot()
	assert.EqualValues(t, 5, snap.Statements.Executed)
	assert.EqualValues(t, 1, snap.Statements.SkippedDuplicates)
	assert.EqualValues(t, 1, snap.Statements.Failed)
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.RecordTiming(OpMutation, time.Millisecond, false)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	snap := c.Snapshot()
	assert.EqualValues(t, 800, snap.Mutation.Count)
}
