package ui

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/envdoctor/internal/preflight"
)

func outcome(name string, s preflight.Status) preflight.Outcome {
	return preflight.Outcome{Name: name, Status: s}
}

func TestNewProgressTracker(t *testing.T) {
	// Given: a new tracker for 8 groups
	tracker := NewProgressTracker(8)

	// Then: nothing has happened yet
	stats := tracker.Stats()
	assert.Equal(t, 8, stats.TotalGroups)
	assert.Zero(t, stats.GroupIndex)
	assert.Empty(t, stats.Group)
	assert.Empty(t, stats.Completed)
	assert.Zero(t, stats.Progress)
}

func TestProgressTracker_GroupLifecycle(t *testing.T) {
	// Given: a tracker
	tracker := NewProgressTracker(2)

	// When: a group starts and records outcomes
	tracker.StartGroup("Foundational tools", 3)
	tracker.Record(outcome("node installed", preflight.StatusPass))
	tracker.Record(outcome("pnpm installed", preflight.StatusFail))

	// Then: the running group is visible
	stats := tracker.Stats()
	assert.Equal(t, "Foundational tools", stats.Group)
	assert.Equal(t, 1, stats.GroupIndex)
	assert.Equal(t, 2, stats.Done)
	assert.Equal(t, 3, stats.Probes)
	assert.Equal(t, 1, stats.Pass)
	assert.Equal(t, 1, stats.Fail)

	// When: the group finishes
	tracker.FinishGroup(preflight.GroupResult{
		Name:     "Foundational tools",
		Status:   preflight.StatusFail,
		Outcomes: 2,
	})

	// Then: it moves to the completed list
	stats = tracker.Stats()
	assert.Empty(t, stats.Group)
	require.Len(t, stats.Completed, 1)
	assert.Equal(t, GroupLine{Name: "Foundational tools", Status: preflight.StatusFail, Checks: 2}, stats.Completed[0])
	assert.InDelta(t, 0.5, stats.Progress, 0.001)
}

func TestProgressTracker_CountersResetPerGroup(t *testing.T) {
	tracker := NewProgressTracker(2)

	tracker.StartGroup("a", 2)
	tracker.Record(outcome("x", preflight.StatusPass))
	tracker.Record(outcome("y", preflight.StatusWarn))
	tracker.FinishGroup(preflight.GroupResult{Name: "a"})

	tracker.StartGroup("b", 1)

	stats := tracker.Stats()
	assert.Equal(t, 2, stats.GroupIndex)
	assert.Zero(t, stats.Done)
	assert.Equal(t, 1, stats.Probes)
	// Totals accumulate across groups
	assert.Equal(t, 1, stats.Pass)
	assert.Equal(t, 1, stats.Warn)
}

func TestProgressTracker_UnknownTotalGrows(t *testing.T) {
	// Given: a tracker with no expected total
	tracker := NewProgressTracker(0)

	// When: groups run
	tracker.StartGroup("a", 1)
	tracker.FinishGroup(preflight.GroupResult{Name: "a"})
	tracker.StartGroup("b", 1)

	// Then: the total follows the groups seen and progress stays bounded
	stats := tracker.Stats()
	assert.Equal(t, 2, stats.TotalGroups)
	assert.LessOrEqual(t, stats.Progress, 1.0)
}

func TestProgressTracker_ThreadSafety(t *testing.T) {
	// Given: a tracker inside one group
	tracker := NewProgressTracker(1)
	tracker.StartGroup("Package builds", 100)

	// When: concurrent records
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record(outcome("p", preflight.StatusPass))
			_ = tracker.Stats()
		}()
	}
	wg.Wait()

	// Then: every outcome was counted
	stats := tracker.Stats()
	assert.Equal(t, 100, stats.Done)
	assert.Equal(t, 100, stats.Pass)
}

func TestProgressTracker_StatsIsSnapshot(t *testing.T) {
	tracker := NewProgressTracker(1)
	tracker.StartGroup("a", 0)
	tracker.FinishGroup(preflight.GroupResult{Name: "a"})

	stats := tracker.Stats()
	stats.Completed[0].Name = "mutated"

	assert.Equal(t, "a", tracker.Stats().Completed[0].Name)
}
