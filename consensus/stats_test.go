package consensus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsTrackerCountsWithinWindow(t *testing.T) {
	tracker := newStatsTracker(time.Minute)
	base := time.Unix(1000, 0)

	tracker.recordFinal(base)
	tracker.recordFinal(base.Add(30 * time.Second))
	tracker.recordStale(base.Add(40 * time.Second))

	stats := tracker.snapshot(base.Add(50*time.Second), 1)
	assert.Equal(t, uint64(2), stats.FinalBlockCount)
	assert.Equal(t, uint64(1), stats.StaleBlockCount)
	assert.Equal(t, uint64(1), stats.CliqueCount)

	// The first final event falls out of the window.
	stats = tracker.snapshot(base.Add(70*time.Second), 0)
	assert.Equal(t, uint64(1), stats.FinalBlockCount)
	assert.Equal(t, uint64(1), stats.StaleBlockCount)
}

func TestStatsSnapshotDoesNotMutateTracker(t *testing.T) {
	tracker := newStatsTracker(time.Minute)
	base := time.Unix(1000, 0)
	tracker.recordFinal(base)
	tracker.recordFinal(base.Add(time.Second))

	// An old event outside the window must survive snapshots untouched:
	// snapshots are taken under a shared read lock, so they may not compact
	// the event slices.
	late := base.Add(2 * time.Minute)
	for i := 0; i < 3; i++ {
		stats := tracker.snapshot(late, 0)
		assert.Equal(t, uint64(0), stats.FinalBlockCount)
	}
	assert.Len(t, tracker.finalEvents, 2)

	// Pruning happens on the writer path instead.
	tracker.recordFinal(late)
	assert.Len(t, tracker.finalEvents, 1)
	stats := tracker.snapshot(late, 0)
	assert.Equal(t, uint64(1), stats.FinalBlockCount)
}
