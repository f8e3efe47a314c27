package consensus

import "time"

// Stats is a snapshot of graph activity over the configured sliding window.
type Stats struct {
	StartTimespan   time.Time `json:"start_timespan"`
	EndTimespan     time.Time `json:"end_timespan"`
	FinalBlockCount uint64    `json:"final_block_count"`
	StaleBlockCount uint64    `json:"stale_block_count"`
	CliqueCount     uint64    `json:"clique_count"`
}

// statsTracker records finalization and stale events and counts them over a
// sliding window. Events are only appended and pruned on the writer path;
// snapshot is read-only, so any number of readers may call it concurrently
// under the shared read lock.
type statsTracker struct {
	timespan    time.Duration
	finalEvents []time.Time
	staleEvents []time.Time
}

func newStatsTracker(timespan time.Duration) *statsTracker {
	return &statsTracker{timespan: timespan}
}

func (t *statsTracker) recordFinal(now time.Time) {
	t.finalEvents = append(pruneBefore(t.finalEvents, now.Add(-t.timespan)), now)
}

func (t *statsTracker) recordStale(now time.Time) {
	t.staleEvents = append(pruneBefore(t.staleEvents, now.Add(-t.timespan)), now)
}

func pruneBefore(events []time.Time, cutoff time.Time) []time.Time {
	kept := events[:0]
	for _, at := range events {
		if !at.Before(cutoff) {
			kept = append(kept, at)
		}
	}
	return kept
}

func countSince(events []time.Time, cutoff time.Time) uint64 {
	var n uint64
	for _, at := range events {
		if !at.Before(cutoff) {
			n++
		}
	}
	return n
}

// snapshot counts the events inside the window without mutating the tracker.
func (t *statsTracker) snapshot(now time.Time, cliqueCount int) Stats {
	cutoff := now.Add(-t.timespan)
	return Stats{
		StartTimespan:   cutoff,
		EndTimespan:     now,
		FinalBlockCount: countSince(t.finalEvents, cutoff),
		StaleBlockCount: countSince(t.staleEvents, cutoff),
		CliqueCount:     uint64(cliqueCount),
	}
}
