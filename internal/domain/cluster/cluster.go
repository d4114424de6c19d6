// Package cluster groups acquisition timestamps of one orbit into candidate
// time windows.
package cluster

import (
	"slices"
	"time"

	"github.com/okian/burstcov/internal/domain/model"
)

const (
	// longestSetAcquisition is the longest one pass takes to image every
	// burst of a single tile partition.
	longestSetAcquisition = 9 * time.Minute
	acquisitionMargin     = 3 * time.Minute

	// MaxWindowDuration bounds the span of a window. It is a property of the
	// acquisition geometry and is not configurable.
	MaxWindowDuration = longestSetAcquisition + acquisitionMargin
)

// Windows builds the finalized window set for one orbit's timestamps.
//
// For every timestamp a window is opened at that timestamp and extended over
// every later timestamp no more than d after it. Windows that are strict
// sub-intervals of another window are then pruned. Any two timestamps within d
// of each other therefore share at least one window, and a timestamp with no
// neighbours still gets a singleton window.
//
// The input does not need to be sorted or unique. Empty input yields nil.
func Windows(times []time.Time, d time.Duration) []model.TimeWindow {
	ts := normalize(times)
	if len(ts) == 0 {
		return nil
	}

	runs := make([]model.TimeWindow, 0, len(ts))
	j := 0
	for i := range ts {
		if j < i {
			j = i
		}
		for j+1 < len(ts) && ts[j+1].Sub(ts[i]) <= d {
			j++
		}
		runs = append(runs, model.TimeWindow{Start: ts[i], End: ts[j]})
	}
	return PruneSubsets(runs)
}

// ForOrbit is Windows with MaxWindowDuration.
func ForOrbit(times []time.Time) []model.TimeWindow {
	return Windows(times, MaxWindowDuration)
}

// PruneSubsets removes every window that is a strict sub-interval of another
// window in the input. Identical windows collapse to one. The result is
// ordered by start time.
func PruneSubsets(windows []model.TimeWindow) []model.TimeWindow {
	if len(windows) == 0 {
		return nil
	}
	sorted := slices.Clone(windows)
	slices.SortFunc(sorted, func(a, b model.TimeWindow) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return b.End.Compare(a.End) // wider first
	})

	out := make([]model.TimeWindow, 0, len(sorted))
	var maxEnd time.Time
	for i, w := range sorted {
		// Every earlier window starts no later than w, so w is inside one of
		// them iff some earlier end reaches it. Duplicates fall out here too.
		if i > 0 && !w.End.After(maxEnd) {
			continue
		}
		out = append(out, w)
		maxEnd = w.End
	}
	return out
}

func normalize(times []time.Time) []time.Time {
	if len(times) == 0 {
		return nil
	}
	ts := slices.Clone(times)
	slices.SortFunc(ts, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(ts, func(a, b time.Time) bool { return a.Equal(b) })
}
