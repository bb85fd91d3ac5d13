// Package compress finds idle time shared by every lane of a diagram and
// collapses it for display. Stored times are never changed; the package only
// maps actual time to visual time and back.
package compress

import (
	"math"
	"sort"
)

// Interval is a box as the engine sees it: a lane-scoped span of actual
// time, in milliseconds.
type Interval struct {
	ID       string
	LaneID   string
	Start    float64
	Duration float64
}

// End returns the first instant after the interval.
func (iv Interval) End() float64 {
	return iv.Start + iv.Duration
}

// Gap is a maximal idle span across all lanes that is larger than the
// compression threshold.
type Gap struct {
	Start          float64
	End            float64
	Size           float64
	CompressedSize float64
}

// Compression is how much visual time the gap removes.
func (g Gap) Compression() float64 {
	return g.Size - g.CompressedSize
}

type sweepEvent struct {
	at    float64
	start bool
}

// DetectGaps sweeps over all intervals, ignoring lanes, and returns the idle
// spans longer than threshold in time order. Idle time before the first
// interval counts from the timeline origin at 0.
func DetectGaps(intervals []Interval, threshold float64) []Gap {
	if len(intervals) == 0 {
		return nil
	}

	events := make([]sweepEvent, 0, len(intervals)*2)
	for _, iv := range intervals {
		events = append(events,
			sweepEvent{at: iv.Start, start: true},
			sweepEvent{at: iv.End(), start: false},
		)
	}

	// Starts sort before ends at the same instant so boxes that touch
	// end-to-end never open a zero-length gap.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].start && !events[j].start
	})

	var gaps []Gap
	active := 0
	lastZero := 0.0
	for _, ev := range events {
		if ev.start {
			if active == 0 {
				idle := ev.at - lastZero
				if idle > 0 && idle > threshold {
					gaps = append(gaps, Gap{Start: lastZero, End: ev.at, Size: idle})
				}
			}
			active++
			continue
		}
		active--
		if active == 0 {
			lastZero = ev.at
		}
	}
	return gaps
}

// sanitize replaces values that would produce invalid geometry.
func sanitize(iv Interval, minDuration float64) Interval {
	if math.IsNaN(iv.Start) || math.IsInf(iv.Start, 0) {
		iv.Start = 0
	}
	if math.IsNaN(iv.Duration) || math.IsInf(iv.Duration, 0) || iv.Duration < minDuration {
		iv.Duration = minDuration
	}
	return iv
}
