// Package ruler picks tick spacing for the time ruler from the current zoom.
package ruler

import (
	"math"
	"sort"

	"lanes2svg/internal/timeunit"
)

const (
	// DefaultMinSpacing is the smallest pixel distance between ticks.
	DefaultMinSpacing = 60.0
	// DefaultMaxTicks caps the number of ticks on one ruler.
	DefaultMaxTicks = 360
)

const (
	second = 1000.0
	minute = 60 * second
	hour   = 60 * minute
	day    = 24 * hour
	year   = 365 * day
)

// baseIntervals spans sub-millisecond to multi-year spacing, ascending.
var baseIntervals = []float64{
	0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5,
	1, 2, 5, 10, 20, 50, 100, 200, 250, 500,
	second, 2 * second, 5 * second, 10 * second, 15 * second, 30 * second,
	minute, 2 * minute, 5 * minute, 10 * minute, 15 * minute, 30 * minute,
	hour, 2 * hour, 3 * hour, 6 * hour, 12 * hour,
	day, 2 * day, 7 * day, 14 * day, 30 * day, 90 * day, 180 * day,
	year, 2 * year, 5 * year, 10 * year,
}

var multiples = []float64{1, 2, 5, 10}

// Projector converts visual time to pixels at the current zoom.
type Projector interface {
	MsToPixels(t float64) float64
}

// Options tunes interval selection.
type Options struct {
	Units timeunit.Scale
	// Threshold is the display threshold; its multiples are offered as
	// candidate intervals. Zero or negative adds nothing.
	Threshold  float64
	MinSpacing float64
	MaxTicks   int
}

func (o Options) withDefaults() Options {
	if !(o.MinSpacing > 0) || math.IsInf(o.MinSpacing, 0) {
		o.MinSpacing = DefaultMinSpacing
	}
	if o.MaxTicks < 2 {
		o.MaxTicks = DefaultMaxTicks
	}
	if !o.Units.Base.Valid() || !o.Units.Sub.Valid() {
		o.Units = timeunit.MillisecondScale()
	}
	return o
}

// Candidates returns every interval SelectInterval considers, ascending
// and without duplicates.
func Candidates(opts Options) []float64 {
	opts = opts.withDefaults()

	out := append([]float64(nil), baseIntervals...)
	for _, size := range []float64{opts.Units.Base.Milliseconds(), opts.Units.Sub.Milliseconds()} {
		for _, k := range multiples {
			out = append(out, size*k)
		}
	}
	if opts.Threshold > 0 && !math.IsInf(opts.Threshold, 0) {
		for _, k := range multiples {
			out = append(out, opts.Threshold*k)
		}
	}

	sort.Float64s(out)
	uniq := out[:0]
	for _, v := range out {
		if len(uniq) > 0 && nearlyEqual(uniq[len(uniq)-1], v) {
			continue
		}
		uniq = append(uniq, v)
	}
	return uniq
}

// TickCount is the number of ticks from 0 to end, inclusive. Counts too
// large for an int saturate at math.MaxInt.
func TickCount(end, interval float64) int {
	if !(end > 0) || math.IsInf(end, 0) {
		return 1
	}
	n := math.Floor(end / interval)
	if !(n < float64(math.MaxInt)) {
		return math.MaxInt
	}
	return int(n) + 1
}

// SelectInterval returns the smallest candidate whose ticks are at least
// MinSpacing pixels apart without exceeding MaxTicks. If none is wide
// enough it settles for the smallest with an acceptable count, and failing
// that divides end evenly.
func SelectInterval(end float64, proj Projector, opts Options) float64 {
	opts = opts.withDefaults()
	candidates := Candidates(opts)

	for _, c := range candidates {
		if TickCount(end, c) <= opts.MaxTicks && proj.MsToPixels(c) >= opts.MinSpacing {
			return c
		}
	}
	for _, c := range candidates {
		if TickCount(end, c) <= opts.MaxTicks {
			return c
		}
	}
	return end / float64(opts.MaxTicks-1)
}

// MajorInterval returns the coarser spacing at which ticks are drawn as
// major. The next unit boundary is used when the interval divides it in
// at most ten steps; otherwise every fifth tick, or every second for
// intervals with a leading 5, is major.
func MajorInterval(interval float64, units timeunit.Scale) float64 {
	if !(interval > 0) || math.IsInf(interval, 0) {
		return 0
	}

	for _, u := range timeunit.All() {
		if u < units.Sub {
			continue
		}
		size := u.Milliseconds()
		if size <= interval {
			continue
		}
		ratio := size / interval
		if ratio <= 10 && nearlyEqual(ratio, math.Round(ratio)) {
			return size
		}
		break
	}

	exp := math.Floor(math.Log10(interval))
	mantissa := interval / math.Pow(10, exp)
	if nearlyEqual(mantissa, 5) {
		return interval * 2
	}
	return interval * 5
}

// IsMajor reports whether t falls on a multiple of major.
func IsMajor(t, major float64) bool {
	if !(major > 0) {
		return false
	}
	r := math.Mod(math.Abs(t), major)
	eps := major * 1e-6
	return r < eps || major-r < eps
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
