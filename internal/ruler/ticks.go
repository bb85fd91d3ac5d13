package ruler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tick is one ruler mark.
type Tick struct {
	// Visual is the tick's position in visual time.
	Visual float64
	// Actual is the time shown in the label.
	Actual float64
	Pixel  float64
	Major  bool
	Label  string
}

// Ruler is the selected spacing for one render.
type Ruler struct {
	Interval float64
	Major    float64
	Ticks    []Tick
}

// Build selects an interval for end and lays out the ticks. toActual maps
// a tick's visual time to the actual time its label shows; nil means the
// two are the same.
func Build(end float64, proj Projector, opts Options, toActual func(float64) float64) Ruler {
	opts = opts.withDefaults()
	interval := SelectInterval(end, proj, opts)
	r := Ruler{
		Interval: interval,
		Major:    MajorInterval(interval, opts.Units),
	}
	if !(interval > 0) || math.IsInf(interval, 0) {
		return r
	}

	count := TickCount(end, interval)
	if count > opts.MaxTicks {
		count = opts.MaxTicks
	}
	if count < 1 {
		count = 1
	}
	r.Ticks = make([]Tick, 0, count)
	for i := 0; i < count; i++ {
		v := float64(i) * interval
		actual := v
		if toActual != nil {
			actual = toActual(v)
		}
		major := IsMajor(v, r.Major)
		label := ""
		if major || i == 0 {
			label = FormatLabel(actual, interval)
		}
		r.Ticks = append(r.Ticks, Tick{
			Visual: v,
			Actual: actual,
			Pixel:  proj.MsToPixels(v),
			Major:  major,
			Label:  label,
		})
	}
	return r
}

// FormatLabel renders a time in milliseconds compactly, e.g. "250ms",
// "2.5s", "1h30m", "3d4h". interval decides how many decimals are kept
// below one second.
func FormatLabel(t, interval float64) string {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return ""
	}
	if t == 0 {
		return "0"
	}
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}

	switch {
	case t < second:
		return sign + trimFloat(t, decimalsFor(interval)) + "ms"
	case t < minute && !isWhole(t, second):
		return sign + trimFloat(t/second, decimalsFor(interval/second)) + "s"
	}

	whole := int64(math.Round(t / second))
	parts := []struct {
		size   int64
		suffix string
	}{
		{int64(day / second), "d"},
		{int64(hour / second), "h"},
		{int64(minute / second), "m"},
		{1, "s"},
	}

	var b strings.Builder
	b.WriteString(sign)
	used := 0
	for _, p := range parts {
		n := whole / p.size
		whole %= p.size
		if n == 0 || used == 2 {
			continue
		}
		fmt.Fprintf(&b, "%d%s", n, p.suffix)
		used++
	}
	return b.String()
}

func decimalsFor(interval float64) int {
	if !(interval > 0) || interval >= 1 {
		return 0
	}
	return int(math.Ceil(-math.Log10(interval)))
}

func trimFloat(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

func isWhole(t, unit float64) bool {
	return nearlyEqual(t/unit, math.Round(t/unit))
}
