package compress

import (
	"math"
	"sort"

	"lanes2svg/internal/logging"
)

// DefaultThreshold is the smallest idle span, in milliseconds, that gets
// collapsed when no threshold is configured.
const DefaultThreshold = 1000

// Source supplies the current interval set. The engine never writes to it.
type Source interface {
	Intervals() []Interval
}

// SourceFunc adapts a function to Source.
type SourceFunc func() []Interval

// Intervals implements Source.
func (f SourceFunc) Intervals() []Interval { return f() }

// Options configures an Engine.
type Options struct {
	Enabled   bool
	Threshold float64
	// CompressedSize is the visual width a collapsed gap keeps. Zero turns
	// each gap into a seam.
	CompressedSize float64
	// MinDuration replaces missing or too short durations.
	MinDuration float64
}

// Map is the memoized result of gap detection for one interval set.
type Map struct {
	Offsets          map[string]float64
	Gaps             []Gap
	TotalCompression float64
	TotalDuration    float64

	// cumulative[i] is the compression of Gaps[:i].
	cumulative []float64
}

// CompressedGap describes a collapsed gap in both coordinate systems, for
// drawing break indicators.
type CompressedGap struct {
	CompressedStart float64
	CompressedEnd   float64
	OriginalStart   float64
	OriginalEnd     float64
	CompressedSize  float64
	OriginalSize    float64
}

// Engine owns the compression map of one diagram session. It recomputes
// lazily: Invalidate must be called after every change to the intervals,
// and the next read rebuilds the whole map.
type Engine struct {
	src            Source
	enabled        bool
	threshold      float64
	compressedSize float64
	minDuration    float64

	cached *Map
}

// NewEngine creates an engine reading intervals from src.
func NewEngine(src Source, opts Options) *Engine {
	e := &Engine{
		src:     src,
		enabled: opts.Enabled,
	}
	e.threshold = sanitizeThreshold(opts.Threshold)
	e.compressedSize = sanitizeNonNegative(opts.CompressedSize)
	e.minDuration = sanitizeMinDuration(opts.MinDuration)
	return e
}

// Enabled reports whether compression is applied.
func (e *Engine) Enabled() bool {
	return e.enabled
}

// SetEnabled turns compression on or off.
func (e *Engine) SetEnabled(enabled bool) {
	e.enabled = enabled
	e.Invalidate()
}

// Threshold returns the minimum gap size that is collapsed.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// SetThreshold changes the minimum gap size. Zero or negative values are
// accepted and collapse every idle span.
func (e *Engine) SetThreshold(threshold float64) {
	e.threshold = sanitizeThreshold(threshold)
	e.Invalidate()
}

// SetCompressedSize changes the visual width kept by each collapsed gap.
func (e *Engine) SetCompressedSize(size float64) {
	e.compressedSize = sanitizeNonNegative(size)
	e.Invalidate()
}

// SetMinDuration changes the duration substituted for missing or invalid
// ones.
func (e *Engine) SetMinDuration(d float64) {
	e.minDuration = sanitizeMinDuration(d)
	e.Invalidate()
}

// Invalidate drops the cached map.
func (e *Engine) Invalidate() {
	e.cached = nil
}

// Map returns the current compression map, rebuilding it if needed.
func (e *Engine) Map() *Map {
	if e.cached == nil {
		e.cached = e.build()
	}
	return e.cached
}

func (e *Engine) build() *Map {
	var raw []Interval
	if e.src != nil {
		raw = e.src.Intervals()
	}

	intervals := make([]Interval, len(raw))
	total := 0.0
	for i, iv := range raw {
		intervals[i] = sanitize(iv, e.minDuration)
		if end := intervals[i].End(); end > total {
			total = end
		}
	}

	m := &Map{
		Offsets:       make(map[string]float64, len(intervals)),
		TotalDuration: total,
	}

	if e.enabled {
		m.Gaps = DetectGaps(intervals, e.threshold)
	}
	m.cumulative = make([]float64, len(m.Gaps)+1)
	for i := range m.Gaps {
		m.Gaps[i].CompressedSize = math.Min(e.compressedSize, m.Gaps[i].Size)
		m.cumulative[i+1] = m.cumulative[i] + m.Gaps[i].Compression()
	}
	m.TotalCompression = m.cumulative[len(m.Gaps)]

	for _, iv := range intervals {
		m.Offsets[iv.ID] = m.offsetFor(iv.Start)
	}

	logging.Debug("compression map rebuilt",
		"intervals", len(intervals),
		"gaps", len(m.Gaps),
		"threshold", e.threshold,
		"compression", m.TotalCompression)
	return m
}

// offsetFor subtracts every gap that ends at or before start.
func (m *Map) offsetFor(start float64) float64 {
	n := sort.Search(len(m.Gaps), func(i int) bool {
		return m.Gaps[i].End > start
	})
	return start - m.cumulative[n]
}

// VisualOffset maps an interval's actual start to visual time. It is the
// identity when compression is disabled.
func (e *Engine) VisualOffset(iv Interval) float64 {
	iv = sanitize(iv, e.minDuration)
	if !e.enabled {
		return iv.Start
	}
	return e.Map().offsetFor(iv.Start)
}

// VisualOffsetByID returns the memoized visual offset of the interval with
// the given id.
func (e *Engine) VisualOffsetByID(id string) (float64, bool) {
	off, ok := e.Map().Offsets[id]
	return off, ok
}

// ActualToVisual maps any actual time to visual time. Times inside a
// collapsed gap are spread across the gap's compressed width, which puts
// them on the seam when that width is zero.
func (e *Engine) ActualToVisual(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		t = 0
	}
	if !e.enabled {
		return t
	}

	m := e.Map()
	for i, g := range m.Gaps {
		if t <= g.Start {
			return t - m.cumulative[i]
		}
		if t < g.End {
			progress := (t - g.Start) / g.Size
			return g.Start - m.cumulative[i] + progress*g.CompressedSize
		}
	}
	return t - m.TotalCompression
}

// CompressedToActual maps visual time back to actual time. It inverts
// VisualOffset exactly for every interval start; the seam of a fully
// collapsed gap maps to the gap's end.
func (e *Engine) CompressedToActual(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if !e.enabled {
		return v
	}

	m := e.Map()
	cumulative := 0.0
	for _, g := range m.Gaps {
		compressedStart := g.Start - cumulative
		if v < compressedStart {
			return v + cumulative
		}
		if v < compressedStart+g.CompressedSize {
			progress := (v - compressedStart) / g.CompressedSize
			return g.Start + progress*g.Size
		}
		cumulative += g.Compression()
	}
	return v + cumulative
}

// CompressedGaps lists the collapsed gaps in both coordinate systems.
func (e *Engine) CompressedGaps() []CompressedGap {
	if !e.enabled {
		return nil
	}

	m := e.Map()
	out := make([]CompressedGap, 0, len(m.Gaps))
	for i, g := range m.Gaps {
		start := g.Start - m.cumulative[i]
		out = append(out, CompressedGap{
			CompressedStart: start,
			CompressedEnd:   start + g.CompressedSize,
			OriginalStart:   g.Start,
			OriginalEnd:     g.End,
			CompressedSize:  g.CompressedSize,
			OriginalSize:    g.Size,
		})
	}
	return out
}

// TotalDuration is the latest interval end in actual time.
func (e *Engine) TotalDuration() float64 {
	return e.Map().TotalDuration
}

// CompressedDuration is the visual length of the diagram.
func (e *Engine) CompressedDuration() float64 {
	m := e.Map()
	if !e.enabled || len(m.Gaps) == 0 {
		return m.TotalDuration
	}
	return m.TotalDuration - m.TotalCompression
}

// MinDuration is the duration substituted for missing or invalid ones.
func (e *Engine) MinDuration() float64 {
	return e.minDuration
}

func sanitizeThreshold(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultThreshold
	}
	return t
}

func sanitizeMinDuration(d float64) float64 {
	if !(d > 0) || math.IsInf(d, 0) {
		return 1
	}
	return d
}

func sanitizeNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
