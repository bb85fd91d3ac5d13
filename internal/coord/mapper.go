// Package coord converts between diagram time and pixels. Everything that
// needs to agree on where a moment is drawn (renderer, ruler, minimap,
// drag and resize handling) goes through one Mapper.
package coord

import (
	"math"

	"lanes2svg/internal/timeunit"
)

const (
	// DefaultScale is pixels per granularity unit for a fresh session.
	DefaultScale = 0.15
	// DefaultMinScale and DefaultMaxScale bound every zoom operation.
	DefaultMinScale = 1e-6
	DefaultMaxScale = 1000.0
	// DefaultZoomFactor is used when a zoom is requested with a factor
	// that would not change the scale.
	DefaultZoomFactor = 1.25

	// fitMargin leaves trailing room after the last box in fit mode.
	fitMargin = 1.1
)

// Compression is the part of the compression engine the mapper needs.
type Compression interface {
	Enabled() bool
	ActualToVisual(t float64) float64
	CompressedToActual(v float64) float64
	CompressedDuration() float64
	TotalDuration() float64
}

// Options configures a Mapper.
type Options struct {
	Units    timeunit.Scale
	Scale    float64
	MinScale float64
	MaxScale float64
	// TrailingSpace is extra visual time kept after the last box when
	// compression is enabled.
	TrailingSpace float64
}

// ViewState is the persisted part of the mapper.
type ViewState struct {
	Scale       float64 `yaml:"scale" json:"scale"`
	FitMode     bool    `yaml:"fit_mode" json:"fit_mode"`
	PriorScale  float64 `yaml:"prior_scale" json:"prior_scale"`
	PriorScroll float64 `yaml:"prior_scroll" json:"prior_scroll"`
}

// Mapper holds the coordinate state of one session.
type Mapper struct {
	comp     Compression
	units    timeunit.Scale
	scale    float64
	minScale float64
	maxScale float64
	trailing float64

	fitMode     bool
	priorScale  float64
	priorScroll float64
}

// New creates a mapper projecting through comp.
func New(comp Compression, opts Options) *Mapper {
	m := &Mapper{
		comp:     comp,
		units:    opts.Units,
		minScale: opts.MinScale,
		maxScale: opts.MaxScale,
		trailing: opts.TrailingSpace,
	}
	if !m.units.Base.Valid() || !m.units.Sub.Valid() || m.units.Sub > m.units.Base {
		m.units = timeunit.MillisecondScale()
	}
	if !finitePositive(m.minScale) {
		m.minScale = DefaultMinScale
	}
	if !finitePositive(m.maxScale) || m.maxScale < m.minScale {
		m.maxScale = math.Max(DefaultMaxScale, m.minScale)
	}
	if !finite(m.trailing) || m.trailing < 0 {
		m.trailing = 0
	}
	m.scale = m.clamp(opts.Scale)
	m.priorScale = m.scale
	return m
}

// Units returns the active base and sub unit.
func (m *Mapper) Units() timeunit.Scale {
	return m.units
}

// SetUnits switches the base unit while keeping the same number of pixels
// per millisecond.
func (m *Mapper) SetUnits(units timeunit.Scale) {
	if !units.Base.Valid() || !units.Sub.Valid() || units.Sub > units.Base {
		return
	}
	ratio := units.Granularity() / m.units.Granularity()
	m.units = units
	m.scale = m.clamp(m.scale * ratio)
	m.priorScale = m.clamp(m.priorScale * ratio)
}

// Granularity is the time represented by one unit of scale.
func (m *Mapper) Granularity() float64 {
	return m.units.Granularity()
}

// Scale returns pixels per granularity unit.
func (m *Mapper) Scale() float64 {
	return m.scale
}

// Bounds returns the allowed scale range.
func (m *Mapper) Bounds() (min, max float64) {
	return m.minScale, m.maxScale
}

// MsToPixels converts a visual time or duration to pixels.
func (m *Mapper) MsToPixels(t float64) float64 {
	return t / m.Granularity() * m.scale
}

// PixelsToMs converts pixels to visual time.
func (m *Mapper) PixelsToMs(px float64) float64 {
	return px / m.scale * m.Granularity()
}

// ActualToPixels projects an actual time through compression and zoom.
func (m *Mapper) ActualToPixels(t float64) float64 {
	return m.MsToPixels(m.comp.ActualToVisual(t))
}

// PixelsToActual maps a pixel position back to actual time.
func (m *Mapper) PixelsToActual(px float64) float64 {
	return m.comp.CompressedToActual(m.PixelsToMs(px))
}

// VisualEnd is the visual length of the diagram used for fitting and for
// the ruler.
func (m *Mapper) VisualEnd() float64 {
	if m.comp.Enabled() {
		return m.comp.CompressedDuration() + m.trailing
	}
	return m.comp.TotalDuration()
}

// SetScale sets the zoom directly, leaving fit mode.
func (m *Mapper) SetScale(scale float64) {
	m.scale = m.clamp(scale)
	m.fitMode = false
}

// ZoomIn multiplies the scale by factor.
func (m *Mapper) ZoomIn(factor float64) {
	m.SetScale(m.scale * zoomFactor(factor))
}

// ZoomOut divides the scale by factor.
func (m *Mapper) ZoomOut(factor float64) {
	m.SetScale(m.scale / zoomFactor(factor))
}

// FitScale is the scale at which the whole visual duration, plus margin,
// fits into width pixels.
func (m *Mapper) FitScale(width float64) float64 {
	end := m.VisualEnd()
	if !finitePositive(width) || !finitePositive(end) {
		return m.clamp(DefaultScale)
	}
	return m.clamp(width / (end / m.Granularity() * fitMargin))
}

// FitMode reports whether fit-to-view is active.
func (m *Mapper) FitMode() bool {
	return m.fitMode
}

// ToggleFit switches fit-to-view on or off and returns the scroll offset
// the view should use. Turning fit on remembers the current scale and
// scroll; turning it off restores them.
func (m *Mapper) ToggleFit(width, scroll float64) float64 {
	if m.fitMode {
		m.scale = m.clamp(m.priorScale)
		m.fitMode = false
		return m.priorScroll
	}

	m.priorScale = m.scale
	m.priorScroll = sanitizeScroll(scroll)
	m.scale = m.FitScale(width)
	m.fitMode = true
	return 0
}

// Refit recomputes the fit scale after the diagram changed. It does
// nothing outside fit mode.
func (m *Mapper) Refit(width float64) {
	if m.fitMode {
		m.scale = m.FitScale(width)
	}
}

// ViewState returns the persisted view state.
func (m *Mapper) ViewState() ViewState {
	return ViewState{
		Scale:       m.scale,
		FitMode:     m.fitMode,
		PriorScale:  m.priorScale,
		PriorScroll: m.priorScroll,
	}
}

// Restore applies a persisted view state. Invalid values are replaced by
// defaults and scales are clamped.
func (m *Mapper) Restore(vs ViewState) {
	m.scale = m.clamp(vs.Scale)
	m.fitMode = vs.FitMode
	m.priorScale = m.scale
	if vs.FitMode {
		m.priorScale = m.clamp(vs.PriorScale)
	}
	m.priorScroll = sanitizeScroll(vs.PriorScroll)
}

func (m *Mapper) clamp(scale float64) float64 {
	if !finitePositive(scale) {
		scale = DefaultScale
	}
	return math.Min(math.Max(scale, m.minScale), m.maxScale)
}

func zoomFactor(f float64) float64 {
	if !finite(f) || f <= 1 {
		return DefaultZoomFactor
	}
	return f
}

func sanitizeScroll(s float64) float64 {
	if !finite(s) || s < 0 {
		return 0
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finitePositive(v float64) bool {
	return finite(v) && v > 0
}
