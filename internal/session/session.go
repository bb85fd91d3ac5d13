// Package session binds one diagram to its compression engine and
// coordinate mapper. All edits go through the session so cached gaps are
// invalidated and a fitted zoom follows the new diagram length.
package session

import (
	"fmt"
	"math"

	"lanes2svg/internal/compress"
	"lanes2svg/internal/config"
	"lanes2svg/internal/coord"
	"lanes2svg/internal/diagram"
	"lanes2svg/internal/logging"
	"lanes2svg/internal/ruler"
	"lanes2svg/internal/timeunit"
)

// State is what a session persists between runs.
type State struct {
	CompressionEnabled bool            `yaml:"compression_enabled" json:"compression_enabled"`
	View               coord.ViewState `yaml:"view" json:"view"`
}

// Rect is a box's horizontal extent in pixels, relative to the start of
// the time axis.
type Rect struct {
	X     float64
	Width float64
}

// Session is the editing state of one diagram.
type Session struct {
	Diagram *diagram.Diagram
	Engine  *compress.Engine
	Mapper  *coord.Mapper

	cfg    config.Config
	width  float64
	scroll float64
}

// New creates a session for d using cfg. The diagram's change hook is
// registered here, so d should not be shared between sessions.
func New(d *diagram.Diagram, cfg config.Config) (*Session, error) {
	if d == nil {
		return nil, fmt.Errorf("session needs a diagram")
	}
	units, err := cfg.Units()
	if err != nil {
		return nil, fmt.Errorf("invalid time units: %w", err)
	}

	engine := compress.NewEngine(d, compress.Options{
		Enabled:        cfg.Compression.Enabled,
		Threshold:      cfg.Compression.Threshold,
		CompressedSize: cfg.Compression.CompressedSize,
		MinDuration:    units.Granularity(),
	})
	mapper := coord.New(engine, coord.Options{
		Units:         units,
		Scale:         cfg.Zoom.Scale,
		MinScale:      cfg.Zoom.MinScale,
		MaxScale:      cfg.Zoom.MaxScale,
		TrailingSpace: cfg.Time.TrailingSpace,
	})

	s := &Session{
		Diagram: d,
		Engine:  engine,
		Mapper:  mapper,
		cfg:     cfg,
		width:   cfg.AxisWidth(),
	}
	d.OnChange(s.changed)

	if cfg.Zoom.FitToView {
		mapper.ToggleFit(s.width, 0)
	}
	logging.Debug("session created", "diagram", d.Name, "lanes", len(d.Lanes), "boxes", len(d.Boxes), "units", units)
	return s, nil
}

func (s *Session) changed() {
	s.Engine.Invalidate()
	s.Mapper.Refit(s.width)
}

// Config returns the settings the session was created with.
func (s *Session) Config() config.Config {
	return s.cfg
}

// Width is the number of pixels available to the time axis.
func (s *Session) Width() float64 {
	return s.width
}

// SetWidth changes the axis width and refits when fit mode is on.
func (s *Session) SetWidth(px float64) {
	if !(px > 0) {
		return
	}
	s.width = px
	s.Mapper.Refit(px)
}

// Scroll is the horizontal scroll offset in pixels.
func (s *Session) Scroll() float64 {
	return s.scroll
}

// SetScroll sets the scroll offset. Negative values become zero.
func (s *Session) SetScroll(px float64) {
	if !(px > 0) {
		px = 0
	}
	s.scroll = px
}

// SetCompression turns compression on or off.
func (s *Session) SetCompression(enabled bool) {
	s.Engine.SetEnabled(enabled)
	s.Mapper.Refit(s.width)
	logging.Debug("compression toggled", "enabled", enabled)
}

// SetThreshold changes the minimum idle span that is collapsed.
func (s *Session) SetThreshold(threshold float64) {
	s.Engine.SetThreshold(threshold)
	s.Mapper.Refit(s.width)
}

// SetUnits switches the base unit without moving anything on screen.
// Missing durations become one unit of the new granularity.
func (s *Session) SetUnits(units timeunit.Scale) {
	s.Mapper.SetUnits(units)
	s.Engine.SetMinDuration(s.Mapper.Granularity())
	s.Mapper.Refit(s.width)
}

// ZoomIn zooms in by factor around the axis origin.
func (s *Session) ZoomIn(factor float64) {
	s.Mapper.ZoomIn(factor)
}

// ZoomOut zooms out by factor around the axis origin.
func (s *Session) ZoomOut(factor float64) {
	s.Mapper.ZoomOut(factor)
}

// ToggleFit switches fit-to-view and applies the scroll offset the mapper
// hands back.
func (s *Session) ToggleFit() {
	s.scroll = s.Mapper.ToggleFit(s.width, s.scroll)
}

// ViewState returns the state to persist.
func (s *Session) ViewState() State {
	return State{
		CompressionEnabled: s.Engine.Enabled(),
		View:               s.Mapper.ViewState(),
	}
}

// RestoreViewState applies a persisted state. A restored fit mode is
// refitted to the current diagram and width.
func (s *Session) RestoreViewState(st State) {
	s.Engine.SetEnabled(st.CompressionEnabled)
	s.Mapper.Restore(st.View)
	s.Mapper.Refit(s.width)
}

// BoxRect returns where a box is drawn.
func (s *Session) BoxRect(id string) (Rect, bool) {
	b, ok := s.Diagram.Box(id)
	if !ok {
		return Rect{}, false
	}
	duration := b.Duration
	if math.IsInf(duration, 0) || !(duration >= s.Engine.MinDuration()) {
		duration = s.Engine.MinDuration()
	}
	return Rect{
		X:     s.Mapper.ActualToPixels(b.Start),
		Width: s.Mapper.MsToPixels(duration),
	}, true
}

// Ruler lays out the time ruler for the current zoom. Labels show actual
// time.
func (s *Session) Ruler() ruler.Ruler {
	return ruler.Build(s.Mapper.VisualEnd(), s.Mapper, s.rulerOptions(), s.Engine.CompressedToActual)
}

func (s *Session) rulerOptions() ruler.Options {
	threshold := 0.0
	if s.Engine.Enabled() {
		threshold = s.Engine.Threshold()
	}
	return ruler.Options{
		Units:      s.Mapper.Units(),
		Threshold:  threshold,
		MinSpacing: s.cfg.Ruler.MinSpacing,
		MaxTicks:   s.cfg.Ruler.MaxTicks,
	}
}
