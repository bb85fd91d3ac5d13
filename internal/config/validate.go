package config

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid setting found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidationErrors when any
// setting is out of range.
func (c Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	finite := func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}

	if c.Font.Size <= 0 {
		add("font.size", "must be positive, got %d", c.Font.Size)
	}
	if len(c.Colors.Boxes) == 0 {
		add("colors.boxes", "at least one color is required")
	}

	if c.Layout.Width <= 0 {
		add("layout.width", "must be positive, got %d", c.Layout.Width)
	} else if c.AxisWidth() <= 1 {
		add("layout.width", "leaves no room for the time axis after margins and labels")
	}
	if c.Layout.LaneHeight <= 0 {
		add("layout.lane_height", "must be positive, got %d", c.Layout.LaneHeight)
	}
	if c.Layout.LanePadding < 0 || 2*c.Layout.LanePadding >= c.Layout.LaneHeight {
		add("layout.lane_padding", "must be non-negative and smaller than half the lane height")
	}
	if c.Layout.RulerHeight < 0 {
		add("layout.ruler_height", "must not be negative")
	}

	if !finite(c.Compression.Threshold) {
		add("compression.threshold", "must be a finite number of milliseconds")
	}
	if !finite(c.Compression.CompressedSize) || c.Compression.CompressedSize < 0 {
		add("compression.compressed_size", "must be a non-negative number of milliseconds")
	}
	switch strings.ToLower(c.Compression.BreakStyle) {
	case "zigzag", "diamond", "circle", "line":
	default:
		add("compression.break_style", "unknown style %q", c.Compression.BreakStyle)
	}
	if !finite(c.Time.TrailingSpace) || c.Time.TrailingSpace < 0 {
		add("time.trailing_space", "must be a non-negative number of milliseconds")
	}
	if _, err := c.Units(); err != nil {
		add("time", "%v", err)
	}

	if !finite(c.Zoom.MinScale) || c.Zoom.MinScale <= 0 {
		add("zoom.min_scale", "must be positive")
	}
	if !finite(c.Zoom.MaxScale) || c.Zoom.MaxScale < c.Zoom.MinScale {
		add("zoom.max_scale", "must be at least zoom.min_scale")
	}
	if !finite(c.Zoom.Scale) || c.Zoom.Scale <= 0 {
		add("zoom.scale", "must be positive")
	}

	if c.Ruler.MinSpacing < 0 {
		add("ruler.min_spacing", "must not be negative")
	}
	if c.Ruler.MaxTicks < 2 {
		add("ruler.max_ticks", "must be at least 2, got %d", c.Ruler.MaxTicks)
	}

	if c.Minimap.Show && c.Minimap.Height <= 0 {
		add("minimap.height", "must be positive when the minimap is shown")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
