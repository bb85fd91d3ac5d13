// Package config holds the settings that control compression, time units,
// zoom and SVG appearance. Settings are read from YAML or TOML files on top
// of the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"lanes2svg/internal/compress"
	"lanes2svg/internal/coord"
	"lanes2svg/internal/ruler"
	"lanes2svg/internal/timeunit"
)

// Config is the complete configuration for rendering a diagram.
//
// Key configuration patterns:
//   - For sparse diagrams: keep compression.enabled and lower
//     compression.threshold so long idle spans collapse
//   - For minute-level plans: set time.base_unit = "minutes" and
//     time.sub_unit = "seconds"
//   - For a fixed zoom: set zoom.fit_to_view = false and zoom.scale
type Config struct {
	Font        FontConfig        `yaml:"font" toml:"font"`
	Colors      ColorConfig       `yaml:"colors" toml:"colors"`
	Layout      LayoutConfig      `yaml:"layout" toml:"layout"`
	Compression CompressionConfig `yaml:"compression" toml:"compression"`
	Time        TimeConfig        `yaml:"time" toml:"time"`
	Zoom        ZoomConfig        `yaml:"zoom" toml:"zoom"`
	Ruler       RulerConfig       `yaml:"ruler" toml:"ruler"`
	Minimap     MinimapConfig     `yaml:"minimap" toml:"minimap"`
}

// FontConfig sets the text style for labels.
type FontConfig struct {
	Family string `yaml:"family" toml:"family"` // Font family for all text elements
	Size   int    `yaml:"size" toml:"size"`     // Base font size in pixels
}

// ColorConfig sets the palette.
type ColorConfig struct {
	Background string   `yaml:"background" toml:"background"` // SVG background color
	Text       string   `yaml:"text" toml:"text"`             // Lane labels and box labels
	Grid       string   `yaml:"grid" toml:"grid"`             // Lane separators and minor ticks
	Ruler      string   `yaml:"ruler" toml:"ruler"`           // Ruler baseline, major ticks and labels
	Break      string   `yaml:"break" toml:"break"`           // Compressed gap indicators
	Boxes      []string `yaml:"boxes" toml:"boxes"`           // Box fill colors, cycled per lane
}

// LayoutConfig sets dimensions in pixels.
type LayoutConfig struct {
	Width        int `yaml:"width" toml:"width"`                 // Total SVG width; fit-to-view uses the width minus label column and margins
	MarginTop    int `yaml:"margin_top" toml:"margin_top"`       // Space above the ruler
	MarginBottom int `yaml:"margin_bottom" toml:"margin_bottom"` // Space below the last lane or the minimap
	MarginLeft   int `yaml:"margin_left" toml:"margin_left"`     // Space left of the lane labels
	MarginRight  int `yaml:"margin_right" toml:"margin_right"`   // Space right of the time axis
	LabelWidth   int `yaml:"label_width" toml:"label_width"`     // Width of the lane label column
	RulerHeight  int `yaml:"ruler_height" toml:"ruler_height"`   // Height of the ruler band
	LaneHeight   int `yaml:"lane_height" toml:"lane_height"`     // Height of one lane row
	LanePadding  int `yaml:"lane_padding" toml:"lane_padding"`   // Vertical padding between a lane edge and its boxes
	BoxRadius    int `yaml:"box_radius" toml:"box_radius"`       // Corner radius of boxes
}

// CompressionConfig controls idle-time compression.
type CompressionConfig struct {
	Enabled        bool    `yaml:"enabled" toml:"enabled"`                 // Collapse idle spans shared by all lanes
	Threshold      float64 `yaml:"threshold" toml:"threshold"`             // Minimum idle span in milliseconds that is collapsed
	CompressedSize float64 `yaml:"compressed_size" toml:"compressed_size"` // Visual milliseconds kept per collapsed gap (0 = seam)
	ShowBreaks     bool    `yaml:"show_breaks" toml:"show_breaks"`         // Draw break markers at collapsed gaps
	BreakStyle     string  `yaml:"break_style" toml:"break_style"`         // Break marker shape: zigzag, diamond, circle or line
}

// TimeConfig selects the base time unit.
type TimeConfig struct {
	BaseUnit      string  `yaml:"base_unit" toml:"base_unit"`           // milliseconds, seconds, minutes, hours or days
	SubUnit       string  `yaml:"sub_unit" toml:"sub_unit"`             // Granularity unit; empty means the base unit
	TrailingSpace float64 `yaml:"trailing_space" toml:"trailing_space"` // Visual milliseconds kept after the last box when compressing
}

// ZoomConfig sets the initial zoom.
type ZoomConfig struct {
	FitToView bool    `yaml:"fit_to_view" toml:"fit_to_view"` // Start in fit-to-view mode
	Scale     float64 `yaml:"scale" toml:"scale"`             // Pixels per granularity unit when not fitting
	MinScale  float64 `yaml:"min_scale" toml:"min_scale"`     // Lower zoom bound
	MaxScale  float64 `yaml:"max_scale" toml:"max_scale"`     // Upper zoom bound
}

// RulerConfig tunes tick selection.
type RulerConfig struct {
	MinSpacing float64 `yaml:"min_spacing" toml:"min_spacing"` // Minimum pixels between ticks
	MaxTicks   int     `yaml:"max_ticks" toml:"max_ticks"`     // Maximum number of ticks
}

// MinimapConfig controls the overview strip under the lanes.
type MinimapConfig struct {
	Show   bool `yaml:"show" toml:"show"`
	Height int  `yaml:"height" toml:"height"`
}

// Default returns the default configuration:
//   - 1200px wide canvas with a 140px lane label column
//   - compression on, collapsing idle spans longer than one second
//   - millisecond units, fit-to-view zoom
//   - ruler ticks at least 60px apart
func Default() Config {
	return Config{
		Font: FontConfig{
			Family: "Arial, sans-serif",
			Size:   12,
		},
		Colors: ColorConfig{
			Background: "#ffffff",
			Text:       "#333333",
			Grid:       "#e0e0e0",
			Ruler:      "#666666",
			Break:      "#d93025",
			Boxes:      []string{"#4285f4", "#34a853", "#fbbc04", "#ea4335", "#9334e6"},
		},
		Layout: LayoutConfig{
			Width:        1200,
			MarginTop:    20,
			MarginBottom: 20,
			MarginLeft:   20,
			MarginRight:  20,
			LabelWidth:   140,
			RulerHeight:  36,
			LaneHeight:   44,
			LanePadding:  8,
			BoxRadius:    3,
		},
		Compression: CompressionConfig{
			Enabled:    true,
			Threshold:  compress.DefaultThreshold,
			ShowBreaks: true,
			BreakStyle: "zigzag",
		},
		Time: TimeConfig{
			BaseUnit: "milliseconds",
		},
		Zoom: ZoomConfig{
			FitToView: true,
			Scale:     coord.DefaultScale,
			MinScale:  coord.DefaultMinScale,
			MaxScale:  coord.DefaultMaxScale,
		},
		Ruler: RulerConfig{
			MinSpacing: ruler.DefaultMinSpacing,
			MaxTicks:   ruler.DefaultMaxTicks,
		},
		Minimap: MinimapConfig{
			Show:   true,
			Height: 24,
		},
	}
}

// Load reads configuration from a .yaml, .yml or .toml file over the
// defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Units resolves the configured base and sub unit.
func (c Config) Units() (timeunit.Scale, error) {
	base, err := timeunit.Parse(c.Time.BaseUnit)
	if err != nil {
		return timeunit.Scale{}, err
	}
	sub := base
	if c.Time.SubUnit != "" {
		if sub, err = timeunit.Parse(c.Time.SubUnit); err != nil {
			return timeunit.Scale{}, err
		}
	}
	return timeunit.NewScale(base, sub)
}

// AxisWidth is the number of pixels available to the time axis.
func (c Config) AxisWidth() float64 {
	w := c.Layout.Width - c.Layout.MarginLeft - c.Layout.MarginRight - c.Layout.LabelWidth
	if w < 1 {
		return 1
	}
	return float64(w)
}
