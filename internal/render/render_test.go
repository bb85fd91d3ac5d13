package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanes2svg/internal/config"
	"lanes2svg/internal/diagram"
	"lanes2svg/internal/session"
)

func sparseSession(t *testing.T, modify func(*config.Config)) *session.Session {
	t.Helper()
	d := diagram.New("sparse")
	require.NoError(t, d.AddLane(diagram.Lane{ID: "a", Name: "Alpha"}))
	require.NoError(t, d.AddLane(diagram.Lane{ID: "b"}))
	_, err := d.AddBox(diagram.Box{ID: "x", LaneID: "a", Start: 0, Duration: 100})
	require.NoError(t, err)
	_, err = d.AddBox(diagram.Box{ID: "y", LaneID: "b", Label: "Deploy", Start: 5000, Duration: 100})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Compression.Threshold = 500
	cfg.Zoom.FitToView = false
	if modify != nil {
		modify(&cfg)
	}
	s, err := session.New(d, cfg)
	require.NoError(t, err)
	return s
}

func TestSVGDocument(t *testing.T) {
	svg := SVG(sparseSession(t, nil))

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	assert.Contains(t, svg, `<svg width="1200" height="`)
	assert.Contains(t, svg, `data-lane="a"`)
	assert.Contains(t, svg, `>Alpha</text>`)
	assert.Contains(t, svg, `data-id="x"`)
	assert.Contains(t, svg, `<title>Deploy y (5s - 5.1s)</title>`)
	assert.Contains(t, svg, `class="minimap"`)
}

func TestSVGPlacesBoxesThroughCompression(t *testing.T) {
	svg := SVG(sparseSession(t, nil))
	assert.Contains(t, svg, `<rect x="175.0" y="108.0" width="15.0" height="28.0" rx="3" fill="#34a853"/>`)

	svg = SVG(sparseSession(t, func(c *config.Config) { c.Compression.Enabled = false }))
	assert.Contains(t, svg, `<rect x="910.0" y="108.0" width="15.0" height="28.0" rx="3" fill="#34a853"/>`)
}

func TestSVGBreaks(t *testing.T) {
	svg := SVG(sparseSession(t, nil))
	assert.Equal(t, 1, strings.Count(svg, `<g class="break">`))
	assert.Contains(t, svg, `<title>4.9s idle (100ms - 5s)</title>`)
	assert.Contains(t, svg, `stroke-dasharray="4,3"`)

	svg = SVG(sparseSession(t, func(c *config.Config) { c.Compression.CompressedSize = 1000 }))
	assert.Contains(t, svg, `fill-opacity="0.08"`)

	svg = SVG(sparseSession(t, func(c *config.Config) { c.Compression.ShowBreaks = false }))
	assert.NotContains(t, svg, `class="break"`)

	svg = SVG(sparseSession(t, func(c *config.Config) { c.Compression.Enabled = false }))
	assert.NotContains(t, svg, `class="break"`)
}

func TestSVGGrowsWithZoom(t *testing.T) {
	svg := SVG(sparseSession(t, func(c *config.Config) {
		c.Compression.Enabled = false
		c.Zoom.Scale = 1
	}))
	assert.Contains(t, svg, `<svg width="5280" height="`)
}

func TestSVGWithoutMinimap(t *testing.T) {
	svg := SVG(sparseSession(t, func(c *config.Config) { c.Minimap.Show = false }))
	assert.NotContains(t, svg, `class="minimap"`)
}

func TestSVGEscapesLabels(t *testing.T) {
	s := sparseSession(t, nil)
	_, err := s.AddBox(diagram.Box{ID: "q", LaneID: "a", Label: `<b>&"`, Start: 50, Duration: 5000})
	require.NoError(t, err)

	svg := SVG(s)
	assert.Contains(t, svg, `&lt;b&gt;&amp;&quot;`)
	assert.NotContains(t, svg, `<b>`)
}

func TestSVGEmptyDiagram(t *testing.T) {
	s, err := session.New(diagram.New("empty"), config.Default())
	require.NoError(t, err)

	svg := SVG(s)
	assert.Contains(t, svg, `class="ruler"`)
	assert.NotContains(t, svg, `class="lane"`)
}

func TestBoxColor(t *testing.T) {
	cfg := config.Default()
	lane := diagram.Lane{ID: "a"}

	assert.Equal(t, "#111111", boxColor(diagram.Box{Color: "#111111"}, diagram.Lane{Color: "#222222"}, 0, cfg))
	assert.Equal(t, "#222222", boxColor(diagram.Box{}, diagram.Lane{Color: "#222222"}, 0, cfg))
	assert.Equal(t, cfg.Colors.Boxes[1], boxColor(diagram.Box{}, lane, len(cfg.Colors.Boxes)+1, cfg))

	cfg.Colors.Boxes = nil
	assert.Equal(t, "#888888", boxColor(diagram.Box{}, lane, 0, cfg))
}

func TestDrawBreakMarkerShapes(t *testing.T) {
	tests := []struct {
		shape string
		want  string
		count int
	}{
		{"circle", "<circle", 1},
		{"diamond", "<polygon", 1},
		{"line", "<line", 1},
		{"zigzag", "<line", 2},
		{"unknown", "<line", 2},
	}
	for _, tt := range tests {
		t.Run(tt.shape, func(t *testing.T) {
			var b strings.Builder
			drawBreakMarker(&b, 10, 20, tt.shape, "#d93025")
			assert.Equal(t, tt.count, strings.Count(b.String(), tt.want))
		})
	}
}
